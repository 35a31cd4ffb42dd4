package rql

import (
	"github.com/nlstn/go-rql/internal/shape"
)

// Shape describes the fields a query can target. Shapes of Go structs are
// derived from struct tags and cached per type:
//
//	type Product struct {
//		ID    int
//		Name  string `gorm:"column:product_name" bson:"name"`
//		Price decimal.Decimal `rql:"Cost"`
//		Notes string `rql:"-"`
//	}
//
// The rql tag renames or hides a field. SQL columns follow gorm naming and
// document keys follow bson tags.
type Shape = shape.Shape

// Field is a single field of a Shape.
type Field = shape.Field

// FieldDef declares a field of a declarative shape.
type FieldDef = shape.FieldDef

// ShapeOf returns the cached shape of model's struct type.
func ShapeOf(model interface{}) (*Shape, error) {
	return shape.Analyze(model)
}

// DefineShape builds a shape for records without a Go type, such as
// map[string]any documents. Kinds are integer, decimal, text, boolean,
// datetime, label and guid; label fields list their labels.
func DefineShape(name string, fields ...FieldDef) (*Shape, error) {
	return shape.Define(name, fields)
}
