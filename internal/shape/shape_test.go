package shape

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nlstn/go-rql/internal/value"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priority int

func (priority) EnumMembers() map[string]int {
	return map[string]int{"Low": 1, "High": 3, "Medium": 2}
}

type color string

type audit struct {
	CreatedAt time.Time
}

type supplier struct {
	ID   int
	Name string
}

type product struct {
	audit
	ID        int             `json:"id"`
	Code      int             `json:"code"`
	Name      string          `json:"name" gorm:"column:product_name"`
	Price     decimal.Decimal `rql:"Cost"`
	Discount  *float64
	InStock   bool   `bson:"in_stock"`
	Priority  priority
	Color     color
	Supplier  *supplier
	Tags      []string
	Internal  string `rql:"-"`
	unexposed int
}

func TestAnalyze(t *testing.T) {
	require.NoError(t, RegisterEnum(reflect.TypeOf(color("")), []value.Member{{Name: "Red", Value: 0}, {Name: "Blue", Value: 1}}))

	s, err := Analyze(&product{})
	require.NoError(t, err)
	assert.Equal(t, "product", s.Name)
	assert.True(t, s.Typed())

	cases := []struct {
		name   string
		kind   value.Kind
		column string
		docKey string
	}{
		{"CreatedAt", value.DateTime, "created_at", "createdat"},
		{"ID", value.Integer, "id", "id"},
		{"Code", value.Integer, "code", "code"},
		{"Name", value.Text, "product_name", "name"},
		{"Cost", value.Decimal, "price", "price"},
		{"Discount", value.Decimal, "discount", "discount"},
		{"InStock", value.Boolean, "in_stock", "in_stock"},
		{"Priority", value.Label, "priority", "priority"},
		{"Color", value.Label, "color", "color"},
	}
	for _, c := range cases {
		f, ok := s.Lookup(c.name)
		require.True(t, ok, c.name)
		assert.Equal(t, c.kind, f.Kind, c.name)
		assert.Equal(t, c.column, f.Column, c.name)
		assert.Equal(t, c.docKey, f.DocKey, c.name)
		assert.True(t, f.Filterable(), c.name)
	}

	f, ok := s.Lookup("code")
	require.True(t, ok, "lookup falls back to JSON name")
	assert.Equal(t, "Code", f.Name)

	f, _ = s.Lookup("Discount")
	assert.True(t, f.Nullable)

	f, _ = s.Lookup("Priority")
	assert.Equal(t, []string{"Low", "Medium", "High"}, f.Enum.Names())
	assert.False(t, f.Enum.Textual)

	f, _ = s.Lookup("Color")
	assert.True(t, f.Enum.Textual)

	for _, name := range []string{"Supplier", "Tags"} {
		f, ok := s.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, f.Association, name)
		assert.False(t, f.Projectable(), name)
	}

	_, ok = s.Lookup("Internal")
	assert.False(t, ok)
	_, ok = s.Lookup("unexposed")
	assert.False(t, ok)
}

func TestAnalyzeCachesPerType(t *testing.T) {
	var wg sync.WaitGroup
	shapes := make([]*Shape, 16)
	for i := range shapes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Of(reflect.TypeOf(supplier{}))
			if err == nil {
				shapes[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range shapes {
		assert.Same(t, shapes[0], s)
	}
}

func TestAnalyzeRejectsNonStruct(t *testing.T) {
	_, err := Analyze(42)
	assert.Error(t, err)
	_, err = Analyze(nil)
	assert.Error(t, err)
}

func TestDefine(t *testing.T) {
	s, err := Define("Person", []FieldDef{
		{Name: "Age", Kind: "integer"},
		{Name: "FirstName", Kind: "string", DocKey: "first_name"},
		{Name: "Status", Kind: "label", Labels: []string{"Active", "Retired"}},
	})
	require.NoError(t, err)
	assert.False(t, s.Typed())

	f, ok := s.Lookup("FirstName")
	require.True(t, ok)
	assert.Equal(t, "first_name", f.Column)
	assert.Equal(t, "first_name", f.DocKey)

	f, _ = s.Lookup("Status")
	assert.Equal(t, value.Label, f.Kind)
	assert.True(t, f.Enum.Textual)

	_, err = Define("Broken", []FieldDef{{Name: "X", Kind: "blob"}})
	assert.Error(t, err)
	_, err = Define("Dup", []FieldDef{{Name: "X", Kind: "int"}, {Name: "X", Kind: "int"}})
	assert.Error(t, err)
}
