package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nlstn/go-rql"
)

// ShapeFile is the YAML description of a queried collection:
//
//	name: product
//	table: products
//	fields:
//	  - name: Code
//	    kind: integer
//	  - name: Status
//	    kind: label
//	    labels: [Open, Closed]
type ShapeFile struct {
	Name   string         `yaml:"name"`
	Table  string         `yaml:"table,omitempty"`
	Fields []rql.FieldDef `yaml:"fields"`
}

// LoadShape reads a shape file from AppFs.
func LoadShape(path string) (*ShapeFile, *rql.Shape, error) {
	data, err := afero.ReadFile(AppFs, path)
	if err != nil {
		return nil, nil, err
	}

	var sf ShapeFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if sf.Name == "" {
		return nil, nil, fmt.Errorf("%s: shape name is required", path)
	}

	s, err := rql.DefineShape(sf.Name, sf.Fields...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sf, s, nil
}
