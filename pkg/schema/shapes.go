// Package schema maps the raw, inconsistently spelled columns of a source
// sheet onto canonical master fields. The mapping is driven by a shape table
// (embedded shapes.yaml, optionally overridden from a file): each sheet is
// bound to a shape and each shape lists the accepted spellings per field.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

//go:embed shapes.yaml
var embeddedShapes []byte

// Field binds one canonical master field to its raw column spellings.
type Field struct {
	Field    string   `yaml:"field"`
	Columns  []string `yaml:"columns"`
	Coalesce bool     `yaml:"coalesce,omitempty"`
}

// Shapes is the complete normalization table.
type Shapes struct {
	NameColumns  []string           `yaml:"name_columns"`
	DefaultShape string             `yaml:"default_shape"`
	Sheets       map[string]string  `yaml:"sheets"`
	Shapes       map[string][]Field `yaml:"shapes"`
}

var defaultShapes = sync.OnceValues(func() (*Shapes, error) {
	return Parse(embeddedShapes)
})

// Default returns the built-in shape table.
func Default() *Shapes {
	s, err := defaultShapes()
	if err != nil {
		// The embedded table is covered by tests; failing here is a build defect.
		panic(fmt.Sprintf("schema: embedded shapes.yaml is invalid: %v", err))
	}
	return s
}

// Parse decodes and validates a shape table.
func Parse(data []byte) (*Shapes, error) {
	var s Shapes
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", "shapes", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a shape table from path.
func Load(path string) (*Shapes, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading shapes from %s: %w", path, err)
	}
	return s, nil
}

// reserved fields are maintained by the engine and never mapped from a source.
var reserved = []string{records.IDField, records.FullName, records.SourceSheet, records.LastUpdated}

// Validate checks the table for internal consistency.
func (s *Shapes) Validate() error {
	if len(s.NameColumns) == 0 {
		return &errors.ValidationError{Field: "name_columns", Message: "at least one name column is required"}
	}
	if _, ok := s.Shapes[s.DefaultShape]; !ok {
		return &errors.ValidationError{Field: "default_shape", Value: s.DefaultShape, Message: "unknown shape"}
	}
	for sheet, shape := range s.Sheets {
		if _, ok := s.Shapes[shape]; !ok {
			return &errors.ValidationError{Field: "sheets." + sheet, Value: shape, Message: "unknown shape"}
		}
	}
	for name, fields := range s.Shapes {
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			path := "shapes." + name + "." + f.Field
			switch {
			case !records.IsCanonical(f.Field):
				return &errors.ValidationError{Field: path, Message: "not a master field"}
			case slices.Contains(reserved, f.Field):
				return &errors.ValidationError{Field: path, Message: "field is maintained by the engine"}
			case seen[f.Field]:
				return &errors.ValidationError{Field: path, Message: "duplicate field"}
			case len(f.Columns) == 0:
				return &errors.ValidationError{Field: path, Message: "no column spellings"}
			}
			seen[f.Field] = true
		}
	}
	return nil
}

// ShapeFor returns the shape bound to sheet, or the default shape.
func (s *Shapes) ShapeFor(sheet string) string {
	if shape, ok := s.Sheets[sheet]; ok {
		return shape
	}
	return s.DefaultShape
}
