// Package load reads schema descriptions from YAML or JSON files.
package load

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Document is the top-level content of a schema file.
type Document struct {
	// Namespace is inherited by entities that do not declare one.
	Namespace string    `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Entities  []*Schema `json:"entities" yaml:"entities"`
}

// Schema represents an entity loaded from a schema file.
type Schema struct {
	Name        string       `json:"name" yaml:"name"`
	Table       string       `json:"table,omitempty" yaml:"table,omitempty"`
	Namespace   string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Abstract    bool         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	ReadOnly    bool         `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Fields      []*Field     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Relations   []*Relation  `json:"relations,omitempty" yaml:"relations,omitempty"`
	Inheritance *Inheritance `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
	// Pos is the file the schema was loaded from.
	Pos string `json:"-" yaml:"-"`
}

// Field represents an entity field loaded from a schema file.
type Field struct {
	Name          string    `json:"name" yaml:"name"`
	Column        string    `json:"column,omitempty" yaml:"column,omitempty"`
	Type          string    `json:"type" yaml:"type"`
	Nullable      bool      `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	PrimaryKey    bool      `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	AutoIncrement bool      `json:"autoIncrement,omitempty" yaml:"autoIncrement,omitempty"`
	Size          int       `json:"size,omitempty" yaml:"size,omitempty"`
	Scale         int       `json:"scale,omitempty" yaml:"scale,omitempty"`
	Default       *RawValue `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultExpr   string    `json:"defaultExpr,omitempty" yaml:"defaultExpr,omitempty"`
	ValueSet      []string  `json:"valueSet,omitempty" yaml:"valueSet,omitempty"`
	// ObjectType is the Go type of object fields, optionally qualified by
	// its import path ("github.com/acme/money.Money").
	ObjectType  string `json:"objectType,omitempty" yaml:"objectType,omitempty"`
	Constructor string `json:"constructor,omitempty" yaml:"constructor,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Relation represents a relation to another entity.
type Relation struct {
	Name         string `json:"name" yaml:"name"`
	Target       string `json:"target" yaml:"target"`
	Kind         string `json:"kind,omitempty" yaml:"kind,omitempty"`
	LocalField   string `json:"localField,omitempty" yaml:"localField,omitempty"`
	ForeignField string `json:"foreignField,omitempty" yaml:"foreignField,omitempty"`
	OnDelete     string `json:"onDelete,omitempty" yaml:"onDelete,omitempty"`
	OnUpdate     string `json:"onUpdate,omitempty" yaml:"onUpdate,omitempty"`
}

// Inheritance describes single-table inheritance keyed by a column value.
type Inheritance struct {
	Field    string   `json:"field" yaml:"field"`
	Children []*Child `json:"children" yaml:"children"`
}

// Child is one class of an inheritance tree.
type Child struct {
	Key   string `json:"key" yaml:"key"`
	Class string `json:"class" yaml:"class"`
}

// RawValue is a default value as authored in the schema. Scalars of any
// kind are kept in their textual form.
type RawValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *RawValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	*v = RawValue(b)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// String returns the raw text.
func (v RawValue) String() string { return string(v) }

// DefaultPtr returns the raw default as a string pointer, or nil.
func (f *Field) DefaultPtr() *string {
	if f.Default == nil {
		return nil
	}
	s := string(*f.Default)
	return &s
}

// Validate checks the structural requirements of a loaded schema.
func (s *Schema) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("entity name is required"))
	}
	for i, f := range s.Fields {
		switch {
		case f.Name == "":
			errs = append(errs, fmt.Errorf("field #%d: name is required", i))
		case f.Type == "":
			errs = append(errs, fmt.Errorf("field %q: type is required", f.Name))
		}
	}
	for i, r := range s.Relations {
		if r.Name == "" || r.Target == "" {
			errs = append(errs, fmt.Errorf("relation #%d: name and target are required", i))
		}
	}
	if in := s.Inheritance; in != nil {
		if in.Field == "" {
			errs = append(errs, errors.New("inheritance: field is required"))
		}
		for i, c := range in.Children {
			if c.Key == "" || c.Class == "" {
				errs = append(errs, fmt.Errorf("inheritance child #%d: key and class are required", i))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("load: entity %q (%s): %w", s.Name, s.Pos, err)
	}
	return nil
}
