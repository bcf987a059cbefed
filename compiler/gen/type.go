package gen

import (
	"errors"
	"fmt"
	"go/token"
	"path"
	"strings"

	"github.com/syssam/strata/compiler/load"
)

// The following types and their exported methods are used by the builders
// to generate the artifacts.
type (
	// Type represents one entity of the graph, its fields and relations.
	Type struct {
		*Config
		schema *load.Schema
		// Name holds the class name of the type, including the configured
		// class prefix.
		Name string
		// Table is the database table of the type.
		Table string
		// Namespace as declared in the schema ("acme.bookstore").
		Namespace string
		// Description is used as the class-level comment.
		Description string
		// Abstract types are not instantiated directly.
		Abstract bool
		// ReadOnly types get no mutators and no save method.
		ReadOnly bool
		// Fields holds all the columns of this type in declaration order.
		Fields []*Field
		fields map[string]*Field
		// PrimaryKey holds the primary key fields.
		PrimaryKey []*Field
		// Relations holds the declared and derived relations.
		Relations []*Relation
		// Inheritance holds the single-table inheritance of the type.
		Inheritance *Inheritance
	}

	// Inheritance describes a single-table inheritance: the value of Field
	// selects the child class of a row.
	Inheritance struct {
		Field    *Field
		Children []*InheritanceChild
	}

	// InheritanceChild is one class of an inheritance tree.
	InheritanceChild struct {
		Key   string
		Class string
	}
)

// NewType creates a new type and its fields from the given schema.
func NewType(c *Config, schema *load.Schema) (*Type, error) {
	reg, err := NewRegistry(c.Types, c.Handlers...)
	if err != nil {
		return nil, err
	}
	return newType(c, reg, schema)
}

func newType(c *Config, reg *Registry, schema *load.Schema) (*Type, error) {
	if err := ValidSchemaName(schema.Name); err != nil {
		return nil, NewSchemaError(schema.Name, "", "", err)
	}
	typ := &Type{
		Config:      c,
		schema:      schema,
		Name:        c.ObjectModel.ClassPrefix + schema.Name,
		Table:       schema.Table,
		Namespace:   schema.Namespace,
		Description: schema.Description,
		Abstract:    schema.Abstract,
		ReadOnly:    schema.ReadOnly,
		Fields:      make([]*Field, 0, len(schema.Fields)),
		fields:      make(map[string]*Field, len(schema.Fields)),
	}
	if typ.Table == "" {
		typ.Table = snake(schema.Name)
	}
	columns := make(map[string]struct{}, len(schema.Fields))
	for _, f := range schema.Fields {
		tf, err := newField(c, reg, typ, f)
		if err != nil {
			return nil, err
		}
		if err := typ.checkField(tf, columns); err != nil {
			return nil, NewSchemaError(typ.Name, f.Name, "", err)
		}
		if err := tf.validate(); err != nil {
			return nil, err
		}
		columns[tf.Column] = struct{}{}
		typ.Fields = append(typ.Fields, tf)
		typ.fields[tf.Name] = tf
		if tf.PrimaryKey {
			typ.PrimaryKey = append(typ.PrimaryKey, tf)
		}
	}
	if in := schema.Inheritance; in != nil {
		f, ok := typ.fields[in.Field]
		if !ok {
			return nil, NewSchemaError(typ.Name, in.Field, "inheritance field does not exist", nil)
		}
		typ.Inheritance = &Inheritance{Field: f}
		for _, ch := range in.Children {
			if !token.IsIdentifier(ch.Class) {
				return nil, NewSchemaError(typ.Name, in.Field, fmt.Sprintf("inheritance class %q is not a valid identifier", ch.Class), nil)
			}
			typ.Inheritance.Children = append(typ.Inheritance.Children, &InheritanceChild{Key: ch.Key, Class: ch.Class})
		}
	}
	return typ, nil
}

// checkField checks the schema field against the fields already added.
func (t *Type) checkField(tf *Field, columns map[string]struct{}) error {
	_, dupColumn := columns[tf.Column]
	switch {
	case t.fields[tf.Name] != nil:
		return fmt.Errorf("field %q redeclared for type %q", tf.Name, t.Name)
	case dupColumn:
		return fmt.Errorf("column %q redeclared for type %q", tf.Column, t.Name)
	case !token.IsIdentifier(tf.GoName()):
		return fmt.Errorf("field name %q does not produce a valid Go identifier", tf.Name)
	case IsReserved(tf.GoName()) || IsReserved(tf.Getter()) || IsReserved(tf.Setter()):
		return fmt.Errorf("field %q conflicts with a generated method", tf.Name)
	}
	return nil
}

// ValidSchemaName will determine if a name is going to conflict with any
// pre-defined names or contains unsafe characters.
func ValidSchemaName(name string) error {
	// Check for empty name.
	if name == "" {
		return errors.New("schema name cannot be empty")
	}
	// Check for path traversal characters to prevent directory escape attacks.
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("schema name %q contains path separator characters", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("schema name %q contains parent directory reference", name)
	}
	// Check for hidden files (names starting with dot).
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("schema name %q cannot start with a dot", name)
	}
	// Validate that the name is a valid Go identifier.
	if !token.IsIdentifier(name) {
		return fmt.Errorf("schema name %q is not a valid Go identifier", name)
	}
	if IsReserved(name) {
		return fmt.Errorf("schema name conflicts with reserved identifier %q", name)
	}
	return nil
}

// =============================================================================
// Type methods
// =============================================================================

// Pos returns the file the type was loaded from.
func (t Type) Pos() string {
	if t.schema != nil {
		return t.schema.Pos
	}
	return ""
}

// Dir returns the directory of the type artifacts, relative to the
// target directory.
func (t Type) Dir() string {
	if !t.NamespaceAutoPackage {
		return ""
	}
	return NamespaceDir(t.Namespace)
}

// MapDir returns the directory of the entity maps of the type.
func (t Type) MapDir() string {
	return path.Join(t.Dir(), strings.ToLower(t.ObjectModel.NamespaceMap))
}

// Package returns the Go package name of the type artifacts.
func (t Type) Package() string {
	if dir := t.Dir(); dir != "" {
		return packageName(path.Base(dir))
	}
	if t.Config.Package != "" {
		return packageName(path.Base(t.Config.Package))
	}
	return "model"
}

// MapPackage returns the Go package name of the entity maps.
func (t Type) MapPackage() string {
	return packageName(path.Base(t.MapDir()))
}

// PkgPath returns the import path of the type artifacts.
func (t Type) PkgPath() string {
	return path.Join(t.Config.Package, t.Dir())
}

// MapPkgPath returns the import path of the entity maps.
func (t Type) MapPkgPath() string {
	return path.Join(t.Config.Package, t.MapDir())
}

// Receiver returns the receiver name of this node.
func (t Type) Receiver() string { return receiver(t.Name) }

// FileName returns the base file name of a type artifact.
func (t Type) FileName(suffix string) string { return ClassFileName(t.Name, suffix) }

// ClassFileName returns the base file name of an artifact of the class,
// in snake case followed by the suffix.
func ClassFileName(class, suffix string) string {
	if suffix == "" {
		return snake(class)
	}
	return snake(class) + "_" + suffix
}

// FieldByName returns the field with the given schema name.
func (t Type) FieldByName(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// FieldBy returns the first field that the given function returns true on it.
func (t Type) FieldBy(fn func(*Field) bool) (*Field, bool) {
	for _, f := range t.Fields {
		if fn(f) {
			return f, true
		}
	}
	return nil, false
}

// EnumFields returns the enum fields of the type.
func (t Type) EnumFields() []*Field {
	var fields []*Field
	for _, f := range t.Fields {
		if f.Type().IsEnum() {
			fields = append(fields, f)
		}
	}
	return fields
}

// HasDefault reports if any field of the type declares a literal default.
func (t Type) HasDefault() bool {
	_, ok := t.FieldBy(func(f *Field) bool { return f.HasDefault() })
	return ok
}

// AutoIncrementField returns the auto-increment field of the type.
func (t Type) AutoIncrementField() (*Field, bool) {
	return t.FieldBy(func(f *Field) bool { return f.AutoIncrement })
}

// HasInheritance reports if the type uses single-table inheritance.
func (t Type) HasInheritance() bool {
	return t.Inheritance != nil && len(t.Inheritance.Children) > 0
}

// HasTimestamps reports if the type has the createdAt and updatedAt
// columns filled by TouchTimestamps.
func (t Type) HasTimestamps() bool {
	_, created := t.FieldBy(func(f *Field) bool { return f.Column == "created_at" && f.Type().IsTemporal() })
	_, updated := t.FieldBy(func(f *Field) bool { return f.Column == "updated_at" && f.Type().IsTemporal() })
	return created || updated
}

// ForeignKeys returns the relations holding a foreign key in the type
// table.
func (t Type) ForeignKeys() []*Relation {
	var rels []*Relation
	for _, r := range t.Relations {
		if r.HasForeignKey() {
			rels = append(rels, r)
		}
	}
	return rels
}

// RelatedTypes returns all the types (nodes) that
// are related (with relations) to this type.
func (t Type) RelatedTypes() []*Type {
	seen := make(map[string]struct{})
	related := make([]*Type, 0, len(t.Relations))
	for _, r := range t.Relations {
		if _, ok := seen[r.Target.Name]; !ok && r.Target.Name != t.Name {
			related = append(related, r.Target)
			seen[r.Target.Name] = struct{}{}
		}
	}
	return related
}

// QueryName returns the struct name of the base query builder.
func (t Type) QueryName() string { return "Base" + t.Name + "Query" }

// QueryStubName returns the struct name of the query builder stub.
func (t Type) QueryStubName() string { return t.Name + "Query" }

// MapName returns the struct name of the entity map.
func (t Type) MapName() string { return t.Name + "EntityMap" }

// RepositoryName returns the struct name of the base repository.
func (t Type) RepositoryName() string { return "Base" + t.Name + "Repository" }

// RepositoryStubName returns the struct name of the repository stub.
func (t Type) RepositoryStubName() string { return t.Name + "Repository" }

// ProxyName returns the struct name of the lazy-loading proxy.
func (t Type) ProxyName() string { return t.Name + "Proxy" }

// ActiveRecordName returns the struct name of the active-record binding.
func (t Type) ActiveRecordName() string { return t.Name + "Record" }

// packageName returns a valid package name for the directory name.
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' && b.Len() > 0 {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return "model"
	}
	if token.Lookup(name).IsKeyword() {
		name += "s"
	}
	return name
}
