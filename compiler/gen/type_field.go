package gen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/dialect/platform"
	"github.com/syssam/strata/schema/field"
)

// Field holds the information of a type field used by the builders.
type Field struct {
	cfg *Config
	def *load.Field
	typ *Type
	// semantic type, immutable once the field is created.
	semantic field.Type
	// Handler is the type handler resolved from the registry.
	Handler TypeHandler
	// Name is the name of this field in the schema.
	Name string
	// Column is the name of the database column.
	Column string
	// Nullable indicates that this field can be null in the database.
	Nullable bool
	// PrimaryKey indicates that this field is part of the primary key.
	PrimaryKey bool
	// AutoIncrement indicates that the database generates the value.
	AutoIncrement bool
	// Size and Scale of the native column type.
	Size, Scale int
	// Default is the raw default as authored in the schema, nil if absent.
	Default *string
	// DefaultExpr is a database expression default (CURRENT_TIMESTAMP).
	DefaultExpr string
	// ValueSet holds the ordered values of enum fields.
	ValueSet []string
	// ObjectType is the Go type of object fields.
	ObjectType string
	// Constructor overrides the name of the object constructor.
	Constructor string
	// Description is used as the accessor comment.
	Description string
}

// EnumConst is a generated constant of an enum value.
type EnumConst struct {
	Name    string
	Value   string
	Ordinal int
}

func newField(c *Config, reg *Registry, typ *Type, f *load.Field) (*Field, error) {
	st, err := field.ParseType(f.Type)
	if err != nil {
		return nil, NewSchemaError(typ.Name, f.Name, "", err)
	}
	h, err := reg.ResolveType(st)
	if err != nil {
		return nil, NewSchemaError(typ.Name, f.Name, "", err)
	}
	tf := &Field{
		cfg:           c,
		def:           f,
		typ:           typ,
		semantic:      st,
		Handler:       h,
		Name:          f.Name,
		Column:        f.Column,
		Nullable:      f.Nullable,
		PrimaryKey:    f.PrimaryKey,
		AutoIncrement: f.AutoIncrement,
		Size:          f.Size,
		Scale:         f.Scale,
		Default:       f.DefaultPtr(),
		DefaultExpr:   f.DefaultExpr,
		ValueSet:      f.ValueSet,
		ObjectType:    f.ObjectType,
		Constructor:   f.Constructor,
		Description:   f.Description,
	}
	if tf.Column == "" {
		tf.Column = snake(f.Name)
	}
	return tf, nil
}

// validate checks the column attributes of the field.
func (f *Field) validate() error {
	fail := func(value any, msg string) error {
		return NewValidationError(f.typ.Name, f.Name, value, msg)
	}
	switch {
	case f.Type().IsEnum() && len(f.ValueSet) == 0:
		return fail(nil, "enum field requires a value-set")
	case f.AutoIncrement && !f.Type().Numeric():
		return fail(f.Type().String(), "auto-increment field must be numeric")
	case f.Size < 0:
		return fail(f.Size, "size must not be negative")
	case f.Scale < 0:
		return fail(f.Scale, "scale must not be negative")
	case f.Size > 0 && f.Scale > f.Size:
		return fail(f.Scale, fmt.Sprintf("scale exceeds the size %d", f.Size))
	case f.Default != nil && f.DefaultExpr != "":
		return fail(f.DefaultExpr, "default and defaultExpr are mutually exclusive")
	}
	seen := make(map[string]struct{}, len(f.ValueSet))
	for _, v := range f.ValueSet {
		if _, ok := seen[v]; ok {
			return fail(v, "enum value declared twice")
		}
		seen[v] = struct{}{}
	}
	return nil
}

// =============================================================================
// Field methods
// =============================================================================

// Type returns the semantic type of the field.
func (f Field) Type() field.Type { return f.semantic }

// Owner returns the type holding the field.
func (f Field) Owner() *Type { return f.typ }

// FullyQualifiedName returns the <table>.<column> name of the field.
func (f Field) FullyQualifiedName() string {
	if f.typ == nil {
		return f.Column
	}
	return f.typ.Table + "." + f.Column
}

// GoName returns the exported Go name of the field.
func (f Field) GoName() string { return goName(f.Name) }

// StructField returns the struct member of the field in the object.
func (f Field) StructField() string {
	return SafeIdent(camel(snake(f.Name)))
}

// Getter returns the getter method name of the field.
func (f Field) Getter() string {
	if f.Type().Category() == field.CategoryBoolean {
		return "Is" + strings.TrimPrefix(f.GoName(), "Is")
	}
	return f.GoName()
}

// Setter returns the setter method name of the field.
func (f Field) Setter() string { return "Set" + f.GoName() }

// Constant returns the constant name of the column.
func (f Field) Constant() string { return "Column" + f.GoName() }

// Key returns the key of the field in generic accessors, following the
// configured default key type.
func (f Field) Key() string {
	switch f.cfg.ObjectModel.DefaultKeyType {
	case "columnName":
		return f.Column
	case "goName":
		return f.GoName()
	default:
		return f.Name
	}
}

// GoType returns the type of the struct member holding the field.
func (f *Field) GoType() jen.Code {
	return ptrIf(f.Handler.Pointer(f), f.Handler.ElemType(f))
}

// Pointer reports if the struct member holds a pointer.
func (f *Field) Pointer() bool { return f.Handler.Pointer(f) }

// Accessor returns the getter description of the field.
func (f *Field) Accessor(p platform.Platform) Accessor { return f.Handler.Accessor(f, p) }

// HasDefault reports if the field declares a literal default.
func (f Field) HasDefault() bool { return f.Default != nil && f.DefaultExpr == "" }

// ColumnSpec returns the platform column description of the field.
func (f Field) ColumnSpec() platform.ColumnSpec {
	return platform.ColumnSpec{
		Type:          f.semantic,
		Size:          f.Size,
		Scale:         f.Scale,
		AutoIncrement: f.AutoIncrement,
	}
}

// EnumConstants returns the constants of the enum values, named
// <GoName><Value> ("status", "on hold" => StatusOnHold).
func (f Field) EnumConstants() []EnumConst {
	title := cases.Title(language.English)
	consts := make([]EnumConst, len(f.ValueSet))
	for i, v := range f.ValueSet {
		words := strings.FieldsFunc(v, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		var b strings.Builder
		b.WriteString(f.GoName())
		for _, w := range words {
			b.WriteString(title.String(w))
		}
		if len(words) == 0 {
			b.WriteString("Empty")
		}
		consts[i] = EnumConst{Name: b.String(), Value: v, Ordinal: i}
	}
	return consts
}
