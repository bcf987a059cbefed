package gen

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/dialect/platform"
	"github.com/syssam/strata/schema/field"
)

// Names of the built-in type handlers.
const (
	VarcharHandler  = "VarcharType"
	BooleanHandler  = "BooleanType"
	IntegerHandler  = "IntegerType"
	DoubleHandler   = "DoubleType"
	DateTimeHandler = "DateTimeType"
	LobHandler      = "LobType"
	ObjectHandler   = "ObjectType"
	ArrayHandler    = "ArrayType"
	EnumHandler     = "EnumType"
)

// TypeHandler decides how values of a semantic type are held and exposed
// by the generated objects.
type TypeHandler interface {
	// Name is the name the handler is configured with.
	Name() string
	// Primitive reports if defaults are coerced to the handler Kind.
	Primitive() bool
	// Kind is the primitive kind values are coerced to.
	Kind(f *Field) field.Kind
	// ElemType is the Go type of a non-null value.
	ElemType(f *Field) jen.Code
	// Pointer reports if the struct field holds a pointer to ElemType.
	Pointer(f *Field) bool
	// Accessor describes the getter of the field.
	Accessor(f *Field, p platform.Platform) Accessor
}

// Accessor describes how a getter exposes a stored value.
type Accessor struct {
	// Type is the return type of the getter.
	Type jen.Code
	// Convert converts a non-null stored value. Nil means the value is
	// returned as stored.
	Convert func(v jen.Code) jen.Code
	// Fallible reports if Convert yields a (value, error) pair.
	Fallible bool
}

// builtins are the built-in handlers by name.
var builtins = map[string]TypeHandler{
	VarcharHandler:  scalarHandler{name: VarcharHandler, kind: field.KindString},
	BooleanHandler:  scalarHandler{name: BooleanHandler, kind: field.KindBool},
	IntegerHandler:  integerHandler{},
	DoubleHandler:   scalarHandler{name: DoubleHandler, kind: field.KindFloat64},
	DateTimeHandler: dateTimeHandler{},
	LobHandler:      lobHandler{},
	ObjectHandler:   objectHandler{},
	ArrayHandler:    arrayHandler{},
	EnumHandler:     enumHandler{},
}

// handlerSet returns the built-in handlers extended with the custom ones.
// A custom handler replaces a built-in of the same name.
func handlerSet(custom []TypeHandler) map[string]TypeHandler {
	hs := maps.Clone(builtins)
	for _, h := range custom {
		hs[h.Name()] = h
	}
	return hs
}

// HandlerNames returns the sorted names of the built-in handlers and the
// given custom ones.
func HandlerNames(custom ...TypeHandler) []string {
	return slices.Sorted(maps.Keys(handlerSet(custom)))
}

// DefaultHandler returns the built-in handler name of a semantic type.
func DefaultHandler(t field.Type) string {
	switch t.Category() {
	case field.CategoryString:
		return VarcharHandler
	case field.CategoryBoolean:
		return BooleanHandler
	case field.CategoryInteger:
		return IntegerHandler
	case field.CategoryFloat:
		if t == field.TypeDecimal {
			return IntegerHandler
		}
		return DoubleHandler
	case field.CategoryTemporal:
		return DateTimeHandler
	case field.CategoryLOB:
		return LobHandler
	case field.CategoryObject:
		return ObjectHandler
	case field.CategoryArray:
		return ArrayHandler
	case field.CategoryEnum:
		return EnumHandler
	default:
		return ""
	}
}

// Registry maps semantic types to their handlers. It is resolved once and
// read-only afterwards.
type Registry struct {
	byType map[field.Type]TypeHandler
}

// NewRegistry resolves the handler of every semantic type, applying the
// overrides (semantic type name to handler name) before the defaults.
// Overrides may name the built-in handlers and the custom ones.
func NewRegistry(overrides map[string]string, custom ...TypeHandler) (*Registry, error) {
	handlers := handlerSet(custom)
	r := &Registry{byType: make(map[field.Type]TypeHandler, len(field.Types()))}
	for _, t := range field.Types() {
		r.byType[t] = handlers[DefaultHandler(t)]
	}
	for name, hname := range overrides {
		t, err := field.ParseType(name)
		if err != nil {
			return nil, NewConfigError("types."+name, hname, err.Error())
		}
		h, ok := handlers[hname]
		if !ok {
			return nil, NewConfigError("types."+name, hname, "unknown type handler")
		}
		r.byType[t] = h
	}
	return r, nil
}

// Resolve returns the handler of the semantic type with the given name.
func (r *Registry) Resolve(name string) (TypeHandler, error) {
	t, err := field.ParseType(name)
	if err != nil {
		return nil, err
	}
	return r.ResolveType(t)
}

// ResolveType returns the handler of the semantic type.
func (r *Registry) ResolveType(t field.Type) (TypeHandler, error) {
	h, ok := r.byType[t]
	if !ok || h == nil {
		return nil, &field.UnknownTypeError{Name: t.String()}
	}
	return h, nil
}

// FromNative maps a native column type of the platform to its semantic
// type and handler.
func (r *Registry) FromNative(p platform.Platform, raw string) (field.Type, TypeHandler, error) {
	t, err := p.ParseColumnType(raw)
	if err != nil {
		return field.TypeInvalid, nil, err
	}
	h, err := r.ResolveType(t)
	if err != nil {
		return field.TypeInvalid, nil, err
	}
	return t, h, nil
}

func ptrIf(ptr bool, c jen.Code) jen.Code {
	if ptr {
		return jen.Op("*").Add(c)
	}
	return c
}

func kindType(k field.Kind) jen.Code {
	switch k {
	case field.KindString:
		return jen.String()
	case field.KindBool:
		return jen.Bool()
	case field.KindInt:
		return jen.Int()
	case field.KindInt64:
		return jen.Int64()
	case field.KindFloat64:
		return jen.Float64()
	case field.KindBytes:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

// scalarHandler holds values of a fixed primitive kind.
type scalarHandler struct {
	name string
	kind field.Kind
}

func (h scalarHandler) Name() string             { return h.name }
func (scalarHandler) Primitive() bool            { return true }
func (h scalarHandler) Kind(*Field) field.Kind   { return h.kind }
func (h scalarHandler) ElemType(*Field) jen.Code { return kindType(h.kind) }
func (scalarHandler) Pointer(f *Field) bool      { return f.Nullable }
func (h scalarHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	return Accessor{Type: ptrIf(f.Nullable, h.ElemType(f))}
}

// integerHandler follows the Go kind of the semantic type, so that
// bigint maps to int64 and decimal to float64.
type integerHandler struct{}

func (integerHandler) Name() string          { return IntegerHandler }
func (integerHandler) Primitive() bool       { return true }
func (integerHandler) Pointer(f *Field) bool { return f.Nullable }

func (integerHandler) Kind(f *Field) field.Kind {
	switch k := f.Type().GoKind(); k {
	case field.KindInt64, field.KindFloat64:
		return k
	default:
		return field.KindInt
	}
}

func (h integerHandler) ElemType(f *Field) jen.Code { return kindType(h.Kind(f)) }

func (h integerHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	return Accessor{Type: ptrIf(f.Nullable, h.ElemType(f))}
}

// dateTimeHandler stores temporal values formatted with the platform
// formatter and parses them in getters when a date-time class is set.
type dateTimeHandler struct{}

func (dateTimeHandler) Name() string             { return DateTimeHandler }
func (dateTimeHandler) Primitive() bool          { return false }
func (dateTimeHandler) Kind(*Field) field.Kind   { return field.KindString }
func (dateTimeHandler) ElemType(*Field) jen.Code { return jen.String() }
func (dateTimeHandler) Pointer(f *Field) bool    { return f.Nullable }

func (h dateTimeHandler) Accessor(f *Field, p platform.Platform) Accessor {
	dt := f.cfg.DateTime
	if !dt.UseDateTimeClass || dt.DateTimeClass == "" {
		return Accessor{Type: ptrIf(f.Nullable, h.ElemType(f))}
	}
	layout := GoLayout(p, f)
	pkg, name := splitQualified(dt.DateTimeClass)
	return Accessor{
		Type: typeCode(dt.DateTimeClass),
		Convert: func(v jen.Code) jen.Code {
			parse := jen.Id("Parse" + name)
			if pkg != "" {
				parse = jen.Qual(pkg, "Parse")
			}
			return parse.Call(jen.Lit(layout), v)
		},
		Fallible: true,
	}
}

// lobHandler holds large objects as byte slices, or strings for
// character large objects.
type lobHandler struct{}

func (lobHandler) Name() string          { return LobHandler }
func (lobHandler) Primitive() bool       { return false }
func (lobHandler) Pointer(f *Field) bool { return f.Nullable && f.Type().GoKind() == field.KindString }

func (lobHandler) Kind(f *Field) field.Kind {
	if f.Type().GoKind() == field.KindString {
		return field.KindString
	}
	return field.KindBytes
}

func (h lobHandler) ElemType(f *Field) jen.Code { return kindType(h.Kind(f)) }

func (h lobHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	return Accessor{Type: ptrIf(h.Pointer(f), h.ElemType(f))}
}

// objectHandler holds a pointer to the configured object type, or an
// untyped value when none is set.
type objectHandler struct{}

func (objectHandler) Name() string           { return ObjectHandler }
func (objectHandler) Primitive() bool        { return false }
func (objectHandler) Kind(*Field) field.Kind { return field.KindAny }
func (objectHandler) Pointer(f *Field) bool  { return f.ObjectType != "" }

func (objectHandler) ElemType(f *Field) jen.Code {
	if f.ObjectType == "" {
		return jen.Any()
	}
	return typeCode(f.ObjectType)
}

func (h objectHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	if f.ObjectType == "" {
		return Accessor{Type: jen.Any()}
	}
	return Accessor{Type: jen.Op("*").Add(h.ElemType(f))}
}

// arrayHandler holds a slice, of strings unless an object type is set.
type arrayHandler struct{}

func (arrayHandler) Name() string           { return ArrayHandler }
func (arrayHandler) Primitive() bool        { return false }
func (arrayHandler) Kind(*Field) field.Kind { return field.KindAny }
func (arrayHandler) Pointer(*Field) bool    { return false }

func (arrayHandler) ElemType(f *Field) jen.Code {
	if f.ObjectType != "" {
		return typeCode(f.ObjectType)
	}
	return jen.Index().String()
}

func (h arrayHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	return Accessor{Type: h.ElemType(f)}
}

// enumHandler holds the ordinal of the value in the value-set.
type enumHandler struct{}

func (enumHandler) Name() string             { return EnumHandler }
func (enumHandler) Primitive() bool          { return false }
func (enumHandler) Kind(*Field) field.Kind   { return field.KindInt }
func (enumHandler) ElemType(*Field) jen.Code { return jen.Int() }
func (enumHandler) Pointer(f *Field) bool    { return f.Nullable }

func (h enumHandler) Accessor(f *Field, _ platform.Platform) Accessor {
	return Accessor{Type: ptrIf(f.Nullable, h.ElemType(f))}
}

// splitQualified splits "github.com/acme/money.Money" into its import
// path and type name. Unqualified names have an empty path.
func splitQualified(s string) (pkg, name string) {
	s = strings.TrimPrefix(s, "*")
	i := strings.LastIndexByte(s, '.')
	if i < 0 || strings.HasPrefix(s, "[") || strings.HasPrefix(s, "map[") {
		return "", s
	}
	return s[:i], s[i+1:]
}

// typeCode returns the jen code of a possibly qualified Go type.
func typeCode(s string) jen.Code {
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "map[") {
		return jen.Id(s)
	}
	pkg, name := splitQualified(s)
	if pkg == "" {
		return jen.Id(name)
	}
	return jen.Qual(pkg, name)
}

func (r *Registry) String() string {
	var b strings.Builder
	for _, t := range field.Types() {
		fmt.Fprintf(&b, "%s=%s ", t, r.byType[t].Name())
	}
	return strings.TrimSpace(b.String())
}
