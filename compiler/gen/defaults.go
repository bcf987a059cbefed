package gen

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dave/jennifer/jen"
	"github.com/ncruces/go-strftime"

	"github.com/syssam/strata/dialect/platform"
	"github.com/syssam/strata/schema/field"
)

// Literal is the resolved default of a field, ready to be embedded in
// generated source.
type Literal struct {
	code  jen.Code
	value any
	kind  literalKind
	// raw is the declared text of array defaults.
	raw string
}

type literalKind uint8

const (
	literalNull literalKind = iota
	literalString
	literalTemporal
	literalBool
	literalInt
	literalFloat
	literalEnum
	literalObject
	literalArray
)

// Null returns the null-sentinel literal.
func Null() Literal { return Literal{code: jen.Nil()} }

// Code returns the jen code of the literal.
func (l Literal) Code() jen.Code {
	if l.code == nil {
		return jen.Nil()
	}
	return l.code
}

// String returns the Go source text of the literal. Array defaults are
// returned as declared.
func (l Literal) String() string {
	if l.kind == literalArray {
		return l.raw
	}
	return fmt.Sprintf("%#v", jen.Add(l.Code()))
}

// IsNull reports if the literal is the null sentinel.
func (l Literal) IsNull() bool { return l.kind == literalNull }

// IsObject reports if the literal is a constructor call yielding a pointer.
func (l Literal) IsObject() bool { return l.kind == literalObject }

// Value returns the coerced Go value of the literal: a string for string
// and temporal defaults, a bool, an int, an int64 or a float64 for
// primitives, the ordinal for enums and the raw text for objects and
// arrays. The null sentinel has a nil value.
func (l Literal) Value() any { return l.value }

// SQL returns the literal as a SQL default of the platform. The second
// value is false if the default cannot be expressed in SQL.
func (l Literal) SQL(p platform.Platform) (string, bool) {
	switch v := l.value.(type) {
	case string:
		if l.kind == literalString || l.kind == literalTemporal {
			return p.QuoteLiteral(v), true
		}
	case bool:
		return p.BoolLiteral(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	if l.kind == literalNull {
		return "NULL", true
	}
	return "", false
}

// TemporalFormatter returns the strftime format of the platform for the
// temporal kind of the field.
func TemporalFormatter(p platform.Platform, f *Field) (string, error) {
	kind := f.Type().TemporalKind()
	if kind == field.NotTemporal {
		return "", fmt.Errorf("strata: field %q of type %s is not temporal", f.FullyQualifiedName(), f.Type())
	}
	return p.TemporalFormatter(kind), nil
}

// GoLayout returns the time layout matching the temporal format of the
// field on the platform, falling back to a plain timestamp layout when
// the format has no Go equivalent.
func GoLayout(p platform.Platform, f *Field) string {
	if format, err := TemporalFormatter(p, f); err == nil {
		if l, err := strftime.Layout(format); err == nil {
			return l
		}
	}
	return "2006-01-02 15:04:05"
}

// ResolveDefault returns the literal of the declared default of the field.
// Fields without a literal default resolve to the null sentinel.
func ResolveDefault(p platform.Platform, f *Field) (Literal, error) {
	if !f.HasDefault() {
		return Null(), nil
	}
	return ResolveValue(p, f, *f.Default)
}

// ResolveValue returns the literal of a raw value of the field, coerced
// the same way as its default. It is used for inheritance keys.
func ResolveValue(p platform.Platform, f *Field, raw string) (Literal, error) {
	t := f.Type()
	switch {
	case t.IsTemporal():
		return resolveTemporal(p, f, raw)
	case t.IsEnum():
		i := slices.Index(f.ValueSet, raw)
		if i < 0 {
			return Literal{}, &InvalidEnumDefaultError{Field: f.FullyQualifiedName(), Value: raw, ValueSet: f.ValueSet}
		}
		return Literal{code: jen.Lit(i), value: i, kind: literalEnum}, nil
	case f.Handler != nil && f.Handler.Primitive():
		return coerce(f, f.Handler.Kind(f), raw)
	case t.Category() == field.CategoryObject && f.ObjectType != "":
		return Literal{code: constructor(f).Call(jen.Lit(raw)), value: raw, kind: literalObject}, nil
	case t.Category() == field.CategoryArray:
		code, err := arrayCode(f, raw)
		if err != nil {
			return Literal{}, &InvalidArrayDefaultError{Field: f.FullyQualifiedName(), Value: raw, Cause: err}
		}
		return Literal{code: code, value: raw, kind: literalArray, raw: raw}, nil
	default:
		return Literal{}, &UnsupportedDefaultTypeError{Field: f.FullyQualifiedName(), Type: t.String()}
	}
}

func resolveTemporal(p platform.Platform, f *Field, raw string) (Literal, error) {
	if p.IsZeroDateException(raw) {
		return Null(), nil
	}
	ts, err := parseTemporal(raw)
	if err != nil {
		return Literal{}, &InvalidTemporalDefaultError{Field: f.FullyQualifiedName(), Value: raw, Cause: err}
	}
	format, err := TemporalFormatter(p, f)
	if err != nil {
		return Literal{}, err
	}
	s := strftime.Format(format, ts)
	return Literal{code: jen.Lit(s), value: s, kind: literalTemporal}, nil
}

// temporalLayouts are tried in order. Fractional seconds are accepted
// after the seconds field by every layout holding seconds.
var temporalLayouts = []string{
	"%Y-%m-%d %H:%M:%S",
	"%Y-%m-%dT%H:%M:%S",
	"%Y-%m-%d",
	"%H:%M:%S",
	"%H:%M",
}

var errTemporalFormat = errors.New("value is not a date, a time or a timestamp")

func parseTemporal(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errTemporalFormat
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range temporalLayouts {
		if ts, err := strftime.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errTemporalFormat
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// coerce converts the raw default to the primitive kind. Numbers use the
// leading numeric prefix of the text and default to zero.
func coerce(f *Field, kind field.Kind, raw string) (Literal, error) {
	s := strings.TrimSpace(raw)
	switch kind {
	case field.KindString:
		return Literal{code: jen.Lit(raw), value: raw, kind: literalString}, nil
	case field.KindBool:
		v := parseBool(s)
		return Literal{code: jen.Lit(v), value: v, kind: literalBool}, nil
	case field.KindInt:
		v, _ := strconv.Atoi(intPrefix.FindString(s))
		return Literal{code: jen.Lit(v), value: v, kind: literalInt}, nil
	case field.KindInt64:
		v, _ := strconv.ParseInt(intPrefix.FindString(s), 10, 64)
		return Literal{code: jen.Lit(v), value: v, kind: literalInt}, nil
	case field.KindFloat64:
		v, _ := strconv.ParseFloat(floatPrefix.FindString(s), 64)
		return Literal{code: jen.Lit(v), value: v, kind: literalFloat}, nil
	default:
		return Literal{}, &UnsupportedDefaultTypeError{Field: f.FullyQualifiedName(), Type: f.Type().String()}
	}
}

// parseBool reports if s is one of true, yes, y, on or 1, ignoring case.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "on", "1":
		return true
	default:
		return false
	}
}

// constructor returns the constructor of the object type of the field,
// New<Type> unless overridden.
func constructor(f *Field) *jen.Statement {
	pkg, name := splitQualified(f.ObjectType)
	ctor := f.Constructor
	if ctor == "" {
		ctor = "New" + name
	}
	if cpkg, cname := splitQualified(ctor); cpkg != "" {
		return jen.Qual(cpkg, cname)
	}
	if pkg == "" {
		return jen.Id(ctor)
	}
	return jen.Qual(pkg, ctor)
}

// arrayCode returns the composite literal of an array default. The raw
// text is either a Go composite literal, a bracketed list ("[a, b]" or
// a JSON array), the stored form "| a | b |" or a comma-separated list.
func arrayCode(f *Field, raw string) (jen.Code, error) {
	s := strings.TrimSpace(raw)
	if expr, err := parser.ParseExpr(s); err == nil {
		if _, ok := expr.(*ast.CompositeLit); ok {
			return jen.Id(s), nil
		}
	}
	elems, err := arrayElems(s)
	if err != nil {
		return nil, err
	}
	typ, kind := arrayType(f)
	vals := make([]jen.Code, len(elems))
	for i, e := range elems {
		v, err := arrayElem(kind, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		vals[i] = v
	}
	return jen.Add(typ).Values(vals...), nil
}

var errArrayFormat = errors.New("value is not a list")

// arrayElems splits the raw list into its elements.
func arrayElems(s string) ([]string, error) {
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "|"):
		var elems []string
		for _, e := range strings.Split(strings.Trim(s, "|"), "|") {
			if e = strings.TrimSpace(e); e != "" {
				elems = append(elems, e)
			}
		}
		return elems, nil
	case strings.HasPrefix(s, "["):
		if !strings.HasSuffix(s, "]") {
			return nil, errArrayFormat
		}
		if elems, ok := jsonElems(s); ok {
			return elems, nil
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
		if strings.ContainsAny(s, "[]{}") {
			return nil, errArrayFormat
		}
		if s == "" {
			return nil, nil
		}
	}
	elems := strings.Split(s, ",")
	for i, e := range elems {
		elems[i] = strings.Trim(strings.TrimSpace(e), `"'`)
	}
	return elems, nil
}

// jsonElems decodes a JSON array of scalars.
func jsonElems(s string) ([]string, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var vs []any
	if err := dec.Decode(&vs); err != nil {
		return nil, false
	}
	elems := make([]string, len(vs))
	for i, v := range vs {
		switch v := v.(type) {
		case string:
			elems[i] = v
		case json.Number:
			elems[i] = v.String()
		case bool:
			elems[i] = strconv.FormatBool(v)
		default:
			return nil, false
		}
	}
	return elems, true
}

// arrayType returns the slice type of the field and the kind of its
// elements. Named object types hold strings.
func arrayType(f *Field) (jen.Code, field.Kind) {
	switch f.ObjectType {
	case "":
		return jen.Index().String(), field.KindString
	case "[]int":
		return jen.Index().Int(), field.KindInt
	case "[]int64":
		return jen.Index().Int64(), field.KindInt64
	case "[]float64":
		return jen.Index().Float64(), field.KindFloat64
	case "[]bool":
		return jen.Index().Bool(), field.KindBool
	default:
		return typeCode(f.ObjectType), field.KindString
	}
}

func arrayElem(kind field.Kind, e string) (jen.Code, error) {
	switch kind {
	case field.KindInt:
		v, err := strconv.Atoi(e)
		return jen.Lit(v), err
	case field.KindInt64:
		v, err := strconv.ParseInt(e, 10, 64)
		return jen.Op(strconv.FormatInt(v, 10)), err
	case field.KindFloat64:
		v, err := strconv.ParseFloat(e, 64)
		return jen.Lit(v), err
	case field.KindBool:
		v, err := strconv.ParseBool(e)
		return jen.Lit(v), err
	default:
		return jen.Lit(e), nil
	}
}
