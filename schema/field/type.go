package field

import (
	"errors"
	"fmt"
	"strings"
)

// A Type represents a semantic field type, independent of the database
// platform it is stored on.
type Type uint8

// List of semantic field types.
const (
	TypeInvalid Type = iota
	TypeVarchar
	TypeChar
	TypeLongVarchar
	TypeBoolean
	TypeTinyInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeFloat
	TypeDouble
	TypeReal
	TypeDate
	TypeTime
	TypeTimestamp
	TypeDateTime
	TypeLob
	TypeClob
	TypeBlob
	TypeBinary
	TypeVarBinary
	TypeLongVarBinary
	TypeObject
	TypeArray
	TypeEnum
	endTypes
)

// Category groups semantic types by how their values are materialized in
// generated code.
type Category uint8

// List of type categories.
const (
	CategoryInvalid Category = iota
	CategoryString
	CategoryBoolean
	CategoryInteger
	CategoryFloat
	CategoryTemporal
	CategoryLOB
	CategoryObject
	CategoryArray
	CategoryEnum
)

// TemporalKind identifies the temporal flavour of a date/time type.
type TemporalKind uint8

// List of temporal kinds.
const (
	NotTemporal TemporalKind = iota
	KindDate
	KindTime
	KindTimestamp
)

// Kind is the primitive Go kind a value of the type is coerced to.
type Kind uint8

// List of primitive kinds.
const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt
	KindInt64
	KindFloat64
	KindBytes
	KindAny
)

var typeNames = [...]string{
	TypeInvalid:       "invalid",
	TypeVarchar:       "varchar",
	TypeChar:          "char",
	TypeLongVarchar:   "longvarchar",
	TypeBoolean:       "boolean",
	TypeTinyInt:       "tinyint",
	TypeSmallInt:      "smallint",
	TypeInteger:       "integer",
	TypeBigInt:        "bigint",
	TypeDecimal:       "decimal",
	TypeFloat:         "float",
	TypeDouble:        "double",
	TypeReal:          "real",
	TypeDate:          "date",
	TypeTime:          "time",
	TypeTimestamp:     "timestamp",
	TypeDateTime:      "datetime",
	TypeLob:           "lob",
	TypeClob:          "clob",
	TypeBlob:          "blob",
	TypeBinary:        "binary",
	TypeVarBinary:     "varbinary",
	TypeLongVarBinary: "longvarbinary",
	TypeObject:        "object",
	TypeArray:         "array",
	TypeEnum:          "enum",
}

var categories = [...]Category{
	TypeInvalid:       CategoryInvalid,
	TypeVarchar:       CategoryString,
	TypeChar:          CategoryString,
	TypeLongVarchar:   CategoryString,
	TypeBoolean:       CategoryBoolean,
	TypeTinyInt:       CategoryInteger,
	TypeSmallInt:      CategoryInteger,
	TypeInteger:       CategoryInteger,
	TypeBigInt:        CategoryInteger,
	TypeDecimal:       CategoryFloat,
	TypeFloat:         CategoryFloat,
	TypeDouble:        CategoryFloat,
	TypeReal:          CategoryFloat,
	TypeDate:          CategoryTemporal,
	TypeTime:          CategoryTemporal,
	TypeTimestamp:     CategoryTemporal,
	TypeDateTime:      CategoryTemporal,
	TypeLob:           CategoryLOB,
	TypeClob:          CategoryLOB,
	TypeBlob:          CategoryLOB,
	TypeBinary:        CategoryLOB,
	TypeVarBinary:     CategoryLOB,
	TypeLongVarBinary: CategoryLOB,
	TypeObject:        CategoryObject,
	TypeArray:         CategoryArray,
	TypeEnum:          CategoryEnum,
}

// Types returns all valid semantic types in declaration order.
func Types() []Type {
	ts := make([]Type, 0, endTypes-1)
	for t := TypeVarchar; t < endTypes; t++ {
		ts = append(ts, t)
	}
	return ts
}

// ParseType returns the semantic type with the given name. Names are matched
// case-insensitively.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t := TypeVarchar; t < endTypes; t++ {
		if typeNames[t] == n {
			return t, nil
		}
	}
	return TypeInvalid, &UnknownTypeError{Name: name}
}

// MustParseType is like ParseType but panics on unknown names.
func MustParseType(name string) Type {
	t, err := ParseType(name)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the schema name of the type.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// Valid reports if the type is a known semantic type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Category returns the category of the type.
func (t Type) Category() Category {
	if !t.Valid() {
		return CategoryInvalid
	}
	return categories[t]
}

// IsTemporal reports if the type holds a date, a time or both.
func (t Type) IsTemporal() bool { return t.Category() == CategoryTemporal }

// IsEnum reports if the type is an enumeration.
func (t Type) IsEnum() bool { return t == TypeEnum }

// IsPrimitive reports if values of the type are plain Go scalars.
func (t Type) IsPrimitive() bool {
	switch t.Category() {
	case CategoryString, CategoryBoolean, CategoryInteger, CategoryFloat:
		return true
	default:
		return false
	}
}

// IsLOB reports if the type is a large object.
func (t Type) IsLOB() bool { return t.Category() == CategoryLOB }

// Numeric reports if the type is an integer or a floating-point type.
func (t Type) Numeric() bool {
	c := t.Category()
	return c == CategoryInteger || c == CategoryFloat
}

// TemporalKind returns the temporal kind of the type, or NotTemporal.
func (t Type) TemporalKind() TemporalKind {
	switch t {
	case TypeDate:
		return KindDate
	case TypeTime:
		return KindTime
	case TypeTimestamp, TypeDateTime:
		return KindTimestamp
	default:
		return NotTemporal
	}
}

// GoKind returns the primitive Go kind used to hold values of the type.
func (t Type) GoKind() Kind {
	switch t {
	case TypeVarchar, TypeChar, TypeLongVarchar, TypeClob:
		return KindString
	case TypeBoolean:
		return KindBool
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeEnum:
		return KindInt
	case TypeBigInt:
		return KindInt64
	case TypeDecimal, TypeFloat, TypeDouble, TypeReal:
		return KindFloat64
	case TypeDate, TypeTime, TypeTimestamp, TypeDateTime:
		return KindString
	case TypeLob, TypeBlob, TypeBinary, TypeVarBinary, TypeLongVarBinary:
		return KindBytes
	case TypeObject, TypeArray:
		return KindAny
	default:
		return KindInvalid
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("field: cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (c Category) String() string {
	switch c {
	case CategoryString:
		return "string"
	case CategoryBoolean:
		return "boolean"
	case CategoryInteger:
		return "integer"
	case CategoryFloat:
		return "float"
	case CategoryTemporal:
		return "temporal"
	case CategoryLOB:
		return "lob"
	case CategoryObject:
		return "object"
	case CategoryArray:
		return "array"
	case CategoryEnum:
		return "enum"
	default:
		return "invalid"
	}
}

func (k TemporalKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	default:
		return "none"
	}
}

// ErrUnknownType is matched by errors.Is for every UnknownTypeError.
var ErrUnknownType = errors.New("strata: unknown field type")

// UnknownTypeError is returned when a semantic type name is not recognized.
type UnknownTypeError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("strata: unknown field type %q", e.Name)
}

// Is reports whether the target matches ErrUnknownType.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}
