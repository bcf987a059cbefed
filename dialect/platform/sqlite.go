package platform

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// SQLite is the platform of the sqlite adapter.
type SQLite struct {
	base
	hints hints
}

// Name implements Platform.
func (*SQLite) Name() string { return dialect.SQLite }

// ForeignKeyPragma implements Platform.
func (p *SQLite) ForeignKeyPragma() (bool, bool) {
	if p.hints.foreignKeys == nil {
		return false, false
	}
	return *p.hints.foreignKeys, true
}

// AutoIncrement implements Platform. SQLite only accepts AUTOINCREMENT on an
// INTEGER PRIMARY KEY column.
func (*SQLite) AutoIncrement() (string, bool) { return "PRIMARY KEY AUTOINCREMENT", true }

// ColumnType implements Platform.
func (p *SQLite) ColumnType(c ColumnSpec) (string, error) {
	if c.AutoIncrement && c.Type.Category() == field.CategoryInteger {
		return sqlite.TypeInteger, nil
	}
	t, err := p.atlasType(c)
	if err != nil {
		return "", err
	}
	return sqlite.FormatType(t)
}

func (*SQLite) atlasType(c ColumnSpec) (schema.Type, error) {
	switch c.Type {
	case field.TypeVarchar, field.TypeChar:
		return &schema.StringType{T: "varchar"}, nil
	case field.TypeLongVarchar, field.TypeClob, field.TypeObject, field.TypeArray:
		return &schema.StringType{T: sqlite.TypeText}, nil
	case field.TypeBoolean:
		return &schema.BoolType{T: "boolean"}, nil
	case field.TypeTinyInt, field.TypeSmallInt, field.TypeInteger, field.TypeEnum:
		return &schema.IntegerType{T: sqlite.TypeInteger}, nil
	case field.TypeBigInt:
		return &schema.IntegerType{T: "bigint"}, nil
	case field.TypeDecimal:
		return &schema.DecimalType{T: "decimal", Precision: c.Size, Scale: c.Scale}, nil
	case field.TypeFloat, field.TypeDouble, field.TypeReal:
		return &schema.FloatType{T: sqlite.TypeReal}, nil
	case field.TypeDate:
		return &schema.TimeType{T: "date"}, nil
	case field.TypeTime:
		return &schema.TimeType{T: "time"}, nil
	case field.TypeTimestamp, field.TypeDateTime:
		return &schema.TimeType{T: "datetime"}, nil
	case field.TypeLob, field.TypeBlob, field.TypeBinary, field.TypeVarBinary, field.TypeLongVarBinary:
		return &schema.BinaryType{T: sqlite.TypeBlob}, nil
	default:
		return nil, &field.UnknownTypeError{Name: c.Type.String()}
	}
}

// ParseColumnType implements Platform.
func (*SQLite) ParseColumnType(raw string) (field.Type, error) {
	t, err := sqlite.ParseType(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return field.TypeInvalid, fmt.Errorf("sqlite: parse column type %q: %w", raw, err)
	}
	return semanticType(t, raw)
}

// NormalizeDSN implements Platform. The "sqlite:" prefix is stripped.
func (*SQLite) NormalizeDSN(dsn, _, _ string) (string, error) {
	path := strings.TrimPrefix(dsn, "sqlite:")
	if path == "" {
		return "", fmt.Errorf("sqlite: empty dsn")
	}
	return path, nil
}
