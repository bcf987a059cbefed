package platform

import (
	"strconv"
	"strings"

	"github.com/syssam/strata/schema/field"
)

// MSTimestampFormat keeps milliseconds, the precision of DATETIME.
const MSTimestampFormat = "%Y-%m-%d %H:%M:%S.%L"

// MSSQL is the platform of the mssql and sqlsrv adapters.
type MSSQL struct {
	base
	name  string
	hints hints
}

// Name implements Platform.
func (p *MSSQL) Name() string { return p.name }

// TemporalFormatter implements Platform.
func (p *MSSQL) TemporalFormatter(kind field.TemporalKind) string {
	if kind == field.KindTimestamp {
		return MSTimestampFormat
	}
	return p.base.TemporalFormatter(kind)
}

// Quote implements Platform.
func (*MSSQL) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// QuoteLiteral implements Platform.
func (p *MSSQL) QuoteLiteral(s string) string { return "N" + p.base.QuoteLiteral(s) }

// Placeholder implements Platform.
func (*MSSQL) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// AutoIncrement implements Platform.
func (*MSSQL) AutoIncrement() (string, bool) { return "IDENTITY(1,1)", false }

var mssqlTypes = nativeTypes{
	field.TypeVarchar:       {name: "NVARCHAR", size: DefaultVarcharSize},
	field.TypeChar:          {name: "NCHAR", size: 1},
	field.TypeLongVarchar:   {name: "NVARCHAR(MAX)"},
	field.TypeClob:          {name: "NVARCHAR(MAX)"},
	field.TypeBoolean:       {name: "BIT"},
	field.TypeTinyInt:       {name: "TINYINT"},
	field.TypeSmallInt:      {name: "SMALLINT"},
	field.TypeInteger:       {name: "INT"},
	field.TypeBigInt:        {name: "BIGINT"},
	field.TypeDecimal:       {name: "DECIMAL", size: 18, scaled: true},
	field.TypeFloat:         {name: "REAL"},
	field.TypeReal:          {name: "REAL"},
	field.TypeDouble:        {name: "FLOAT"},
	field.TypeDate:          {name: "DATE"},
	field.TypeTime:          {name: "TIME"},
	field.TypeTimestamp:     {name: "DATETIME"},
	field.TypeDateTime:      {name: "DATETIME"},
	field.TypeLob:           {name: "VARBINARY(MAX)"},
	field.TypeBlob:          {name: "VARBINARY(MAX)"},
	field.TypeLongVarBinary: {name: "VARBINARY(MAX)"},
	field.TypeBinary:        {name: "BINARY", size: 1},
	field.TypeVarBinary:     {name: "VARBINARY", size: DefaultVarcharSize},
	field.TypeObject:        {name: "NVARCHAR(MAX)"},
	field.TypeArray:         {name: "NVARCHAR(MAX)"},
	field.TypeEnum:          {name: "TINYINT"},
}

// ColumnType implements Platform.
func (*MSSQL) ColumnType(c ColumnSpec) (string, error) { return mssqlTypes.format(c) }

// ParseColumnType implements Platform.
func (*MSSQL) ParseColumnType(raw string) (field.Type, error) {
	return mssqlTypes.parse(raw, map[string]field.Type{
		"VARCHAR":   field.TypeVarchar,
		"CHAR":      field.TypeChar,
		"TEXT":      field.TypeLongVarchar,
		"NTEXT":     field.TypeLongVarchar,
		"DATETIME2": field.TypeTimestamp,
		"IMAGE":     field.TypeBlob,
		"NUMERIC":   field.TypeDecimal,
		"MONEY":     field.TypeDecimal,
	})
}

// NormalizeDSN implements Platform. The DSN is passed through unchanged.
func (*MSSQL) NormalizeDSN(dsn, _, _ string) (string, error) { return dsn, nil }

// nativeType is an entry of a table-driven type mapping.
type nativeType struct {
	name   string
	size   int // default size, 0 when the type takes no size
	scaled bool
}

type nativeTypes map[field.Type]nativeType

func (m nativeTypes) format(c ColumnSpec) (string, error) {
	nt, ok := m[c.Type]
	if !ok {
		return "", &field.UnknownTypeError{Name: c.Type.String()}
	}
	switch {
	case nt.size == 0:
		return nt.name, nil
	case nt.scaled:
		return nt.name + "(" + strconv.Itoa(sizeOr(c.Size, nt.size)) + "," + strconv.Itoa(c.Scale) + ")", nil
	default:
		return nt.name + "(" + strconv.Itoa(sizeOr(c.Size, nt.size)) + ")", nil
	}
}

// parse maps a native type back to its semantic type. The first entry of
// the forward table wins; extra lists the aliases that only parse.
func (m nativeTypes) parse(raw string, extra map[string]field.Type) (field.Type, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if strings.HasSuffix(name, "(MAX)") {
		for _, t := range field.Types() {
			if nt, ok := m[t]; ok && nt.name == name {
				return t, nil
			}
		}
	}
	if i := strings.IndexByte(name, '('); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	for _, t := range field.Types() {
		if nt, ok := m[t]; ok && nt.name == name {
			return t, nil
		}
	}
	if t, ok := extra[name]; ok {
		return t, nil
	}
	return field.TypeInvalid, &field.UnknownTypeError{Name: raw}
}
