package platform

import (
	"strconv"
	"strings"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// Oracle is the platform of the oracle adapter.
type Oracle struct {
	base
	hints hints
}

// Name implements Platform.
func (*Oracle) Name() string { return dialect.Oracle }

// SequenceName implements Platform.
func (p *Oracle) SequenceName(table string) string {
	return strings.ReplaceAll(p.hints.sequencePattern, "${table}", table)
}

// Placeholder implements Platform.
func (*Oracle) Placeholder(n int) string { return ":" + strconv.Itoa(n) }

// AutoIncrement implements Platform. Oracle columns are fed from the
// sequence returned by SequenceName.
func (*Oracle) AutoIncrement() (string, bool) { return "", false }

var oracleTypes = nativeTypes{
	field.TypeVarchar:       {name: "NVARCHAR2", size: DefaultVarcharSize},
	field.TypeChar:          {name: "NCHAR", size: 1},
	field.TypeLongVarchar:   {name: "NCLOB"},
	field.TypeClob:          {name: "NCLOB"},
	field.TypeBoolean:       {name: "NUMBER(1)"},
	field.TypeTinyInt:       {name: "NUMBER(3)"},
	field.TypeSmallInt:      {name: "NUMBER(5)"},
	field.TypeInteger:       {name: "NUMBER(10)"},
	field.TypeBigInt:        {name: "NUMBER(19)"},
	field.TypeDecimal:       {name: "NUMBER", size: 38, scaled: true},
	field.TypeFloat:         {name: "BINARY_FLOAT"},
	field.TypeReal:          {name: "BINARY_FLOAT"},
	field.TypeDouble:        {name: "BINARY_DOUBLE"},
	field.TypeDate:          {name: "DATE"},
	field.TypeTime:          {name: "DATE"},
	field.TypeTimestamp:     {name: "TIMESTAMP"},
	field.TypeDateTime:      {name: "TIMESTAMP"},
	field.TypeLob:           {name: "BLOB"},
	field.TypeBlob:          {name: "BLOB"},
	field.TypeLongVarBinary: {name: "BLOB"},
	field.TypeBinary:        {name: "RAW", size: 1},
	field.TypeVarBinary:     {name: "RAW", size: DefaultVarcharSize},
	field.TypeObject:        {name: "NCLOB"},
	field.TypeArray:         {name: "NCLOB"},
	field.TypeEnum:          {name: "NUMBER(3)"},
}

// ColumnType implements Platform.
func (*Oracle) ColumnType(c ColumnSpec) (string, error) { return oracleTypes.format(c) }

// ParseColumnType implements Platform.
func (*Oracle) ParseColumnType(raw string) (field.Type, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for _, t := range field.Types() {
		if nt, ok := oracleTypes[t]; ok && nt.size == 0 && nt.name == name {
			return t, nil
		}
	}
	return oracleTypes.parse(raw, map[string]field.Type{
		"VARCHAR2": field.TypeVarchar,
		"VARCHAR":  field.TypeVarchar,
		"CHAR":     field.TypeChar,
		"CLOB":     field.TypeClob,
		"FLOAT":    field.TypeDouble,
		"LONG":     field.TypeLongVarchar,
	})
}

// NormalizeDSN implements Platform. The "oci:" prefix is stripped.
func (*Oracle) NormalizeDSN(dsn, _, _ string) (string, error) {
	return strings.TrimPrefix(dsn, "oci:"), nil
}
