package platform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"github.com/lib/pq"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// PgTimestampFormat keeps microseconds, the precision of the timestamp type.
const PgTimestampFormat = "%Y-%m-%d %H:%M:%S.%f"

// PgSQL is the platform of the pgsql adapter.
type PgSQL struct {
	base
	hints hints
}

// Name implements Platform.
func (*PgSQL) Name() string { return dialect.PgSQL }

// TemporalFormatter implements Platform.
func (p *PgSQL) TemporalFormatter(kind field.TemporalKind) string {
	if kind == field.KindTimestamp {
		return PgTimestampFormat
	}
	return p.base.TemporalFormatter(kind)
}

// Quote implements Platform.
func (*PgSQL) Quote(ident string) string { return pq.QuoteIdentifier(ident) }

// QuoteLiteral implements Platform.
func (*PgSQL) QuoteLiteral(s string) string { return pq.QuoteLiteral(s) }

// BoolLiteral implements Platform.
func (*PgSQL) BoolLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// Placeholder implements Platform.
func (*PgSQL) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// AutoIncrement implements Platform. Auto-increment columns use the serial
// types returned by ColumnType.
func (*PgSQL) AutoIncrement() (string, bool) { return "", false }

// ColumnType implements Platform.
func (p *PgSQL) ColumnType(c ColumnSpec) (string, error) {
	if c.AutoIncrement {
		switch c.Type {
		case field.TypeBigInt:
			return postgres.FormatType(&postgres.SerialType{T: postgres.TypeBigSerial})
		case field.TypeTinyInt, field.TypeSmallInt, field.TypeInteger:
			return postgres.FormatType(&postgres.SerialType{T: postgres.TypeSerial})
		}
	}
	t, err := p.atlasType(c)
	if err != nil {
		return "", err
	}
	return postgres.FormatType(t)
}

func (*PgSQL) atlasType(c ColumnSpec) (schema.Type, error) {
	switch c.Type {
	case field.TypeVarchar:
		return &schema.StringType{T: postgres.TypeVarChar, Size: sizeOr(c.Size, DefaultVarcharSize)}, nil
	case field.TypeChar:
		return &schema.StringType{T: postgres.TypeChar, Size: c.Size}, nil
	case field.TypeLongVarchar, field.TypeClob, field.TypeObject, field.TypeArray:
		return &schema.StringType{T: postgres.TypeText}, nil
	case field.TypeBoolean:
		return &schema.BoolType{T: postgres.TypeBoolean}, nil
	case field.TypeTinyInt, field.TypeSmallInt, field.TypeEnum:
		return &schema.IntegerType{T: postgres.TypeSmallInt}, nil
	case field.TypeInteger:
		return &schema.IntegerType{T: postgres.TypeInteger}, nil
	case field.TypeBigInt:
		return &schema.IntegerType{T: postgres.TypeBigInt}, nil
	case field.TypeDecimal:
		return &schema.DecimalType{T: postgres.TypeNumeric, Precision: c.Size, Scale: c.Scale}, nil
	case field.TypeFloat, field.TypeReal:
		return &schema.FloatType{T: postgres.TypeReal}, nil
	case field.TypeDouble:
		return &schema.FloatType{T: postgres.TypeDouble}, nil
	case field.TypeDate:
		return &schema.TimeType{T: postgres.TypeDate}, nil
	case field.TypeTime:
		return &schema.TimeType{T: postgres.TypeTime}, nil
	case field.TypeTimestamp, field.TypeDateTime:
		return &schema.TimeType{T: postgres.TypeTimestamp}, nil
	case field.TypeLob, field.TypeBlob, field.TypeBinary, field.TypeVarBinary, field.TypeLongVarBinary:
		return &schema.BinaryType{T: postgres.TypeBytea}, nil
	default:
		return nil, &field.UnknownTypeError{Name: c.Type.String()}
	}
}

// ParseColumnType implements Platform.
func (*PgSQL) ParseColumnType(raw string) (field.Type, error) {
	t, err := postgres.ParseType(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return field.TypeInvalid, fmt.Errorf("pgsql: parse column type %q: %w", raw, err)
	}
	if s, ok := t.(*postgres.SerialType); ok {
		if s.T == postgres.TypeBigSerial || s.T == postgres.TypeSerial8 {
			return field.TypeBigInt, nil
		}
		return field.TypeInteger, nil
	}
	if _, ok := t.(*postgres.ArrayType); ok {
		return field.TypeArray, nil
	}
	return semanticType(t, raw)
}

// NormalizeDSN implements Platform. URLs ("postgres://...") and key/value
// strings prefixed with "pgsql:" are converted to the keyword/value form
// understood by lib/pq.
func (*PgSQL) NormalizeDSN(dsn, user, password string) (string, error) {
	pairs := make(map[string]string)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		kv, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("pgsql: invalid dsn: %w", err)
		}
		return withCredentials(kv, user, password), nil
	default:
		if p, ok := pdoPairs(dsn, "pgsql"); ok {
			pairs = p
		} else {
			return withCredentials(dsn, user, password), nil
		}
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]string, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, k+"="+quoteConnValue(pairs[k]))
	}
	return withCredentials(strings.Join(kvs, " "), user, password), nil
}

func withCredentials(kv, user, password string) string {
	var b strings.Builder
	b.WriteString(kv)
	for _, p := range [][2]string{{"user", user}, {"password", password}} {
		if p[1] == "" || strings.Contains(kv, p[0]+"=") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p[0] + "=" + quoteConnValue(p[1]))
	}
	return b.String()
}

func quoteConnValue(v string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}
