package platform

import (
	"fmt"
	"net"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/schema"
	driver "github.com/go-sql-driver/mysql"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// MySQL zero-date sentinels. MySQL accepts them as NOT NULL placeholders for
// "no date"; they have no equivalent on other platforms.
const (
	ZeroDate     = "0000-00-00"
	ZeroDateTime = "0000-00-00 00:00:00"
)

// MySQL is the platform of the mysql adapter.
type MySQL struct {
	base
	hints hints
}

// Name implements Platform.
func (*MySQL) Name() string { return dialect.MySQL }

// IsZeroDateException implements Platform. Only the exact sentinels match.
func (*MySQL) IsZeroDateException(raw string) bool {
	switch raw {
	case ZeroDate, ZeroDateTime:
		return true
	default:
		return false
	}
}

// TableEngine implements Platform.
func (p *MySQL) TableEngine() (string, string) {
	return p.hints.engineKeyword, p.hints.tableType
}

// Quote implements Platform.
func (*MySQL) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// QuoteLiteral implements Platform.
func (*MySQL) QuoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// AutoIncrement implements Platform.
func (*MySQL) AutoIncrement() (string, bool) { return "AUTO_INCREMENT", false }

// ColumnType implements Platform.
func (p *MySQL) ColumnType(c ColumnSpec) (string, error) {
	t, err := p.atlasType(c)
	if err != nil {
		return "", err
	}
	return mysql.FormatType(t)
}

func (*MySQL) atlasType(c ColumnSpec) (schema.Type, error) {
	switch c.Type {
	case field.TypeVarchar:
		return &schema.StringType{T: mysql.TypeVarchar, Size: sizeOr(c.Size, DefaultVarcharSize)}, nil
	case field.TypeChar:
		return &schema.StringType{T: mysql.TypeChar, Size: sizeOr(c.Size, 1)}, nil
	case field.TypeLongVarchar, field.TypeObject, field.TypeArray:
		return &schema.StringType{T: mysql.TypeText}, nil
	case field.TypeClob:
		return &schema.StringType{T: mysql.TypeLongText}, nil
	case field.TypeBoolean:
		return &schema.BoolType{T: mysql.TypeBool}, nil
	case field.TypeTinyInt, field.TypeEnum:
		return &schema.IntegerType{T: mysql.TypeTinyInt}, nil
	case field.TypeSmallInt:
		return &schema.IntegerType{T: mysql.TypeSmallInt}, nil
	case field.TypeInteger:
		return &schema.IntegerType{T: mysql.TypeInt}, nil
	case field.TypeBigInt:
		return &schema.IntegerType{T: mysql.TypeBigInt}, nil
	case field.TypeDecimal:
		return &schema.DecimalType{T: mysql.TypeDecimal, Precision: c.Size, Scale: c.Scale}, nil
	case field.TypeFloat:
		return &schema.FloatType{T: mysql.TypeFloat}, nil
	case field.TypeDouble, field.TypeReal:
		return &schema.FloatType{T: mysql.TypeDouble}, nil
	case field.TypeDate:
		return &schema.TimeType{T: mysql.TypeDate}, nil
	case field.TypeTime:
		return &schema.TimeType{T: mysql.TypeTime}, nil
	case field.TypeTimestamp, field.TypeDateTime:
		return &schema.TimeType{T: mysql.TypeDateTime}, nil
	case field.TypeLob, field.TypeBlob:
		return &schema.BinaryType{T: mysql.TypeBlob}, nil
	case field.TypeLongVarBinary:
		return &schema.BinaryType{T: mysql.TypeLongBlob}, nil
	case field.TypeBinary:
		return &schema.BinaryType{T: mysql.TypeBinary, Size: intp(sizeOr(c.Size, 1))}, nil
	case field.TypeVarBinary:
		return &schema.BinaryType{T: mysql.TypeVarBinary, Size: intp(sizeOr(c.Size, DefaultVarcharSize))}, nil
	default:
		return nil, &field.UnknownTypeError{Name: c.Type.String()}
	}
}

// ParseColumnType implements Platform.
func (*MySQL) ParseColumnType(raw string) (field.Type, error) {
	t, err := mysql.ParseType(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return field.TypeInvalid, fmt.Errorf("mysql: parse column type %q: %w", raw, err)
	}
	return semanticType(t, raw)
}

// NormalizeDSN implements Platform. Both the go-sql-driver form
// ("user:pass@tcp(host:3306)/db") and the key/value form
// ("mysql:host=localhost;port=3306;dbname=db") are accepted.
func (*MySQL) NormalizeDSN(dsn, user, password string) (string, error) {
	var cfg *driver.Config
	if pairs, ok := pdoPairs(dsn, "mysql"); ok {
		cfg = driver.NewConfig()
		switch {
		case pairs["unix_socket"] != "":
			cfg.Net, cfg.Addr = "unix", pairs["unix_socket"]
		default:
			host, port := pairs["host"], pairs["port"]
			if host == "" {
				host = "127.0.0.1"
			}
			if port == "" {
				port = "3306"
			}
			cfg.Net, cfg.Addr = "tcp", net.JoinHostPort(host, port)
		}
		cfg.DBName = pairs["dbname"]
	} else {
		var err error
		if cfg, err = driver.ParseDSN(dsn); err != nil {
			return "", fmt.Errorf("mysql: invalid dsn: %w", err)
		}
	}
	if user != "" {
		cfg.User = user
	}
	if password != "" {
		cfg.Passwd = password
	}
	return cfg.FormatDSN(), nil
}

func sizeOr(size, def int) int {
	if size > 0 {
		return size
	}
	return def
}
