package platform

import (
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/strata/schema/field"
)

// semanticType maps an atlas column type, as returned by the dialect
// parsers of atlas, to its semantic type.
func semanticType(t schema.Type, raw string) (field.Type, error) {
	switch t := t.(type) {
	case *schema.BoolType:
		return field.TypeBoolean, nil
	case *schema.IntegerType:
		switch strings.ToLower(t.T) {
		case "tinyint":
			return field.TypeTinyInt, nil
		case "smallint", "int2":
			return field.TypeSmallInt, nil
		case "bigint", "int8", "unsigned big int", "uint64":
			return field.TypeBigInt, nil
		default:
			return field.TypeInteger, nil
		}
	case *schema.DecimalType:
		return field.TypeDecimal, nil
	case *schema.FloatType:
		switch strings.ToLower(t.T) {
		case "float":
			return field.TypeFloat, nil
		case "real", "float4":
			return field.TypeReal, nil
		default:
			return field.TypeDouble, nil
		}
	case *schema.StringType:
		switch strings.ToLower(t.T) {
		case "char", "character", "bpchar", "nchar", "native character":
			return field.TypeChar, nil
		case "text", "tinytext", "mediumtext":
			return field.TypeLongVarchar, nil
		case "longtext", "clob":
			return field.TypeClob, nil
		default:
			return field.TypeVarchar, nil
		}
	case *schema.TimeType:
		switch tt := strings.ToLower(t.T); {
		case tt == "date":
			return field.TypeDate, nil
		case tt == "datetime":
			return field.TypeDateTime, nil
		case strings.HasPrefix(tt, "timestamp"):
			return field.TypeTimestamp, nil
		case strings.HasPrefix(tt, "time"):
			return field.TypeTime, nil
		default:
			return field.TypeTimestamp, nil
		}
	case *schema.BinaryType:
		switch strings.ToLower(t.T) {
		case "binary":
			return field.TypeBinary, nil
		case "varbinary":
			return field.TypeVarBinary, nil
		case "longblob":
			return field.TypeLongVarBinary, nil
		default:
			return field.TypeBlob, nil
		}
	case *schema.JSONType:
		return field.TypeObject, nil
	case *schema.EnumType:
		return field.TypeEnum, nil
	default:
		return field.TypeInvalid, &field.UnknownTypeError{Name: raw}
	}
}

func intp(i int) *int { return &i }
