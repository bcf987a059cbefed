// Package field defines the closed set of semantic field types understood by
// the generator.
//
// Type names follow the schema vocabulary and are matched case-insensitively:
//
//	field.ParseType("varchar")   // field.TypeVarchar
//	field.ParseType("TIMESTAMP") // field.TypeTimestamp
//
// # Categories
//
// Every type belongs to exactly one category, which drives how a declared
// default value is materialized in generated code:
//
//	varchar, char, longvarchar            -> CategoryString
//	boolean                               -> CategoryBoolean
//	tinyint, smallint, integer, bigint    -> CategoryInteger
//	decimal, float, double, real          -> CategoryFloat
//	date, time, timestamp, datetime       -> CategoryTemporal
//	lob, clob, blob, (long)(var)binary    -> CategoryLOB
//	object                                -> CategoryObject
//	array                                 -> CategoryArray
//	enum                                  -> CategoryEnum
//
// Temporal types additionally expose a TemporalKind (date, time or
// timestamp; datetime is a timestamp) used to select the platform formatter.
package field
