// Package dialect names the database adapters supported by the generator.
//
// # Supported Adapters
//
// Each adapter is identified by the name used in connection configuration:
//
//	dialect.MySQL  = "mysql"
//	dialect.PgSQL  = "pgsql"
//	dialect.SQLite = "sqlite"
//	dialect.MSSQL  = "mssql"
//	dialect.SQLSrv = "sqlsrv"
//	dialect.Oracle = "oracle"
//
// Common aliases ("postgres", "postgresql", "sqlite3", "sqlserver") are
// accepted by Normalize.
//
// # Sub-packages
//
//   - dialect/platform: per-adapter formatting rules, native column types
//     and DDL hints consumed by the builders.
package dialect
