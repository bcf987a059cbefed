package dialect

import (
	"slices"
	"strings"
)

// Adapter names.
const (
	MySQL  = "mysql"
	PgSQL  = "pgsql"
	SQLite = "sqlite"
	MSSQL  = "mssql"
	SQLSrv = "sqlsrv"
	Oracle = "oracle"
)

var adapters = []string{MySQL, PgSQL, SQLite, MSSQL, SQLSrv, Oracle}

var aliases = map[string]string{
	"postgres":   PgSQL,
	"postgresql": PgSQL,
	"pg":         PgSQL,
	"sqlite3":    SQLite,
	"sqlserver":  SQLSrv,
	"mariadb":    MySQL,
}

// Adapters returns the list of supported adapter names.
func Adapters() []string {
	return slices.Clone(adapters)
}

// Normalize returns the canonical adapter name for the given name or alias.
// The second return value is false if the name is not a supported adapter.
func Normalize(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		return a, true
	}
	return n, slices.Contains(adapters, n)
}

// Supported reports if the given name (or alias) is a supported adapter.
func Supported(name string) bool {
	_, ok := Normalize(name)
	return ok
}

// drivers are the database/sql driver names of the adapters.
var drivers = map[string]string{
	MySQL:  "mysql",
	PgSQL:  "postgres",
	SQLite: "sqlite",
	MSSQL:  "sqlserver",
	SQLSrv: "sqlserver",
	Oracle: "oracle",
}

// Driver returns the database/sql driver name registered for the adapter,
// or an empty string if the adapter is not supported.
func Driver(adapter string) string {
	name, _ := Normalize(adapter)
	return drivers[name]
}
