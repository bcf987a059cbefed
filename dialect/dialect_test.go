package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"mysql", MySQL, true},
		{"MySQL", MySQL, true},
		{"postgres", PgSQL, true},
		{"pgsql", PgSQL, true},
		{"sqlite3", SQLite, true},
		{"sqlserver", SQLSrv, true},
		{"mssql", MSSQL, true},
		{"oracle", Oracle, true},
		{"mongodb", "mongodb", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAdapters(t *testing.T) {
	all := Adapters()
	assert.Len(t, all, 6)
	all[0] = "changed"
	assert.Equal(t, MySQL, Adapters()[0])
	assert.True(t, Supported("oracle"))
	assert.False(t, Supported(""))
}

func TestDriver(t *testing.T) {
	assert.Equal(t, "mysql", Driver("mariadb"))
	assert.Equal(t, "postgres", Driver(PgSQL))
	assert.Equal(t, "sqlite", Driver("sqlite3"))
	assert.Equal(t, "sqlserver", Driver(MSSQL))
	assert.Empty(t, Driver("mongodb"))
}
