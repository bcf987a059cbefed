package om

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/compiler/gen"
)

func TestEntityMapBuilder(t *testing.T) {
	w := generate(t, newGraph(t, bookstore()))
	m := content(t, w, "acme/bookstore/map/book.go")

	assert.Contains(t, m, "package maps")
	assert.Regexp(t, `BookColumnPublishDate\s+= "publish_date"`, m)
	assert.Regexp(t, `BookRelationAuthor\s+= "author"`, m)
	assert.Contains(t, m, "var BookEntityMap = &EntityMap{")
	assert.Regexp(t, `Class:\s+"github.com/acme/gen/acme/bookstore.Book"`, m)
	assert.Regexp(t, `Table:\s+"book"`, m)
	assert.NotContains(t, m, "Abstract")

	t.Run("columns", func(t *testing.T) {
		assert.Regexp(t, `Name:\s+"publish_date"`, m)
		assert.Regexp(t, `Field:\s+"publishDate"`, m)
		assert.Regexp(t, `GoName:\s+"PublishDate"`, m)
		assert.Regexp(t, `Default:\s+"CURRENT_TIMESTAMP"`, m)
		assert.Regexp(t, `Default:\s+"'2020-01-15'"`, m)
		assert.Regexp(t, `GoDefault:\s+"9.99"`, m)
		assert.Regexp(t, `AutoIncrement:\s+true`, m)
		assert.Regexp(t, `Scale:\s+2`, m)
	})

	t.Run("relations", func(t *testing.T) {
		assert.Regexp(t, `Kind:\s+"M2O"`, m)
		assert.Regexp(t, `LocalColumn:\s+"author_id"`, m)
		assert.Regexp(t, `OnDelete:\s+"setnull"`, m)
		author := content(t, w, "acme/bookstore/map/author.go")
		assert.Regexp(t, `Kind:\s+"O2M"`, author)
		assert.Regexp(t, `Target:\s+"Book"`, author)
	})

	t.Run("enums", func(t *testing.T) {
		order := content(t, w, "acme/shop/map/order.go")
		assert.Contains(t, order, `ValueSet:`)
		assert.Contains(t, order, `[]string{"pending", "shipped", "done"}`)
	})
}

func TestSupportBuilder(t *testing.T) {
	w := generate(t, newGraph(t, bookstore()))

	support := content(t, w, "acme/bookstore/strata.go")
	assert.Contains(t, support, "package bookstore")
	assert.Contains(t, support, "type Querier interface {")
	assert.Contains(t, support, "QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row")
	assert.Contains(t, support, "func splitArray(s string) []string {")
	assert.Contains(t, support, "func joinArray(v []string) string {")
	a, ok := w.Get("acme/bookstore/strata.go")
	require.True(t, ok)
	assert.Equal(t, gen.RoleObject, a.Role)
	assert.Empty(t, a.Entity)

	maps := content(t, w, "acme/bookstore/map/strata.go")
	assert.Contains(t, maps, "package maps")
	assert.Contains(t, maps, "type EntityMap struct {")
	assert.Contains(t, maps, "func (m *EntityMap) Column(name string) (ColumnMap, bool) {")
	assert.Contains(t, maps, "func Lookup(class string) (*EntityMap, bool) {")
	assert.Regexp(t, `"Author":\s+AuthorEntityMap`, maps)
	assert.Regexp(t, `"Book":\s+BookEntityMap`, maps)
	assert.NotContains(t, maps, "OrderEntityMap")
}

func TestConnectionsBuilder(t *testing.T) {
	g := newGraph(t, bookstore(), gen.WithConnections("bookstore",
		gen.Connection{
			Name:     "bookstore",
			Adapter:  "mysql",
			DSN:      "mysql:host=localhost;dbname=shop",
			User:     "root",
			Password: "secret",
			Queries:  []string{"SET NAMES utf8mb4"},
		},
		gen.Connection{Name: "reports", Adapter: "pgsql", DSN: "postgres://localhost/reports"},
	))
	arts, err := ConnectionsBuilder{}.BuildGraph(g)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, ConnectionsFile, arts[0].Path)
	conf := string(arts[0].Content)

	assert.Contains(t, conf, "package conf")
	assert.Contains(t, conf, `const DefaultConnection = "bookstore"`)
	assert.Contains(t, conf, "var Connections = map[string]Connection{")
	assert.Contains(t, conf, `"root:secret@tcp(localhost:3306)/shop`)
	assert.Regexp(t, `Driver:\s+"mysql"`, conf)
	assert.Regexp(t, `Driver:\s+"postgres"`, conf)
	assert.Contains(t, conf, `[]string{"SET NAMES utf8mb4"}`)
	assert.Contains(t, conf, "func Open(ctx context.Context, name string) (*sql.DB, error) {")

	arts, err = ConnectionsBuilder{Package: "settings"}.BuildGraph(g)
	require.NoError(t, err)
	assert.Contains(t, string(arts[0].Content), "package settings")

	s := ConfigBuilders("conf")
	require.Len(t, s.Graph(), 1)
	assert.Equal(t, "ConnectionsBuilder", s.Graph()[0].Name())
}

func TestConnectionsBuilder_InvalidDSN(t *testing.T) {
	g := newGraph(t, bookstore(), gen.WithConnections("default",
		gen.Connection{Name: "default", Adapter: "mysql", DSN: "not a dsn"},
	))
	_, err := ConnectionsBuilder{}.BuildGraph(g)
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}
