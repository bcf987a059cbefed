package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	schemas, err := Load("testdata/bookstore")
	require.NoError(t, err)
	require.Len(t, schemas, 3)

	book := schemas[0]
	assert.Equal(t, "Book", book.Name)
	assert.Equal(t, "book", book.Table)
	assert.Equal(t, "acme.bookstore", book.Namespace)
	assert.Equal(t, filepath.Join("testdata", "bookstore", "book.yaml"), book.Pos)
	require.Len(t, book.Fields, 7)

	t.Run("defaults keep their text", func(t *testing.T) {
		byName := make(map[string]*Field)
		for _, f := range book.Fields {
			byName[f.Name] = f
		}
		assert.Nil(t, byName["title"].Default)
		assert.Equal(t, "2020-01-15", byName["publishDate"].Default.String())
		assert.Equal(t, "9.99", byName["price"].Default.String())
		assert.Equal(t, "yes", byName["isPublished"].Default.String())
		assert.Equal(t, "CURRENT_TIMESTAMP", byName["createdAt"].DefaultExpr)
		assert.Nil(t, byName["createdAt"].DefaultPtr())
		require.NotNil(t, byName["publishDate"].DefaultPtr())
		assert.Equal(t, "2020-01-15", *byName["publishDate"].DefaultPtr())
	})

	t.Run("relations", func(t *testing.T) {
		require.Len(t, book.Relations, 1)
		r := book.Relations[0]
		assert.Equal(t, "Author", r.Target)
		assert.Equal(t, "many-to-one", r.Kind)
		assert.Equal(t, "authorId", r.LocalField)
	})

	t.Run("json", func(t *testing.T) {
		order := schemas[2]
		assert.Equal(t, "Order", order.Name)
		assert.Equal(t, "acme.shop", order.Namespace)
		assert.Equal(t, []string{"pending", "shipped", "done"}, order.Fields[1].ValueSet)
		assert.Equal(t, "shipped", order.Fields[1].Default.String())
		assert.Equal(t, "3", order.Fields[2].Default.String())
		assert.Equal(t, "github.com/acme/money.Money", order.Fields[3].ObjectType)
		assert.Equal(t, `[]string{"new"}`, order.Fields[4].Default.String())
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load("testdata/nope")
		assert.Error(t, err)
	})
	t.Run("empty dir", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrNoSchema)
	})
	t.Run("invalid entity", func(t *testing.T) {
		_, err := Load("testdata/invalid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entity name is required")
		assert.Contains(t, err.Error(), `field "id": type is required`)
	})
	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "s.yaml")
		require.NoError(t, os.WriteFile(path, []byte("entities:\n  - name: A\n    colour: red\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("json by content", func(t *testing.T) {
		doc, err := Parse("schema", []byte(`{"entities":[{"name":"A","fields":[{"name":"on","type":"boolean","default":true}]}]}`))
		require.NoError(t, err)
		require.Len(t, doc.Entities, 1)
		assert.Equal(t, "true", doc.Entities[0].Fields[0].Default.String())
	})
	t.Run("null default", func(t *testing.T) {
		doc, err := Parse("s.yaml", []byte("entities:\n  - name: A\n    fields:\n      - name: x\n        type: varchar\n        default: null\n"))
		require.NoError(t, err)
		assert.Nil(t, doc.Entities[0].Fields[0].Default)
	})
	t.Run("empty", func(t *testing.T) {
		doc, err := Parse("s.yaml", nil)
		require.NoError(t, err)
		assert.Empty(t, doc.Entities)
	})
}
