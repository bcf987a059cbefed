package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

func raw(s string) *load.RawValue {
	v := load.RawValue(s)
	return &v
}

// bookstore returns the schemas of the test graph.
func bookstore() []*load.Schema {
	return []*load.Schema{
		{
			Name:        "Book",
			Table:       "book",
			Namespace:   "acme.bookstore",
			Description: "A published book.",
			Fields: []*load.Field{
				{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
				{Name: "title", Type: "varchar", Size: 255},
				{Name: "publishDate", Type: "date", Nullable: true, Default: raw("2020-01-15")},
				{Name: "price", Type: "decimal", Size: 10, Scale: 2, Default: raw("9.99")},
				{Name: "isPublished", Type: "boolean", Default: raw("yes")},
				{Name: "authorId", Type: "integer", Nullable: true},
				{Name: "createdAt", Type: "timestamp", DefaultExpr: "CURRENT_TIMESTAMP"},
			},
			Relations: []*load.Relation{
				{Name: "author", Target: "Author", Kind: "many-to-one", LocalField: "authorId", OnDelete: "setnull"},
			},
		},
		{
			Name:      "Author",
			Table:     "author",
			Namespace: "acme.bookstore",
			Fields: []*load.Field{
				{Name: "id", Type: "integer", PrimaryKey: true, AutoIncrement: true},
				{Name: "name", Type: "varchar", Size: 128},
			},
		},
		{
			Name:      "Order",
			Table:     "orders",
			Namespace: "acme.shop",
			Fields: []*load.Field{
				{Name: "id", Type: "bigint", PrimaryKey: true, AutoIncrement: true},
				{Name: "status", Type: "enum", ValueSet: []string{"pending", "shipped", "done"}, Default: raw("shipped")},
				{Name: "quantity", Type: "integer", Default: raw("3")},
				{Name: "total", Type: "object", ObjectType: "github.com/acme/money.Money", Default: raw("5")},
				{Name: "tags", Type: "array", Default: raw(`[]string{"new"}`)},
				{Name: "cover", Type: "blob", Nullable: true},
				{Name: "placedAt", Type: "timestamp", Default: raw("2020-01-15 10:00:00")},
			},
		},
	}
}

func newTestGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	c := MustNewConfig(append([]Option{WithPackage("github.com/acme/gen")}, opts...)...)
	g, err := NewGraph(c, bookstore()...)
	require.NoError(t, err)
	return g
}

func node(t *testing.T, g *Graph, name string) *Type {
	t.Helper()
	n, ok := g.Node(name)
	require.True(t, ok, "missing node %s", name)
	return n
}

func fieldOf(t *testing.T, typ *Type, name string) *Field {
	t.Helper()
	f, ok := typ.FieldByName(name)
	require.True(t, ok, "missing field %s.%s", typ.Name, name)
	return f
}

func TestNewGraph(t *testing.T) {
	g := newTestGraph(t)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "Book", g.Nodes[0].Name)
	assert.Equal(t, "Author", g.Nodes[1].Name)
	assert.Equal(t, "Order", g.Nodes[2].Name)
	assert.Equal(t, dialect.MySQL, g.Platform.Name())
	assert.NotNil(t, g.Registry)
	_, ok := g.Node("Publisher")
	assert.False(t, ok)
}

func TestNewGraph_NilConfig(t *testing.T) {
	g, err := NewGraph(nil, bookstore()...)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, g.Platform.Name())
	assert.Equal(t, "default", g.DefaultConnection)
}

func TestNewGraph_Adapter(t *testing.T) {
	t.Run("explicit adapter", func(t *testing.T) {
		g := newTestGraph(t, WithAdapter("pgsql"))
		assert.Equal(t, dialect.PgSQL, g.Platform.Name())
	})

	t.Run("default connection adapter", func(t *testing.T) {
		c := &Config{
			DefaultConnection: "bookstore",
			Connections:       []Connection{{Name: "bookstore", Adapter: dialect.SQLite, DSN: "sqlite::memory:"}},
		}
		g, err := NewGraph(c, bookstore()...)
		require.NoError(t, err)
		assert.Equal(t, dialect.SQLite, g.Platform.Name())
		conn, ok := g.Connection()
		require.True(t, ok)
		assert.Equal(t, "bookstore", conn.Name)
	})

	t.Run("unknown adapter", func(t *testing.T) {
		_, err := NewGraph(&Config{Adapter: "db2"}, bookstore()...)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("unknown type override", func(t *testing.T) {
		_, err := NewGraph(&Config{Types: map[string]string{"varchar": "MoneyType"}}, bookstore()...)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestNewGraph_Errors(t *testing.T) {
	tests := []struct {
		name    string
		schemas []*load.Schema
		check   func(error) bool
		msg     string
	}{
		{
			name: "redeclared type",
			schemas: []*load.Schema{
				{Name: "Book", Fields: []*load.Field{{Name: "id", Type: "integer"}}},
				{Name: "Book", Fields: []*load.Field{{Name: "id", Type: "integer"}}},
			},
			check: IsSchemaError,
			msg:   "type redeclared",
		},
		{
			name:    "unknown field type",
			schemas: []*load.Schema{{Name: "Book", Fields: []*load.Field{{Name: "id", Type: "uuid"}}}},
			check:   IsSchemaError,
			msg:     "uuid",
		},
		{
			name: "redeclared field",
			schemas: []*load.Schema{{Name: "Book", Fields: []*load.Field{
				{Name: "id", Type: "integer"},
				{Name: "id", Type: "bigint"},
			}}},
			check: IsSchemaError,
			msg:   `field "id" redeclared`,
		},
		{
			name: "redeclared column",
			schemas: []*load.Schema{{Name: "Book", Fields: []*load.Field{
				{Name: "title", Type: "varchar"},
				{Name: "name", Column: "title", Type: "varchar"},
			}}},
			check: IsSchemaError,
			msg:   `column "title" redeclared`,
		},
		{
			name:    "generated method conflict",
			schemas: []*load.Schema{{Name: "Draft", Fields: []*load.Field{{Name: "new", Type: "boolean"}}}},
			check:   IsSchemaError,
			msg:     "conflicts with a generated method",
		},
		{
			name:    "enum without value-set",
			schemas: []*load.Schema{{Name: "Order", Fields: []*load.Field{{Name: "status", Type: "enum"}}}},
			check:   IsValidationError,
			msg:     "requires a value-set",
		},
		{
			name: "duplicate enum value",
			schemas: []*load.Schema{{Name: "Order", Fields: []*load.Field{
				{Name: "status", Type: "enum", ValueSet: []string{"open", "closed", "open"}},
			}}},
			check: IsValidationError,
			msg:   "enum value declared twice",
		},
		{
			name:    "non numeric auto-increment",
			schemas: []*load.Schema{{Name: "Tag", Fields: []*load.Field{{Name: "id", Type: "varchar", AutoIncrement: true}}}},
			check:   IsValidationError,
			msg:     "must be numeric",
		},
		{
			name:    "negative size",
			schemas: []*load.Schema{{Name: "Tag", Fields: []*load.Field{{Name: "label", Type: "varchar", Size: -1}}}},
			check:   IsValidationError,
			msg:     "size must not be negative",
		},
		{
			name:    "scale exceeding size",
			schemas: []*load.Schema{{Name: "Book", Fields: []*load.Field{{Name: "price", Type: "decimal", Size: 4, Scale: 6}}}},
			check:   IsValidationError,
			msg:     "scale exceeds the size 4",
		},
		{
			name: "default and default expression",
			schemas: []*load.Schema{{Name: "Book", Fields: []*load.Field{
				{Name: "createdAt", Type: "timestamp", Default: raw("2020-01-01"), DefaultExpr: "CURRENT_TIMESTAMP"},
			}}},
			check: IsValidationError,
			msg:   "mutually exclusive",
		},
		{
			name:    "reserved schema name",
			schemas: []*load.Schema{{Name: "string"}},
			check:   IsSchemaError,
			msg:     "reserved",
		},
		{
			name: "missing relation target",
			schemas: []*load.Schema{{
				Name:      "Book",
				Fields:    []*load.Field{{Name: "id", Type: "integer", PrimaryKey: true}},
				Relations: []*load.Relation{{Name: "publisher", Target: "Publisher"}},
			}},
			check: IsEdgeError,
			msg:   "target type does not exist",
		},
		{
			name: "unknown relation kind",
			schemas: []*load.Schema{{
				Name:      "Book",
				Fields:    []*load.Field{{Name: "id", Type: "integer", PrimaryKey: true}},
				Relations: []*load.Relation{{Name: "self", Target: "Book", Kind: "sideways"}},
			}},
			check: IsEdgeError,
			msg:   `unknown relation kind "sideways"`,
		},
		{
			name: "missing local field",
			schemas: []*load.Schema{{
				Name:      "Book",
				Fields:    []*load.Field{{Name: "id", Type: "integer", PrimaryKey: true}},
				Relations: []*load.Relation{{Name: "parent", Target: "Book"}},
			}},
			check: IsEdgeError,
			msg:   `field "parentId" does not exist`,
		},
		{
			name: "missing inheritance field",
			schemas: []*load.Schema{{
				Name:        "Book",
				Fields:      []*load.Field{{Name: "id", Type: "integer"}},
				Inheritance: &load.Inheritance{Field: "kind", Children: []*load.Child{{Key: "1", Class: "Novel"}}},
			}},
			check: IsSchemaError,
			msg:   "inheritance field does not exist",
		},
		{
			name: "invalid inheritance class",
			schemas: []*load.Schema{{
				Name:        "Book",
				Fields:      []*load.Field{{Name: "kind", Type: "varchar"}},
				Inheritance: &load.Inheritance{Field: "kind", Children: []*load.Child{{Key: "1", Class: "Comic Book"}}},
			}},
			check: IsSchemaError,
			msg:   "not a valid identifier",
		},
		{
			name: "inheritance class clashes with a type",
			schemas: []*load.Schema{
				{Name: "Author", Fields: []*load.Field{{Name: "id", Type: "integer"}}},
				{
					Name:        "Book",
					Fields:      []*load.Field{{Name: "kind", Type: "varchar"}},
					Inheritance: &load.Inheritance{Field: "kind", Children: []*load.Child{{Key: "1", Class: "Author"}}},
				},
			},
			check: IsSchemaError,
			msg:   `inheritance class "Author" redeclared`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(&Config{}, tt.schemas...)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestType(t *testing.T) {
	g := newTestGraph(t)
	book := node(t, g, "Book")

	assert.Equal(t, "book", book.Table)
	assert.Equal(t, "A published book.", book.Description)
	assert.Equal(t, "acme/bookstore", book.Dir())
	assert.Equal(t, "bookstore", book.Package())
	assert.Equal(t, "github.com/acme/gen/acme/bookstore", book.PkgPath())
	assert.Equal(t, "acme/bookstore/map", book.MapDir())
	assert.Equal(t, "maps", book.MapPackage())
	assert.Equal(t, "github.com/acme/gen/acme/bookstore/map", book.MapPkgPath())
	assert.Equal(t, "b", book.Receiver())
	assert.Equal(t, "book", book.FileName(""))
	assert.Equal(t, "book_query", book.FileName("query"))

	assert.Equal(t, "BaseBookQuery", book.QueryName())
	assert.Equal(t, "BookQuery", book.QueryStubName())
	assert.Equal(t, "BookEntityMap", book.MapName())
	assert.Equal(t, "BaseBookRepository", book.RepositoryName())
	assert.Equal(t, "BookRepository", book.RepositoryStubName())
	assert.Equal(t, "BookProxy", book.ProxyName())
	assert.Equal(t, "BookRecord", book.ActiveRecordName())

	require.Len(t, book.PrimaryKey, 1)
	assert.Equal(t, "id", book.PrimaryKey[0].Name)
	ai, ok := book.AutoIncrementField()
	require.True(t, ok)
	assert.Equal(t, "id", ai.Name)
	assert.True(t, book.HasDefault())
	assert.True(t, book.HasTimestamps())
	assert.False(t, book.HasInheritance())
	assert.Empty(t, book.EnumFields())

	order := node(t, g, "Order")
	assert.Equal(t, "acme/shop", order.Dir())
	assert.Equal(t, "shop", order.Package())
	assert.False(t, order.HasTimestamps())
	require.Len(t, order.EnumFields(), 1)
	assert.Equal(t, "status", order.EnumFields()[0].Name)
}

func TestType_WithoutAutoPackage(t *testing.T) {
	g := newTestGraph(t, WithNamespaceAutoPackage(false))
	book := node(t, g, "Book")
	assert.Empty(t, book.Dir())
	assert.Equal(t, "gen", book.Package())
	assert.Equal(t, "github.com/acme/gen", book.PkgPath())
	assert.Equal(t, "map", book.MapDir())
}

func TestType_ClassPrefix(t *testing.T) {
	om := DefaultConfig().ObjectModel
	om.ClassPrefix = "Acme"
	g := newTestGraph(t, WithObjectModel(om))
	book := node(t, g, "Book")
	assert.Equal(t, "AcmeBook", book.Name)
	assert.Equal(t, "book", book.Table)
	inv, ok := relationOf(node(t, g, "Author"), "books")
	require.True(t, ok)
	assert.Equal(t, book, inv.Target)
}

func TestField(t *testing.T) {
	g := newTestGraph(t)
	book := node(t, g, "Book")

	date := fieldOf(t, book, "publishDate")
	assert.Equal(t, field.TypeDate, date.Type())
	assert.Equal(t, "publish_date", date.Column)
	assert.Equal(t, "book.publish_date", date.FullyQualifiedName())
	assert.Equal(t, "PublishDate", date.GoName())
	assert.Equal(t, "publishDate", date.StructField())
	assert.Equal(t, "PublishDate", date.Getter())
	assert.Equal(t, "SetPublishDate", date.Setter())
	assert.Equal(t, "ColumnPublishDate", date.Constant())
	assert.Equal(t, book, date.Owner())
	assert.True(t, date.HasDefault())
	assert.True(t, date.Pointer())
	assert.Equal(t, DateTimeHandler, date.Handler.Name())

	published := fieldOf(t, book, "isPublished")
	assert.Equal(t, "IsPublished", published.Getter())
	assert.Equal(t, "SetIsPublished", published.Setter())

	created := fieldOf(t, book, "createdAt")
	assert.False(t, created.HasDefault())
	assert.Equal(t, "CURRENT_TIMESTAMP", created.DefaultExpr)

	author := fieldOf(t, book, "authorId")
	assert.Equal(t, "AuthorID", author.GoName())
	assert.Equal(t, "authorID", author.StructField())

	spec := fieldOf(t, book, "price").ColumnSpec()
	assert.Equal(t, field.TypeDecimal, spec.Type)
	assert.Equal(t, 10, spec.Size)
	assert.Equal(t, 2, spec.Scale)
}

func TestField_Key(t *testing.T) {
	for keyType, expected := range map[string]string{
		"fieldName":  "publishDate",
		"columnName": "publish_date",
		"goName":     "PublishDate",
	} {
		t.Run(keyType, func(t *testing.T) {
			om := DefaultConfig().ObjectModel
			om.DefaultKeyType = keyType
			g := newTestGraph(t, WithObjectModel(om))
			assert.Equal(t, expected, fieldOf(t, node(t, g, "Book"), "publishDate").Key())
		})
	}
}

func TestField_EnumConstants(t *testing.T) {
	g, err := NewGraph(&Config{}, &load.Schema{
		Name: "Ticket",
		Fields: []*load.Field{
			{Name: "state", Type: "enum", ValueSet: []string{"open", "on hold", "", "closed-2"}},
		},
	})
	require.NoError(t, err)
	consts := fieldOf(t, node(t, g, "Ticket"), "state").EnumConstants()
	require.Len(t, consts, 4)
	assert.Equal(t, EnumConst{Name: "StateOpen", Value: "open", Ordinal: 0}, consts[0])
	assert.Equal(t, EnumConst{Name: "StateOnHold", Value: "on hold", Ordinal: 1}, consts[1])
	assert.Equal(t, EnumConst{Name: "StateEmpty", Value: "", Ordinal: 2}, consts[2])
	assert.Equal(t, EnumConst{Name: "StateClosed2", Value: "closed-2", Ordinal: 3}, consts[3])
}

func relationOf(typ *Type, name string) (*Relation, bool) {
	for _, r := range typ.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

func TestRelations(t *testing.T) {
	g := newTestGraph(t)
	book, author := node(t, g, "Book"), node(t, g, "Author")

	rel, ok := relationOf(book, "author")
	require.True(t, ok)
	assert.Equal(t, M2O, rel.Rel)
	assert.True(t, rel.M2O())
	assert.True(t, rel.Unique())
	assert.True(t, rel.HasForeignKey())
	assert.True(t, rel.Joinable())
	assert.Equal(t, "Author", rel.GoName())
	assert.Equal(t, "RelationAuthor", rel.Constant())
	assert.Equal(t, "setnull", rel.OnDelete)
	assert.Equal(t, fieldOf(t, book, "authorId"), rel.LocalField)
	assert.Equal(t, fieldOf(t, author, "id"), rel.ForeignField)
	assert.Equal(t, []*Relation{rel}, book.ForeignKeys())
	assert.Equal(t, []*Type{author}, book.RelatedTypes())

	inv, ok := relationOf(author, "books")
	require.True(t, ok)
	assert.Equal(t, O2M, inv.Rel)
	assert.True(t, inv.Derived)
	assert.False(t, inv.HasForeignKey())
	assert.Equal(t, rel, inv.Ref)
	assert.Equal(t, inv, rel.Ref)
	assert.Equal(t, book, inv.Target)
	assert.Equal(t, rel.ForeignField, inv.LocalField)
	assert.Equal(t, rel.LocalField, inv.ForeignField)
	assert.Empty(t, author.ForeignKeys())
}

func TestRelations_DeclaredInverse(t *testing.T) {
	schemas := bookstore()
	schemas[1].Relations = []*load.Relation{
		{Name: "works", Target: "Book", Kind: "one-to-many", ForeignField: "authorId"},
	}
	g, err := NewGraph(&Config{}, schemas...)
	require.NoError(t, err)
	author := node(t, g, "Author")
	require.Len(t, author.Relations, 1)
	works := author.Relations[0]
	assert.False(t, works.Derived)
	rel, ok := relationOf(node(t, g, "Book"), "author")
	require.True(t, ok)
	assert.Equal(t, works, rel.Ref)
	assert.Equal(t, rel, works.Ref)
}

func TestRelations_InverseNameConflict(t *testing.T) {
	schemas := bookstore()
	schemas[0].Fields = append(schemas[0].Fields, &load.Field{Name: "editorId", Type: "integer", Nullable: true})
	schemas[0].Relations = append(schemas[0].Relations, &load.Relation{Name: "editor", Target: "Author", LocalField: "editorId"})
	g, err := NewGraph(&Config{}, schemas...)
	require.NoError(t, err)
	author := node(t, g, "Author")
	_, ok := relationOf(author, "books")
	assert.True(t, ok)
	byEditor, ok := relationOf(author, "booksByEditorID")
	require.True(t, ok)
	assert.Equal(t, "editorId", byEditor.ForeignField.Name)
}

func TestRelations_O2MDefaultForeignField(t *testing.T) {
	g, err := NewGraph(&Config{},
		&load.Schema{
			Name:      "Shelf",
			Fields:    []*load.Field{{Name: "id", Type: "integer", PrimaryKey: true}},
			Relations: []*load.Relation{{Name: "slots", Target: "Slot", Kind: "hasMany"}},
		},
		&load.Schema{
			Name: "Slot",
			Fields: []*load.Field{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "shelfId", Type: "integer"},
			},
		},
	)
	require.NoError(t, err)
	slots, ok := relationOf(node(t, g, "Shelf"), "slots")
	require.True(t, ok)
	assert.Equal(t, "id", slots.LocalField.Name)
	assert.Equal(t, "shelfId", slots.ForeignField.Name)
}

func TestParseRel(t *testing.T) {
	tests := map[string]Rel{
		"":            M2O,
		"many-to-one": M2O,
		"BelongsTo":   M2O,
		"one_to_many": O2M,
		"hasMany":     O2M,
		"one to one":  O2O,
		"o2o":         O2O,
		"ManyToMany":  M2M,
		"peer":        Unk,
	}
	for kind, expected := range tests {
		t.Run(kind, func(t *testing.T) {
			assert.Equal(t, expected, ParseRel(kind))
		})
	}
	assert.Equal(t, "M2O", M2O.String())
	assert.Equal(t, "Unknown", Unk.String())
}

func TestInheritance(t *testing.T) {
	g, err := NewGraph(&Config{}, &load.Schema{
		Name: "Publication",
		Fields: []*load.Field{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "kind", Type: "varchar"},
		},
		Inheritance: &load.Inheritance{Field: "kind", Children: []*load.Child{
			{Key: "book", Class: "BookPublication"},
			{Key: "essay", Class: "EssayPublication"},
		}},
	})
	require.NoError(t, err)
	pub := node(t, g, "Publication")
	assert.True(t, pub.HasInheritance())
	assert.Equal(t, "kind", pub.Inheritance.Field.Name)
	require.Len(t, pub.Inheritance.Children, 2)
	assert.Equal(t, &InheritanceChild{Key: "essay", Class: "EssayPublication"}, pub.Inheritance.Children[1])
}

func TestValidSchemaName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Book", true},
		{"OrderItem", true},
		{"", false},
		{"acme/Book", false},
		{"..Book", false},
		{".Book", false},
		{"Book Item", false},
		{"type", false},
		{"Save", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidSchemaName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewType(t *testing.T) {
	typ, err := NewType(DefaultConfig(), bookstore()[2])
	require.NoError(t, err)
	assert.Equal(t, "orders", typ.Table)
	assert.Len(t, typ.Fields, 7)

	_, err = NewType(&Config{Types: map[string]string{"money": VarcharHandler}}, bookstore()[2])
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
