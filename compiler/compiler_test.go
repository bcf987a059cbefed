package compiler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/compiler/gen/om"
	"github.com/syssam/strata/compiler/load"
)

func TestLoadGraph(t *testing.T) {
	g, err := LoadGraph(gen.MustNewConfig(gen.WithPackage("github.com/acme/gen")), "testdata/schema")
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	book, ok := g.Node("Book")
	require.True(t, ok)
	assert.Equal(t, "book", book.Table)

	_, err = LoadGraph(gen.DefaultConfig(), "testdata/missing")
	assert.Error(t, err)
	_, err = LoadGraph(gen.DefaultConfig(), t.TempDir())
	assert.ErrorIs(t, err, load.ErrNoSchema)
}

func TestGenerate(t *testing.T) {
	w := gen.NewMemoryWriter()
	cfg := gen.MustNewConfig(gen.WithPackage("github.com/acme/gen"))
	res, err := Generate(context.Background(), "testdata/schema", cfg, Writer(w), Workers(2))
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, w.Paths(), res.Artifacts)
	for _, path := range []string{
		"acme/bookstore/book.go",
		"acme/bookstore/author_query_base.go",
		"acme/bookstore/map/book.go",
		"acme/bookstore/strata.go",
		"book.sql",
	} {
		assert.Contains(t, res.Artifacts, path)
	}
}

func TestGenerate_Builders(t *testing.T) {
	w := gen.NewMemoryWriter()
	cfg := gen.MustNewConfig(gen.WithPackage("github.com/acme/gen"))
	res, err := Generate(context.Background(), "testdata/schema", cfg, Writer(w), Builders(om.DDLBuilders()))
	require.NoError(t, err)
	assert.Equal(t, []string{"author.sql", "book.sql"}, res.Artifacts)
}

func TestRun_FSWriter(t *testing.T) {
	root := t.TempDir()
	cfg := gen.MustNewConfig(gen.WithPackage("github.com/acme/gen"), gen.WithTarget(root))
	g, err := LoadGraph(cfg, "testdata/schema")
	require.NoError(t, err)

	res, err := Run(context.Background(), g)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Artifacts)
	assert.FileExists(t, filepath.Join(root, "acme", "bookstore", "book.go"))
	assert.FileExists(t, filepath.Join(root, gen.ManifestFile))

	res, err = Run(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.NotEmpty(t, res.Skipped)
}

func TestRun_NoTarget(t *testing.T) {
	g, err := LoadGraph(gen.DefaultConfig(), "testdata/schema")
	require.NoError(t, err)
	_, err = Run(context.Background(), g)
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}
