// Package compiler is the entry point of the code generator. It loads the
// schema documents, builds the graph and runs the builders over it.
package compiler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/compiler/gen/om"
	"github.com/syssam/strata/compiler/load"
)

// Option configures a generation run.
type Option func(*runConfig)

type runConfig struct {
	builders *gen.BuilderSet
	writer   gen.Writer
	logger   zerolog.Logger
	workers  int
}

// Builders sets the builder implementations. Defaults to om.Builders().
func Builders(s *gen.BuilderSet) Option {
	return func(c *runConfig) {
		c.builders = s
	}
}

// Writer sets the artifact writer. Defaults to an FSWriter rooted at the
// configured target directory.
func Writer(w gen.Writer) Option {
	return func(c *runConfig) {
		c.writer = w
	}
}

// Logger sets the logger of the run.
func Logger(l zerolog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Workers limits the number of concurrent builders.
func Workers(n int) Option {
	return func(c *runConfig) {
		c.workers = n
	}
}

// LoadGraph loads the schemas found at the given paths and builds the
// graph with the given config.
func LoadGraph(cfg *gen.Config, paths ...string) (*gen.Graph, error) {
	schemas, err := load.Load(paths...)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, schemas...)
}

// Generate loads the schemas at schemaPath and generates the code of
// the graph into the target directory of cfg.
//
//	err := compiler.Generate("./schema", cfg)
func Generate(ctx context.Context, schemaPath string, cfg *gen.Config, opts ...Option) (*gen.Result, error) {
	g, err := LoadGraph(cfg, schemaPath)
	if err != nil {
		return nil, err
	}
	return Run(ctx, g, opts...)
}

// Run runs the generator over a loaded graph.
func Run(ctx context.Context, g *gen.Graph, opts ...Option) (*gen.Result, error) {
	rc := &runConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.builders == nil {
		rc.builders = om.Builders()
	}
	if rc.writer == nil {
		if g.Target == "" {
			return nil, gen.NewConfigError("Target", nil, "target directory is required without a writer")
		}
		w, err := gen.NewFSWriter(g.Target)
		if err != nil {
			return nil, fmt.Errorf("compiler: %w", err)
		}
		rc.writer = w
	}
	gopts := []gen.GeneratorOption{
		gen.WithBuilders(rc.builders),
		gen.WithWriter(rc.writer),
		gen.WithLogger(rc.logger),
	}
	if rc.workers > 0 {
		gopts = append(gopts, gen.WithWorkers(rc.workers))
	}
	return gen.NewGenerator(g, gopts...).Generate(ctx)
}
