package gen

import (
	"context"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Generator runs the builders of every (type, role) pair of a graph in
// parallel and emits the artifacts through a writer.
type Generator struct {
	graph    *Graph
	builders *BuilderSet
	writer   Writer
	workers  int
	log      zerolog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithWriter sets the artifact writer. The default collects artifacts in
// memory.
func WithWriter(w Writer) GeneratorOption {
	return func(g *Generator) {
		if w != nil {
			g.writer = w
		}
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets the logger of the generator.
func WithLogger(l zerolog.Logger) GeneratorOption {
	return func(g *Generator) { g.log = l }
}

// WithBuilders sets the available builder implementations.
func WithBuilders(s *BuilderSet) GeneratorOption {
	return func(g *Generator) {
		if s != nil {
			g.builders = s
		}
	}
}

// NewGenerator creates a generator for the graph.
func NewGenerator(graph *Graph, opts ...GeneratorOption) *Generator {
	g := &Generator{
		graph:    graph,
		builders: NewBuilderSet(),
		writer:   NewMemoryWriter(),
		workers:  runtime.GOMAXPROCS(0),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes a generation run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string
	// Artifacts are the paths written, sorted.
	Artifacts []string
	// Skipped are the paths left untouched, sorted.
	Skipped []string
}

// task is one (type, role) pair.
type task struct {
	typ     *Type
	role    Role
	builder Builder
}

// Generate runs all builders. The first failure cancels the remaining
// tasks and is returned as a *GenerationError; output written by a failed
// run must be discarded.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := g.log.With().Str("run", res.RunID).Logger()
	resolved, err := g.builders.Resolve(g.graph.Builders)
	if err != nil {
		return nil, err
	}
	var tasks []task
	for _, t := range g.graph.Nodes {
		for _, r := range roles {
			b, ok := resolved[r]
			if !ok || !b.Applies(t) {
				continue
			}
			tasks = append(tasks, task{typ: t, role: r, builder: b})
		}
	}
	log.Info().
		Int("types", len(g.graph.Nodes)).
		Int("tasks", len(tasks)).
		Str("platform", g.graph.Platform.Name()).
		Msg("generation started")

	var mu sync.Mutex
	record := func(a *Artifact, written bool) {
		mu.Lock()
		defer mu.Unlock()
		if written {
			res.Artifacts = append(res.Artifacts, a.Path)
		} else {
			res.Skipped = append(res.Skipped, a.Path)
		}
	}
	emit := func(ctx context.Context, phase string, artifacts []*Artifact) error {
		for _, a := range artifacts {
			written, err := g.writer.Write(ctx, a)
			if err != nil {
				return NewGenerationError(phase, a.Path, "", err)
			}
			log.Debug().Str("path", a.Path).Str("role", string(a.Role)).Bool("written", written).Msg("artifact")
			record(a, written)
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, tk := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			bctx := &BuildContext{
				Graph:    g.graph,
				Type:     tk.typ,
				Role:     tk.role,
				Platform: g.graph.Platform,
				Registry: g.graph.Registry,
				Logger:   log.With().Str("type", tk.typ.Name).Str("role", string(tk.role)).Logger(),
			}
			artifacts, err := tk.builder.Build(bctx)
			if err != nil {
				return NewGenerationError(string(tk.role), "", "type "+tk.typ.Name, err)
			}
			return emit(ctx, string(tk.role), artifacts)
		})
	}
	for _, gb := range g.builders.Graph() {
		eg.Go(func() error {
			artifacts, err := gb.BuildGraph(g.graph)
			if err != nil {
				return NewGenerationError(gb.Name(), "", "", err)
			}
			return emit(ctx, gb.Name(), artifacts)
		})
	}
	err = eg.Wait()
	if c, ok := g.writer.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = NewGenerationError("write", "", "", cerr)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		return nil, err
	}
	slices.Sort(res.Artifacts)
	slices.Sort(res.Skipped)
	log.Info().
		Int("written", len(res.Artifacts)).
		Int("skipped", len(res.Skipped)).
		Dur("took", time.Since(start)).
		Msg("generation finished")
	return res, nil
}
