// Package commands contains the CLI commands of strata.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/syssam/strata/compiler"
	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/config"
)

// Flags are the command line flags shared by the commands.
type Flags struct {
	LogLevel string
	// Config is the path of the configuration file. It is looked up in
	// Dir when empty.
	Config string
	// Dir is the working directory, the current one when empty.
	Dir string
	// Watch regenerates the code when a schema file changes.
	Watch bool
	// Workers limits the number of concurrent builders.
	Workers int
}

// Controller runs the commands.
type Controller struct {
	Flags *Flags
	// Out receives the command summaries. Defaults to os.Stdout.
	Out io.Writer
	// Log is the logger used when the configuration has no default logger.
	Log zerolog.Logger
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Controller) flags() *Flags {
	if c.Flags == nil {
		return &Flags{}
	}
	return c.Flags
}

// LoadConfig loads the configuration file of the flags.
func (c *Controller) LoadConfig() (*config.Config, error) {
	path := c.flags().Config
	if path == "" {
		dir := c.flags().Dir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			dir = wd
		}
		found, err := config.Find(dir)
		if err != nil {
			return nil, fmt.Errorf("%w in %s", err, dir)
		}
		path = found
	}
	return config.Load(path)
}

// session is a loaded configuration with its logger.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (c *Controller) open() (*session, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}
	l, closer, ok, err := cfg.Logger(config.DefaultLogger)
	if err != nil {
		return nil, err
	}
	if !ok {
		l = c.Log
	}
	l.Debug().Str("config", cfg.File()).Msg("configuration loaded")
	return &session{cfg: cfg, log: l, closer: closer}, nil
}

func (s *session) Close() error { return s.closer.Close() }

// graph loads the schema files of the configuration into a graph whose
// target is dir.
func (s *session) graph(dir string, opts ...gen.Option) (*gen.Graph, error) {
	files, err := s.cfg.SchemaFiles()
	if err != nil {
		return nil, err
	}
	gcfg, err := gen.NewConfig(append(opts, gen.WithTarget(dir))...)
	if err != nil {
		return nil, err
	}
	g, err := compiler.LoadGraph(gcfg, files...)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("schemas", len(g.Schemas)).Int("types", len(g.Nodes)).Msg("graph loaded")
	return g, nil
}

func (c *Controller) run(ctx context.Context, s *session, g *gen.Graph, builders *gen.BuilderSet) (*gen.Result, error) {
	opts := []compiler.Option{compiler.Builders(builders), compiler.Logger(s.log)}
	if n := c.flags().Workers; n > 0 {
		opts = append(opts, compiler.Workers(n))
	}
	return compiler.Run(ctx, g, opts...)
}

// only disables every builder role but the given ones.
func only(keep ...gen.Role) gen.Option {
	m := make(gen.BuilderMapping)
	for _, r := range gen.Roles() {
		m[r] = ""
	}
	for _, r := range keep {
		delete(m, r)
	}
	return gen.WithBuilderMapping(m)
}
