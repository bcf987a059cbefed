package commands

import (
	"context"
	"errors"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/compiler/gen/om"
	"github.com/syssam/strata/config"
)

// Generate builds the Go object model of the schemas into the Go
// directory of the configuration. With the watch flag it keeps running and
// regenerates the code on every schema change.
func (c *Controller) Generate(ctx context.Context) error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := c.generate(ctx, s); err != nil {
		if !c.flags().Watch {
			return err
		}
		s.log.Error().Err(err).Msg("generate")
	}
	if !c.flags().Watch {
		return nil
	}
	return c.watch(ctx, s)
}

func (c *Controller) generate(ctx context.Context, s *session) error {
	dir := s.cfg.GoDir()
	g, err := s.graph(dir, append(s.cfg.Options(), only(goRoles()...))...)
	if err != nil {
		return err
	}
	res, err := c.run(ctx, s, g, om.Builders())
	if err != nil {
		return err
	}
	printResult(c.out(), "generate", dir, res)
	return nil
}

// goRoles are the roles of the Go object model.
func goRoles() []gen.Role {
	var roles []gen.Role
	for _, r := range gen.Roles() {
		if r != gen.RoleDDL && r != gen.RoleDataSQL {
			roles = append(roles, r)
		}
	}
	return roles
}

// watch regenerates the code on schema changes until ctx is done.
func (c *Controller) watch(ctx context.Context, s *session) error {
	changed := make(chan string, 1)
	fw, err := NewFileWatcher(SchemaPatterns, []string{".*"}, s.log, func(path string, _ fsnotify.Op) {
		select {
		case changed <- path:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.AddDirectory(s.cfg.SchemaDir()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fw.Start(ctx) }()

	s.log.Info().Str("dir", s.cfg.SchemaDir()).Msg("watching schema changes")
	for {
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case path := <-changed:
			s.log.Info().Str("file", path).Msg("schema changed")
			if err := c.generate(ctx, s); err != nil {
				s.log.Error().Err(err).Msg("generate")
			}
		}
	}
}

// SQLBuild writes the DDL of the schemas into the SQL directory of the
// configuration.
func (c *Controller) SQLBuild(ctx context.Context) error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()

	dir := s.cfg.SQLDir()
	g, err := s.graph(dir, append(s.cfg.Options(), only(gen.RoleDDL))...)
	if err != nil {
		return err
	}
	res, err := c.run(ctx, s, g, om.DDLBuilders())
	if err != nil {
		return err
	}
	printResult(c.out(), "sql", dir, res)
	return nil
}

// ConfigConvert converts the runtime connections of the configuration to
// a Go package written into the configuration directory.
func (c *Controller) ConfigConvert(ctx context.Context) error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()

	dir := s.cfg.ConfDir()
	gcfg, err := gen.NewConfig(append(s.cfg.RuntimeOptions(), only(), gen.WithTarget(dir))...)
	if err != nil {
		return err
	}
	g, err := gen.NewGraph(gcfg)
	if err != nil {
		return err
	}
	res, err := c.run(ctx, s, g, om.ConfigBuilders(config.DefaultConnectionPackage))
	if err != nil {
		return err
	}
	printResult(c.out(), "config:convert", dir, res)
	return nil
}
