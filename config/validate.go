package config

import (
	"errors"
	"slices"
	"strings"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// Validate checks the configuration and returns all the problems found,
// joined. Every problem is a *gen.ConfigError naming the offending key.
func (c *Config) Validate() error {
	var errs []error
	fail := func(key string, value any, msg string) {
		errs = append(errs, gen.NewConfigError(key, value, msg))
	}
	if len(c.Database.Connections) == 0 {
		fail("database.connections", nil, "at least one connection is required")
	}
	for _, name := range c.connectionNames() {
		key := "database.connections." + name
		conn := c.Database.Connections[name]
		if strings.Contains(name, ".") {
			fail(key, name, "dots are not allowed in connection names")
		}
		if conn == nil {
			fail(key, nil, "connection is empty")
			continue
		}
		if conn.Adapter == "" {
			fail(key+".adapter", nil, "adapter is required")
		} else if !dialect.Supported(conn.Adapter) {
			fail(key+".adapter", conn.Adapter, "unsupported adapter; use "+strings.Join(dialect.Adapters(), ", "))
		}
		if conn.DSN == "" {
			fail(key+".dsn", nil, "dsn is required")
		} else if p, err := platform.New(conn.Adapter); err == nil {
			if _, err := p.NormalizeDSN(conn.DSN, conn.User, conn.Password); err != nil {
				fail(key+".dsn", conn.DSN, err.Error())
			}
		}
	}
	if c.Generator.DefaultConnection == "" {
		fail("generator.defaultConnection", nil, "default connection is required")
	} else if _, ok := c.Database.Connections[c.Generator.DefaultConnection]; !ok {
		fail("generator.defaultConnection", c.Generator.DefaultConnection, "unknown connection")
	}
	for _, name := range c.Generator.Connections {
		if _, ok := c.Database.Connections[name]; !ok {
			fail("generator.connections", name, "unknown connection")
		}
	}
	if _, ok := c.Database.Connections[c.Runtime.DefaultConnection]; !ok && len(c.Database.Connections) > 0 {
		fail("runtime.defaultConnection", c.Runtime.DefaultConnection, "unknown connection")
	}
	for _, name := range c.Runtime.Connections {
		if _, ok := c.Database.Connections[name]; !ok {
			fail("runtime.connections", name, "unknown connection")
		}
	}
	for name, l := range c.Runtime.Log {
		if l.Level != 0 && !slices.Contains(LogLevels, l.Level) {
			fail("runtime.log."+name+".level", l.Level, "unknown log level")
		}
		switch l.Type {
		case "", LogStream:
		case LogFile:
			if l.Path == "" {
				fail("runtime.log."+name+".path", nil, "path is required for a file logger")
			}
		default:
			fail("runtime.log."+name+".type", l.Type, "use stream or file")
		}
	}
	for role := range c.Generator.ObjectModel.Builders {
		if !gen.Role(role).Valid() {
			fail("generator.objectModel.builders", role, "unknown builder role")
		}
	}
	return errors.Join(errs...)
}

// connectionNames returns the sorted connection names.
func (c *Config) connectionNames() []string {
	names := make([]string, 0, len(c.Database.Connections))
	for name := range c.Database.Connections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
