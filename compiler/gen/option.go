package gen

import (
	"errors"
	"maps"
	"strings"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
	"github.com/syssam/strata/schema/field"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/generated".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithAdapter sets the adapter of the default connection.
func WithAdapter(adapter string, opts ...platform.Option) Option {
	return func(c *Config) error {
		name, ok := dialect.Normalize(adapter)
		if !ok {
			return NewConfigError("Adapter", adapter, "unsupported adapter; use "+strings.Join(dialect.Adapters(), ", "))
		}
		c.Adapter = name
		c.PlatformOptions = append(c.PlatformOptions, opts...)
		return nil
	}
}

// WithTypeHandler overrides the handler of a semantic type.
func WithTypeHandler(typ, handler string) Option {
	return func(c *Config) error {
		if _, err := field.ParseType(typ); err != nil {
			return NewConfigError("Types", typ, err.Error())
		}
		if c.Types == nil {
			c.Types = make(map[string]string)
		}
		c.Types[strings.ToLower(typ)] = handler
		return nil
	}
}

// WithHandlers adds custom type handlers to the config. WithTypeHandler
// may then map semantic types to them by name.
func WithHandlers(hs ...TypeHandler) Option {
	return func(c *Config) error {
		for _, h := range hs {
			if h == nil || h.Name() == "" {
				return NewConfigError("Handlers", "", "type handler without a name")
			}
		}
		c.Handlers = append(c.Handlers, hs...)
		return nil
	}
}

// WithBuilder overrides the implementation of a builder role.
func WithBuilder(role Role, impl string) Option {
	return func(c *Config) error {
		if !role.Valid() {
			return NewConfigError("Builders", string(role), "unknown builder role")
		}
		if impl == "" {
			return NewConfigError("Builders", string(role), "implementation cannot be empty")
		}
		if c.Builders == nil {
			c.Builders = make(BuilderMapping)
		}
		c.Builders[role] = impl
		return nil
	}
}

// WithBuilderMapping merges the given mapping into the configured one.
func WithBuilderMapping(m BuilderMapping) Option {
	return func(c *Config) error {
		for role := range m {
			if !role.Valid() {
				return NewConfigError("Builders", string(role), "unknown builder role")
			}
		}
		if c.Builders == nil {
			c.Builders = make(BuilderMapping)
		}
		maps.Copy(c.Builders, m)
		return nil
	}
}

// WithObjectModel sets the object-model policies.
func WithObjectModel(om ObjectModel) Option {
	return func(c *Config) error {
		switch om.DefaultKeyType {
		case "", "fieldName", "columnName", "goName":
		default:
			return NewConfigError("ObjectModel.DefaultKeyType", om.DefaultKeyType, "use fieldName, columnName or goName")
		}
		switch om.Pluralizer {
		case "", "standard", "none":
		default:
			return NewConfigError("ObjectModel.Pluralizer", om.Pluralizer, "use standard or none")
		}
		c.ObjectModel = om
		return nil
	}
}

// WithDateTime sets the temporal accessor policies.
func WithDateTime(dt DateTime) Option {
	return func(c *Config) error {
		if dt.UseDateTimeClass && dt.DateTimeClass == "" {
			return NewConfigError("DateTime.DateTimeClass", nil, "class is required when useDateTimeClass is set")
		}
		c.DateTime = dt
		return nil
	}
}

// WithConnections sets the runtime connections and the default one.
func WithConnections(defaultConn string, conns ...Connection) Option {
	return func(c *Config) error {
		var errs []error
		found := defaultConn == ""
		for _, conn := range conns {
			if _, ok := dialect.Normalize(conn.Adapter); !ok {
				errs = append(errs, NewConfigError("Connections."+conn.Name, conn.Adapter, "unsupported adapter"))
			}
			if conn.Name == defaultConn {
				found = true
			}
		}
		if !found {
			errs = append(errs, NewConfigError("DefaultConnection", defaultConn, "no connection with this name"))
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
		c.Connections = conns
		c.DefaultConnection = defaultConn
		return nil
	}
}

// WithNamespaceAutoPackage toggles namespace derived output directories.
func WithNamespaceAutoPackage(v bool) Option {
	return func(c *Config) error {
		c.NamespaceAutoPackage = v
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config holding the defaults, with the given
// options applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
