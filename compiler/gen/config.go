package gen

import (
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

const defaultHeader = "Code generated by strata. DO NOT EDIT."

// Config holds the global codegen configuration to be
// shared between all generated nodes.
type Config struct {
	// Target defines the filepath for the target directory that
	// holds the generated code. For example:
	//
	//	./project/generated-classes
	//
	Target string

	// Package defines the Go package path of the target directory
	// mentioned above. For example:
	//
	//	github.com/org/project/generated
	//
	Package string

	// Header allows users to provide an optional header signature for
	// the generated files.
	Header string

	// Adapter is the adapter of the default connection. It selects the
	// platform used for temporal formatting, native types and DDL.
	Adapter string

	// PlatformOptions are passed to platform.New when the graph is built.
	PlatformOptions []platform.Option

	// Types overrides the handler used for a semantic type. The mapping is
	// from the semantic type name ("varchar") to a handler name
	// ("VarcharType").
	Types map[string]string

	// Handlers are the custom type handlers Types may refer to, in
	// addition to the built-in ones.
	Handlers []TypeHandler

	// Builders overrides the implementation used for a builder role.
	Builders BuilderMapping

	// ObjectModel holds the object-model generation policies.
	ObjectModel ObjectModel

	// DateTime holds the temporal accessor policies.
	DateTime DateTime

	// Connections are the configured database connections. They are
	// emitted by the connection builder.
	Connections []Connection

	// DefaultConnection names the connection used at generation time.
	DefaultConnection string

	// NamespaceAutoPackage derives the output directory of a type from its
	// namespace.
	NamespaceAutoPackage bool
}

// ObjectModel controls what is emitted in object classes.
type ObjectModel struct {
	AddGenericAccessors          bool
	AddGenericMutators           bool
	EmulateForeignKeyConstraints bool
	AddClassLevelComment         bool
	// DefaultKeyType is the key type used by generic accessors:
	// "fieldName", "columnName" or "goName".
	DefaultKeyType string
	AddSaveMethod  bool
	// NamespaceMap is the sub-directory holding entity maps.
	NamespaceMap string
	AddTimeStamp bool
	AddHooks     bool
	// ClassPrefix is prepended to every generated class name.
	ClassPrefix                 string
	UseLeftJoinsInDoJoinMethods bool
	// Pluralizer is "standard" for english inflection or "none".
	Pluralizer string
}

// DateTime controls temporal accessors.
type DateTime struct {
	UseDateTimeClass bool
	// DateTimeClass is the Go type returned by temporal getters, optionally
	// qualified by its import path.
	DateTimeClass          string
	DefaultTimeStampFormat string
	DefaultTimeFormat      string
	DefaultDateFormat      string
}

// Connection describes a runtime database connection.
type Connection struct {
	Name     string
	Adapter  string
	DSN      string
	User     string
	Password string
	Charset  string
	Queries  []string
	Slaves   []string
}

// OutputConfig groups output-related settings.
type OutputConfig struct {
	Target  string
	Package string
	Header  string
}

// Output returns the output settings of the config.
func (c *Config) Output() OutputConfig {
	return OutputConfig{Target: c.Target, Package: c.Package, Header: c.Header}
}

// HeaderLine returns the header comment of generated files.
func (c *Config) HeaderLine() string {
	if c.Header != "" {
		return c.Header
	}
	return defaultHeader
}

// DefaultConfig returns a config holding the default generation policies.
func DefaultConfig() *Config {
	return &Config{
		Header:               defaultHeader,
		Adapter:              dialect.MySQL,
		DefaultConnection:    "default",
		NamespaceAutoPackage: true,
		Types:                map[string]string{},
		Builders:             BuilderMapping{},
		ObjectModel: ObjectModel{
			AddGenericAccessors:         true,
			AddGenericMutators:          true,
			AddClassLevelComment:        true,
			DefaultKeyType:              "fieldName",
			AddSaveMethod:               true,
			NamespaceMap:                "Map",
			AddHooks:                    true,
			UseLeftJoinsInDoJoinMethods: true,
			Pluralizer:                  "standard",
		},
		DateTime: DateTime{
			UseDateTimeClass: true,
			DateTimeClass:    "time.Time",
		},
	}
}
