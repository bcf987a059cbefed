package config

import (
	"maps"
	"slices"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/platform"
)

// Options converts the generator settings to code generation options. The
// adapter is the one of generator.defaultConnection, and the connections
// are restricted to generator.connections when set.
func (c *Config) Options() []gen.Option {
	gc := c.Generator
	opts := []gen.Option{
		gen.WithConnections(gc.DefaultConnection, c.connections(gc.Connections)...),
		gen.WithNamespaceAutoPackage(gc.NamespaceAutoPackage),
		gen.WithDateTime(gen.DateTime{
			UseDateTimeClass:       gc.DateTime.UseDateTimeClass,
			DateTimeClass:          gc.DateTime.DateTimeClass,
			DefaultTimeStampFormat: gc.DateTime.DefaultTimeStampFormat,
			DefaultTimeFormat:      gc.DateTime.DefaultTimeFormat,
			DefaultDateFormat:      gc.DateTime.DefaultDateFormat,
		}),
		gen.WithObjectModel(gen.ObjectModel{
			AddGenericAccessors:          gc.ObjectModel.AddGenericAccessors,
			AddGenericMutators:           gc.ObjectModel.AddGenericMutators,
			EmulateForeignKeyConstraints: gc.ObjectModel.EmulateForeignKeyConstraints,
			AddClassLevelComment:         gc.ObjectModel.AddClassLevelComment,
			DefaultKeyType:               gc.ObjectModel.DefaultKeyType,
			AddSaveMethod:                gc.ObjectModel.AddSaveMethod,
			NamespaceMap:                 gc.ObjectModel.NamespaceMap,
			AddTimeStamp:                 gc.ObjectModel.AddTimeStamp,
			AddHooks:                     gc.ObjectModel.AddHooks,
			ClassPrefix:                  gc.ObjectModel.ClassPrefix,
			UseLeftJoinsInDoJoinMethods:  gc.ObjectModel.UseLeftJoinsInDoJoinMethods,
			Pluralizer:                   gc.ObjectModel.Pluralizer,
		}),
	}
	if conn, ok := c.Database.Connections[gc.DefaultConnection]; ok && conn != nil {
		opts = append(opts, gen.WithAdapter(conn.Adapter, c.PlatformOptions()...))
	}
	if gc.TargetPackage != "" {
		opts = append(opts, gen.WithPackage(gc.TargetPackage))
	}
	if len(gc.ObjectModel.Builders) > 0 {
		m := make(gen.BuilderMapping, len(gc.ObjectModel.Builders))
		for role, impl := range gc.ObjectModel.Builders {
			m[gen.Role(role)] = impl
		}
		opts = append(opts, gen.WithBuilderMapping(m))
	}
	for _, typ := range slices.Sorted(maps.Keys(c.Types)) {
		opts = append(opts, gen.WithTypeHandler(typ, c.Types[typ]))
	}
	return opts
}

// RuntimeOptions returns the options of the connection configuration
// conversion: the runtime connections and the runtime default connection.
func (c *Config) RuntimeOptions() []gen.Option {
	opts := c.Options()
	return append(opts, gen.WithConnections(c.Runtime.DefaultConnection, c.connections(c.Runtime.Connections)...))
}

// PlatformOptions returns the platform hints of the adapters section.
func (c *Config) PlatformOptions() []platform.Option {
	a := c.Database.Adapters
	opts := []platform.Option{
		platform.WithTableEngine(a.MySQL.TableEngineKeyword, a.MySQL.TableType),
		platform.WithSequencePattern(a.Oracle.AutoincrementSequencePattern),
	}
	if a.SQLite.ForeignKey != nil {
		opts = append(opts, platform.WithForeignKeys(*a.SQLite.ForeignKey))
	}
	return opts
}

// Connection returns the named connection converted to its generator form.
func (c *Config) Connection(name string) (gen.Connection, bool) {
	conn, ok := c.Database.Connections[name]
	if !ok || conn == nil {
		return gen.Connection{}, false
	}
	gc := gen.Connection{
		Name:     name,
		Adapter:  conn.Adapter,
		DSN:      conn.DSN,
		User:     conn.User,
		Password: conn.Password,
		Charset:  conn.Settings.Charset,
		Queries:  conn.Settings.Queries,
	}
	for _, s := range conn.Slaves {
		gc.Slaves = append(gc.Slaves, s.DSN)
	}
	return gc, true
}

// connections returns the named connections, or all of them sorted by name
// if names is empty.
func (c *Config) connections(names []string) []gen.Connection {
	if len(names) == 0 {
		names = c.connectionNames()
	}
	conns := make([]gen.Connection, 0, len(names))
	for _, name := range names {
		if conn, ok := c.Connection(name); ok {
			conns = append(conns, conn)
		}
	}
	return conns
}
