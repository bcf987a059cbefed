package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/platform"
)

const bookstore = `
general:
  project: bookstore
paths:
  schemaDir: schema
  outputDir: build
database:
  connections:
    bookstore:
      adapter: mysql
      dsn: mysql:host=localhost;dbname=bookstore
      user: root
      password: "%env.STRATA_TEST_PASSWORD%"
      settings:
        queries:
          - SET NAMES utf8mb4
      slaves:
        - dsn: mysql:host=replica;dbname=bookstore
    reports:
      adapter: pgsql
      dsn: postgres://localhost/reports
  adapters:
    sqlite:
      foreignKey: true
runtime:
  connections: [bookstore]
  log:
    defaultLogger:
      type: file
      path: strata.log
      level: 300
generator:
  defaultConnection: bookstore
  targetPackage: github.com/acme/bookstore/model
  dateTime:
    dateTimeClass: time.Time
  objectModel:
    addHooks: false
    classPrefix: Acme
    builders:
      datasql: ""
types:
  decimal: DoubleType
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("STRATA_TEST_PASSWORD", "secret")
	path := writeConfig(t, bookstore)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.File())

	assert.Equal(t, "bookstore", c.General.Project)
	assert.Equal(t, DefaultVersion, c.General.Version)

	conn := c.Database.Connections["bookstore"]
	require.NotNil(t, conn)
	assert.Equal(t, "secret", conn.Password)
	assert.Equal(t, DefaultCharset, conn.Settings.Charset)
	assert.Equal(t, []string{"SET NAMES utf8mb4"}, conn.Settings.Queries)
	require.Len(t, conn.Slaves, 1)

	assert.Equal(t, platform.DefaultTableType, c.Database.Adapters.MySQL.TableType)
	assert.Equal(t, platform.DefaultTableEngineKeyword, c.Database.Adapters.MySQL.TableEngineKeyword)
	assert.Equal(t, platform.DefaultSequencePattern, c.Database.Adapters.Oracle.AutoincrementSequencePattern)
	require.NotNil(t, c.Database.Adapters.SQLite.ForeignKey)
	assert.True(t, *c.Database.Adapters.SQLite.ForeignKey)

	assert.Equal(t, "bookstore", c.Runtime.DefaultConnection)
	assert.True(t, c.Generator.NamespaceAutoPackage)
	assert.True(t, c.Generator.DateTime.UseDateTimeClass)
	assert.False(t, c.Generator.ObjectModel.AddHooks)
	assert.True(t, c.Generator.ObjectModel.AddSaveMethod)
	assert.Equal(t, DefaultNamespaceMap, c.Generator.ObjectModel.NamespaceMap)
	assert.Equal(t, DefaultSchemaBasename, c.Generator.Schema.Basename)

	t.Run("paths", func(t *testing.T) {
		dir := filepath.Dir(path)
		assert.Equal(t, filepath.Join(dir, "schema"), c.SchemaDir())
		assert.Equal(t, filepath.Join(dir, "build", DefaultGoDir), c.GoDir())
		assert.Equal(t, filepath.Join(dir, "build", DefaultSQLDir), c.SQLDir())
		assert.Equal(t, filepath.Join(dir, "build", DefaultConfDir), c.ConfDir())
		assert.Equal(t, "/abs", c.Path("/abs"))
	})
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultVersion, c.General.Version)
	assert.Equal(t, ".", c.Paths.ProjectDir)
	assert.Equal(t, ".", c.Paths.SchemaDir)
	assert.Equal(t, DefaultGoDir, c.Paths.GoDir)
	assert.Equal(t, DefaultConnection, c.Runtime.DefaultConnection)
	assert.Equal(t, DefaultDateTimeClass, c.Generator.DateTime.DateTimeClass)
	assert.Equal(t, DefaultKeyType, c.Generator.ObjectModel.DefaultKeyType)
	assert.Equal(t, DefaultPluralizer, c.Generator.ObjectModel.Pluralizer)
	assert.True(t, c.Generator.ObjectModel.UseLeftJoinsInDoJoinMethods)
	assert.False(t, c.Generator.ObjectModel.AddTimeStamp)
	assert.Nil(t, c.Database.Adapters.SQLite.ForeignKey)
	assert.Error(t, c.Validate())
}

func TestParse_ProjectDir(t *testing.T) {
	c, err := Parse([]byte("paths:\n  projectDir: app\n"))
	require.NoError(t, err)
	assert.Equal(t, "app", c.Paths.SchemaDir)
	assert.Equal(t, "app", c.SchemaDir())
	assert.Equal(t, filepath.Join("app", DefaultGoDir), c.GoDir())
}

func TestParse_JSON(t *testing.T) {
	c, err := Parse([]byte(`{"database": {"connections": {"default": {"adapter": "sqlite", "dsn": "sqlite:app.db"}}}, "generator": {"defaultConnection": "default"}}`))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "sqlite", c.Database.Connections["default"].Adapter)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("database: ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		config string
		keys   []string
	}{
		{
			name:   "no connections",
			config: "generator:\n  defaultConnection: default\n",
			keys:   []string{"database.connections", "generator.defaultConnection"},
		},
		{
			name: "dotted name",
			config: `
database:
  connections:
    main.db:
      adapter: sqlite
      dsn: app.db
generator:
  defaultConnection: main.db
runtime:
  defaultConnection: main.db
`,
			keys: []string{"database.connections.main.db"},
		},
		{
			name: "adapter and dsn",
			config: `
database:
  connections:
    default:
      adapter: mongodb
    other:
      dsn: x
generator:
  defaultConnection: default
`,
			keys: []string{
				"database.connections.default.adapter",
				"database.connections.default.dsn",
				"database.connections.other.adapter",
			},
		},
		{
			name: "invalid dsn",
			config: `
database:
  connections:
    default:
      adapter: mysql
      dsn: not a dsn
generator:
  defaultConnection: default
`,
			keys: []string{"database.connections.default.dsn"},
		},
		{
			name: "missing default connection",
			config: `
database:
  connections:
    default:
      adapter: sqlite
      dsn: app.db
generator:
  connections: [nope]
runtime:
  log:
    defaultLogger:
      type: file
      level: 150
    other:
      type: syslog
  connections: [nope]
`,
			keys: []string{
				"generator.defaultConnection",
				"generator.connections",
				"runtime.connections",
				"runtime.log.defaultLogger.level",
				"runtime.log.defaultLogger.path",
				"runtime.log.other.type",
			},
		},
		{
			name: "unknown builder role",
			config: `
database:
  connections:
    default:
      adapter: sqlite
      dsn: app.db
generator:
  defaultConnection: default
  objectModel:
    builders:
      controller: MyBuilder
`,
			keys: []string{"generator.objectModel.builders"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.config))
			require.NoError(t, err)
			err = c.Validate()
			require.Error(t, err)
			assert.True(t, gen.IsConfigError(err))
			for _, key := range tt.keys {
				assert.Contains(t, err.Error(), `"`+key+`"`)
			}
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yml"), nil, 0o644))
	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "strata.yml"), path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yaml"), nil, 0o644))
	path, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "strata.yaml"), path)
}

func TestSchemaFiles(t *testing.T) {
	path := writeConfig(t, bookstore)
	c, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Join(filepath.Dir(path), "schema")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shop"), 0o755))
	for _, name := range []string{"schema.yaml", "shop/order-schema.json", "notes.yaml", "bookstore.schema.yml", "schema.xml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files, err := c.SchemaFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "schema.yaml"),
		filepath.Join(dir, "shop", "order-schema.json"),
		filepath.Join(dir, "bookstore.schema.yml"),
	}, files)
}

func TestOptions(t *testing.T) {
	c, err := Load(writeConfig(t, bookstore))
	require.NoError(t, err)

	cfg, err := gen.NewConfig(c.Options()...)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Adapter)
	assert.Equal(t, "github.com/acme/bookstore/model", cfg.Package)
	assert.Equal(t, "bookstore", cfg.DefaultConnection)
	require.Len(t, cfg.Connections, 2)
	assert.Equal(t, "bookstore", cfg.Connections[0].Name)
	assert.Equal(t, []string{"mysql:host=replica;dbname=bookstore"}, cfg.Connections[0].Slaves)
	assert.Equal(t, "reports", cfg.Connections[1].Name)
	assert.False(t, cfg.ObjectModel.AddHooks)
	assert.Equal(t, "Acme", cfg.ObjectModel.ClassPrefix)
	assert.Equal(t, "time.Time", cfg.DateTime.DateTimeClass)
	assert.Equal(t, "DoubleType", cfg.Types["decimal"])
	name, ok := cfg.Builders[gen.RoleDataSQL]
	assert.True(t, ok)
	assert.Empty(t, name)
	assert.NotEmpty(t, cfg.PlatformOptions)

	cfg, err = gen.NewConfig(c.RuntimeOptions()...)
	require.NoError(t, err)
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, "bookstore", cfg.Connections[0].Name)
}

func TestOptions_Adapter(t *testing.T) {
	c, err := Parse([]byte(`
database:
  connections:
    default:
      adapter: sqlite
      dsn: app.db
  adapters:
    sqlite:
      foreignKey: true
generator:
  defaultConnection: default
`))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	cfg, err := gen.NewConfig(c.Options()...)
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", g.Platform.Name())
	enabled, set := g.Platform.ForeignKeyPragma()
	assert.True(t, enabled)
	assert.True(t, set)

	_, ok := c.Connection("missing")
	assert.False(t, ok)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		severity int
		want     zerolog.Level
	}{
		{0, zerolog.InfoLevel},
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelNotice, zerolog.InfoLevel},
		{LevelWarning, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LevelCritical, zerolog.FatalLevel},
		{LevelAlert, zerolog.FatalLevel},
		{LevelEmergency, zerolog.PanicLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogLevel(tt.severity), "severity %d", tt.severity)
	}
}

func TestLogger(t *testing.T) {
	path := writeConfig(t, bookstore)
	c, err := Load(path)
	require.NoError(t, err)

	logger, closer, ok, err := c.Logger(DefaultLogger)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	logger.Info().Msg("dropped")
	logger.Warn().Str("table", "book").Msg("kept")
	require.NoError(t, closer.Close())

	buf, err := os.ReadFile(filepath.Join(filepath.Dir(path), "strata.log"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"message":"kept"`)
	assert.Contains(t, string(buf), `"logger":"defaultLogger"`)
	assert.NotContains(t, string(buf), "dropped")

	_, _, ok, err = c.Logger("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
