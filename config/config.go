// Package config loads the project configuration file (strata.yaml) and
// converts it to code generation options.
//
// The file is a YAML document (JSON is accepted as well) whose sections
// mirror the layout below. Every key is optional except the connections
// and the default connection of the generator.
//
//	general:
//	  project: bookstore
//	paths:
//	  schemaDir: schema
//	database:
//	  connections:
//	    default:
//	      adapter: mysql
//	      dsn: mysql:host=localhost;dbname=bookstore
//	      user: root
//	      password: "%env.DB_PASSWORD%"
//	generator:
//	  defaultConnection: default
//	  targetPackage: github.com/acme/bookstore/model
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/dialect/platform"
)

// FileNames are the names Find looks for, in order.
var FileNames = []string{"strata.yaml", "strata.yml", "strata.json"}

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("config: no configuration file found")

// Default values of the configuration tree.
const (
	DefaultVersion           = "2.0.0-dev"
	DefaultGoDir             = "generated-classes"
	DefaultConfDir           = "generated-conf"
	DefaultSQLDir            = "generated-sql"
	DefaultCharset           = "utf8"
	DefaultConnection        = "default"
	DefaultSchemaBasename    = "schema"
	DefaultDateTimeClass     = "time.Time"
	DefaultKeyType           = "fieldName"
	DefaultNamespaceMap      = "Map"
	DefaultPluralizer        = "standard"
	DefaultConnectionPackage = "conf"
)

// Config is the decoded configuration file.
type Config struct {
	General   General           `yaml:"general"`
	Paths     Paths             `yaml:"paths"`
	Database  Database          `yaml:"database"`
	Runtime   Runtime           `yaml:"runtime"`
	Generator Generator         `yaml:"generator"`
	Types     map[string]string `yaml:"types"`

	// file is the path the config was read from, empty for Parse.
	file string
}

// General holds the project information.
type General struct {
	Project string `yaml:"project"`
	Version string `yaml:"version"`
}

// Paths holds the input and output directories. The schema and output
// directories are relative to the project directory, and the generated
// directories are relative to the output directory.
type Paths struct {
	ProjectDir string `yaml:"projectDir"`
	SchemaDir  string `yaml:"schemaDir"`
	OutputDir  string `yaml:"outputDir"`
	GoDir      string `yaml:"goDir"`
	ConfDir    string `yaml:"confDir"`
	SQLDir     string `yaml:"sqlDir"`
}

// Database holds the connections and the adapter settings.
type Database struct {
	Connections map[string]*Connection `yaml:"connections"`
	Adapters    Adapters               `yaml:"adapters"`
}

// Connection is one database connection.
type Connection struct {
	Adapter  string   `yaml:"adapter"`
	DSN      string   `yaml:"dsn"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	Settings Settings `yaml:"settings"`
	Slaves   []Slave  `yaml:"slaves"`
}

// Settings are applied when a connection is opened.
type Settings struct {
	Charset string   `yaml:"charset"`
	Queries []string `yaml:"queries"`
}

// Slave is a read replica of a connection.
type Slave struct {
	DSN string `yaml:"dsn"`
}

// Adapters holds the adapter specific settings.
type Adapters struct {
	MySQL  MySQLAdapter  `yaml:"mysql"`
	SQLite SQLiteAdapter `yaml:"sqlite"`
	Oracle OracleAdapter `yaml:"oracle"`
}

// MySQLAdapter holds the mysql table options.
type MySQLAdapter struct {
	TableType          string `yaml:"tableType"`
	TableEngineKeyword string `yaml:"tableEngineKeyword"`
}

// SQLiteAdapter holds the sqlite options. A nil ForeignKey leaves the
// foreign key pragma out of the DDL.
type SQLiteAdapter struct {
	ForeignKey *bool `yaml:"foreignKey"`
}

// OracleAdapter holds the oracle options.
type OracleAdapter struct {
	AutoincrementSequencePattern string `yaml:"autoincrementSequencePattern"`
}

// Runtime holds the settings of the generated connection configuration.
type Runtime struct {
	DefaultConnection string         `yaml:"defaultConnection"`
	Connections       []string       `yaml:"connections"`
	Log               map[string]Log `yaml:"log"`
}

// Log configures a named logger.
type Log struct {
	// Type is "stream" (default) or "file".
	Type string `yaml:"type"`
	// Path is the file of a file logger, or "stderr" / "stdout" for a
	// stream logger.
	Path string `yaml:"path"`
	// Level is a severity in the 100..600 range.
	Level int `yaml:"level"`
}

// Generator holds the code generation settings.
type Generator struct {
	DefaultConnection    string      `yaml:"defaultConnection"`
	TargetPackage        string      `yaml:"targetPackage"`
	NamespaceAutoPackage bool        `yaml:"namespaceAutoPackage"`
	Connections          []string    `yaml:"connections"`
	Schema               Schema      `yaml:"schema"`
	DateTime             DateTime    `yaml:"dateTime"`
	ObjectModel          ObjectModel `yaml:"objectModel"`
}

// Schema configures the discovery of schema files.
type Schema struct {
	// Basename is the suffix of the schema file names, without extension.
	Basename string `yaml:"basename"`
}

// DateTime configures temporal accessors.
type DateTime struct {
	UseDateTimeClass       bool   `yaml:"useDateTimeClass"`
	DateTimeClass          string `yaml:"dateTimeClass"`
	DefaultTimeStampFormat string `yaml:"defaultTimeStampFormat"`
	DefaultTimeFormat      string `yaml:"defaultTimeFormat"`
	DefaultDateFormat      string `yaml:"defaultDateFormat"`
}

// ObjectModel configures the generated object model.
type ObjectModel struct {
	AddGenericAccessors          bool              `yaml:"addGenericAccessors"`
	AddGenericMutators           bool              `yaml:"addGenericMutators"`
	EmulateForeignKeyConstraints bool              `yaml:"emulateForeignKeyConstraints"`
	AddClassLevelComment         bool              `yaml:"addClassLevelComment"`
	DefaultKeyType               string            `yaml:"defaultKeyType"`
	AddSaveMethod                bool              `yaml:"addSaveMethod"`
	NamespaceMap                 string            `yaml:"namespaceMap"`
	AddTimeStamp                 bool              `yaml:"addTimeStamp"`
	AddHooks                     bool              `yaml:"addHooks"`
	ClassPrefix                  string            `yaml:"classPrefix"`
	UseLeftJoinsInDoJoinMethods  bool              `yaml:"useLeftJoinsInDoJoinMethods"`
	Pluralizer                   string            `yaml:"pluralizer"`
	Builders                     map[string]string `yaml:"builders"`
}

// Default returns a configuration holding the default values and no
// connection.
func Default() *Config {
	c := defaults()
	c.fill()
	return c
}

// defaults returns the boolean defaults. The string defaults are set by
// fill once the document is decoded.
func defaults() *Config {
	return &Config{
		Generator: Generator{
			NamespaceAutoPackage: true,
			DateTime: DateTime{
				UseDateTimeClass: true,
			},
			ObjectModel: ObjectModel{
				AddGenericAccessors:         true,
				AddGenericMutators:          true,
				AddClassLevelComment:        true,
				AddSaveMethod:               true,
				AddHooks:                    true,
				UseLeftJoinsInDoJoinMethods: true,
			},
		},
	}
}

// fill sets the string defaults left empty by the document.
func (c *Config) fill() {
	setDefault(&c.General.Version, DefaultVersion)
	setDefault(&c.Paths.ProjectDir, ".")
	setDefault(&c.Paths.SchemaDir, c.Paths.ProjectDir)
	setDefault(&c.Paths.OutputDir, c.Paths.ProjectDir)
	setDefault(&c.Paths.GoDir, DefaultGoDir)
	setDefault(&c.Paths.ConfDir, DefaultConfDir)
	setDefault(&c.Paths.SQLDir, DefaultSQLDir)
	setDefault(&c.Database.Adapters.MySQL.TableType, platform.DefaultTableType)
	setDefault(&c.Database.Adapters.MySQL.TableEngineKeyword, platform.DefaultTableEngineKeyword)
	setDefault(&c.Database.Adapters.Oracle.AutoincrementSequencePattern, platform.DefaultSequencePattern)
	setDefault(&c.Runtime.DefaultConnection, c.Generator.DefaultConnection)
	setDefault(&c.Runtime.DefaultConnection, DefaultConnection)
	setDefault(&c.Generator.Schema.Basename, DefaultSchemaBasename)
	setDefault(&c.Generator.DateTime.DateTimeClass, DefaultDateTimeClass)
	setDefault(&c.Generator.ObjectModel.DefaultKeyType, DefaultKeyType)
	setDefault(&c.Generator.ObjectModel.NamespaceMap, DefaultNamespaceMap)
	setDefault(&c.Generator.ObjectModel.Pluralizer, DefaultPluralizer)
	for _, conn := range c.Database.Connections {
		if conn != nil {
			setDefault(&conn.Settings.Charset, DefaultCharset)
		}
	}
}

func setDefault(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

var envRef = regexp.MustCompile(`%env\.([A-Za-z_][A-Za-z0-9_]*)%`)

// expandEnv replaces the %env.NAME% references with the value of the
// environment variable.
func expandEnv(buf []byte) []byte {
	return envRef.ReplaceAllFunc(buf, func(m []byte) []byte {
		return []byte(os.Getenv(string(envRef.FindSubmatch(m)[1])))
	})
}

// Parse decodes a configuration document and applies the defaults. The
// result is not validated.
func Parse(buf []byte) (*Config, error) {
	c := defaults()
	if err := yaml.Unmarshal(expandEnv(buf), c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.fill()
	return c, nil
}

// Load reads, decodes and validates the configuration file. Relative
// paths of the document are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	c.file = path
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Find returns the path of the configuration file in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// File returns the path the configuration was loaded from.
func (c *Config) File() string { return c.file }

// Path resolves a configured path. Relative paths are joined to the
// project directory, itself relative to the configuration file.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	base := c.Paths.ProjectDir
	if !filepath.IsAbs(base) && c.file != "" {
		base = filepath.Join(filepath.Dir(c.file), base)
	}
	if p == c.Paths.ProjectDir {
		return filepath.Clean(base)
	}
	return filepath.Join(base, p)
}

// SchemaDir returns the resolved schema directory.
func (c *Config) SchemaDir() string { return c.Path(c.Paths.SchemaDir) }

// GoDir returns the resolved directory of the generated Go code.
func (c *Config) GoDir() string { return c.output(c.Paths.GoDir) }

// SQLDir returns the resolved directory of the generated SQL files.
func (c *Config) SQLDir() string { return c.output(c.Paths.SQLDir) }

// ConfDir returns the resolved directory of the converted connection
// configuration.
func (c *Config) ConfDir() string { return c.output(c.Paths.ConfDir) }

func (c *Config) output(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Path(c.Paths.OutputDir), p)
}

// SchemaFiles returns the schema documents of the schema directory. A
// document is a .yaml, .yml or .json file whose name, without extension,
// ends with the configured basename.
func (c *Config) SchemaFiles() ([]string, error) {
	root := c.SchemaDir()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		switch ext {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		if strings.HasSuffix(strings.TrimSuffix(d.Name(), ext), c.Generator.Schema.Basename) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("config: schema files: %w", err)
	}
	return files, nil
}
