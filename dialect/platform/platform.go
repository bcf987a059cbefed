// Package platform provides one strategy per supported database adapter.
//
// A Platform is stateless: it exposes the temporal formats used to render
// default values, the dialect quirks the default-value engine must honour,
// and the DDL hints consumed by the builders. Instances returned by Get are
// shared between goroutines.
package platform

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema/field"
)

// Platform describes the dialect-specific rules of one database adapter.
type Platform interface {
	// Name returns the canonical adapter name (see the dialect package).
	Name() string
	// TemporalFormatter returns the strftime format used to render a
	// temporal value of the given kind. It is defined for every kind.
	TemporalFormatter(kind field.TemporalKind) string
	// IsZeroDateException reports if the raw default is a zero-date
	// sentinel that must be treated as "no default".
	IsZeroDateException(raw string) bool
	// TableEngine returns the table-storage keyword and engine name, or
	// empty strings if the platform has no such notion.
	TableEngine() (keyword, engine string)
	// SequenceName returns the auto-increment sequence for the table, or an
	// empty string if the platform uses native auto-increment columns.
	SequenceName(table string) string
	// ForeignKeyPragma reports the configured foreign key toggle. The second
	// value is false when the platform has no such pragma or it was not set.
	ForeignKeyPragma() (enabled, set bool)
	// ColumnType returns the native SQL type of a column.
	ColumnType(ColumnSpec) (string, error)
	// ParseColumnType maps a native SQL type to its semantic type.
	ParseColumnType(raw string) (field.Type, error)
	// Quote quotes an identifier.
	Quote(ident string) string
	// QuoteLiteral quotes a string literal for use in DDL.
	QuoteLiteral(s string) string
	// BoolLiteral returns the SQL literal of a boolean value.
	BoolLiteral(v bool) string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// AutoIncrement returns the column clause for auto-increment columns.
	// inlinePK reports that the clause already declares the primary key.
	AutoIncrement() (clause string, inlinePK bool)
	// NormalizeDSN converts a configured connection string to the form
	// expected by the Go driver of the platform.
	NormalizeDSN(dsn, user, password string) (string, error)
}

// ColumnSpec describes a column for native type rendering.
type ColumnSpec struct {
	Type          field.Type
	Size          int
	Scale         int
	AutoIncrement bool
}

// Default temporal formats shared by most platforms.
const (
	DateFormat      = "%Y-%m-%d"
	TimeFormat      = "%H:%M:%S"
	TimestampFormat = "%Y-%m-%d %H:%M:%S"
)

// Default hint values.
const (
	DefaultTableEngineKeyword = "ENGINE"
	DefaultTableType          = "InnoDB"
	DefaultSequencePattern    = "${table}_SEQ"
	// DefaultVarcharSize is used when a varchar column declares no size.
	DefaultVarcharSize = 255
)

// Option configures the hints of a platform.
type Option func(*hints)

type hints struct {
	engineKeyword   string
	tableType       string
	sequencePattern string
	foreignKeys     *bool
}

func newHints(opts []Option) hints {
	h := hints{
		engineKeyword:   DefaultTableEngineKeyword,
		tableType:       DefaultTableType,
		sequencePattern: DefaultSequencePattern,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// WithTableEngine overrides the mysql table engine keyword and type.
// Empty values keep the defaults.
func WithTableEngine(keyword, tableType string) Option {
	return func(h *hints) {
		if keyword != "" {
			h.engineKeyword = keyword
		}
		if tableType != "" {
			h.tableType = tableType
		}
	}
}

// WithSequencePattern overrides the oracle auto-increment sequence pattern.
// The pattern may reference the table name with ${table}.
func WithSequencePattern(pattern string) Option {
	return func(h *hints) {
		if pattern != "" {
			h.sequencePattern = pattern
		}
	}
}

// WithForeignKeys sets the sqlite foreign key pragma.
func WithForeignKeys(enabled bool) Option {
	return func(h *hints) {
		h.foreignKeys = &enabled
	}
}

// New returns a new platform for the given adapter name. Adapter aliases
// (e.g. "postgres") are accepted.
func New(adapter string, opts ...Option) (Platform, error) {
	name, ok := dialect.Normalize(adapter)
	if !ok {
		return nil, &UnsupportedAdapterError{Adapter: adapter}
	}
	h := newHints(opts)
	switch name {
	case dialect.MySQL:
		return &MySQL{hints: h}, nil
	case dialect.PgSQL:
		return &PgSQL{hints: h}, nil
	case dialect.SQLite:
		return &SQLite{hints: h}, nil
	case dialect.MSSQL, dialect.SQLSrv:
		return &MSSQL{name: name, hints: h}, nil
	case dialect.Oracle:
		return &Oracle{hints: h}, nil
	default:
		return nil, &UnsupportedAdapterError{Adapter: adapter}
	}
}

// MustNew is like New but panics on error.
func MustNew(adapter string, opts ...Option) Platform {
	p, err := New(adapter, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

var cache sync.Map // canonical name => Platform

// Get returns the shared, default-configured platform of the adapter.
func Get(adapter string) (Platform, error) {
	name, ok := dialect.Normalize(adapter)
	if !ok {
		return nil, &UnsupportedAdapterError{Adapter: adapter}
	}
	if p, ok := cache.Load(name); ok {
		return p.(Platform), nil
	}
	p, err := New(name)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(name, p)
	return actual.(Platform), nil
}

// ErrUnsupportedAdapter is matched by errors.Is for every UnsupportedAdapterError.
var ErrUnsupportedAdapter = errors.New("strata: unsupported adapter")

// UnsupportedAdapterError is returned when a platform is requested for an
// unknown adapter name.
type UnsupportedAdapterError struct {
	Adapter string
}

// Error implements the error interface.
func (e *UnsupportedAdapterError) Error() string {
	return fmt.Sprintf("strata: unsupported adapter %q (supported: %s)", e.Adapter, strings.Join(dialect.Adapters(), ", "))
}

// Is reports whether the target matches ErrUnsupportedAdapter.
func (e *UnsupportedAdapterError) Is(target error) bool {
	return target == ErrUnsupportedAdapter
}

// base holds the behaviour shared by all platforms.
type base struct{}

func (base) TemporalFormatter(kind field.TemporalKind) string {
	switch kind {
	case field.KindDate:
		return DateFormat
	case field.KindTime:
		return TimeFormat
	default:
		return TimestampFormat
	}
}

func (base) IsZeroDateException(string) bool { return false }

func (base) TableEngine() (string, string) { return "", "" }

func (base) SequenceName(string) string { return "" }

func (base) ForeignKeyPragma() (bool, bool) { return false, false }

func (base) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (base) QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (base) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (base) Placeholder(int) string { return "?" }

// pdoPairs splits a "<prefix>:k1=v1;k2=v2" connection string into its
// key/value pairs. ok is false if the DSN does not carry the prefix.
func pdoPairs(dsn, prefix string) (map[string]string, bool) {
	rest, ok := strings.CutPrefix(dsn, prefix+":")
	if !ok {
		return nil, false
	}
	pairs := make(map[string]string)
	for _, part := range strings.Split(rest, ";") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		pairs[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return pairs, true
}
