package gen

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/rs/zerolog"

	"github.com/syssam/strata/dialect/platform"
)

// Role is the logical category of a generated artifact.
type Role string

// Builder roles.
const (
	RoleObject               Role = "object"
	RoleActiveRecordTrait    Role = "activerecordtrait"
	RoleObjectMultiExtend    Role = "objectmultiextend"
	RoleRepository           Role = "repository"
	RoleRepositoryStub       Role = "repositorystub"
	RoleQuery                Role = "query"
	RoleProxy                Role = "proxy"
	RoleQueryStub            Role = "querystub"
	RoleQueryInheritance     Role = "queryinheritance"
	RoleQueryInheritanceStub Role = "queryinheritancestub"
	RoleInheritanceEntityMap Role = "inheritanceentitymap"
	RoleEntityMap            Role = "entitymap"
	RoleDDL                  Role = "ddl"
	RoleDataSQL              Role = "datasql"
)

var roles = []Role{
	RoleObject,
	RoleActiveRecordTrait,
	RoleObjectMultiExtend,
	RoleRepository,
	RoleRepositoryStub,
	RoleQuery,
	RoleProxy,
	RoleQueryStub,
	RoleQueryInheritance,
	RoleQueryInheritanceStub,
	RoleInheritanceEntityMap,
	RoleEntityMap,
	RoleDDL,
	RoleDataSQL,
}

// Roles returns all builder roles in generation order.
func Roles() []Role { return slices.Clone(roles) }

// Valid reports if the role is a known builder role.
func (r Role) Valid() bool { return slices.Contains(roles, r) }

// BuilderMapping maps a role to the name of the builder implementing it.
type BuilderMapping map[Role]string

// Artifact is an output unit produced by a builder for one type and role.
type Artifact struct {
	// Path of the artifact, relative to the target directory.
	Path string
	Role Role
	// Entity is the type name, empty for graph-level artifacts.
	Entity  string
	Content []byte
	// Overwrite is false for stubs: an existing file is left untouched.
	Overwrite bool
}

// BuildContext is the read-only view handed to a builder for one
// (type, role) pair.
type BuildContext struct {
	Graph    *Graph
	Type     *Type
	Role     Role
	Platform platform.Platform
	Registry *Registry
	Logger   zerolog.Logger
}

// Builder generates the artifacts of a role for one type.
type Builder interface {
	// Name is the name the builder is configured with.
	Name() string
	// Applies reports if the builder produces artifacts for the type.
	Applies(t *Type) bool
	// Build returns the artifacts of the type.
	Build(ctx *BuildContext) ([]*Artifact, error)
}

// GraphBuilder generates artifacts that depend on the whole graph.
type GraphBuilder interface {
	Name() string
	BuildGraph(g *Graph) ([]*Artifact, error)
}

// BuilderSet holds the available builder implementations and the default
// implementation of each role.
type BuilderSet struct {
	mu       sync.RWMutex
	builders map[string]Builder
	defaults map[Role]string
	graph    []GraphBuilder
}

// NewBuilderSet returns an empty set.
func NewBuilderSet() *BuilderSet {
	return &BuilderSet{
		builders: make(map[string]Builder),
		defaults: make(map[Role]string),
	}
}

// Register adds the builder to the set, and makes it the default
// implementation of the given roles.
func (s *BuilderSet) Register(b Builder, defaultFor ...Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builders[b.Name()] = b
	for _, r := range defaultFor {
		s.defaults[r] = b.Name()
	}
}

// RegisterGraph adds a graph-level builder to the set.
func (s *BuilderSet) RegisterGraph(b GraphBuilder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = append(s.graph, b)
}

// Graph returns the graph-level builders.
func (s *BuilderSet) Graph() []GraphBuilder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.graph)
}

// Resolve returns the builder of every role, applying the mapping before
// the defaults. Roles without an implementation are left out.
func (s *BuilderSet) Resolve(m BuilderMapping) (map[Role]Builder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resolved := make(map[Role]Builder, len(roles))
	for _, r := range roles {
		name, ok := m[r]
		if !ok {
			name, ok = s.defaults[r]
		}
		if !ok || name == "" {
			continue
		}
		b, ok := s.builders[name]
		if !ok {
			return nil, NewConfigError("builders."+string(r), name, "unknown builder implementation")
		}
		resolved[r] = b
	}
	for r := range m {
		if !r.Valid() {
			return nil, NewConfigError("builders."+string(r), m[r], "unknown builder role")
		}
	}
	return resolved, nil
}

// NewFile creates a new jen file with the configured header.
func (c *BuildContext) NewFile(pkg string) *jen.File {
	return NewFile(c.Graph.Config, pkg)
}

// NewFile creates a new jen file with the header of the config.
func NewFile(cfg *Config, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(cfg.HeaderLine())
	return f
}

// Render renders the file into an artifact of the context type and role.
func (c *BuildContext) Render(f *jen.File, path string, overwrite bool) (*Artifact, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	return &Artifact{
		Path:      path,
		Role:      c.Role,
		Entity:    c.Type.Name,
		Content:   buf.Bytes(),
		Overwrite: overwrite,
	}, nil
}
