package gen

import (
	"fmt"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// Graph holds the nodes/entities of the loaded schema, the platform of the
// default connection and the type registry. It is built once per run and
// read-only during generation.
type Graph struct {
	*Config
	// Nodes are the types of the graph, in declaration order.
	Nodes []*Type
	// Schemas holds the raw schemas the graph was built from.
	Schemas []*load.Schema
	// Registry resolves semantic types to their handlers.
	Registry *Registry
	// Platform of the default connection.
	Platform platform.Platform
	nodes    map[string]*Type
}

// NewGraph creates a new Graph for the code generation from the given
// schema definitions. It fails if one of the schemas is invalid.
func NewGraph(c *Config, schemas ...*load.Schema) (*Graph, error) {
	if c == nil {
		c = DefaultConfig()
	}
	reg, err := NewRegistry(c.Types, c.Handlers...)
	if err != nil {
		return nil, err
	}
	adapter := c.Adapter
	if conn, ok := c.connection(); ok && adapter == "" {
		adapter = conn.Adapter
	}
	if adapter == "" {
		adapter = dialect.MySQL
	}
	p, err := platform.New(adapter, c.PlatformOptions...)
	if err != nil {
		return nil, NewConfigError("Adapter", adapter, err.Error())
	}
	g := &Graph{
		Config:   c,
		Schemas:  schemas,
		Registry: reg,
		Platform: p,
		nodes:    make(map[string]*Type, len(schemas)),
	}
	for _, s := range schemas {
		if err := g.addNode(s); err != nil {
			return nil, err
		}
	}
	if err := g.checkClasses(); err != nil {
		return nil, err
	}
	for _, t := range g.Nodes {
		if err := g.addRelations(t); err != nil {
			return nil, err
		}
	}
	g.addInverses()
	return g, nil
}

// Node returns the type with the given schema name.
func (g *Graph) Node(name string) (*Type, bool) {
	t, ok := g.nodes[name]
	return t, ok
}

// Connection returns the default connection, if configured.
func (g *Graph) Connection() (*Connection, bool) { return g.connection() }

func (c *Config) connection() (*Connection, bool) {
	for i := range c.Connections {
		if c.Connections[i].Name == c.DefaultConnection {
			return &c.Connections[i], true
		}
	}
	return nil, false
}

// checkClasses checks that inheritance classes do not clash with each other
// or with the types of the graph.
func (g *Graph) checkClasses() error {
	classes := make(map[string]struct{})
	for _, t := range g.Nodes {
		if !t.HasInheritance() {
			continue
		}
		for _, ch := range t.Inheritance.Children {
			_, node := g.nodes[ch.Class]
			if _, dup := classes[ch.Class]; dup || node {
				return NewSchemaError(t.Name, t.Inheritance.Field.Name, fmt.Sprintf("inheritance class %q redeclared", ch.Class), nil)
			}
			classes[ch.Class] = struct{}{}
		}
	}
	return nil
}

// addNode creates a new Type/Node/Ent to the graph.
func (g *Graph) addNode(schema *load.Schema) error {
	if _, ok := g.nodes[schema.Name]; ok {
		return NewSchemaError(schema.Name, "", "type redeclared", nil)
	}
	t, err := newType(g.Config, g.Registry, schema)
	if err != nil {
		return err
	}
	g.Nodes = append(g.Nodes, t)
	g.nodes[schema.Name] = t
	return nil
}

// addRelations resolves the declared relations of the type.
func (g *Graph) addRelations(t *Type) error {
	for _, rd := range t.schema.Relations {
		target, ok := g.nodes[rd.Target]
		if !ok {
			return NewEdgeError(t.Name, rd.Target, rd.Name, "target type does not exist", nil)
		}
		rel := ParseRel(rd.Kind)
		if rel == Unk {
			return NewEdgeError(t.Name, target.Name, rd.Name, fmt.Sprintf("unknown relation kind %q", rd.Kind), nil)
		}
		r := &Relation{
			def:      rd,
			Name:     rd.Name,
			Owner:    t,
			Target:   target,
			Rel:      rel,
			OnDelete: rd.OnDelete,
			OnUpdate: rd.OnUpdate,
		}
		var err error
		switch rel {
		case M2O, O2O:
			r.LocalField, err = localKey(t, rd.LocalField, rd.Name)
			if err == nil {
				r.ForeignField, err = referencedKey(target, rd.ForeignField)
			}
		case O2M:
			r.LocalField, err = referencedKey(t, rd.LocalField)
			if err == nil {
				name := rd.ForeignField
				if name == "" {
					name = camel(snake(t.schema.Name)) + "Id"
				}
				r.ForeignField, err = localKey(target, name, "")
			}
		}
		if err != nil {
			return NewEdgeError(t.Name, target.Name, rd.Name, "", err)
		}
		t.Relations = append(t.Relations, r)
	}
	return nil
}

// addInverses derives the one-to-many side of every many-to-one relation
// that has no declared inverse.
func (g *Graph) addInverses() {
	for _, t := range g.Nodes {
		for _, r := range t.Relations {
			if r.Rel != M2O || r.Derived || r.Ref != nil {
				continue
			}
			if inv := declaredInverse(r); inv != nil {
				r.Ref, inv.Ref = inv, r
				continue
			}
			name := camel(snake(g.plural(t.schema.Name)))
			if taken(r.Target, name) {
				name += "By" + r.LocalField.GoName()
			}
			inv := &Relation{
				Name:         name,
				Owner:        r.Target,
				Target:       t,
				Rel:          O2M,
				LocalField:   r.ForeignField,
				ForeignField: r.LocalField,
				Ref:          r,
				Derived:      true,
			}
			r.Ref = inv
			r.Target.Relations = append(r.Target.Relations, inv)
		}
	}
}

// plural applies the configured pluralizer.
func (g *Graph) plural(name string) string {
	if g.ObjectModel.Pluralizer == "none" {
		return name
	}
	return plural(name)
}

func declaredInverse(r *Relation) *Relation {
	for _, inv := range r.Target.Relations {
		if inv.Rel == O2M && inv.Target == r.Owner && inv.ForeignField == r.LocalField {
			return inv
		}
	}
	return nil
}

func taken(t *Type, name string) bool {
	if _, ok := t.fields[name]; ok {
		return true
	}
	for _, r := range t.Relations {
		if r.Name == name {
			return true
		}
	}
	return false
}

// localKey returns the named field of t. An empty name falls back to
// <relation>Id.
func localKey(t *Type, name, relation string) (*Field, error) {
	if name == "" {
		name = relation + "Id"
	}
	if f, ok := t.fields[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("field %q does not exist on type %q", name, t.Name)
}

// referencedKey returns the named field of t, or its single-column primary
// key when name is empty.
func referencedKey(t *Type, name string) (*Field, error) {
	if name != "" {
		return localKey(t, name, "")
	}
	if len(t.PrimaryKey) != 1 {
		return nil, fmt.Errorf("type %q requires a single-column primary key", t.Name)
	}
	return t.PrimaryKey[0], nil
}
