package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// ConnectionsFile is the file written by the connections builder.
const ConnectionsFile = "connections.go"

// ConnectionsBuilder converts the configured connections to a Go source
// file opening them at run time.
type ConnectionsBuilder struct {
	// Package is the name of the generated package, "conf" if empty.
	Package string
}

// Name implements gen.GraphBuilder.
func (ConnectionsBuilder) Name() string { return "ConnectionsBuilder" }

// BuildGraph implements gen.GraphBuilder.
func (b ConnectionsBuilder) BuildGraph(g *gen.Graph) ([]*gen.Artifact, error) {
	pkg := b.Package
	if pkg == "" {
		pkg = "conf"
	}
	conns := make(jen.Dict, len(g.Connections))
	for _, c := range g.Connections {
		p, err := platform.New(c.Adapter, g.PlatformOptions...)
		if err != nil {
			return nil, gen.NewConfigError("connections."+c.Name+".adapter", c.Adapter, err.Error())
		}
		dsn, err := p.NormalizeDSN(c.DSN, c.User, c.Password)
		if err != nil {
			return nil, gen.NewConfigError("connections."+c.Name+".dsn", c.DSN, err.Error())
		}
		d := jen.Dict{
			jen.Id("Adapter"): jen.Lit(p.Name()),
			jen.Id("Driver"):  jen.Lit(dialect.Driver(p.Name())),
			jen.Id("DSN"):     jen.Lit(dsn),
		}
		if c.Charset != "" {
			d[jen.Id("Charset")] = jen.Lit(c.Charset)
		}
		if len(c.Queries) > 0 {
			d[jen.Id("Queries")] = stringSlice(c.Queries)
		}
		if len(c.Slaves) > 0 {
			d[jen.Id("Slaves")] = stringSlice(c.Slaves)
		}
		conns[jen.Lit(c.Name)] = jen.Values(d)
	}

	f := gen.NewFile(g.Config, pkg)
	f.Comment("Connection describes a runtime database connection.")
	f.Type().Id("Connection").Struct(
		jen.Id("Adapter").String(),
		jen.Comment("Driver is the database/sql driver name. The driver must be imported"),
		jen.Comment("by the application."),
		jen.Id("Driver").String(),
		jen.Id("DSN").String(),
		jen.Id("Charset").String(),
		jen.Comment("Queries are run after the connection is opened."),
		jen.Id("Queries").Index().String(),
		jen.Comment("Slaves are the DSNs of the read replicas."),
		jen.Id("Slaves").Index().String(),
	)
	f.Comment("DefaultConnection is the name of the connection used by default.")
	f.Const().Id("DefaultConnection").Op("=").Lit(g.DefaultConnection)
	f.Comment("Connections holds the configured connections by name.")
	f.Var().Id("Connections").Op("=").Map(jen.String()).Id("Connection").Values(conns)
	f.Comment("Open opens the connection with the given name and runs its initial queries.")
	f.Func().Id("Open").Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("name").String()).Params(jen.Op("*").Qual("database/sql", "DB"), jen.Error()).Block(
		jen.List(jen.Id("c"), jen.Id("ok")).Op(":=").Id("Connections").Index(jen.Id("name")),
		jen.If(jen.Op("!").Id("ok")).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("unknown connection %q"), jen.Id("name"))),
		),
		jen.List(jen.Id("db"), jen.Err()).Op(":=").Qual("database/sql", "Open").Call(jen.Id("c").Dot("Driver"), jen.Id("c").Dot("DSN")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.For(jen.List(jen.Id("_"), jen.Id("q")).Op(":=").Range().Id("c").Dot("Queries")).Block(
			jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("q")), jen.Err().Op("!=").Nil()).Block(
				jen.Id("db").Dot("Close").Call(),
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("connection %s: %w"), jen.Id("name"), jen.Err())),
			),
		),
		jen.Return(jen.Id("db"), jen.Nil()),
	)
	a, err := renderGraphFile(f, ConnectionsFile, "")
	if err != nil {
		return nil, err
	}
	return []*gen.Artifact{a}, nil
}

// ConfigBuilders returns a set holding only the connections builder. Its
// output is the package of the given name.
func ConfigBuilders(pkg string) *gen.BuilderSet {
	s := gen.NewBuilderSet()
	s.RegisterGraph(ConnectionsBuilder{Package: pkg})
	return s
}

func stringSlice(vs []string) jen.Code {
	return jen.Index().String().ValuesFunc(func(vals *jen.Group) {
		for _, v := range vs {
			vals.Lit(v)
		}
	})
}
