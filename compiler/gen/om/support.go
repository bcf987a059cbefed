package om

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/platform"
)

// SupportFile is the name of the helper file emitted in every generated
// package.
const SupportFile = "strata"

// SupportBuilder emits the helpers shared by the generated files of a
// package: the Querier interface and the placeholder rebinding of object
// packages, and the map types of entity-map packages.
type SupportBuilder struct{}

// Name implements gen.GraphBuilder.
func (SupportBuilder) Name() string { return "SupportBuilder" }

// BuildGraph implements gen.GraphBuilder.
func (SupportBuilder) BuildGraph(g *gen.Graph) ([]*gen.Artifact, error) {
	var (
		arts       []*gen.Artifact
		objectDirs = groupBy(g.Nodes, (*gen.Type).Dir)
		mapDirs    = groupBy(g.Nodes, (*gen.Type).MapDir)
	)
	if enabled(g.Config, gen.RoleObject) || enabled(g.Config, gen.RoleRepository) {
		for _, nodes := range objectDirs {
			t := nodes[0]
			f := gen.NewFile(g.Config, t.Package())
			genQuerier(f)
			genRebind(f, g.Platform)
			genArrayCodec(f)
			a, err := renderGraphFile(f, gen.CreateFilePath(t.Dir(), SupportFile, ".go"), gen.RoleObject)
			if err != nil {
				return nil, err
			}
			arts = append(arts, a)
		}
	}
	if enabled(g.Config, gen.RoleEntityMap) {
		for _, nodes := range mapDirs {
			t := nodes[0]
			f := gen.NewFile(g.Config, t.MapPackage())
			genMapTypes(f)
			genMapRegistry(f, g.Config, nodes)
			a, err := renderGraphFile(f, gen.CreateFilePath(t.MapDir(), SupportFile, ".go"), gen.RoleEntityMap)
			if err != nil {
				return nil, err
			}
			arts = append(arts, a)
		}
	}
	return arts, nil
}

// groupBy groups the nodes by key, keeping the declaration order of the
// first node of every group.
func groupBy(nodes []*gen.Type, key func(*gen.Type) string) [][]*gen.Type {
	var (
		groups [][]*gen.Type
		index  = make(map[string]int)
	)
	for _, t := range nodes {
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	return groups
}

func renderGraphFile(f *jen.File, path string, role gen.Role) (*gen.Artifact, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	return &gen.Artifact{Path: path, Role: role, Content: buf.Bytes(), Overwrite: true}, nil
}

func genQuerier(f *jen.File) {
	args := func() []jen.Code {
		return []jen.Code{
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("query").String(),
			jen.Id("args").Op("...").Any(),
		}
	}
	f.Comment("Querier executes the statements of the repositories. *sql.DB, *sql.Conn and")
	f.Comment("*sql.Tx implement it.")
	f.Type().Id("Querier").Interface(
		jen.Id("ExecContext").Params(args()...).Params(jen.Qual("database/sql", "Result"), jen.Error()),
		jen.Id("QueryContext").Params(args()...).Params(jen.Op("*").Qual("database/sql", "Rows"), jen.Error()),
		jen.Id("QueryRowContext").Params(args()...).Op("*").Qual("database/sql", "Row"),
	)
}

// genRebind generates rebind, replacing the ? markers of the queries with
// the numbered placeholders of the platform.
func genRebind(f *jen.File, p platform.Platform) {
	f.Commentf("rebind replaces the ? markers of the query with the %s placeholders.", p.Name())
	fn := f.Func().Id("rebind").Params(jen.Id("query").String()).String()
	if p.Placeholder(1) == p.Placeholder(2) {
		fn.Block(jen.Return(jen.Id("query")))
		return
	}
	prefix := strings.TrimSuffix(p.Placeholder(1), "1")
	fn.Block(
		jen.Var().Defs(
			jen.Id("b").Qual("strings", "Builder"),
			jen.Id("n").Int(),
		),
		jen.For(jen.List(jen.Id("_"), jen.Id("r")).Op(":=").Range().Id("query")).Block(
			jen.If(jen.Id("r").Op("!=").LitRune('?')).Block(
				jen.Id("b").Dot("WriteRune").Call(jen.Id("r")),
				jen.Continue(),
			),
			jen.Id("n").Op("++"),
			jen.Id("b").Dot("WriteString").Call(jen.Lit(prefix)),
			jen.Id("b").Dot("WriteString").Call(jen.Qual("strconv", "Itoa").Call(jen.Id("n"))),
		),
		jen.Return(jen.Id("b").Dot("String").Call()),
	)
}

func genArrayCodec(f *jen.File) {
	f.Comment(`splitArray decodes an array column stored as "| a | b |".`)
	f.Func().Id("splitArray").Params(jen.Id("s").String()).Index().String().Block(
		jen.Id("s").Op("=").Qual("strings", "Trim").Call(jen.Id("s"), jen.Lit(" |")),
		jen.If(jen.Id("s").Op("==").Lit("")).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Qual("strings", "Split").Call(jen.Id("s"), jen.Lit(" | "))),
	)
	f.Comment(`joinArray encodes an array column as "| a | b |".`)
	f.Func().Id("joinArray").Params(jen.Id("v").Index().String()).String().Block(
		jen.If(jen.Len(jen.Id("v")).Op("==").Lit(0)).Block(jen.Return(jen.Lit(""))),
		jen.Return(jen.Lit("| ").Op("+").Qual("strings", "Join").Call(jen.Id("v"), jen.Lit(" | ")).Op("+").Lit(" |")),
	)
}

func genMapTypes(f *jen.File) {
	f.Comment("ColumnMap describes a column of a table.")
	f.Type().Id("ColumnMap").Struct(
		jen.Id("Name").String(),
		jen.Id("Field").String(),
		jen.Id("GoName").String(),
		jen.Id("Type").String(),
		jen.Id("SQLType").String(),
		jen.Id("Size").Int(),
		jen.Id("Scale").Int(),
		jen.Id("Nullable").Bool(),
		jen.Id("PrimaryKey").Bool(),
		jen.Id("AutoIncrement").Bool(),
		jen.Comment("Default is the SQL default of the column, empty if none."),
		jen.Id("Default").String(),
		jen.Comment("GoDefault is the Go literal of the default, empty if none."),
		jen.Id("GoDefault").String(),
		jen.Id("ValueSet").Index().String(),
	)
	f.Comment("RelationMap describes a relation between two tables.")
	f.Type().Id("RelationMap").Struct(
		jen.Id("Name").String(),
		jen.Id("Kind").String(),
		jen.Id("Target").String(),
		jen.Id("LocalColumn").String(),
		jen.Id("ForeignColumn").String(),
		jen.Id("OnDelete").String(),
		jen.Id("OnUpdate").String(),
	)
	f.Comment("EntityMap describes the table of a class.")
	f.Type().Id("EntityMap").Struct(
		jen.Id("Name").String(),
		jen.Id("Class").String(),
		jen.Id("Table").String(),
		jen.Id("Abstract").Bool(),
		jen.Id("ReadOnly").Bool(),
		jen.Comment("Parent and InheritanceKey are set on the maps of inheritance children."),
		jen.Id("Parent").String(),
		jen.Id("InheritanceColumn").String(),
		jen.Id("InheritanceKey").String(),
		jen.Id("Columns").Index().Id("ColumnMap"),
		jen.Id("Relations").Index().Id("RelationMap"),
	)
	f.Comment("Column returns the column with the given name.")
	f.Func().Params(jen.Id("m").Op("*").Id("EntityMap")).Id("Column").Params(jen.Id("name").String()).Params(jen.Id("ColumnMap"), jen.Bool()).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("c")).Op(":=").Range().Id("m").Dot("Columns")).Block(
			jen.If(jen.Id("c").Dot("Name").Op("==").Id("name")).Block(jen.Return(jen.Id("c"), jen.True())),
		),
		jen.Return(jen.Id("ColumnMap").Values(), jen.False()),
	)
}

// genMapRegistry generates Lookup over the entity maps of the package.
func genMapRegistry(f *jen.File, c *gen.Config, nodes []*gen.Type) {
	children := enabled(c, gen.RoleInheritanceEntityMap)
	f.Var().Id("entityMaps").Op("=").Map(jen.String()).Op("*").Id("EntityMap").Values(jen.DictFunc(func(d jen.Dict) {
		for _, t := range nodes {
			d[jen.Lit(t.Name)] = jen.Id(t.MapName())
			if !children || !t.HasInheritance() {
				continue
			}
			for _, ch := range t.Inheritance.Children {
				d[jen.Lit(ch.Class)] = jen.Id(ch.Class + "EntityMap")
			}
		}
	}))
	f.Comment("Lookup returns the entity map of the class.")
	f.Func().Id("Lookup").Params(jen.Id("class").String()).Params(jen.Op("*").Id("EntityMap"), jen.Bool()).Block(
		jen.List(jen.Id("m"), jen.Id("ok")).Op(":=").Id("entityMaps").Index(jen.Id("class")),
		jen.Return(jen.Id("m"), jen.Id("ok")),
	)
}
