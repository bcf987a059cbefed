package om

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
)

// Names of the built-in builders, as used in the builders section of the
// configuration.
const (
	ObjectBuilderName               = "ObjectBuilder"
	ActiveRecordBuilderName         = "ActiveRecordTraitBuilder"
	MultiExtendObjectBuilderName    = "MultiExtendObjectBuilder"
	RepositoryBuilderName           = "RepositoryBuilder"
	RepositoryStubBuilderName       = "RepositoryStubBuilder"
	QueryBuilderName                = "QueryBuilder"
	QueryStubBuilderName            = "QueryStubBuilder"
	QueryInheritanceBuilderName     = "QueryInheritanceBuilder"
	QueryInheritanceStubBuilderName = "QueryInheritanceStubBuilder"
	ProxyBuilderName                = "ProxyBuilder"
	EntityMapBuilderName            = "EntityMapBuilder"
	InheritanceEntityMapBuilderName = "InheritanceEntityMapBuilder"
	DDLBuilderName                  = "DDLBuilder"
)

// builder adapts a build function to the gen.Builder interface.
type builder struct {
	name    string
	applies func(*gen.Type) bool
	build   func(*gen.BuildContext) ([]*gen.Artifact, error)
}

func (b builder) Name() string { return b.name }

func (b builder) Applies(t *gen.Type) bool { return b.applies == nil || b.applies(t) }

func (b builder) Build(ctx *gen.BuildContext) ([]*gen.Artifact, error) { return b.build(ctx) }

// Builders returns the built-in builders. Every builder is the default
// implementation of its role, and the support builder emits the helpers
// shared by the generated packages.
func Builders() *gen.BuilderSet {
	s := gen.NewBuilderSet()
	s.Register(builder{name: ObjectBuilderName, build: buildObject}, gen.RoleObject)
	s.Register(builder{name: ActiveRecordBuilderName, applies: hasRecord, build: buildRecord}, gen.RoleActiveRecordTrait)
	s.Register(builder{name: MultiExtendObjectBuilderName, applies: (*gen.Type).HasInheritance, build: buildMultiExtend}, gen.RoleObjectMultiExtend)
	s.Register(builder{name: RepositoryBuilderName, build: buildRepository}, gen.RoleRepository)
	s.Register(builder{name: RepositoryStubBuilderName, build: buildRepositoryStub}, gen.RoleRepositoryStub)
	s.Register(builder{name: QueryBuilderName, build: buildQuery}, gen.RoleQuery)
	s.Register(builder{name: QueryStubBuilderName, build: buildQueryStub}, gen.RoleQueryStub)
	s.Register(builder{name: QueryInheritanceBuilderName, applies: (*gen.Type).HasInheritance, build: buildQueryInheritance}, gen.RoleQueryInheritance)
	s.Register(builder{name: QueryInheritanceStubBuilderName, applies: (*gen.Type).HasInheritance, build: buildQueryInheritanceStub}, gen.RoleQueryInheritanceStub)
	s.Register(builder{name: ProxyBuilderName, build: buildProxy}, gen.RoleProxy)
	s.Register(builder{name: EntityMapBuilderName, build: buildEntityMap}, gen.RoleEntityMap)
	s.Register(builder{name: InheritanceEntityMapBuilderName, applies: (*gen.Type).HasInheritance, build: buildInheritanceEntityMap}, gen.RoleInheritanceEntityMap)
	s.Register(builder{name: DDLBuilderName, build: buildDDL}, gen.RoleDDL)
	s.RegisterGraph(SupportBuilder{})
	return s
}

// DDLBuilders returns a set holding the ddl builder alone. It is used to
// emit the SQL schema without the Go code.
func DDLBuilders() *gen.BuilderSet {
	s := gen.NewBuilderSet()
	s.Register(builder{name: DDLBuilderName, build: buildDDL}, gen.RoleDDL)
	return s
}

// enabled reports if the role is not disabled by the builder mapping.
func enabled(c *gen.Config, r gen.Role) bool {
	name, ok := c.Builders[r]
	return !ok || name != ""
}

// one renders a single file artifact.
func one(ctx *gen.BuildContext, f *jen.File, path string, overwrite bool) ([]*gen.Artifact, error) {
	a, err := ctx.Render(f, path, overwrite)
	if err != nil {
		return nil, err
	}
	return []*gen.Artifact{a}, nil
}

// goPath returns the path of a Go file in the directory of the type.
func goPath(t *gen.Type, suffix string) string {
	return gen.CreateFilePath(t.Dir(), t.FileName(suffix), ".go")
}

// objectRelations returns the relations whose target lives in the package
// of the type. Relations across packages would make the generated packages
// import each other through the derived inverses.
func objectRelations(t *gen.Type) []*gen.Relation {
	var rels []*gen.Relation
	for _, r := range t.Relations {
		if r.Target.PkgPath() == t.PkgPath() {
			rels = append(rels, r)
		}
	}
	return rels
}

// filterable reports if the column can be compared in a WHERE clause.
func filterable(f *gen.Field) bool {
	t := f.Type()
	switch {
	case t.IsTemporal(), t.IsEnum():
		return true
	case t.IsLOB():
		return false
	default:
		return f.Handler.Primitive()
	}
}

// column returns the quoted <table>.<column> reference of the field.
func column(q func(string) string, t *gen.Type, f *gen.Field) string {
	return q(t.Table) + "." + q(f.Column)
}

// placeholders returns n placeholders of the platform, numbered from the
// given position.
func placeholders(ph func(int) string, n, from int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = ph(from + i)
	}
	return strings.Join(ps, ", ")
}

// assign stores the literal in the struct field of the receiver, taking
// the address of a local copy for pointer fields.
func assign(recv string, f *gen.Field, lit gen.Literal) jen.Code {
	dst := func() *jen.Statement { return jen.Id(recv).Dot(f.StructField()) }
	if !f.Pointer() || lit.IsObject() {
		return dst().Op("=").Add(lit.Code())
	}
	return jen.Block(
		jen.Id("val").Op(":=").Add(lit.Code()),
		dst().Op("=").Op("&").Id("val"),
	)
}

// headerComment strips the comment markers of the configured header.
func headerComment(c *gen.Config) string {
	return strings.TrimSpace(strings.TrimPrefix(c.HeaderLine(), "//"))
}
