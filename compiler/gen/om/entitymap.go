package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/platform"
)

// buildEntityMap generates the entity map of the type in the map package
// ({map}/{name}.go): the runtime description of its table, columns and
// relations.
func buildEntityMap(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	f := ctx.NewFile(t.MapPackage())

	columns := make([]jen.Code, 0, len(t.Fields))
	for _, fd := range t.Fields {
		c, err := columnMap(p, fd)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	relations := make([]jen.Code, 0, len(t.Relations))
	for _, r := range t.Relations {
		relations = append(relations, relationMap(r))
	}
	fields := jen.Dict{
		jen.Id("Name"):      jen.Lit(t.Name),
		jen.Id("Class"):     jen.Lit(t.PkgPath() + "." + t.Name),
		jen.Id("Table"):     jen.Lit(t.Table),
		jen.Id("Columns"):   jen.Index().Id("ColumnMap").Values(columns...),
		jen.Id("Relations"): jen.Index().Id("RelationMap").Values(relations...),
	}
	if t.Abstract {
		fields[jen.Id("Abstract")] = jen.True()
	}
	if t.ReadOnly {
		fields[jen.Id("ReadOnly")] = jen.True()
	}
	if t.HasInheritance() {
		fields[jen.Id("InheritanceColumn")] = jen.Lit(t.Inheritance.Field.Column)
	}

	f.Commentf("Columns of the %s table.", t.Table)
	f.Const().DefsFunc(func(defs *jen.Group) {
		for _, fd := range t.Fields {
			defs.Id(t.Name + fd.Constant()).Op("=").Lit(fd.Column)
		}
	})
	if len(t.Relations) > 0 {
		f.Commentf("Relations of the %s class.", t.Name)
		f.Const().DefsFunc(func(defs *jen.Group) {
			for _, r := range t.Relations {
				defs.Id(t.Name + r.Constant()).Op("=").Lit(r.Name)
			}
		})
	}
	f.Commentf("%s describes the %s table.", t.MapName(), t.Table)
	f.Var().Id(t.MapName()).Op("=").Op("&").Id("EntityMap").Values(fields)
	return one(ctx, f, gen.CreateFilePath(t.MapDir(), t.FileName(""), ".go"), true)
}

func columnMap(p platform.Platform, fd *gen.Field) (jen.Code, error) {
	sqlType, err := p.ColumnType(fd.ColumnSpec())
	if err != nil {
		return nil, err
	}
	d := jen.Dict{
		jen.Id("Name"):    jen.Lit(fd.Column),
		jen.Id("Field"):   jen.Lit(fd.Name),
		jen.Id("GoName"):  jen.Lit(fd.GoName()),
		jen.Id("Type"):    jen.Lit(fd.Type().String()),
		jen.Id("SQLType"): jen.Lit(sqlType),
	}
	if fd.Size > 0 {
		d[jen.Id("Size")] = jen.Lit(fd.Size)
	}
	if fd.Scale > 0 {
		d[jen.Id("Scale")] = jen.Lit(fd.Scale)
	}
	for name, set := range map[string]bool{"Nullable": fd.Nullable, "PrimaryKey": fd.PrimaryKey, "AutoIncrement": fd.AutoIncrement} {
		if set {
			d[jen.Id(name)] = jen.True()
		}
	}
	def, goDef, err := defaults(p, fd)
	if err != nil {
		return nil, err
	}
	if def != "" {
		d[jen.Id("Default")] = jen.Lit(def)
	}
	if goDef != "" {
		d[jen.Id("GoDefault")] = jen.Lit(goDef)
	}
	if len(fd.ValueSet) > 0 {
		d[jen.Id("ValueSet")] = jen.Index().String().ValuesFunc(func(vals *jen.Group) {
			for _, v := range fd.ValueSet {
				vals.Lit(v)
			}
		})
	}
	return jen.Values(d), nil
}

// defaults returns the SQL and Go texts of the column default. Database
// expressions have no Go text.
func defaults(p platform.Platform, fd *gen.Field) (sql, goText string, err error) {
	if fd.DefaultExpr != "" {
		return fd.DefaultExpr, "", nil
	}
	lit, err := gen.ResolveDefault(p, fd)
	if err != nil || lit.IsNull() {
		return "", "", err
	}
	sql, _ = lit.SQL(p)
	return sql, lit.String(), nil
}

func relationMap(r *gen.Relation) jen.Code {
	d := jen.Dict{
		jen.Id("Name"):   jen.Lit(r.Name),
		jen.Id("Kind"):   jen.Lit(r.Rel.String()),
		jen.Id("Target"): jen.Lit(r.Target.Name),
	}
	if r.LocalField != nil {
		d[jen.Id("LocalColumn")] = jen.Lit(r.LocalField.Column)
	}
	if r.ForeignField != nil {
		d[jen.Id("ForeignColumn")] = jen.Lit(r.ForeignField.Column)
	}
	if r.OnDelete != "" {
		d[jen.Id("OnDelete")] = jen.Lit(r.OnDelete)
	}
	if r.OnUpdate != "" {
		d[jen.Id("OnUpdate")] = jen.Lit(r.OnUpdate)
	}
	return jen.Values(d)
}

// buildInheritanceEntityMap generates the entity maps of the inheritance
// children ({map}/{child}.go). They share the columns of the parent map.
func buildInheritanceEntityMap(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	var arts []*gen.Artifact
	for _, ch := range t.Inheritance.Children {
		f := ctx.NewFile(t.MapPackage())
		name := ch.Class + "EntityMap"
		f.Commentf("%s describes the %s rows of the %s table.", name, ch.Class, t.Table)
		f.Var().Id(name).Op("=").Op("&").Id("EntityMap").Values(jen.Dict{
			jen.Id("Name"):              jen.Lit(ch.Class),
			jen.Id("Class"):             jen.Lit(t.PkgPath() + "." + ch.Class),
			jen.Id("Table"):             jen.Lit(t.Table),
			jen.Id("Parent"):            jen.Lit(t.Name),
			jen.Id("InheritanceColumn"): jen.Lit(t.Inheritance.Field.Column),
			jen.Id("InheritanceKey"):    jen.Lit(ch.Key),
			jen.Id("Columns"):           jen.Id(t.MapName()).Dot("Columns"),
			jen.Id("Relations"):         jen.Id(t.MapName()).Dot("Relations"),
		})
		a, err := ctx.Render(f, gen.CreateFilePath(t.MapDir(), gen.ClassFileName(ch.Class, ""), ".go"), true)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, nil
}
