package om

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// buildQuery generates the base query builder ({name}_query_base.go).
// Conditions are collected with ? markers and rebound to the platform
// placeholders by ToSQL.
func buildQuery(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	f := ctx.NewFile(t.Package())
	base, stub := t.QueryName(), t.QueryStubName()

	f.Commentf("%s builds SELECT statements on the %s table.", base, t.Table)
	f.Type().Id(base).Struct(
		jen.Id("self").Op("*").Id(stub),
		jen.Id("where").Index().String(),
		jen.Id("args").Index().Any(),
		jen.Id("joins").Index().String(),
		jen.Id("orderBy").Index().String(),
		jen.Id("limit").Int(),
		jen.Id("offset").Int(),
	)
	f.Commentf("New%s returns a new query on the %s table.", stub, t.Table)
	f.Func().Id("New"+stub).Params().Op("*").Id(stub).Block(
		jen.Id("q").Op(":=").Op("&").Id(stub).Values(),
		jen.Id("q").Dot("self").Op("=").Id("q"),
		jen.Return(jen.Id("q")),
	)

	f.Comment("Where adds a raw condition. The arguments are bound to the ? markers of the condition.")
	f.Func().Params(queryRecv(t)).Id("Where").Params(jen.Id("cond").String(), jen.Id("args").Op("...").Any()).Op("*").Id(stub).Block(
		appendTo("where", jen.Id("cond")),
		appendTo("args", jen.Id("args").Op("...")),
		jen.Return(jen.Id("_q").Dot("self")),
	)
	for _, fd := range t.Fields {
		if filterable(fd) {
			genFilters(f, t, p, fd)
		}
	}
	for _, r := range t.Relations {
		if r.Joinable() {
			genJoin(f, t, p, r)
		}
	}
	genPaging(f, t)
	genToSQL(f, t, p)
	return one(ctx, f, goPath(t, "query_base"), true)
}

func queryRecv(t *gen.Type) *jen.Statement { return jen.Id("_q").Op("*").Id(t.QueryName()) }

func appendTo(list string, v jen.Code) jen.Code {
	return jen.Id("_q").Dot(list).Op("=").Append(jen.Id("_q").Dot(list), v)
}

func genFilters(f *jen.File, t *gen.Type, p platform.Platform, fd *gen.Field) {
	col := column(p.Quote, t, fd)
	stub := t.QueryStubName()
	elem := func() jen.Code { return fd.Handler.ElemType(fd) }
	self := func() jen.Code { return jen.Return(jen.Id("_q").Dot("self")) }

	f.Commentf("FilterBy%s adds an equality condition on the %s column.", fd.GoName(), fd.Column)
	f.Func().Params(queryRecv(t)).Id("FilterBy"+fd.GoName()).Params(jen.Id("v").Add(elem())).Op("*").Id(stub).Block(
		appendTo("where", jen.Lit(col+" = ?")),
		appendTo("args", jen.Id("v")),
		self(),
	)

	f.Commentf("FilterBy%sIn restricts the %s column to the given values.", fd.GoName(), fd.Column)
	f.Func().Params(queryRecv(t)).Id("FilterBy"+fd.GoName()+"In").Params(jen.Id("v").Op("...").Add(elem())).Op("*").Id(stub).Block(
		jen.If(jen.Len(jen.Id("v")).Op("==").Lit(0)).Block(
			appendTo("where", jen.Lit("1 = 0")),
			self(),
		),
		appendTo("where", jen.Lit(col+" IN (").Op("+").Qual("strings", "TrimSuffix").Call(
			jen.Qual("strings", "Repeat").Call(jen.Lit("?, "), jen.Len(jen.Id("v"))),
			jen.Lit(", "),
		).Op("+").Lit(")")),
		jen.For(jen.List(jen.Id("_"), jen.Id("val")).Op(":=").Range().Id("v")).Block(
			appendTo("args", jen.Id("val")),
		),
		self(),
	)

	if fd.Nullable {
		f.Commentf("FilterBy%sIsNull adds an IS NULL or IS NOT NULL condition on the %s column.", fd.GoName(), fd.Column)
		f.Func().Params(queryRecv(t)).Id("FilterBy"+fd.GoName()+"IsNull").Params(jen.Id("isNull").Bool()).Op("*").Id(stub).Block(
			jen.If(jen.Id("isNull")).Block(
				appendTo("where", jen.Lit(col+" IS NULL")),
			).Else().Block(
				appendTo("where", jen.Lit(col+" IS NOT NULL")),
			),
			self(),
		)
	}

	f.Commentf("OrderBy%s sorts the rows on the %s column.", fd.GoName(), fd.Column)
	f.Func().Params(queryRecv(t)).Id("OrderBy"+fd.GoName()).Params(jen.Id("desc").Bool()).Op("*").Id(stub).Block(
		jen.If(jen.Id("desc")).Block(
			appendTo("orderBy", jen.Lit(col+" DESC")),
		).Else().Block(
			appendTo("orderBy", jen.Lit(col+" ASC")),
		),
		self(),
	)
}

// joinClause returns the JOIN clause of the relation. The joined table is
// aliased with the relation name.
func joinClause(t *gen.Type, p platform.Platform, r *gen.Relation) string {
	kw := "INNER JOIN"
	if t.ObjectModel.UseLeftJoinsInDoJoinMethods {
		kw = "LEFT JOIN"
	}
	alias := p.Quote(r.Name)
	return fmt.Sprintf("%s %s %s ON %s = %s.%s", kw, p.Quote(r.Target.Table), alias, column(p.Quote, t, r.LocalField), alias, p.Quote(r.ForeignField.Column))
}

func genJoin(f *jen.File, t *gen.Type, p platform.Platform, r *gen.Relation) {
	f.Commentf("Join%s joins the %s table of the %s relation.", r.GoName(), r.Target.Table, r.Name)
	f.Func().Params(queryRecv(t)).Id("Join"+r.GoName()).Params().Op("*").Id(t.QueryStubName()).Block(
		appendTo("joins", jen.Lit(joinClause(t, p, r))),
		jen.Return(jen.Id("_q").Dot("self")),
	)
}

func genPaging(f *jen.File, t *gen.Type) {
	for _, name := range []string{"Limit", "Offset"} {
		f.Commentf("%s sets the %s of the query. Zero removes it.", name, strings.ToLower(name))
		f.Func().Params(queryRecv(t)).Id(name).Params(jen.Id("n").Int()).Op("*").Id(t.QueryStubName()).Block(
			jen.Id("_q").Dot(strings.ToLower(name)).Op("=").Id("n"),
			jen.Return(jen.Id("_q").Dot("self")),
		)
	}
}

// selectColumns returns the quoted columns of the table, in the order
// expected by ScanRow.
func selectColumns(t *gen.Type, p platform.Platform) string {
	cols := make([]string, len(t.Fields))
	for i, fd := range t.Fields {
		cols[i] = column(p.Quote, t, fd)
	}
	return strings.Join(cols, ", ")
}

func genToSQL(f *jen.File, t *gen.Type, p platform.Platform) {
	b := func() *jen.Statement { return jen.Id("b") }
	write := func(v jen.Code) jen.Code { return b().Dot("WriteString").Call(v) }
	itoa := func(n string) jen.Code { return jen.Qual("strconv", "Itoa").Call(jen.Id("_q").Dot(n)) }

	f.Func().Params(queryRecv(t)).Id("writeConditions").Params(b().Op("*").Qual("strings", "Builder")).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("j")).Op(":=").Range().Id("_q").Dot("joins")).Block(
			write(jen.Lit(" ")),
			write(jen.Id("j")),
		),
		jen.For(jen.List(jen.Id("i"), jen.Id("w")).Op(":=").Range().Id("_q").Dot("where")).Block(
			jen.If(jen.Id("i").Op("==").Lit(0)).Block(
				write(jen.Lit(" WHERE ")),
			).Else().Block(
				write(jen.Lit(" AND ")),
			),
			write(jen.Id("w")),
		),
	)

	var paging []jen.Code
	switch p.Name() {
	case dialect.MSSQL, dialect.SQLSrv, dialect.Oracle:
		if p.Name() != dialect.Oracle {
			paging = append(paging, jen.If(jen.Len(jen.Id("_q").Dot("orderBy")).Op("==").Lit(0)).Block(
				write(jen.Lit(" ORDER BY (SELECT NULL)")),
			))
		}
		paging = append(paging,
			write(jen.Lit(" OFFSET ").Op("+").Add(itoa("offset")).Op("+").Lit(" ROWS")),
			jen.If(jen.Id("_q").Dot("limit").Op(">").Lit(0)).Block(
				write(jen.Lit(" FETCH NEXT ").Op("+").Add(itoa("limit")).Op("+").Lit(" ROWS ONLY")),
			),
		)
		paging = []jen.Code{jen.If(jen.Id("_q").Dot("limit").Op(">").Lit(0).Op("||").Id("_q").Dot("offset").Op(">").Lit(0)).Block(paging...)}
	default:
		paging = append(paging, jen.If(jen.Id("_q").Dot("limit").Op(">").Lit(0)).Block(
			write(jen.Lit(" LIMIT ").Op("+").Add(itoa("limit"))),
			jen.If(jen.Id("_q").Dot("offset").Op(">").Lit(0)).Block(
				write(jen.Lit(" OFFSET ").Op("+").Add(itoa("offset"))),
			),
		))
	}

	f.Comment("ToSQL returns the SELECT statement of the query and its arguments.")
	f.Func().Params(queryRecv(t)).Id("ToSQL").Params().Params(jen.String(), jen.Index().Any()).BlockFunc(func(body *jen.Group) {
		body.Var().Add(b()).Qual("strings", "Builder")
		body.Add(write(jen.Lit("SELECT " + selectColumns(t, p) + " FROM " + p.Quote(t.Table))))
		body.Id("_q").Dot("writeConditions").Call(jen.Op("&").Add(b()))
		body.If(jen.Len(jen.Id("_q").Dot("orderBy")).Op(">").Lit(0)).Block(
			write(jen.Lit(" ORDER BY ")),
			write(jen.Qual("strings", "Join").Call(jen.Id("_q").Dot("orderBy"), jen.Lit(", "))),
		)
		for _, c := range paging {
			body.Add(c)
		}
		body.Return(jen.Id("rebind").Call(b().Dot("String").Call()), jen.Id("_q").Dot("args"))
	})

	f.Comment("ToCountSQL returns the statement counting the rows of the query.")
	f.Func().Params(queryRecv(t)).Id("ToCountSQL").Params().Params(jen.String(), jen.Index().Any()).Block(
		jen.Var().Add(b()).Qual("strings", "Builder"),
		write(jen.Lit("SELECT COUNT(*) FROM "+p.Quote(t.Table))),
		jen.Id("_q").Dot("writeConditions").Call(jen.Op("&").Add(b())),
		jen.Return(jen.Id("rebind").Call(b().Dot("String").Call()), jen.Id("_q").Dot("args")),
	)
}

// buildQueryStub generates the query builder stub ({name}_query.go).
func buildQueryStub(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	f := ctx.NewFile(t.Package())
	f.Commentf("%s builds queries on the %s table. Custom query methods are", t.QueryStubName(), t.Table)
	f.Comment("added to this file, which is not regenerated.")
	f.Type().Id(t.QueryStubName()).Struct(jen.Id(t.QueryName()))
	return one(ctx, f, goPath(t, "query"), false)
}

// buildQueryInheritance generates one query builder per inheritance child,
// restricted to the rows of the child key ({child}_query_base.go).
func buildQueryInheritance(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	in := t.Inheritance
	col := column(p.Quote, t, in.Field)
	var arts []*gen.Artifact
	for _, ch := range in.Children {
		key, err := gen.ResolveValue(p, in.Field, ch.Key)
		if err != nil {
			return nil, err
		}
		base, stub := "Base"+ch.Class+"Query", ch.Class+"Query"
		f := ctx.NewFile(t.Package())
		f.Commentf("%s builds queries on the %s rows of the %s table.", base, ch.Class, t.Table)
		f.Type().Id(base).Struct(jen.Op("*").Id(t.QueryStubName()))
		f.Commentf("New%s returns a query restricted to the %s rows.", stub, ch.Class)
		f.Func().Id("New"+stub).Params().Op("*").Id(stub).Block(
			jen.Id("q").Op(":=").Op("&").Id(stub).Values(jen.Id(base).Values(jen.Dict{
				jen.Id(t.QueryStubName()): jen.Id("New" + t.QueryStubName()).Call(),
			})),
			jen.Id("q").Dot("Where").Call(jen.Lit(col+" = ?"), key.Code()),
			jen.Return(jen.Id("q")),
		)
		a, err := ctx.Render(f, gen.CreateFilePath(t.Dir(), gen.ClassFileName(ch.Class, "query_base"), ".go"), true)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, nil
}

// buildQueryInheritanceStub generates the stubs of the inheritance query
// builders ({child}_query.go).
func buildQueryInheritanceStub(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	var arts []*gen.Artifact
	for _, ch := range t.Inheritance.Children {
		f := ctx.NewFile(t.Package())
		f.Commentf("%sQuery builds queries on the %s rows. Custom query methods are", ch.Class, ch.Class)
		f.Comment("added to this file, which is not regenerated.")
		f.Type().Id(ch.Class + "Query").Struct(jen.Id("Base" + ch.Class + "Query"))
		a, err := ctx.Render(f, gen.CreateFilePath(t.Dir(), gen.ClassFileName(ch.Class, "query"), ".go"), false)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, nil
}
