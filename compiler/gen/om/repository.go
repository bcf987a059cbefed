package om

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// buildRepository generates the base repository ({name}_repository_base.go).
// It loads objects through the query builder and persists them with
// statements baked for the platform.
func buildRepository(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	f := ctx.NewFile(t.Package())
	base, stub := t.RepositoryName(), t.RepositoryStubName()

	f.Commentf("%s runs the statements of %s objects.", base, t.Name)
	f.Type().Id(base).Struct(jen.Id("db").Id("Querier"))
	f.Commentf("New%s returns a repository running its statements on db.", stub)
	f.Func().Id("New"+stub).Params(jen.Id("db").Id("Querier")).Op("*").Id(stub).Block(
		jen.Return(jen.Op("&").Id(stub).Values(jen.Dict{
			jen.Id(base): jen.Id(base).Values(jen.Dict{jen.Id("db"): jen.Id("db")}),
		})),
	)
	genFind(f, t)
	genCount(f, t)
	if len(t.PrimaryKey) > 0 {
		genFindByPK(f, t, p)
	}
	if !t.ReadOnly {
		genSave(f, t)
		genInsert(f, t, p)
		genUpdate(f, t, p)
		if len(t.PrimaryKey) > 0 {
			genDelete(f, t, p)
		}
	}
	return one(ctx, f, goPath(t, "repository_base"), true)
}

func repoRecv(t *gen.Type) *jen.Statement { return jen.Id("_r").Op("*").Id(t.RepositoryName()) }

func ctxParam() jen.Code { return jen.Id("ctx").Qual("context", "Context") }

func objParam(t *gen.Type) jen.Code { return jen.Id("o").Op("*").Id(t.Name) }

func ifErr(ret ...jen.Code) jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(ret...))
}

func genFind(f *jen.File, t *gen.Type) {
	f.Commentf("Find returns the %s objects matching the query.", t.Name)
	f.Func().Params(repoRecv(t)).Id("Find").Params(ctxParam(), jen.Id("q").Op("*").Id(t.QueryStubName())).Params(jen.Index().Op("*").Id(t.Name), jen.Error()).Block(
		jen.List(jen.Id("query"), jen.Id("args")).Op(":=").Id("q").Dot("ToSQL").Call(),
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("_r").Dot("db").Dot("QueryContext").Call(jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("...")),
		ifErr(jen.Nil(), jen.Err()),
		jen.Defer().Id("rows").Dot("Close").Call(),
		jen.Var().Id("objs").Index().Op("*").Id(t.Name),
		jen.For(jen.Id("rows").Dot("Next").Call()).Block(
			jen.Id("o").Op(":=").Id("new"+t.Name).Call(),
			jen.If(jen.Err().Op(":=").Id("o").Dot("ScanRow").Call(jen.Id("rows")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Id("objs").Op("=").Append(jen.Id("objs"), jen.Id("o")),
		),
		jen.Return(jen.Id("objs"), jen.Id("rows").Dot("Err").Call()),
	)
}

func genCount(f *jen.File, t *gen.Type) {
	f.Comment("Count returns the number of rows matching the query.")
	f.Func().Params(repoRecv(t)).Id("Count").Params(ctxParam(), jen.Id("q").Op("*").Id(t.QueryStubName())).Params(jen.Int64(), jen.Error()).Block(
		jen.List(jen.Id("query"), jen.Id("args")).Op(":=").Id("q").Dot("ToCountSQL").Call(),
		jen.Var().Id("n").Int64(),
		jen.Err().Op(":=").Id("_r").Dot("db").Dot("QueryRowContext").Call(jen.Id("ctx"), jen.Id("query"), jen.Id("args").Op("...")).Dot("Scan").Call(jen.Op("&").Id("n")),
		jen.Return(jen.Id("n"), jen.Err()),
	)
}

// pkParams returns the parameter names of the primary key columns.
func pkParams(t *gen.Type) []string {
	if len(t.PrimaryKey) == 1 {
		return []string{"pk"}
	}
	names := make([]string, len(t.PrimaryKey))
	for i := range names {
		names[i] = fmt.Sprintf("pk%d", i+1)
	}
	return names
}

// pkCondition returns the WHERE condition on the primary key, numbering
// the placeholders from the given position.
func pkCondition(t *gen.Type, p platform.Platform, from int) string {
	conds := make([]string, len(t.PrimaryKey))
	for i, fd := range t.PrimaryKey {
		conds[i] = p.Quote(fd.Column) + " = " + p.Placeholder(from+i)
	}
	return strings.Join(conds, " AND ")
}

func genFindByPK(f *jen.File, t *gen.Type, p platform.Platform) {
	names := pkParams(t)
	query := "SELECT " + selectColumns(t, p) + " FROM " + p.Quote(t.Table) + " WHERE " + pkCondition(t, p, 1)
	f.Commentf("FindByPK returns the %s object with the given primary key. It returns", t.Name)
	f.Comment("sql.ErrNoRows if there is none.")
	f.Func().Params(repoRecv(t)).Id("FindByPK").ParamsFunc(func(params *jen.Group) {
		params.Add(ctxParam())
		for i, fd := range t.PrimaryKey {
			params.Id(names[i]).Add(fd.Handler.ElemType(fd))
		}
	}).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id("o").Op(":=").Id("new"+t.Name).Call(),
		jen.Id("row").Op(":=").Id("_r").Dot("db").Dot("QueryRowContext").CallFunc(func(args *jen.Group) {
			args.Id("ctx")
			args.Lit(query)
			for _, n := range names {
				args.Id(n)
			}
		}),
		jen.If(jen.Err().Op(":=").Id("o").Dot("ScanRow").Call(jen.Id("row")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("o"), jen.Nil()),
	)
}

func genSave(f *jen.File, t *gen.Type) {
	om := t.ObjectModel
	runHooks := func(list string) jen.Code {
		return jen.For(jen.List(jen.Id("_"), jen.Id("hook")).Op(":=").Range().Id("o").Dot("Hooks").Call().Dot(list)).Block(
			jen.If(jen.Err().Op(":=").Id("hook").Call(jen.Id("ctx"), jen.Id("o")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
		)
	}
	f.Comment("Save inserts new objects and updates the modified columns of the others.")
	f.Func().Params(repoRecv(t)).Id("Save").Params(ctxParam(), objParam(t)).Error().BlockFunc(func(body *jen.Group) {
		if om.AddHooks {
			body.Add(runHooks("PreSave"))
		}
		if om.AddTimeStamp && t.HasTimestamps() {
			body.Id("o").Dot("TouchTimestamps").Call(jen.Qual("time", "Now").Call())
		}
		body.Var().Err().Error()
		body.If(jen.Id("o").Dot("IsNew").Call()).Block(
			jen.Err().Op("=").Id("_r").Dot("insert").Call(jen.Id("ctx"), jen.Id("o")),
		).Else().Block(
			jen.Err().Op("=").Id("_r").Dot("update").Call(jen.Id("ctx"), jen.Id("o")),
		)
		body.Add(ifErr(jen.Err()))
		body.Id("o").Dot("ResetModified").Call()
		if om.AddHooks {
			body.Add(runHooks("PostSave"))
		}
		body.Return(jen.Nil())
	})
}

// genInsert generates the INSERT of new objects. Auto-increment columns
// are filled by the database and read back where the platform allows it.
func genInsert(f *jen.File, t *gen.Type, p platform.Platform) {
	ai, hasAI := t.AutoIncrementField()
	var (
		cols, vals []string
		args       []jen.Code
	)
	for _, fd := range t.Fields {
		if hasAI && fd == ai {
			if seq := p.SequenceName(t.Table); seq != "" {
				cols = append(cols, p.Quote(fd.Column))
				vals = append(vals, seq+".NEXTVAL")
			}
			continue
		}
		cols = append(cols, p.Quote(fd.Column))
		vals = append(vals, p.Placeholder(len(args)+1))
		args = append(args, value(fd, jen.Id("o")))
	}
	var (
		into   = "INSERT INTO " + p.Quote(t.Table) + " (" + strings.Join(cols, ", ") + ")"
		values = " VALUES (" + strings.Join(vals, ", ") + ")"
		exec   = func(query string) *jen.Statement {
			return jen.Id("_r").Dot("db").Dot("ExecContext").Call(append([]jen.Code{jen.Id("ctx"), jen.Lit(query)}, args...)...)
		}
		queryRow = func(query string) *jen.Statement {
			return jen.Id("_r").Dot("db").Dot("QueryRowContext").Call(append([]jen.Code{jen.Id("ctx"), jen.Lit(query)}, args...)...)
		}
	)
	body := []jen.Code{}
	switch {
	case !hasAI || p.Name() == dialect.Oracle:
		body = append(body,
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(exec(into+values)),
			jen.Return(jen.Err()),
		)
	case p.Name() == dialect.PgSQL:
		body = append(body, jen.Return(queryRow(into+values+" RETURNING "+p.Quote(ai.Column)).Dot("Scan").Call(jen.Op("&").Id("o").Dot(ai.StructField()))))
	case p.Name() == dialect.MSSQL || p.Name() == dialect.SQLSrv:
		body = append(body, jen.Return(queryRow(into+" OUTPUT INSERTED."+p.Quote(ai.Column)+values).Dot("Scan").Call(jen.Op("&").Id("o").Dot(ai.StructField()))))
	case ai.Pointer():
		body = append(body,
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(exec(into+values)),
			jen.Return(jen.Err()),
		)
	default:
		body = append(body,
			jen.List(jen.Id("res"), jen.Err()).Op(":=").Add(exec(into+values)),
			ifErr(jen.Err()),
			jen.List(jen.Id("id"), jen.Err()).Op(":=").Id("res").Dot("LastInsertId").Call(),
			ifErr(jen.Err()),
			jen.Id("o").Dot(ai.StructField()).Op("=").Add(ai.Handler.ElemType(ai)).Call(jen.Id("id")),
			jen.Return(jen.Nil()),
		)
	}
	f.Func().Params(repoRecv(t)).Id("insert").Params(ctxParam(), objParam(t)).Error().Block(body...)
}

// genUpdate generates the UPDATE of the modified columns, rebound at run
// time since the column list varies.
func genUpdate(f *jen.File, t *gen.Type, p platform.Platform) {
	fn := f.Func().Params(repoRecv(t)).Id("update").Params(ctxParam(), objParam(t)).Error()
	if len(t.PrimaryKey) == 0 {
		fn.Block(jen.Return(jen.Qual("errors", "New").Call(jen.Lit(t.Table + ": cannot update a row without primary key"))))
		return
	}
	conds := make([]string, len(t.PrimaryKey))
	for i, fd := range t.PrimaryKey {
		conds[i] = p.Quote(fd.Column) + " = ?"
	}
	fn.BlockFunc(func(body *jen.Group) {
		body.Var().Defs(
			jen.Id("sets").Index().String(),
			jen.Id("args").Index().Any(),
		)
		for _, fd := range t.Fields {
			if fd.PrimaryKey {
				continue
			}
			body.If(jen.Id("o").Dot("IsModified").Call(jen.Id(columnConst(t, fd)))).Block(
				jen.Id("sets").Op("=").Append(jen.Id("sets"), jen.Lit(p.Quote(fd.Column)+" = ?")),
				jen.Id("args").Op("=").Append(jen.Id("args"), value(fd, jen.Id("o"))),
			)
		}
		body.If(jen.Len(jen.Id("sets")).Op("==").Lit(0)).Block(jen.Return(jen.Nil()))
		body.Id("args").Op("=").AppendFunc(func(args *jen.Group) {
			args.Id("args")
			for _, fd := range t.PrimaryKey {
				args.Id("o").Dot(fd.StructField())
			}
		})
		body.Id("query").Op(":=").Lit("UPDATE " + p.Quote(t.Table) + " SET ").Op("+").
			Qual("strings", "Join").Call(jen.Id("sets"), jen.Lit(", ")).Op("+").Lit(" WHERE " + strings.Join(conds, " AND "))
		body.List(jen.Id("_"), jen.Err()).Op(":=").Id("_r").Dot("db").Dot("ExecContext").Call(
			jen.Id("ctx"), jen.Id("rebind").Call(jen.Id("query")), jen.Id("args").Op("..."),
		)
		body.Return(jen.Err())
	})
}

func genDelete(f *jen.File, t *gen.Type, p platform.Platform) {
	query := "DELETE FROM " + p.Quote(t.Table) + " WHERE " + pkCondition(t, p, 1)
	f.Comment("Delete deletes the row of the object.")
	f.Func().Params(repoRecv(t)).Id("Delete").Params(ctxParam(), objParam(t)).Error().Block(
		jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("_r").Dot("db").Dot("ExecContext").CallFunc(func(args *jen.Group) {
			args.Id("ctx")
			args.Lit(query)
			for _, fd := range t.PrimaryKey {
				args.Id("o").Dot(fd.StructField())
			}
		}),
		jen.Return(jen.Err()),
	)
}

// buildRepositoryStub generates the repository stub ({name}_repository.go).
func buildRepositoryStub(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	f := ctx.NewFile(t.Package())
	f.Commentf("%s runs the statements of %s objects. Custom methods are added", t.RepositoryStubName(), t.Name)
	f.Comment("to this file, which is not regenerated.")
	f.Type().Id(t.RepositoryStubName()).Struct(jen.Id(t.RepositoryName()))
	return one(ctx, f, goPath(t, "repository"), false)
}
