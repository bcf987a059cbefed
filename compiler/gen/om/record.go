package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
)

// hasRecord reports if the active-record binding is generated for the
// type. It saves through the repository.
func hasRecord(t *gen.Type) bool {
	return t.ObjectModel.AddSaveMethod && !t.ReadOnly && !t.Abstract && enabled(t.Config, gen.RoleRepository)
}

// buildRecord generates the active-record binding ({name}_record.go): the
// object paired with the repository that saves it.
func buildRecord(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	f := ctx.NewFile(t.Package())
	name := t.ActiveRecordName()
	recv := func() *jen.Statement { return jen.Id("_a").Op("*").Id(name) }

	f.Commentf("%s binds a %s to the repository saving it.", name, t.Name)
	f.Type().Id(name).Struct(
		jen.Op("*").Id(t.Name),
		jen.Id("repo").Op("*").Id(t.RepositoryStubName()),
	)
	f.Commentf("New%s returns the record of the object.", name)
	f.Func().Id("New"+name).Params(jen.Id("o").Op("*").Id(t.Name), jen.Id("repo").Op("*").Id(t.RepositoryStubName())).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id(t.Name): jen.Id("o"),
			jen.Id("repo"): jen.Id("repo"),
		})),
	)
	f.Comment("Save saves the object through the repository.")
	f.Func().Params(recv()).Id("Save").Params(ctxParam()).Error().Block(
		jen.Return(jen.Id("_a").Dot("repo").Dot("Save").Call(jen.Id("ctx"), jen.Id("_a").Dot(t.Name))),
	)
	if len(t.PrimaryKey) > 0 {
		f.Comment("Delete deletes the row of the object through the repository.")
		f.Func().Params(recv()).Id("Delete").Params(ctxParam()).Error().Block(
			jen.Return(jen.Id("_a").Dot("repo").Dot("Delete").Call(jen.Id("ctx"), jen.Id("_a").Dot(t.Name))),
		)
	}
	return one(ctx, f, goPath(t, "record"), true)
}
