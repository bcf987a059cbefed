package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
)

// buildProxy generates the lazy-loading proxy ({name}_proxy.go). The
// object is loaded once, by the first call to Get.
func buildProxy(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	f := ctx.NewFile(t.Package())
	name := t.ProxyName()
	loader := func() *jen.Statement {
		return jen.Func().Params(jen.Qual("context", "Context")).Params(jen.Op("*").Id(t.Name), jen.Error())
	}
	recv := jen.Id("_p").Op("*").Id(name)

	f.Commentf("%s loads a %s on first use. It is safe for concurrent use.", name, t.Name)
	f.Type().Id(name).Struct(
		jen.Id("load").Add(loader()),
		jen.Id("once").Qual("sync", "Once"),
		jen.Id("loaded").Qual("sync/atomic", "Bool"),
		jen.Id("obj").Op("*").Id(t.Name),
		jen.Id("err").Error(),
	)
	f.Commentf("New%s returns a proxy calling load on first use.", name)
	f.Func().Id("New"+name).Params(jen.Id("load").Add(loader())).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("load"): jen.Id("load")})),
	)
	f.Commentf("Get returns the loaded %s. The context of the first call is used for loading.", t.Name)
	f.Func().Params(recv.Clone()).Id("Get").Params(jen.Id("ctx").Qual("context", "Context")).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id("_p").Dot("once").Dot("Do").Call(jen.Func().Params().Block(
			jen.List(jen.Id("_p").Dot("obj"), jen.Id("_p").Dot("err")).Op("=").Id("_p").Dot("load").Call(jen.Id("ctx")),
			jen.Id("_p").Dot("loaded").Dot("Store").Call(jen.True()),
		)),
		jen.Return(jen.Id("_p").Dot("obj"), jen.Id("_p").Dot("err")),
	)
	f.Comment("Loaded reports if the object was loaded.")
	f.Func().Params(recv.Clone()).Id("Loaded").Params().Bool().Block(
		jen.Return(jen.Id("_p").Dot("loaded").Dot("Load").Call()),
	)
	if len(t.PrimaryKey) == 1 && enabled(t.Config, gen.RoleRepository) {
		pk := t.PrimaryKey[0]
		f.Commentf("New%sByPK returns a proxy loading the %s with the given primary key.", name, t.Name)
		f.Func().Id("New"+name+"ByPK").Params(
			jen.Id("repo").Op("*").Id(t.RepositoryStubName()),
			jen.Id("pk").Add(pk.Handler.ElemType(pk)),
		).Op("*").Id(name).Block(
			jen.Return(jen.Id("New" + name).Call(jen.Func().Params(jen.Id("ctx").Qual("context", "Context")).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
				jen.Return(jen.Id("repo").Dot("FindByPK").Call(jen.Id("ctx"), jen.Id("pk"))),
			))),
		)
	}
	return one(ctx, f, goPath(t, "proxy"), true)
}
