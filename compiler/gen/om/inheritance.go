package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
)

// buildMultiExtend generates one stub per inheritance child ({child}.go):
// the class extends the parent object and sets its key on creation.
func buildMultiExtend(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	in := t.Inheritance
	var arts []*gen.Artifact
	for _, ch := range in.Children {
		key, err := gen.ResolveValue(p, in.Field, ch.Key)
		if err != nil {
			return nil, err
		}
		f := ctx.NewFile(t.Package())
		f.Commentf("%s is the %s of kind %q. Custom methods are added to this", ch.Class, t.Name, ch.Key)
		f.Comment("file, which is not regenerated.")
		f.Type().Id(ch.Class).Struct(jen.Op("*").Id(t.Name))
		f.Commentf("New%s returns a new %s with the %s column set.", ch.Class, ch.Class, in.Field.Column)
		f.Func().Id("New"+ch.Class).Params().Op("*").Id(ch.Class).Block(
			jen.Id("_o").Op(":=").Id("new"+t.Name).Call(),
			assign("_o", in.Field, key),
			jen.Id("_o").Dot("_markModified").Call(jen.Id(columnConst(t, in.Field))),
			jen.Return(jen.Op("&").Id(ch.Class).Values(jen.Id("_o"))),
		)
		a, err := ctx.Render(f, gen.CreateFilePath(t.Dir(), gen.ClassFileName(ch.Class, ""), ".go"), false)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, nil
}
