package om

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect/platform"
	"github.com/syssam/strata/schema/field"
)

// buildObject generates the object struct file ({name}.go).
func buildObject(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t, p := ctx.Type, ctx.Platform
	om := t.ObjectModel
	f := ctx.NewFile(t.Package())

	genObjectStruct(f, t)
	genEnumConstants(f, t)
	genColumnConstants(f, t)
	if err := genConstructor(ctx, f, t); err != nil {
		return nil, err
	}
	for _, fd := range t.Fields {
		genGetter(f, t, p, fd)
		if !t.ReadOnly {
			genSetter(f, t, fd)
		}
	}
	for _, r := range objectRelations(t) {
		genRelationAccessors(f, t, r)
	}
	genState(f, t)
	genScanRow(f, t)
	if om.AddGenericAccessors {
		genGetByName(f, t)
		genToMap(f, t)
	}
	if om.AddGenericMutators && !t.ReadOnly {
		genSetByName(f, t)
	}
	if om.AddHooks {
		genHooks(f, t)
	}
	if om.AddTimeStamp && t.HasTimestamps() {
		genTouchTimestamps(f, t, p)
	}
	return one(ctx, f, goPath(t, ""), true)
}

// recv returns the receiver of the object methods.
func recv(t *gen.Type) *jen.Statement { return jen.Id("_o").Op("*").Id(t.Name) }

func member(fd *gen.Field) *jen.Statement { return jen.Id("_o").Dot(fd.StructField()) }

func columnConst(t *gen.Type, fd *gen.Field) string { return t.Name + fd.Constant() }

func genObjectStruct(f *jen.File, t *gen.Type) {
	if t.ObjectModel.AddClassLevelComment {
		f.Commentf("%s is the object of the %s table.", t.Name, t.Table)
		if t.Description != "" {
			f.Comment(t.Description)
		}
	}
	f.Type().Id(t.Name).StructFunc(func(group *jen.Group) {
		for _, fd := range t.Fields {
			group.Id(fd.StructField()).Add(fd.GoType())
		}
		for _, r := range objectRelations(t) {
			if r.Unique() {
				group.Id(r.StructField()).Op("*").Id(r.Target.Name)
			} else {
				group.Id(r.StructField()).Index().Op("*").Id(r.Target.Name)
			}
		}
		group.Id("_new").Bool()
		group.Id("_modified").Map(jen.String()).Bool()
		if t.ObjectModel.AddHooks {
			group.Id("_hooks").Id(t.Name + "Hooks")
		}
	})
}

func genEnumConstants(f *jen.File, t *gen.Type) {
	for _, fd := range t.EnumFields() {
		consts := fd.EnumConstants()
		f.Commentf("Ordinals of the %s values.", fd.Column)
		f.Const().DefsFunc(func(defs *jen.Group) {
			for _, c := range consts {
				defs.Id(t.Name + c.Name).Op("=").Lit(c.Ordinal)
			}
		})
		f.Commentf("%s%sValues holds the %s values, indexed by ordinal.", t.Name, fd.GoName(), fd.Column)
		f.Var().Id(t.Name + fd.GoName() + "Values").Op("=").Index().String().ValuesFunc(func(vals *jen.Group) {
			for _, c := range consts {
				vals.Lit(c.Value)
			}
		})
	}
}

func genColumnConstants(f *jen.File, t *gen.Type) {
	f.Commentf("Columns of the %s table.", t.Table)
	f.Const().DefsFunc(func(defs *jen.Group) {
		for _, fd := range t.Fields {
			defs.Id(columnConst(t, fd)).Op("=").Lit(fd.Column)
		}
	})
}

// genConstructor generates new<T>, applying the column defaults, and the
// exported New<T> of concrete types.
func genConstructor(ctx *gen.BuildContext, f *jen.File, t *gen.Type) error {
	var defaults []jen.Code
	for _, fd := range t.Fields {
		lit, err := gen.ResolveDefault(ctx.Platform, fd)
		if err != nil {
			return err
		}
		if !lit.IsNull() {
			defaults = append(defaults, assign("_o", fd, lit))
		}
	}
	f.Func().Id("new"+t.Name).Params().Op("*").Id(t.Name).BlockFunc(func(body *jen.Group) {
		body.Id("_o").Op(":=").Op("&").Id(t.Name).Values(jen.Dict{
			jen.Id("_new"):      jen.True(),
			jen.Id("_modified"): jen.Make(jen.Map(jen.String()).Bool()),
		})
		for _, d := range defaults {
			body.Add(d)
		}
		body.Return(jen.Id("_o"))
	})
	if t.Abstract {
		return nil
	}
	f.Commentf("New%s returns a new %s holding the column defaults.", t.Name, t.Name)
	f.Func().Id("New"+t.Name).Params().Op("*").Id(t.Name).Block(
		jen.Return(jen.Id("new" + t.Name).Call()),
	)
	return nil
}

func genGetter(f *jen.File, t *gen.Type, p platform.Platform, fd *gen.Field) {
	f.Commentf("%s returns the value of the %s column.", fd.Getter(), fd.Column)
	if fd.Description != "" {
		f.Comment(fd.Description)
	}
	fn := f.Func().Params(recv(t)).Id(fd.Getter()).Params()
	acc := fd.Accessor(p)
	switch {
	case acc.Convert == nil:
		fn.Add(fd.GoType()).Block(jen.Return(member(fd)))
	case !acc.Fallible && !fd.Pointer():
		fn.Add(acc.Type).Block(jen.Return(acc.Convert(member(fd))))
	case !acc.Fallible:
		fn.Op("*").Add(acc.Type).Block(
			jen.If(member(fd).Op("==").Nil()).Block(jen.Return(jen.Nil())),
			jen.Id("val").Op(":=").Add(acc.Convert(jen.Op("*").Add(member(fd)))),
			jen.Return(jen.Op("&").Id("val")),
		)
	case !fd.Pointer():
		fn.Params(acc.Type, jen.Error()).Block(jen.Return(acc.Convert(member(fd))))
	default:
		fn.Params(jen.Op("*").Add(acc.Type), jen.Error()).Block(
			jen.If(member(fd).Op("==").Nil()).Block(jen.Return(jen.Nil(), jen.Nil())),
			jen.List(jen.Id("val"), jen.Err()).Op(":=").Add(acc.Convert(jen.Op("*").Add(member(fd)))),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Op("&").Id("val"), jen.Nil()),
		)
	}
}

func genSetter(f *jen.File, t *gen.Type, fd *gen.Field) {
	f.Commentf("%s sets the value of the %s column.", fd.Setter(), fd.Column)
	f.Func().Params(recv(t)).Id(fd.Setter()).Params(jen.Id("v").Add(fd.GoType())).Op("*").Id(t.Name).Block(
		member(fd).Op("=").Id("v"),
		jen.Id("_o").Dot("_markModified").Call(jen.Id(columnConst(t, fd))),
		jen.Return(jen.Id("_o")),
	)
}

func genRelationAccessors(f *jen.File, t *gen.Type, r *gen.Relation) {
	target := func() *jen.Statement { return jen.Id(r.Target.Name) }
	rel := func() *jen.Statement { return jen.Id("_o").Dot(r.StructField()) }
	if !r.Unique() {
		f.Commentf("%s returns the related %s objects.", r.GoName(), r.Target.Name)
		f.Func().Params(recv(t)).Id(r.GoName()).Params().Index().Op("*").Add(target()).Block(jen.Return(rel()))
		if t.ReadOnly {
			return
		}
		f.Commentf("Add%s adds objects to the %s relation.", r.GoName(), r.Name)
		f.Func().Params(recv(t)).Id("Add"+r.GoName()).Params(jen.Id("v").Op("...").Op("*").Add(target())).Op("*").Id(t.Name).Block(
			rel().Op("=").Append(rel(), jen.Id("v").Op("...")),
			jen.Return(jen.Id("_o")),
		)
		return
	}
	f.Commentf("%s returns the related %s object.", r.GoName(), r.Target.Name)
	f.Func().Params(recv(t)).Id(r.GoName()).Params().Op("*").Add(target()).Block(jen.Return(rel()))
	if t.ReadOnly {
		return
	}
	if r.HasForeignKey() {
		f.Commentf("Set%s sets the related %s object and its %s column.", r.GoName(), r.Target.Name, r.LocalField.Column)
	} else {
		f.Commentf("Set%s sets the related %s object.", r.GoName(), r.Target.Name)
	}
	f.Func().Params(recv(t)).Id("Set"+r.GoName()).Params(jen.Id("v").Op("*").Add(target())).Op("*").Id(t.Name).BlockFunc(func(body *jen.Group) {
		body.Add(rel().Op("=").Id("v"))
		if sync := syncForeignKey(r); sync != nil {
			body.If(jen.Id("v").Op("!=").Nil()).Block(sync)
		}
		body.Return(jen.Id("_o"))
	})
}

// syncForeignKey copies the referenced key of the target into the local
// foreign-key column. Only primitive keys are copied.
func syncForeignKey(r *gen.Relation) jen.Code {
	local, foreign := r.LocalField, r.ForeignField
	if !r.HasForeignKey() || !local.Handler.Primitive() || !foreign.Handler.Primitive() || foreign.Pointer() {
		return nil
	}
	key := jen.Add(local.Handler.ElemType(local)).Call(jen.Id("v").Dot(foreign.Getter()).Call())
	if !local.Pointer() {
		return jen.Id("_o").Dot(local.Setter()).Call(key)
	}
	return jen.Block(
		jen.Id("val").Op(":=").Add(key),
		jen.Id("_o").Dot(local.Setter()).Call(jen.Op("&").Id("val")),
	)
}

func genState(f *jen.File, t *gen.Type) {
	f.Comment("IsNew reports if the object was not saved yet.")
	f.Func().Params(recv(t)).Id("IsNew").Params().Bool().Block(jen.Return(jen.Id("_o").Dot("_new")))

	f.Comment("IsModified reports if the column was set since the object was created, loaded or saved.")
	f.Func().Params(recv(t)).Id("IsModified").Params(jen.Id("column").String()).Bool().Block(
		jen.Return(jen.Id("_o").Dot("_modified").Index(jen.Id("column"))),
	)

	f.Comment("ResetModified marks the object as saved.")
	f.Func().Params(recv(t)).Id("ResetModified").Params().Block(
		jen.Id("_o").Dot("_new").Op("=").False(),
		jen.Id("clear").Call(jen.Id("_o").Dot("_modified")),
	)

	f.Func().Params(recv(t)).Id("_markModified").Params(jen.Id("column").String()).Block(
		jen.If(jen.Id("_o").Dot("_modified").Op("==").Nil()).Block(
			jen.Id("_o").Dot("_modified").Op("=").Make(jen.Map(jen.String()).Bool()),
		),
		jen.Id("_o").Dot("_modified").Index(jen.Id("column")).Op("=").True(),
	)
}

// genScanRow generates ScanRow, reading the columns in the order selected
// by the query builder. Array columns are stored as delimited strings.
func genScanRow(f *jen.File, t *gen.Type) {
	f.Comment("ScanRow loads the object from a row holding the columns of the table.")
	f.Comment("Object columns are scanned into their type, which must implement sql.Scanner.")
	f.Func().Params(recv(t)).Id("ScanRow").Params(
		jen.Id("row").Interface(jen.Id("Scan").Params(jen.Id("dest").Op("...").Any()).Error()),
	).Error().BlockFunc(func(body *jen.Group) {
		for _, fd := range t.Fields {
			if isDelimitedArray(fd) {
				body.Var().Id("raw"+fd.GoName()).Qual("database/sql", "NullString")
			}
		}
		body.If(jen.Err().Op(":=").Id("row").Dot("Scan").CallFunc(func(args *jen.Group) {
			for _, fd := range t.Fields {
				if isDelimitedArray(fd) {
					args.Op("&").Id("raw" + fd.GoName())
				} else {
					args.Op("&").Add(member(fd))
				}
			}
		}), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		for _, fd := range t.Fields {
			if isDelimitedArray(fd) {
				body.Add(member(fd)).Op("=").Id("splitArray").Call(jen.Id("raw" + fd.GoName()).Dot("String"))
			}
		}
		body.Id("_o").Dot("ResetModified").Call()
		body.Return(jen.Nil())
	})
}

// isDelimitedArray reports if the field is an array column of strings.
func isDelimitedArray(fd *gen.Field) bool {
	return fd.Type().Category() == field.CategoryArray && fd.ObjectType == ""
}

// value returns the driver argument of the column.
func value(fd *gen.Field, obj jen.Code) jen.Code {
	v := jen.Add(obj).Dot(fd.StructField())
	if isDelimitedArray(fd) {
		return jen.Id("joinArray").Call(v)
	}
	return v
}

func genGetByName(f *jen.File, t *gen.Type) {
	f.Comment("GetByName returns the value of the field with the given key.")
	f.Func().Params(recv(t)).Id("GetByName").Params(jen.Id("name").String()).Params(jen.Any(), jen.Bool()).Block(
		jen.Switch(jen.Id("name")).BlockFunc(func(cases *jen.Group) {
			for _, fd := range t.Fields {
				cases.Case(jen.Lit(fd.Key())).Block(jen.Return(member(fd), jen.True()))
			}
		}),
		jen.Return(jen.Nil(), jen.False()),
	)
}

func genToMap(f *jen.File, t *gen.Type) {
	f.Comment("ToMap returns the field values keyed like GetByName.")
	f.Func().Params(recv(t)).Id("ToMap").Params().Map(jen.String()).Any().Block(
		jen.Return(jen.Map(jen.String()).Any().Values(jen.DictFunc(func(d jen.Dict) {
			for _, fd := range t.Fields {
				d[jen.Lit(fd.Key())] = member(fd)
			}
		}))),
	)
}

func genSetByName(f *jen.File, t *gen.Type) {
	f.Comment("SetByName sets the field with the given key. The value must have the field type.")
	f.Func().Params(recv(t)).Id("SetByName").Params(jen.Id("name").String(), jen.Id("v").Any()).Error().Block(
		jen.Switch(jen.Id("name")).BlockFunc(func(cases *jen.Group) {
			for _, fd := range t.Fields {
				cases.Case(jen.Lit(fd.Key())).Block(
					jen.List(jen.Id("val"), jen.Id("ok")).Op(":=").Id("v").Assert(fd.GoType()),
					jen.If(jen.Op("!").Id("ok")).Block(
						jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(t.Table+": invalid type %T for field %q"), jen.Id("v"), jen.Id("name"))),
					),
					jen.Id("_o").Dot(fd.Setter()).Call(jen.Id("val")),
				)
			}
			cases.Default().Block(
				jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(t.Table+": unknown field %q"), jen.Id("name"))),
			)
		}),
		jen.Return(jen.Nil()),
	)
}

func genHooks(f *jen.File, t *gen.Type) {
	hook := func() *jen.Statement {
		return jen.Index().Func().Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("o").Op("*").Id(t.Name)).Error()
	}
	f.Commentf("%sHooks holds the functions run by the repository around Save.", t.Name)
	f.Type().Id(t.Name+"Hooks").Struct(
		jen.Id("PreSave").Add(hook()),
		jen.Id("PostSave").Add(hook()),
	)
	f.Comment("Hooks returns the save hooks of the object.")
	f.Func().Params(recv(t)).Id("Hooks").Params().Op("*").Id(t.Name + "Hooks").Block(
		jen.Return(jen.Op("&").Id("_o").Dot("_hooks")),
	)
}

func genTouchTimestamps(f *jen.File, t *gen.Type, p platform.Platform) {
	touch := func(fd *gen.Field) jen.Code {
		set := member(fd).Op("=").Id("val")
		if fd.Pointer() {
			set = member(fd).Op("=").Op("&").Id("val")
		}
		return jen.Block(
			jen.Id("val").Op(":=").Id("now").Dot("Format").Call(jen.Lit(gen.GoLayout(p, fd))),
			set,
			jen.Id("_o").Dot("_markModified").Call(jen.Id(columnConst(t, fd))),
		)
	}
	f.Comment("TouchTimestamps sets the creation time of new objects and the update time.")
	f.Func().Params(recv(t)).Id("TouchTimestamps").Params(jen.Id("now").Qual("time", "Time")).BlockFunc(func(body *jen.Group) {
		for _, fd := range t.Fields {
			if !fd.Type().IsTemporal() {
				continue
			}
			switch fd.Column {
			case "created_at":
				body.If(jen.Id("_o").Dot("_new")).Block(touch(fd))
			case "updated_at":
				body.Add(touch(fd))
			}
		}
	})
}
