package om

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/platform"
)

// referentialActions maps the schema actions to their SQL clause.
var referentialActions = map[string]string{
	"cascade":  "CASCADE",
	"setnull":  "SET NULL",
	"restrict": "RESTRICT",
	"none":     "NO ACTION",
}

// buildDDL generates the CREATE TABLE statement of the type ({table}.sql).
func buildDDL(ctx *gen.BuildContext) ([]*gen.Artifact, error) {
	t := ctx.Type
	ddl, err := CreateTable(ctx.Platform, t)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s\n\n", headerComment(t.Config))
	b.WriteString(ddl)
	return []*gen.Artifact{{
		Path:      gen.CreateFilePath("", t.Table, ".sql"),
		Role:      ctx.Role,
		Entity:    t.Name,
		Content:   []byte(b.String()),
		Overwrite: true,
	}}, nil
}

// CreateTable returns the DDL of the table of the type on the platform:
// the foreign key pragma of sqlite, the CREATE TABLE statement and the
// sequence of oracle auto-increment columns.
func CreateTable(p platform.Platform, t *gen.Type) (string, error) {
	var (
		b         strings.Builder
		lines     []string
		pkInlined bool
	)
	aiClause, inlinePK := p.AutoIncrement()
	if on, set := p.ForeignKeyPragma(); set {
		state := "OFF"
		if on {
			state = "ON"
		}
		fmt.Fprintf(&b, "PRAGMA foreign_keys = %s;\n\n", state)
	}
	for _, fd := range t.Fields {
		line, err := columnDefinition(p, fd)
		if err != nil {
			return "", err
		}
		if fd.AutoIncrement && aiClause != "" {
			line += " " + aiClause
			pkInlined = pkInlined || inlinePK
		}
		lines = append(lines, line)
	}
	if len(t.PrimaryKey) > 0 && !pkInlined {
		cols := make([]string, len(t.PrimaryKey))
		for i, fd := range t.PrimaryKey {
			cols[i] = p.Quote(fd.Column)
		}
		lines = append(lines, "PRIMARY KEY ("+strings.Join(cols, ", ")+")")
	}
	if !t.ObjectModel.EmulateForeignKeyConstraints {
		for _, r := range t.ForeignKeys() {
			lines = append(lines, foreignKey(p, t, r))
		}
	}
	fmt.Fprintf(&b, "CREATE TABLE %s\n(\n    %s\n)", p.Quote(t.Table), strings.Join(lines, ",\n    "))
	if keyword, engine := p.TableEngine(); keyword != "" {
		fmt.Fprintf(&b, " %s=%s", keyword, engine)
	}
	b.WriteString(";\n")
	if _, ok := t.AutoIncrementField(); ok {
		if seq := p.SequenceName(t.Table); seq != "" {
			fmt.Fprintf(&b, "\nCREATE SEQUENCE %s;\n", p.Quote(seq))
		}
	}
	return b.String(), nil
}

func columnDefinition(p platform.Platform, fd *gen.Field) (string, error) {
	typ, err := p.ColumnType(fd.ColumnSpec())
	if err != nil {
		return "", gen.NewSchemaError(fd.Owner().Name, fd.Name, "no native column type", err)
	}
	line := p.Quote(fd.Column) + " " + typ
	if !fd.Nullable || fd.PrimaryKey {
		line += " NOT NULL"
	}
	def, _, err := defaults(p, fd)
	if err != nil {
		return "", err
	}
	if def != "" {
		line += " DEFAULT " + def
	}
	return line, nil
}

func foreignKey(p platform.Platform, t *gen.Type, r *gen.Relation) string {
	name := t.Table + "_fk_" + r.LocalField.Column
	fk := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		p.Quote(name), p.Quote(r.LocalField.Column), p.Quote(r.Target.Table), p.Quote(r.ForeignField.Column))
	if a, ok := referentialAction(p, r.OnDelete); ok {
		fk += " ON DELETE " + a
	}
	// Oracle has no ON UPDATE clause.
	if a, ok := referentialAction(p, r.OnUpdate); ok && p.Name() != dialect.Oracle {
		fk += " ON UPDATE " + a
	}
	return fk
}

// referentialAction returns the SQL clause of the action. RESTRICT is
// written NO ACTION on the platforms lacking it.
func referentialAction(p platform.Platform, action string) (string, bool) {
	a, ok := referentialActions[strings.ToLower(action)]
	if a == "RESTRICT" && (p.Name() == dialect.Oracle || p.Name() == dialect.MSSQL || p.Name() == dialect.SQLSrv) {
		a = "NO ACTION"
	}
	return a, ok
}

// SQLFiles returns the paths of the ddl artifacts of the graph. A table
// comes after the tables its foreign keys reference; cycles are broken in
// declaration order.
func SQLFiles(g *gen.Graph) []string {
	var (
		paths []string
		state = make(map[*gen.Type]int, len(g.Nodes))
		visit func(t *gen.Type)
	)
	visit = func(t *gen.Type) {
		if state[t] != 0 {
			return
		}
		state[t] = 1
		for _, r := range t.ForeignKeys() {
			if r.Target != t {
				visit(r.Target)
			}
		}
		state[t] = 2
		if p := gen.CreateFilePath("", t.Table, ".sql"); !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	for _, t := range g.Nodes {
		visit(t)
	}
	return paths
}
