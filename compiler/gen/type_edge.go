package gen

import (
	"strings"

	"github.com/syssam/strata/compiler/load"
)

// Relation between two types.
type Relation struct {
	def *load.Relation
	// Name holds the name of the relation.
	Name string
	// Owner is the type declaring the relation.
	Owner *Type
	// Target holds a reference to the type this relation is directed to.
	Target *Type
	// Rel holds the relation kind.
	Rel Rel
	// LocalField is the owner field of the join. For M2O and O2O it is
	// the foreign-key column of the owner table.
	LocalField *Field
	// ForeignField is the target field of the join. For O2M it is the
	// foreign-key column of the target table.
	ForeignField *Field
	// OnDelete and OnUpdate are the referential actions.
	OnDelete, OnUpdate string
	// Ref points to the inverse relation, if any.
	Ref *Relation
	// Derived indicates the relation was derived from its inverse.
	Derived bool
}

// =============================================================================
// Relation methods
// =============================================================================

// GoName returns the exported Go name of the relation.
func (r Relation) GoName() string { return goName(r.Name) }

// StructField returns the struct member of the relation in the object.
func (r Relation) StructField() string {
	return SafeIdent(camel(snake(r.Name)))
}

// Constant returns the constant name of the relation.
func (r Relation) Constant() string { return "Relation" + r.GoName() }

// M2M indicates if this relation is M2M.
func (r Relation) M2M() bool { return r.Rel == M2M }

// M2O indicates if this relation is M2O.
func (r Relation) M2O() bool { return r.Rel == M2O }

// O2M indicates if this relation is O2M.
func (r Relation) O2M() bool { return r.Rel == O2M }

// O2O indicates if this relation is O2O.
func (r Relation) O2O() bool { return r.Rel == O2O }

// Unique reports if the relation yields at most one target.
func (r Relation) Unique() bool { return r.Rel == O2O || r.Rel == M2O }

// HasForeignKey reports if the foreign key resides in the owner table.
func (r Relation) HasForeignKey() bool {
	return (r.Rel == M2O || r.Rel == O2O) && !r.Derived && r.LocalField != nil && r.ForeignField != nil
}

// Joinable reports if the relation can be joined on a single column pair.
func (r Relation) Joinable() bool {
	return r.Rel != M2M && r.LocalField != nil && r.ForeignField != nil
}

// =============================================================================
// Rel type
// =============================================================================

// Rel is a relation type.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one / has one.
	O2M            // One to many / has many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// ParseRel returns the relation type of the given kind. An empty kind is
// a many-to-one relation.
func ParseRel(kind string) Rel {
	k := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(kind))
	switch k {
	case "", "manytoone", "m2o", "belongsto":
		return M2O
	case "onetomany", "o2m", "hasmany":
		return O2M
	case "onetoone", "o2o", "hasone":
		return O2O
	case "manytomany", "m2m":
		return M2M
	default:
		return Unk
	}
}

// String returns the relation name.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case O2O:
		s = "O2O"
	case O2M:
		s = "O2M"
	case M2O:
		s = "M2O"
	case M2M:
		s = "M2M"
	}
	return s
}
