// Package types implements Hindley-Milner type inference over the core AST
// (spec §4.3). It is a direct simplification of the teacher's
// internal/types package down to this language's monomorphic type shapes —
// Int/Real/Char/Tuple/Fun/Datatype plus a unification-variable kind — with
// the teacher's row-polymorphism, effect-row, and type-class/dictionary
// machinery removed (module system, type classes, and polymorphism beyond
// the value restriction are explicit spec Non-goals). See DESIGN.md for the
// per-file deletion rationale.
package types

import (
	"fmt"
	"strings"
)

// Type is a monomorphic type or a unification variable.
type Type interface {
	fmt.Stringer
	typeNode()
}

// TVar is a unification variable, identified by its Checker's counter.
// Must not survive past inference (spec invariant 4).
type TVar struct {
	ID int
}

func (*TVar) typeNode() {}
func (t *TVar) String() string { return fmt.Sprintf("'t%d", t.ID) }

type Int struct{}
type Real struct{}
type Char struct{}

func (Int) typeNode()  {}
func (Real) typeNode() {}
func (Char) typeNode() {}
func (Int) String() string  { return "int" }
func (Real) String() string { return "real" }
func (Char) String() string { return "char" }

type Tuple struct{ Elems []Type }

func (Tuple) typeNode() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

type Fun struct{ From, To Type }

func (Fun) typeNode() {}
func (t Fun) String() string { return fmt.Sprintf("%s -> %s", t.From, t.To) }

// Datatype refers to a declared algebraic datatype by name.
type Datatype struct{ Name string }

func (Datatype) typeNode()    {}
func (t Datatype) String() string { return t.Name }

// Scheme is a polymorphic type scheme: a type generalized over a set of
// quantified unification-variable IDs.
type Scheme struct {
	Vars []int
	Type Type
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	vars := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		vars[i] = fmt.Sprintf("'t%d", v)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(vars, " "), s.Type)
}

// Mono wraps a type with no quantified variables — the common case for a
// value-restriction-monomorphic binding.
func Mono(t Type) *Scheme { return &Scheme{Type: t} }

// Substitution maps unification-variable IDs to their resolved type.
type Substitution map[int]Type

// Apply substitutes through t, recursively.
func Apply(sub Substitution, t Type) Type {
	switch t := t.(type) {
	case *TVar:
		if rep, ok := sub[t.ID]; ok {
			// Path-compress: the substitution may itself contain variables.
			return Apply(sub, rep)
		}
		return t
	case Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Apply(sub, e)
		}
		return Tuple{Elems: elems}
	case Fun:
		return Fun{From: Apply(sub, t.From), To: Apply(sub, t.To)}
	default:
		return t
	}
}

// ApplyScheme substitutes through a scheme's type, leaving quantified
// variables alone (they're never in sub's domain by construction).
func ApplyScheme(sub Substitution, s *Scheme) *Scheme {
	return &Scheme{Vars: s.Vars, Type: Apply(sub, s.Type)}
}

// FreeVars returns the set of unbound unification-variable IDs in t.
func FreeVars(t Type) map[int]bool {
	free := make(map[int]bool)
	collectFreeVars(t, free)
	return free
}

func collectFreeVars(t Type, free map[int]bool) {
	switch t := t.(type) {
	case *TVar:
		free[t.ID] = true
	case Tuple:
		for _, e := range t.Elems {
			collectFreeVars(e, free)
		}
	case Fun:
		collectFreeVars(t.From, free)
		collectFreeVars(t.To, free)
	}
}
