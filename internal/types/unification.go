package types

import "github.com/ailang-mir/mlc/internal/cerr"

// Unifier performs syntactic unification with an occurs check, grounded on
// the teacher's internal/types/unification.go Unifier shape (a switch over
// the left operand's concrete type, recursing structurally), minus the row-
// and effect-unification branches that package also carried.
type Unifier struct{}

// NewUnifier creates a Unifier. It holds no state; unification accumulates
// into the Substitution threaded explicitly by the caller, matching this
// compiler's single-owner-state discipline (spec §5).
func NewUnifier() *Unifier { return &Unifier{} }

// Unify extends sub so that Apply(sub, t1) and Apply(sub, t2) agree,
// or returns a *cerr.TypeError describing the mismatch.
func (u *Unifier) Unify(t1, t2 Type, sub Substitution) (Substitution, error) {
	t1 = Apply(sub, t1)
	t2 = Apply(sub, t2)

	if v1, ok := t1.(*TVar); ok {
		return u.bind(v1, t2, sub)
	}
	if v2, ok := t2.(*TVar); ok {
		return u.bind(v2, t1, sub)
	}

	switch a := t1.(type) {
	case Int:
		if _, ok := t2.(Int); ok {
			return sub, nil
		}
	case Real:
		if _, ok := t2.(Real); ok {
			return sub, nil
		}
	case Char:
		if _, ok := t2.(Char); ok {
			return sub, nil
		}
	case Datatype:
		if b, ok := t2.(Datatype); ok && a.Name == b.Name {
			return sub, nil
		}
	case Tuple:
		b, ok := t2.(Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			break
		}
		var err error
		for i := range a.Elems {
			sub, err = u.Unify(a.Elems[i], b.Elems[i], sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil
	case Fun:
		b, ok := t2.(Fun)
		if !ok {
			break
		}
		var err error
		sub, err = u.Unify(a.From, b.From, sub)
		if err != nil {
			return nil, err
		}
		return u.Unify(a.To, b.To, sub)
	}

	return nil, cerr.Unify(t1, t2)
}

func (u *Unifier) bind(v *TVar, t Type, sub Substitution) (Substitution, error) {
	if tv, ok := t.(*TVar); ok && tv.ID == v.ID {
		return sub, nil
	}
	if u.occurs(v.ID, t) {
		return nil, cerr.Unify(v, t)
	}
	next := Substitution{}
	for k, val := range sub {
		next[k] = val
	}
	next[v.ID] = t
	return next, nil
}

func (u *Unifier) occurs(id int, t Type) bool {
	switch t := t.(type) {
	case *TVar:
		return t.ID == id
	case Tuple:
		for _, e := range t.Elems {
			if u.occurs(id, e) {
				return true
			}
		}
		return false
	case Fun:
		return u.occurs(id, t.From) || u.occurs(id, t.To)
	default:
		return false
	}
}
