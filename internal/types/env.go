package types

import "github.com/ailang-mir/mlc/internal/symbol"

// Env maps bound symbols to type schemes. Immutable-by-convention: Extend
// returns a new Env sharing the parent's bindings, so a scope exit is just
// "stop using the extended Env," matching the teacher's
// internal/types/env.go layered-environment style.
type Env struct {
	parent *Env
	binds  map[symbol.Symbol]*Scheme
}

// NewEnv creates an empty, builtin-free environment.
func NewEnv() *Env {
	return &Env{binds: make(map[symbol.Symbol]*Scheme)}
}

// Extend returns a child environment with one additional binding.
func (e *Env) Extend(sym symbol.Symbol, s *Scheme) *Env {
	return &Env{parent: e, binds: map[symbol.Symbol]*Scheme{sym: s}}
}

// ExtendMany returns a child environment with several additional bindings,
// all visible to each other (used for recursive binding groups, spec §4.5:
// "all symbols in the group are introduced into scope before any RHS is
// translated").
func (e *Env) ExtendMany(binds map[symbol.Symbol]*Scheme) *Env {
	return &Env{parent: e, binds: binds}
}

// Lookup searches this environment and its ancestors.
func (e *Env) Lookup(sym symbol.Symbol) (*Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.binds[sym]; ok {
			return s, true
		}
	}
	return nil, false
}

// FreeVars returns the set of unification-variable IDs free in any scheme
// reachable from e — the env's contribution to a generalization's
// "variables free in the environment" exclusion set.
func (e *Env) FreeVars() map[int]bool {
	free := make(map[int]bool)
	for env := e; env != nil; env = env.parent {
		for _, s := range env.binds {
			for id := range FreeVars(s.Type) {
				// Variables quantified by the scheme itself are bound, not free.
				bound := false
				for _, v := range s.Vars {
					if v == id {
						bound = true
						break
					}
				}
				if !bound {
					free[id] = true
				}
			}
		}
	}
	return free
}

// CtorSig is a constructor's signature: its argument type (nil if nullary),
// result datatype, and dense discriminant (spec invariant 5).
type CtorSig struct {
	Datatype     string
	Arg          Type // nil for nullary
	Discriminant int
}

// CtorEnv maps constructor names to their signatures, built incrementally
// as Datatype declarations are elaborated (spec §4.2/§4.3). Like Env it is
// threaded explicitly rather than held in a package-level global.
type CtorEnv struct {
	sigs map[string]CtorSig
	// byDatatype lists constructor names in discriminant order, for
	// exhaustiveness checking (internal/dtree, via Siblings) and for
	// assigning each new constructor's discriminant.
	byDatatype map[string][]string
}

func NewCtorEnv() *CtorEnv {
	return &CtorEnv{sigs: make(map[string]CtorSig), byDatatype: make(map[string][]string)}
}

// Register adds a constructor, assigning it the next dense discriminant
// within its datatype.
func (c *CtorEnv) Register(name, datatype string, arg Type) CtorSig {
	disc := len(c.byDatatype[datatype])
	sig := CtorSig{Datatype: datatype, Arg: arg, Discriminant: disc}
	c.sigs[name] = sig
	c.byDatatype[datatype] = append(c.byDatatype[datatype], name)
	return sig
}

// Lookup returns a constructor's signature, if registered.
func (c *CtorEnv) Lookup(name string) (CtorSig, bool) {
	sig, ok := c.sigs[name]
	return sig, ok
}

// Siblings returns every constructor name declared in the same datatype as
// name, in discriminant order.
func (c *CtorEnv) Siblings(name string) []string {
	sig, ok := c.sigs[name]
	if !ok {
		return nil
	}
	return c.byDatatype[sig.Datatype]
}
