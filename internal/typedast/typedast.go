// Package typedast is the "typed AST" of spec §2/§3: the core AST (package
// coreast) decorated with a fully-resolved monomorphic type per node.
//
// The teacher's internal/typedast package mirrors the core tree into a
// second, parallel tree of Typed* node types carrying an embedded type
// field. This repo's simpler monomorphic type system (no effect rows, no
// dictionaries) doesn't need a second tree to carry that extra payload, so
// Info instead follows the standard-library go/types convention directly
// (go/types.Info: map[ast.Expr]TypeAndValue) — a side table keyed by node
// identity. coreast nodes are always pointers, so identity-keying a Go map
// works exactly as it does for go/ast nodes.
package typedast

import (
	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/types"
)

// Info records every type the inferencer resolved, keyed by the coreast
// node it describes. Per spec invariant 4, by the time inference finishes
// every entry's Type is fully resolved (no *types.TVar remains).
type Info struct {
	Exprs    map[coreast.Expr]types.Type
	Patterns map[coreast.Pattern]types.Type
	// Schemes records the scheme assigned to each variable pattern of a
	// non-recursive top-level value declaration, keyed by the same
	// coreast.Pattern used in Patterns (their monomorphic instance);
	// `val rec` declarations get no entry.
	Schemes map[coreast.Pattern]*types.Scheme
}

// NewInfo creates an empty Info.
func NewInfo() *Info {
	return &Info{
		Exprs:    make(map[coreast.Expr]types.Type),
		Patterns: make(map[coreast.Pattern]types.Type),
		Schemes:  make(map[coreast.Pattern]*types.Scheme),
	}
}

// TypeOf returns the resolved type of expr, or nil if expr was never
// visited by the inferencer (an internal-error condition for any node
// reachable from a Program the inferencer actually processed).
func (i *Info) TypeOf(e coreast.Expr) types.Type { return i.Exprs[e] }

// PatternType returns the resolved type a pattern was checked against.
func (i *Info) PatternType(p coreast.Pattern) types.Type { return i.Patterns[p] }

// Program pairs a desugared program with the type information inferred
// for it — what §2 calls the output of the type inferencer stage.
type Program struct {
	Core *coreast.Program
	Info *Info
}
