// Package mir is the flat, CFG-structured low-level IR spec §3/§4.6
// describes: HIR's Fun bodies flattened into extended basic blocks (EBBs),
// each ending in exactly one terminator (Jump, Branch, or Ret).
//
// Node/terminator shapes follow spec §3 literally; CFG construction is
// grounded on original_source/src/mir/cfg.rs (BFS from EBB 0, resolving
// named successors by linear scan, "internal error" on an unresolved
// target).
package mir

import (
	"fmt"
	"strings"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/hir"
	"github.com/ailang-mir/mlc/internal/symbol"
)

// Ty is reused directly from hir: MIR's type grammar (spec §3) is the same
// monomorphic Int/Real/Char/Tuple/Fun/Datatype set HIR already carries —
// introducing a fourth parallel type hierarchy here would buy nothing.
type Ty = hir.Ty

// Param is one EBB or Function formal: a symbol together with its type.
type Param struct {
	Sym symbol.Symbol
	Ty  Ty
}

func (p Param) String() string { return fmt.Sprintf("%s", p.Sym) }

// MIR is the whole compilation unit's output: one Function per lambda-
// lifted HIR Fun plus one zero-parameter Function per non-function
// top-level value (its "thunk" initializer).
type MIR struct {
	Functions []*Function
}

// Function is one EBB-bodied function, spec §3's Function{name, params,
// return_ty, body}.
type Function struct {
	Name     symbol.Symbol
	Params   []Param
	ReturnTy Ty
	Body     []*EBB
}

// String renders a function as its name, parameter list, and one line per
// block/op, for pipeline dumps and REPL output.
func (f *Function) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s(%v) -> %s:\n", f.Name, f.Params, f.ReturnTy)
	for _, ebb := range f.Body {
		fmt.Fprintf(&b, "  %s\n", ebb)
		for _, op := range ebb.Body {
			fmt.Fprintf(&b, "    %s\n", op)
		}
	}
	return b.String()
}

// FindEBB returns the index of the EBB named name within Body, or false —
// grounded on original_source/src/mir/cfg.rs's Function::find_ebb (linear
// scan; names are unique per function).
func (f *Function) FindEBB(name symbol.Symbol) (int, bool) {
	for i, b := range f.Body {
		if b.Name.Equal(name) {
			return i, true
		}
	}
	return 0, false
}

// EBB is one extended basic block: a name (its jump/branch target),
// parameters it receives from a predecessor's Jump/Branch args, and a body
// ending in exactly one terminator (spec invariant 1).
type EBB struct {
	Name   symbol.Symbol
	Params []Param
	Body   []Op
}

func (b *EBB) String() string {
	return fmt.Sprintf("%s(%v):", b.Name, b.Params)
}

// Successors returns the names of the EBBs this block's terminator can
// transfer control to — original_source/src/mir/cfg.rs's
// EBB::next_ebbs, generalized from its two-terminator match to this
// system's three (Branch/Jump/Ret).
func (b *EBB) Successors() []symbol.Symbol {
	if len(b.Body) == 0 {
		return nil
	}
	switch t := b.Body[len(b.Body)-1].(type) {
	case *Branch:
		return []symbol.Symbol{t.Then, t.Else}
	case *Jump:
		return []symbol.Symbol{t.Target}
	case *Ret:
		return nil
	default:
		return nil
	}
}

// Op is one MIR instruction: a primitive computation or a terminator.
type Op interface {
	opNode()
	String() string
}

func (*LoadImm) opNode()     {}
func (*Move) opNode()        {}
func (*BinOp) opNode()       {}
func (*AllocTuple) opNode()  {}
func (*AllocCtor) opNode()   {}
func (*MakeClosure) opNode() {}
func (*Call) opNode()        {}
func (*Proj) opNode()        {}
func (*TagTest) opNode()     {}
func (*IntEq) opNode()       {}
func (*ExternCall) opNode()  {}
func (*Jump) opNode()        {}
func (*Branch) opNode()      {}
func (*Ret) opNode()         {}

// LoadImm materializes a literal value into Dst.
type LoadImm struct {
	Dst   symbol.Symbol
	Value coreast.Lit
}

func (o *LoadImm) String() string { return fmt.Sprintf("%s = imm %s", o.Dst, o.Value) }

// Move copies Src's value into Dst.
type Move struct{ Dst, Src symbol.Symbol }

func (o *Move) String() string { return fmt.Sprintf("%s = %s", o.Dst, o.Src) }

// BinOp applies a built-in binary operator (spec §6's fixed Add/Sub/Mul/
// Div/Mod/Eq/Neq/Gt/Ge/Lt/Le enumeration — every one of them is binary).
type BinOp struct {
	Dst      symbol.Symbol
	Op       coreast.BuiltinOp
	Lhs, Rhs symbol.Symbol
}

func (o *BinOp) String() string { return fmt.Sprintf("%s = %s %s %s", o.Dst, o.Op, o.Lhs, o.Rhs) }

// AllocTuple allocates a tuple value from its element symbols.
type AllocTuple struct {
	Dst   symbol.Symbol
	Elems []symbol.Symbol
}

func (o *AllocTuple) String() string {
	parts := make([]string, len(o.Elems))
	for i, e := range o.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s = tuple(%s)", o.Dst, strings.Join(parts, ", "))
}

// AllocCtor allocates a datatype value with the given dense discriminant
// (spec invariant 5) and, for a non-nullary constructor, its argument.
type AllocCtor struct {
	Dst          symbol.Symbol
	Discriminant int
	Arg          symbol.Symbol
	HasArg       bool
}

func (o *AllocCtor) String() string {
	if !o.HasArg {
		return fmt.Sprintf("%s = ctor#%d", o.Dst, o.Discriminant)
	}
	return fmt.Sprintf("%s = ctor#%d(%s)", o.Dst, o.Discriminant, o.Arg)
}

// MakeClosure allocates a closure value over a lambda-lifted function name
// and its captured environment, the MIR-level counterpart spec §4.5's
// explicit HIR Closure node needs once flattened: nothing in spec §3's
// prose Op list ("arithmetic / load-immediate / move / alloc / projection
// / constructor tag test") names a function-value primitive, but closures
// must still be materialized as runtime data for Call to invoke later —
// this is that materialization, not an enumerated spec Op.
type MakeClosure struct {
	Dst   symbol.Symbol
	FName symbol.Symbol
	Env   []symbol.Symbol
}

func (o *MakeClosure) String() string {
	return fmt.Sprintf("%s = closure %s %v", o.Dst, o.FName, o.Env)
}

// Call invokes a closure value with a single argument. Like MakeClosure,
// this is the minimal addition needed to lower HIR's App over an
// arbitrary (possibly late-bound) closure value — spec's Op list has no
// named application primitive, only terminators that jump to statically-
// known in-function targets.
type Call struct {
	Dst     symbol.Symbol
	Closure symbol.Symbol
	Arg     symbol.Symbol
}

func (o *Call) String() string { return fmt.Sprintf("%s = call %s %s", o.Dst, o.Closure, o.Arg) }

// Proj projects the Index'th element out of a tuple value.
type Proj struct {
	Dst   symbol.Symbol
	Src   symbol.Symbol
	Index int
}

func (o *Proj) String() string { return fmt.Sprintf("%s = #%d %s", o.Dst, o.Index, o.Src) }

// TagTest tests whether Src's constructor discriminant equals
// Discriminant, leaving a boolean-as-int result in Dst for a following
// Branch's Cond.
type TagTest struct {
	Dst          symbol.Symbol
	Src          symbol.Symbol
	Discriminant int
}

func (o *TagTest) String() string { return fmt.Sprintf("%s = tag(%s) == %d", o.Dst, o.Src, o.Discriminant) }

// IntEq tests whether Src's int/char value equals Value.
type IntEq struct {
	Dst   symbol.Symbol
	Src   symbol.Symbol
	Value int64
}

func (o *IntEq) String() string { return fmt.Sprintf("%s = %s == %d", o.Dst, o.Src, o.Value) }

// ExternCall invokes a foreign function by (module, name).
type ExternCall struct {
	Dst         symbol.Symbol
	Module, Fun string
	Args        []symbol.Symbol
}

func (o *ExternCall) String() string {
	return fmt.Sprintf("%s = %q.%q%v", o.Dst, o.Module, o.Fun, o.Args)
}

// Jump transfers control to Target, an EBB in the same function,
// supplying Args for its Params (spec invariant 2).
type Jump struct {
	Target symbol.Symbol
	Args   []symbol.Symbol
}

func (o *Jump) String() string { return fmt.Sprintf("jump %s%v", o.Target, o.Args) }

// Branch transfers control to Then or Else depending on Cond.
type Branch struct {
	Cond               symbol.Symbol
	Then, Else         symbol.Symbol
	ThenArgs, ElseArgs []symbol.Symbol
}

func (o *Branch) String() string {
	return fmt.Sprintf("branch %s then %s%v else %s%v", o.Cond, o.Then, o.ThenArgs, o.Else, o.ElseArgs)
}

// Ret returns Value (if HasValue) from the enclosing function.
type Ret struct {
	Value    symbol.Symbol
	HasValue bool
}

func (o *Ret) String() string {
	if !o.HasValue {
		return "ret"
	}
	return fmt.Sprintf("ret %s", o.Value)
}
