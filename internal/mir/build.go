package mir

import (
	"github.com/ailang-mir/mlc/internal/cerr"
	"github.com/ailang-mir/mlc/internal/hir"
	"github.com/ailang-mir/mlc/internal/symbol"
)

// Builder flattens lambda-lifted HIR Vals into MIR Functions (spec §4.6).
type Builder struct {
	symbols *symbol.Table
}

// NewBuilder creates a Builder over the shared symbol table.
func NewBuilder(symbols *symbol.Table) *Builder {
	return &Builder{symbols: symbols}
}

// Build lowers every top-level HIR Val into its own Function: a Fun-valued
// Val becomes a function over its captures followed by its own parameter;
// any other Val becomes a zero-parameter "thunk" function computing its
// initializer.
func (b *Builder) Build(vals []*hir.Val) *MIR {
	fns := make([]*Function, len(vals))
	for i, v := range vals {
		fns[i] = b.buildFunction(v)
	}
	return &MIR{Functions: fns}
}

func (b *Builder) buildFunction(v *hir.Val) *Function {
	fe := emitter{symbols: b.symbols}
	fe.openEBB(b.symbols.Fresh("entry"), nil)

	if fn, ok := v.Expr.(*hir.Fun); ok {
		params := make([]Param, 0, len(fn.Captures)+1)
		for _, c := range fn.Captures {
			params = append(params, Param{Sym: c.Sym, Ty: c.Ty})
		}
		params = append(params, Param{Sym: fn.Param, Ty: fn.ParamTy})

		dst := b.symbols.Fresh("v")
		fe.lower(fn.Body, true, dst)
		return &Function{Name: v.Name, Params: params, ReturnTy: nil, Body: fe.ebbs}
	}

	dst := b.symbols.Fresh("v")
	fe.lower(v.Expr, true, dst)
	return &Function{Name: v.Name, Params: nil, ReturnTy: v.Ty, Body: fe.ebbs}
}

// emitter is a mutable EBB builder: ops append to cur until a terminator
// closes it, at which point cur is pushed onto ebbs and a fresh EBB may be
// opened to continue emitting into (the Cranelift-style "current insertion
// point" builder original_source's Jump/Branch/EBB-with-params vocabulary
// is itself modeled on).
type emitter struct {
	symbols *symbol.Table
	ebbs    []*EBB
	cur     *EBB
}

func (e *emitter) newEBB(name symbol.Symbol, params []Param) *EBB {
	return &EBB{Name: name, Params: params}
}

func (e *emitter) append(op Op) {
	e.cur.Body = append(e.cur.Body, op)
}

func (e *emitter) terminate(op Op) {
	e.append(op)
	e.ebbs = append(e.ebbs, e.cur)
	e.cur = nil
}

func (e *emitter) openEBB(name symbol.Symbol, params []Param) {
	e.cur = e.newEBB(name, params)
}

func (e *emitter) terminateRet(sym symbol.Symbol) {
	e.terminate(&Ret{Value: sym, HasValue: true})
}

func (e *emitter) terminateJump(target symbol.Symbol, args []symbol.Symbol) {
	e.terminate(&Jump{Target: target, Args: args})
}

func (e *emitter) terminateBranch(cond, then, els symbol.Symbol, thenArgs, elseArgs []symbol.Symbol) {
	e.terminate(&Branch{Cond: cond, Then: then, Else: els, ThenArgs: thenArgs, ElseArgs: elseArgs})
}

// lowerToSym evaluates e into a fresh symbol (or returns an existing one
// directly for a bare Sym reference) without terminating the current EBB.
func (e *emitter) lowerToSym(expr hir.Expr) symbol.Symbol {
	if s, ok := expr.(*hir.Sym); ok {
		return s.Name
	}
	dst := e.symbols.Fresh("t")
	e.lower(expr, false, dst)
	return dst
}

// lower emits expr's value into dst. When tail is true, the current EBB is
// terminated with Ret{dst} (or, for a Case, with whatever terminator its
// branch structure produces); when false, execution continues in the
// (possibly new, for a nested Case) current EBB after dst is assigned.
func (e *emitter) lower(expr hir.Expr, tail bool, dst symbol.Symbol) {
	switch ex := expr.(type) {
	case *hir.Lit:
		e.append(&LoadImm{Dst: dst, Value: ex.Value})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.Sym:
		if tail {
			e.terminateRet(ex.Name)
		} else {
			e.append(&Move{Dst: dst, Src: ex.Name})
		}

	case *hir.Tuple:
		elems := make([]symbol.Symbol, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = e.lowerToSym(el)
		}
		e.append(&AllocTuple{Dst: dst, Elems: elems})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.Proj:
		src := e.lowerToSym(ex.Tuple)
		e.append(&Proj{Dst: dst, Src: src, Index: ex.Index})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.Constructor:
		if ex.Arg == nil {
			e.append(&AllocCtor{Dst: dst, Discriminant: ex.Discriminant})
		} else {
			arg := e.lowerToSym(ex.Arg)
			e.append(&AllocCtor{Dst: dst, Discriminant: ex.Discriminant, Arg: arg, HasArg: true})
		}
		if tail {
			e.terminateRet(dst)
		}

	case *hir.BuiltinCall:
		if len(ex.Args) != 2 {
			cerr.Panic("mir: builtin %s expects 2 arguments, got %d", ex.Op, len(ex.Args))
		}
		lhs := e.lowerToSym(ex.Args[0])
		rhs := e.lowerToSym(ex.Args[1])
		e.append(&BinOp{Dst: dst, Op: ex.Op, Lhs: lhs, Rhs: rhs})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.ExternCall:
		args := make([]symbol.Symbol, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = e.lowerToSym(a)
		}
		e.append(&ExternCall{Dst: dst, Module: ex.Module, Fun: ex.Fun, Args: args})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.App:
		fn := e.lowerToSym(ex.Fun)
		arg := e.lowerToSym(ex.Arg)
		e.append(&Call{Dst: dst, Closure: fn, Arg: arg})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.Closure:
		e.append(&MakeClosure{Dst: dst, FName: ex.FName, Env: ex.Envs})
		if tail {
			e.terminateRet(dst)
		}

	case *hir.Binds:
		for _, v := range ex.Binds {
			e.lower(v.Expr, false, v.Name)
		}
		e.lower(ex.Ret, tail, dst)

	case *hir.Case:
		e.lowerCase(ex, tail, dst)

	default:
		cerr.Panic("mir: unhandled HIR expression %T", expr)
	}
}

// lowerCase flattens a Case into a dispatch chain in the current block
// (one IntEq/TagTest-then-Branch per non-catch-all arm) followed by one
// EBB per arm body (spec §4.6). In tail position each arm EBB ends with
// its own Ret; otherwise every arm jumps to a shared join EBB that
// receives dst as its one parameter, and the join EBB becomes the new
// current block.
func (e *emitter) lowerCase(c *hir.Case, tail bool, dst symbol.Symbol) {
	scrut := e.lowerToSym(c.Scrutinee)

	var join symbol.Symbol
	if !tail {
		join = e.symbols.Fresh("join")
	}

	armNames := make([]symbol.Symbol, len(c.Arms))
	for i := range c.Arms {
		armNames[i] = e.symbols.Fresh("arm")
	}

	for i, arm := range c.Arms {
		last := i == len(c.Arms)-1
		switch p := arm.Pattern.(type) {
		case *hir.ConstantPattern:
			test := e.symbols.Fresh("test")
			e.append(&IntEq{Dst: test, Src: scrut, Value: p.Value})
			e.dispatchBranch(test, armNames[i], last)
		case *hir.CharPattern:
			test := e.symbols.Fresh("test")
			e.append(&IntEq{Dst: test, Src: scrut, Value: int64(p.Value)})
			e.dispatchBranch(test, armNames[i], last)
		case *hir.ConstructorPattern:
			test := e.symbols.Fresh("test")
			e.append(&TagTest{Dst: test, Src: scrut, Discriminant: p.Discriminant})
			e.dispatchBranch(test, armNames[i], last)
		case *hir.VarPattern:
			if p.Sym != (symbol.Symbol{}) {
				e.append(&Move{Dst: p.Sym, Src: scrut})
			}
			e.terminateJump(armNames[i], nil)
		default:
			cerr.Panic("mir: unsupported flat pattern %T reaching MIR lowering", arm.Pattern)
		}
	}

	for i, arm := range c.Arms {
		e.openEBB(armNames[i], nil)
		if cp, ok := arm.Pattern.(*hir.ConstructorPattern); ok && cp.Arg != nil {
			e.append(&Proj{Dst: cp.Arg.Sym, Src: scrut, Index: 0})
		}
		if tail {
			armDst := e.symbols.Fresh("v")
			e.lower(arm.Body, true, armDst)
		} else {
			armDst := e.symbols.Fresh("r")
			e.lower(arm.Body, false, armDst)
			e.terminateJump(join, []symbol.Symbol{armDst})
		}
	}

	if !tail {
		e.openEBB(join, []Param{{Sym: dst}})
	}
}

// dispatchBranch emits the current block's Branch for a tested arm: Then
// is the arm's own EBB; Else either opens a fresh continuation block (more
// tests follow) or, for the dispatch chain's last arm, targets that same
// arm EBB, so the last tested arm is taken whether or not its test holds.
// The HIR builder ends every defaulted Case with a VarPattern arm, so a
// tested last arm only occurs when the constructor switch is exhaustive.
func (e *emitter) dispatchBranch(cond, then symbol.Symbol, last bool) {
	if !last {
		next := e.symbols.Fresh("next")
		e.terminateBranch(cond, then, next, nil, nil)
		e.openEBB(next, nil)
		return
	}
	e.terminateBranch(cond, then, then, nil, nil)
}
