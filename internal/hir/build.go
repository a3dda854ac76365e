package hir

import (
	"github.com/ailang-mir/mlc/internal/cerr"
	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/dtree"
	"github.com/ailang-mir/mlc/internal/symbol"
	"github.com/ailang-mir/mlc/internal/typedast"
	"github.com/ailang-mir/mlc/internal/types"
)

// Builder lowers a type-checked program into HIR: every Case expression is
// first compiled to a decision tree (internal/dtree), then closure
// conversion lambda-lifts every Fn into a top-level Val and replaces its
// use site with a Closure over the free variables it captured (spec §4.5).
type Builder struct {
	symbols  *symbol.Table
	ctors    *types.CtorEnv
	sink     *diag.Sink
	info     *typedast.Info
	builtins map[symbol.Symbol]coreast.BuiltinOp

	globals map[symbol.Symbol]bool
	lifted  []*Val
}

// NewBuilder creates a Builder over one compilation unit's symbol table,
// constructor environment, and type information. builtins maps every
// infix-operator Symbol the desugarer interned (desugar.BuiltinSymbols)
// to its BuiltinOp, so lowerExpr can recognize a builtin-operator
// App(Symbol, Tuple) and emit a BuiltinCall directly (spec §4.2, §8
// scenario 2) instead of a generic closure App. Those symbols behave
// like globals for free-variable analysis: they are always in scope and
// never captured.
func NewBuilder(symbols *symbol.Table, ctors *types.CtorEnv, sink *diag.Sink, info *typedast.Info, builtins map[symbol.Symbol]coreast.BuiltinOp) *Builder {
	globals := make(map[symbol.Symbol]bool, len(builtins))
	for sym := range builtins {
		globals[sym] = true
	}
	return &Builder{
		symbols:  symbols,
		ctors:    ctors,
		sink:     sink,
		info:     info,
		builtins: builtins,
		globals:  globals,
	}
}

// Build converts a desugared, type-checked program into its HIR form: the
// lambda-lifted function definitions first (in the order they were lifted,
// which is bottom-up within each top-level binding), followed by the
// program's own top-level Vals in source order.
func (b *Builder) Build(prog *coreast.Program) []*Val {
	for _, d := range prog.Decls {
		if vd, ok := d.(*coreast.ValDecl); ok {
			for _, sym := range patternSymbols(vd.Pattern) {
				b.globals[sym] = true
			}
		}
	}

	var out []*Val
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *coreast.DatatypeDecl:
			continue // ctors already registered into b.ctors by the type checker
		case *coreast.ValDecl:
			out = append(out, b.buildValDecl(d)...)
		}
	}
	return append(b.lifted, out...)
}

// buildValDecl lowers one top-level binding. A simple variable pattern
// becomes a single Val; any other irrefutable pattern (only Tuple is
// supported at top level) is expanded into an anonymous binding for the
// right-hand side plus one Val per destructured component.
func (b *Builder) buildValDecl(d *coreast.ValDecl) []*Val {
	rhs := b.lowerExpr(d.Expr, nil)
	ty := b.hty(b.info.TypeOf(d.Expr))

	if sym, ok := singleSymbol(d.Pattern); ok {
		return []*Val{{Rec: d.Rec, Name: sym, Ty: ty, Expr: rhs}}
	}

	tmp := b.symbols.Fresh("tup")
	out := []*Val{{Rec: false, Name: tmp, Ty: ty, Expr: rhs}}
	out = append(out, b.destructureTopLevel(d.Pattern, &Sym{Name: tmp}, ty)...)
	return out
}

func (b *Builder) destructureTopLevel(pat coreast.Pattern, value Expr, ty Ty) []*Val {
	switch p := pat.(type) {
	case *coreast.VariablePattern:
		return []*Val{{Name: p.Sym, Ty: ty, Expr: value}}
	case *coreast.TuplePattern:
		tt, _ := ty.(TTuple)
		var out []*Val
		for i, el := range p.Elems {
			var elemTy Ty
			if i < len(tt.Elems) {
				elemTy = tt.Elems[i]
			}
			out = append(out, b.destructureTopLevel(el, &Proj{Index: i, Tuple: value}, elemTy)...)
		}
		return out
	case *coreast.WildcardPattern:
		return nil
	default:
		cerr.Panic("unsupported irrefutable top-level pattern %T", pat)
		return nil
	}
}

func singleSymbol(pat coreast.Pattern) (symbol.Symbol, bool) {
	if vp, ok := pat.(*coreast.VariablePattern); ok {
		return vp.Sym, true
	}
	return symbol.Symbol{}, false
}

func patternSymbols(pat coreast.Pattern) []symbol.Symbol {
	switch p := pat.(type) {
	case *coreast.VariablePattern:
		return []symbol.Symbol{p.Sym}
	case *coreast.TuplePattern:
		var out []symbol.Symbol
		for _, e := range p.Elems {
			out = append(out, patternSymbols(e)...)
		}
		return out
	default:
		return nil
	}
}

// access maps an already-materialized scrutinee path to the HIR expression
// that reads it. It is threaded (and locally extended) through decision
// tree lowering rather than stored on Builder, since sibling branches must
// not see each other's bindings.
type access map[string]Expr

func (a access) with(p dtree.Path, e Expr) access {
	na := make(access, len(a)+1)
	for k, v := range a {
		na[k] = v
	}
	na[p.String()] = e
	return na
}

// lowerExpr converts one coreast expression to HIR, lambda-lifting every Fn
// it finds along the way.
func (b *Builder) lowerExpr(e coreast.Expr, env access) Expr {
	switch e := e.(type) {
	case *coreast.LiteralExpr:
		return &Lit{Value: e.Lit}
	case *coreast.SymbolExpr:
		return &Sym{Name: e.Sym}
	case *coreast.ConstructorExpr:
		sig, _ := b.ctors.Lookup(e.Name)
		var arg Expr
		if e.Arg != nil {
			arg = b.lowerExpr(e.Arg, env)
		}
		return &Constructor{Discriminant: sig.Discriminant, Name: e.Name, Arg: arg}
	case *coreast.TupleExpr:
		elems := make([]Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = b.lowerExpr(el, env)
		}
		return &Tuple{Elems: elems}
	case *coreast.AppExpr:
		if bc := b.lowerBuiltinApp(e, env); bc != nil {
			return bc
		}
		return &App{Fun: b.lowerExpr(e.Fun, env), Arg: b.lowerExpr(e.Arg, env)}
	case *coreast.FnExpr:
		return b.liftFn(e, env)
	case *coreast.LetExpr:
		return b.lowerLet(e, env)
	case *coreast.CaseExpr:
		return b.lowerCase(e, env)
	case *coreast.BuiltinCallExpr:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.lowerExpr(a, env)
		}
		return &BuiltinCall{Op: e.Op, Args: args}
	case *coreast.ExternCallExpr:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.lowerExpr(a, env)
		}
		return &ExternCall{Module: e.Module, Fun: e.Fun, Args: args}
	case *coreast.ProjExpr:
		return &Proj{Index: e.Index, Tuple: b.lowerExpr(e.Tuple, env)}
	default:
		cerr.Panic("hir: unhandled core expression %T", e)
		return nil
	}
}

// lowerBuiltinApp recognizes App(Symbol(op), Tuple[a, b]) where op is a
// known builtin operator symbol — the shape every infix-operator use
// desugars to, builtin-named or not (spec §4.2) — and lowers it straight
// to a BuiltinCall, bypassing the generic closure-call path. Returns nil
// for any other application, which lowerExpr then lowers as an ordinary
// App.
func (b *Builder) lowerBuiltinApp(e *coreast.AppExpr, env access) Expr {
	sym, ok := e.Fun.(*coreast.SymbolExpr)
	if !ok {
		return nil
	}
	op, ok := b.builtins[sym.Sym]
	if !ok {
		return nil
	}
	tup, ok := e.Arg.(*coreast.TupleExpr)
	if !ok || len(tup.Elems) != 2 {
		return nil
	}
	return &BuiltinCall{Op: op, Args: []Expr{b.lowerExpr(tup.Elems[0], env), b.lowerExpr(tup.Elems[1], env)}}
}

func (b *Builder) lowerLet(e *coreast.LetExpr, env access) Expr {
	binds := make([]*Val, len(e.Binds))
	for i, lb := range e.Binds {
		binds[i] = &Val{Rec: e.Rec, Name: lb.Sym, Ty: b.hty(b.info.TypeOf(lb.Value)), Expr: b.lowerExpr(lb.Value, env)}
	}
	return &Binds{Binds: binds, Ret: b.lowerExpr(e.Body, env)}
}

// liftFn performs closure conversion on a single-parameter lambda: compute
// its free variables (excluding globals and the parameter itself), hoist a
// Fun definition carrying them as an explicit Captures list, and return a
// Closure referencing it by name (spec §4.5).
func (b *Builder) liftFn(e *coreast.FnExpr, env access) Expr {
	bound := map[symbol.Symbol]bool{e.Param: true}
	free := make(map[symbol.Symbol]*coreast.SymbolExpr)
	freeVars(e.Body, bound, b.globals, free)

	captures := make([]Capture, 0, len(free))
	envSyms := make([]symbol.Symbol, 0, len(free))
	for sym, occurrence := range free {
		captures = append(captures, Capture{Sym: sym, Ty: b.hty(b.info.TypeOf(occurrence))})
		envSyms = append(envSyms, sym)
	}
	sortCaptures(captures)
	sortSymbols(envSyms)

	var paramTy Ty
	if fnTy, ok := b.info.TypeOf(e).(types.Fun); ok {
		paramTy = b.hty(fnTy.From)
	}

	body := b.lowerExpr(e.Body, env)
	name := b.symbols.Fresh("lifted")
	b.lifted = append(b.lifted, &Val{
		Name: name,
		Ty:   TFun{From: paramTy, To: b.hty(b.info.TypeOf(e.Body))},
		Expr: &Fun{Param: e.Param, ParamTy: paramTy, Body: body, Captures: captures},
	})
	return &Closure{FName: name, Envs: envSyms}
}

func sortCaptures(c []Capture) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && less(c[j].Sym, c[j-1].Sym); j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func sortSymbols(s []symbol.Symbol) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func less(a, b symbol.Symbol) bool {
	if a.Hint != b.Hint {
		return a.Hint < b.Hint
	}
	return a.Gen < b.Gen
}

// freeVars collects every symbol e references that is neither in bound nor
// a global, grounded on the teacher's (now-superseded) free-variable-walk
// shape: a straightforward recursive descent threading the locally-bound
// set, extended on entry to a binder and restored on exit. free maps each
// captured symbol to one referencing occurrence (the first one found), so
// the caller can recover its type via b.info.TypeOf(occurrence) — the
// bare Symbol alone carries no type, only an occurrence node does.
func freeVars(e coreast.Expr, bound map[symbol.Symbol]bool, globals map[symbol.Symbol]bool, free map[symbol.Symbol]*coreast.SymbolExpr) {
	switch e := e.(type) {
	case *coreast.LiteralExpr:
	case *coreast.SymbolExpr:
		if !bound[e.Sym] && !globals[e.Sym] {
			if _, seen := free[e.Sym]; !seen {
				free[e.Sym] = e
			}
		}
	case *coreast.ConstructorExpr:
		if e.Arg != nil {
			freeVars(e.Arg, bound, globals, free)
		}
	case *coreast.TupleExpr:
		for _, el := range e.Elems {
			freeVars(el, bound, globals, free)
		}
	case *coreast.AppExpr:
		freeVars(e.Fun, bound, globals, free)
		freeVars(e.Arg, bound, globals, free)
	case *coreast.FnExpr:
		inner := extend(bound, e.Param)
		freeVars(e.Body, inner, globals, free)
	case *coreast.LetExpr:
		inner := bound
		for _, bind := range e.Binds {
			inner = extend(inner, bind.Sym)
		}
		for _, bind := range e.Binds {
			if e.Rec {
				freeVars(bind.Value, inner, globals, free)
			} else {
				freeVars(bind.Value, bound, globals, free)
			}
		}
		freeVars(e.Body, inner, globals, free)
	case *coreast.CaseExpr:
		freeVars(e.Scrutinee, bound, globals, free)
		for _, arm := range e.Arms {
			inner := extendPattern(bound, arm.Pattern)
			freeVars(arm.Body, inner, globals, free)
		}
	case *coreast.BuiltinCallExpr:
		for _, a := range e.Args {
			freeVars(a, bound, globals, free)
		}
	case *coreast.ExternCallExpr:
		for _, a := range e.Args {
			freeVars(a, bound, globals, free)
		}
	case *coreast.ProjExpr:
		freeVars(e.Tuple, bound, globals, free)
	default:
		cerr.Panic("hir: unhandled core expression %T in free-variable analysis", e)
	}
}

func extend(bound map[symbol.Symbol]bool, sym symbol.Symbol) map[symbol.Symbol]bool {
	next := make(map[symbol.Symbol]bool, len(bound)+1)
	for k, v := range bound {
		next[k] = v
	}
	next[sym] = true
	return next
}

func extendPattern(bound map[symbol.Symbol]bool, pat coreast.Pattern) map[symbol.Symbol]bool {
	next := bound
	for _, sym := range corePatternSymbols(pat) {
		next = extend(next, sym)
	}
	return next
}

func corePatternSymbols(pat coreast.Pattern) []symbol.Symbol {
	switch p := pat.(type) {
	case *coreast.VariablePattern:
		return []symbol.Symbol{p.Sym}
	case *coreast.TuplePattern:
		var out []symbol.Symbol
		for _, e := range p.Elems {
			out = append(out, corePatternSymbols(e)...)
		}
		return out
	case *coreast.ConstructorPattern:
		if p.Arg != nil {
			return corePatternSymbols(p.Arg)
		}
		return nil
	default:
		return nil
	}
}

// lowerCase compiles e's arms to a decision tree and lowers that tree to
// nested HIR Case/Binds expressions (spec §4.4 feeding §4.5).
func (b *Builder) lowerCase(e *coreast.CaseExpr, env access) Expr {
	compiler := dtree.NewCompiler(b.ctors, b.sink)
	tree := compiler.Compile(e.Pos, e.Arms)

	scrutHIR := b.lowerExpr(e.Scrutinee, env)
	root := make(access, len(env)+1)
	for k, v := range env {
		root[k] = v
	}
	root[(dtree.Path{}).String()] = scrutHIR
	return b.lowerTree(tree, root)
}

func (b *Builder) lowerTree(tree dtree.Tree, env access) Expr {
	switch t := tree.(type) {
	case *dtree.Fail:
		return &ExternCall{Module: "runtime", Fun: "matchFail", Args: nil}

	case *dtree.Bind:
		if t.Next == nil {
			return b.lowerExpr(t.Body, env)
		}
		val := &Val{Name: t.Sym, Ty: nil, Expr: env[t.Path.String()]}
		return &Binds{Binds: []*Val{val}, Ret: b.lowerTree(t.Next, env)}

	case *dtree.Decompose:
		base := env[t.Path.String()]
		vals := make([]*Val, t.Arity)
		next := env
		for i := 0; i < t.Arity; i++ {
			sym := b.symbols.Fresh("proj")
			vals[i] = &Val{Name: sym, Ty: nil, Expr: &Proj{Index: i, Tuple: base}}
			subPath := append(append(dtree.Path{}, t.Path...), i)
			next = next.with(subPath, &Sym{Name: sym})
		}
		return &Binds{Binds: vals, Ret: b.lowerTree(t.Next, next)}

	case *dtree.SwitchInt:
		scrut := env[t.Path.String()]
		arms := make([]CaseArm, 0, len(t.Cases)+1)
		for v, sub := range t.Cases {
			arms = append(arms, CaseArm{Pattern: &ConstantPattern{Value: v}, Body: b.lowerTree(sub, env)})
		}
		wild := b.symbols.Fresh("_")
		arms = append(arms, CaseArm{Pattern: &VarPattern{Sym: wild}, Body: b.lowerTree(t.Default, env)})
		return &Case{Scrutinee: scrut, Arms: arms}

	case *dtree.SwitchCtor:
		scrut := env[t.Path.String()]
		arms := make([]CaseArm, 0, len(t.Cases)+1)
		for name, sub := range t.Cases {
			sig, _ := b.ctors.Lookup(name)
			var binding *PatternBinding
			next := env
			if sig.Arg != nil {
				argSym := b.symbols.Fresh("arg")
				binding = &PatternBinding{Ty: nil, Sym: argSym}
				subPath := append(append(dtree.Path{}, t.Path...), 0)
				next = next.with(subPath, &Sym{Name: argSym})
			}
			arms = append(arms, CaseArm{
				Pattern: &ConstructorPattern{Discriminant: sig.Discriminant, Name: name, Arg: binding},
				Body:    b.lowerTree(sub, next),
			})
		}
		if t.Default != nil {
			wild := b.symbols.Fresh("_")
			arms = append(arms, CaseArm{Pattern: &VarPattern{Sym: wild}, Body: b.lowerTree(t.Default, env)})
		}
		return &Case{Scrutinee: scrut, Arms: arms}

	default:
		cerr.Panic("hir: unhandled decision tree node %T", tree)
		return nil
	}
}

// hty converts a resolved types.Type (post-inference, fully zonked: spec
// invariant 4) into its HIR counterpart.
func (b *Builder) hty(t types.Type) Ty {
	switch t := t.(type) {
	case nil:
		return nil
	case types.Int:
		return TInt{}
	case types.Real:
		return TReal{}
	case types.Char:
		return TChar{}
	case types.Tuple:
		elems := make([]Ty, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = b.hty(e)
		}
		return TTuple{Elems: elems}
	case types.Fun:
		return TFun{From: b.hty(t.From), To: b.hty(t.To)}
	case types.Datatype:
		return TDatatype{Name: t.Name}
	case *types.TVar:
		cerr.Panic("hir: unresolved type variable 't%d reached HIR lowering", t.ID)
		return nil
	default:
		cerr.Panic("hir: unhandled type %T", t)
		return nil
	}
}
