package types

import (
	"github.com/ailang-mir/mlc/internal/cerr"
	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/rawast"
	"github.com/ailang-mir/mlc/internal/symbol"
	"github.com/ailang-mir/mlc/internal/typedast"
)

// Checker runs Hindley-Milner inference with unification and an occurs
// check (spec §4.3), grounded on the shape of the teacher's
// InferenceContext (internal/types/inference.go): a counter for fresh
// variables, an accumulated Substitution, and a recursive Infer that
// unifies eagerly (Algorithm-W-with-eager-unification, rather than the
// teacher's constraint-collect-then-solve style, since this language has
// no row/effect constraints left to batch).
type Checker struct {
	tvarCounter int
	sub         Substitution
	ctors       *CtorEnv
	sink        *diag.Sink
	info        *typedast.Info
	builtins    map[symbol.Symbol]coreast.BuiltinOp
}

// NewChecker creates a Checker with a prelude constructor environment
// (spec's Open Question: constructor-vs-variable disambiguation depends on
// what datatypes are already in scope at the point a pattern is checked;
// `bool` is the one datatype this compiler declares before any source
// text, since `if` desugars to a Case over it — spec §4.2).
//
// builtins maps every infix-operator Symbol the desugarer interned
// (desugar.BuiltinSymbols) to its BuiltinOp, so CheckProgram can pre-seed
// the initial environment with a scheme for each: an ordinary App(Symbol,
// Tuple) resolves `+`/`<`/etc. through env.Lookup exactly like any other
// bound name, rather than through a separate hardcoded dispatch.
func NewChecker(sink *diag.Sink, builtins map[symbol.Symbol]coreast.BuiltinOp) *Checker {
	c := &Checker{sub: Substitution{}, ctors: NewCtorEnv(), sink: sink, info: typedast.NewInfo(), builtins: builtins}
	c.ctors.Register("True", "bool", nil)
	c.ctors.Register("False", "bool", nil)
	return c
}

// Ctors exposes the constructor environment, grown by CheckProgram as
// Datatype declarations are processed; the pattern compiler (dtree) and
// HIR builder need it to look up discriminants and siblings.
func (c *Checker) Ctors() *CtorEnv { return c.ctors }

// Info returns the accumulated type annotations.
func (c *Checker) Info() *typedast.Info { return c.info }

func (c *Checker) fresh() *TVar {
	c.tvarCounter++
	return &TVar{ID: c.tvarCounter}
}

func (c *Checker) unify(pos rawast.Pos, t1, t2 Type) error {
	u := NewUnifier()
	sub, err := u.Unify(t1, t2, c.sub)
	if err != nil {
		c.sink.Report(diag.SeverityError, pos, err)
		return err
	}
	c.sub = sub
	return nil
}

// CheckProgram type-checks every top-level declaration in order,
// continuing after a hard error in one declaration (spec §7: "the first
// hard error per top-level declaration aborts that declaration's
// elaboration but the compiler attempts to continue with subsequent
// declarations").
func (c *Checker) CheckProgram(prog *coreast.Program) *typedast.Program {
	env := c.seedBuiltinOperators(NewEnv())
	for _, decl := range prog.Decls {
		env = c.checkDecl(env, decl)
	}
	c.zonkAll()
	return &typedast.Program{Core: prog, Info: c.info}
}

// seedBuiltinOperators extends env with a monomorphic Fun{Tuple[operand,
// operand] -> result} scheme for every builtin operator symbol, so that
// App(Symbol(op), Tuple[a, b]) infers exactly like an ordinary function
// application (inferApp, below); desugaring does not special-case
// builtin names (spec §4.2, §8 scenario 2).
func (c *Checker) seedBuiltinOperators(env *Env) *Env {
	for sym, op := range c.builtins {
		operand, result := builtinSig(op)
		scheme := Mono(Fun{From: Tuple{Elems: []Type{operand, operand}}, To: result})
		env = env.Extend(sym, scheme)
	}
	return env
}

func (c *Checker) checkDecl(env *Env, decl coreast.Decl) *Env {
	switch d := decl.(type) {
	case *coreast.DatatypeDecl:
		for i := range d.Ctors {
			ctor := &d.Ctors[i]
			ctor.Discriminant = len(c.ctors.byDatatype[d.Name])
			c.ctors.Register(ctor.Name, d.Name, toTypesType(ctor.Arg))
		}
		return env

	case *coreast.ValDecl:
		return c.checkValDecl(env, d)

	default:
		cerr.Panic("unreachable declaration kind %T", decl)
		return env
	}
}

func (c *Checker) checkValDecl(env *Env, d *coreast.ValDecl) *Env {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*cerr.Internal); ok {
				panic(r)
			}
			c.sink.Report(diag.SeverityError, d.Pos, asErr(r))
		}
	}()

	if d.Rec {
		return c.checkRecValDecl(env, d)
	}

	t, err := c.infer(env, d.Expr)
	if err != nil {
		return env
	}
	return c.bindPattern(env, d.Pattern, t, d.Expr)
}

// checkRecValDecl implements the two-pass recursive elaboration of spec
// §9: "first introduce names with placeholder types ... then elaborate
// RHSs, then unify." Only a single-symbol `val rec f = fn ...` pattern is
// supported; the desugarer emits exactly that shape for every `fun`
// declaration, and the raw AST has no form for a mutually-recursive group.
func (c *Checker) checkRecValDecl(env *Env, d *coreast.ValDecl) *Env {
	sym, ok := singleSymbol(d.Pattern)
	if !ok {
		c.sink.Errorf(d.Pos, "recursive val must bind a single name")
		return env
	}
	placeholder := c.fresh()
	recEnv := env.Extend(sym, Mono(placeholder))

	t, err := c.infer(recEnv, d.Expr)
	if err != nil {
		return env
	}
	if err := c.unify(d.Pos, placeholder, t); err != nil {
		return env
	}
	final := Apply(c.sub, t)
	scheme := c.generalize(env, d.Expr, final)
	return env.Extend(sym, scheme)
}

func singleSymbol(p coreast.Pattern) (symbol.Symbol, bool) {
	v, ok := p.(*coreast.VariablePattern)
	if !ok {
		return symbol.Symbol{}, false
	}
	return v.Sym, true
}

// bindPattern extends env with every variable the pattern introduces,
// generalizing per the value restriction (spec §4.3, §9): only a
// syntactic value's type is generalized; anything else stays monomorphic.
func (c *Checker) bindPattern(env *Env, pat coreast.Pattern, ty Type, rhs coreast.Expr) *Env {
	switch p := pat.(type) {
	case *coreast.VariablePattern:
		var scheme *Scheme
		if isSyntacticValue(rhs) {
			scheme = c.generalize(env, rhs, Apply(c.sub, ty))
		} else {
			scheme = Mono(Apply(c.sub, ty))
		}
		c.info.Schemes[p] = scheme
		c.info.Patterns[p] = scheme.Type
		return env.Extend(p.Sym, scheme)
	case *coreast.TuplePattern:
		c.info.Patterns[p] = Apply(c.sub, ty)
		tup, ok := Apply(c.sub, ty).(Tuple)
		if !ok || len(tup.Elems) != len(p.Elems) {
			return env
		}
		for i, sub := range p.Elems {
			env = c.bindPattern(env, sub, tup.Elems[i], nil)
		}
		return env
	default:
		return env
	}
}

// generalize quantifies over the unification variables free in ty but not
// free in env — textbook Hindley-Milner generalization, restricted by the
// caller to syntactic values.
func (c *Checker) generalize(env *Env, _ coreast.Expr, ty Type) *Scheme {
	envFree := env.FreeVars()
	tyFree := FreeVars(ty)
	var vars []int
	for id := range tyFree {
		if !envFree[id] {
			vars = append(vars, id)
		}
	}
	return &Scheme{Vars: vars, Type: ty}
}

// isSyntacticValue implements the value restriction's notion of "value":
// literals, variables, constructors applied to values (or nullary),
// lambdas, and tuples of values. Anything else (applications in general,
// case expressions, etc.) is not generalized.
func isSyntacticValue(e coreast.Expr) bool {
	switch e := e.(type) {
	case nil:
		return false
	case *coreast.LiteralExpr, *coreast.SymbolExpr, *coreast.FnExpr:
		return true
	case *coreast.ConstructorExpr:
		return e.Arg == nil || isSyntacticValue(e.Arg)
	case *coreast.TupleExpr:
		for _, el := range e.Elems {
			if !isSyntacticValue(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *Checker) instantiate(s *Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Type
	}
	fresh := Substitution{}
	for _, v := range s.Vars {
		fresh[v] = c.fresh()
	}
	return Apply(fresh, s.Type)
}

// infer implements Algorithm W over coreast.Expr with eager unification.
func (c *Checker) infer(env *Env, expr coreast.Expr) (Type, error) {
	var t Type
	var err error

	switch e := expr.(type) {
	case *coreast.LiteralExpr:
		t = literalType(e.Lit)

	case *coreast.SymbolExpr:
		scheme, ok := env.Lookup(e.Sym)
		if !ok {
			err = cerr.UnboundSymbol(e.Sym.String())
			c.sink.Report(diag.SeverityError, e.Pos, err)
			return nil, err
		}
		t = c.instantiate(scheme)

	case *coreast.ConstructorExpr:
		t, err = c.inferConstructor(env, e)

	case *coreast.TupleExpr:
		elems := make([]Type, len(e.Elems))
		for i, el := range e.Elems {
			elemTy, elErr := c.infer(env, el)
			if elErr != nil {
				return nil, elErr
			}
			elems[i] = elemTy
		}
		t = Tuple{Elems: elems}

	case *coreast.AppExpr:
		t, err = c.inferApp(env, e)

	case *coreast.FnExpr:
		paramTy := c.fresh()
		bodyEnv := env.Extend(e.Param, Mono(paramTy))
		bodyTy, bErr := c.infer(bodyEnv, e.Body)
		if bErr != nil {
			return nil, bErr
		}
		t = Fun{From: paramTy, To: bodyTy}

	case *coreast.LetExpr:
		t, err = c.inferLet(env, e)

	case *coreast.CaseExpr:
		t, err = c.inferCase(env, e)

	case *coreast.BuiltinCallExpr:
		t, err = c.inferBuiltinCall(env, e)

	case *coreast.ExternCallExpr:
		for _, a := range e.Args {
			if _, aErr := c.infer(env, a); aErr != nil {
				return nil, aErr
			}
		}
		t = c.fresh() // extern signatures are not known to this compiler

	case *coreast.ProjExpr:
		t, err = c.inferProj(env, e)

	default:
		cerr.Panic("unreachable expr kind %T", expr)
	}

	if err != nil {
		return nil, err
	}
	c.info.Exprs[expr] = t
	return t, nil
}

// inferCase types a case expression: every arm's pattern is checked
// against the scrutinee's type (resolving Variable-vs-Constructor
// ambiguity along the way, spec's Open Question on pattern disambiguation
// — see DESIGN.md) and every arm's body is unified into one result type.
// Exhaustiveness/redundancy is not this stage's concern; internal/dtree
// re-walks the same (now-disambiguated) patterns to report those.
func (c *Checker) inferCase(env *Env, e *coreast.CaseExpr) (Type, error) {
	scrutTy, err := c.infer(env, e.Scrutinee)
	if err != nil {
		return nil, err
	}

	resultTy := c.fresh()
	for i := range e.Arms {
		arm := &e.Arms[i]
		arm.Pattern = c.resolvePattern(arm.Pattern)
		armEnv, err := c.checkCasePattern(e.Pos, env, arm.Pattern, scrutTy)
		if err != nil {
			return nil, err
		}
		bodyTy, err := c.infer(armEnv, arm.Body)
		if err != nil {
			return nil, err
		}
		if err := c.unify(e.Pos, resultTy, bodyTy); err != nil {
			return nil, err
		}
	}
	return resultTy, nil
}

// resolvePattern rewrites a VariablePattern into a ConstructorPattern
// whenever its source name already names a registered nullary
// constructor at this point in elaboration. The desugarer leaves this
// ambiguity for the inferencer on purpose: a bare name like NONE parses
// as a Variable (binding) until the datatype declaring it has actually
// been registered in CtorEnv, matching this language's declare-before-use
// visibility for constructors.
func (c *Checker) resolvePattern(p coreast.Pattern) coreast.Pattern {
	switch p := p.(type) {
	case *coreast.VariablePattern:
		if sig, ok := c.ctors.Lookup(p.Name); ok && sig.Arg == nil {
			return &coreast.ConstructorPattern{Name: p.Name}
		}
		return p
	case *coreast.TuplePattern:
		elems := make([]coreast.Pattern, len(p.Elems))
		for i, el := range p.Elems {
			elems[i] = c.resolvePattern(el)
		}
		return &coreast.TuplePattern{Elems: elems}
	case *coreast.ConstructorPattern:
		if p.Arg != nil {
			return &coreast.ConstructorPattern{Name: p.Name, Arg: c.resolvePattern(p.Arg)}
		}
		return p
	default:
		return p
	}
}

// checkCasePattern unifies a pattern's required shape against ty and
// extends env with the variables it binds.
func (c *Checker) checkCasePattern(pos rawast.Pos, env *Env, pat coreast.Pattern, ty Type) (*Env, error) {
	c.info.Patterns[pat] = ty

	switch p := pat.(type) {
	case *coreast.ConstantPattern:
		if err := c.unify(pos, ty, Int{}); err != nil {
			return nil, err
		}
		return env, nil

	case *coreast.CharPattern:
		if err := c.unify(pos, ty, Char{}); err != nil {
			return nil, err
		}
		return env, nil

	case *coreast.WildcardPattern:
		return env, nil

	case *coreast.VariablePattern:
		return env.Extend(p.Sym, Mono(Apply(c.sub, ty))), nil

	case *coreast.TuplePattern:
		tup, ok := Apply(c.sub, ty).(Tuple)
		if !ok || len(tup.Elems) != len(p.Elems) {
			err := cerr.ArityMismatch(len(p.Elems), 0)
			c.sink.Report(diag.SeverityError, pos, err)
			return nil, err
		}
		for i, el := range p.Elems {
			var err error
			env, err = c.checkCasePattern(pos, env, el, tup.Elems[i])
			if err != nil {
				return nil, err
			}
		}
		return env, nil

	case *coreast.ConstructorPattern:
		sig, ok := c.ctors.Lookup(p.Name)
		if !ok {
			err := cerr.UnboundSymbol(p.Name)
			c.sink.Report(diag.SeverityError, pos, err)
			return nil, err
		}
		if (sig.Arg == nil) != (p.Arg == nil) {
			err := cerr.ConstructorArityMismatch(p.Name, sig.Arg != nil)
			c.sink.Report(diag.SeverityError, pos, err)
			return nil, err
		}
		if err := c.unify(pos, ty, Datatype{Name: sig.Datatype}); err != nil {
			return nil, err
		}
		if p.Arg != nil {
			return c.checkCasePattern(pos, env, p.Arg, sig.Arg)
		}
		return env, nil

	default:
		cerr.Panic("unreachable pattern kind %T", pat)
		return env, nil
	}
}

func (c *Checker) inferConstructor(env *Env, e *coreast.ConstructorExpr) (Type, error) {
	sig, ok := c.ctors.Lookup(e.Name)
	if !ok {
		err := cerr.UnboundSymbol(e.Name)
		c.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	if (sig.Arg == nil) != (e.Arg == nil) {
		err := cerr.ConstructorArityMismatch(e.Name, sig.Arg != nil)
		c.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	if e.Arg != nil {
		argTy, err := c.infer(env, e.Arg)
		if err != nil {
			return nil, err
		}
		if err := c.unify(e.Pos, sig.Arg, argTy); err != nil {
			return nil, err
		}
	}
	return Datatype{Name: sig.Datatype}, nil
}

func (c *Checker) inferApp(env *Env, e *coreast.AppExpr) (Type, error) {
	funTy, err := c.infer(env, e.Fun)
	if err != nil {
		return nil, err
	}
	argTy, err := c.infer(env, e.Arg)
	if err != nil {
		return nil, err
	}
	resultTy := c.fresh()
	if err := c.unify(e.Pos, funTy, Fun{From: argTy, To: resultTy}); err != nil {
		return nil, err
	}
	return resultTy, nil
}

func (c *Checker) inferLet(env *Env, e *coreast.LetExpr) (Type, error) {
	bodyEnv := env
	if e.Rec {
		placeholders := make(map[symbol.Symbol]*TVar, len(e.Binds))
		recEnv := env
		for _, b := range e.Binds {
			tv := c.fresh()
			placeholders[b.Sym] = tv
			recEnv = recEnv.Extend(b.Sym, Mono(tv))
		}
		final := make(map[symbol.Symbol]*Scheme, len(e.Binds))
		for _, b := range e.Binds {
			t, err := c.infer(recEnv, b.Value)
			if err != nil {
				return nil, err
			}
			if err := c.unify(e.Pos, placeholders[b.Sym], t); err != nil {
				return nil, err
			}
		}
		for _, b := range e.Binds {
			resolved := Apply(c.sub, placeholders[b.Sym])
			if isSyntacticValue(b.Value) {
				final[b.Sym] = c.generalize(env, b.Value, resolved)
			} else {
				final[b.Sym] = Mono(resolved)
			}
		}
		bodyEnv = env.ExtendMany(final)
	} else {
		for _, b := range e.Binds {
			t, err := c.infer(env, b.Value)
			if err != nil {
				return nil, err
			}
			var scheme *Scheme
			if isSyntacticValue(b.Value) {
				scheme = c.generalize(env, b.Value, Apply(c.sub, t))
			} else {
				scheme = Mono(Apply(c.sub, t))
			}
			bodyEnv = bodyEnv.Extend(b.Sym, scheme)
		}
	}
	return c.infer(bodyEnv, e.Body)
}

func (c *Checker) inferProj(env *Env, e *coreast.ProjExpr) (Type, error) {
	tupTy, err := c.infer(env, e.Tuple)
	if err != nil {
		return nil, err
	}
	resolved := Apply(c.sub, tupTy)
	tup, ok := resolved.(Tuple)
	if !ok || e.Index < 0 || e.Index >= len(tup.Elems) {
		err := cerr.ArityMismatch(e.Index+1, 0)
		c.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	return tup.Elems[e.Index], nil
}

// builtinSig gives each spec §6 built-in op a fixed signature. All are
// homogeneous binary Int operators in this minimal language; arithmetic
// ops return Int, comparisons return the builtin bool datatype.
func builtinSig(op coreast.BuiltinOp) (operand Type, result Type) {
	switch op {
	case coreast.OpEq, coreast.OpNeq, coreast.OpGt, coreast.OpGe, coreast.OpLt, coreast.OpLe:
		return Int{}, Datatype{Name: "bool"}
	default:
		return Int{}, Int{}
	}
}

func (c *Checker) inferBuiltinCall(env *Env, e *coreast.BuiltinCallExpr) (Type, error) {
	if len(e.Args) != 2 {
		err := cerr.ArityMismatch(2, len(e.Args))
		c.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	operand, result := builtinSig(e.Op)
	for _, a := range e.Args {
		t, err := c.infer(env, a)
		if err != nil {
			return nil, err
		}
		if err := c.unify(e.Pos, operand, t); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func literalType(l coreast.Lit) Type {
	switch l.Kind {
	case coreast.IntLit:
		return Int{}
	case coreast.RealLit:
		return Real{}
	case coreast.CharLit:
		return Char{}
	default:
		cerr.Panic("unreachable literal kind %v", l.Kind)
		return nil
	}
}

func toTypesType(t coreast.Type) Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case coreast.IntType:
		return Int{}
	case coreast.RealType:
		return Real{}
	case coreast.CharType:
		return Char{}
	case coreast.TupleType:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = toTypesType(e)
		}
		return Tuple{Elems: elems}
	case coreast.FunType:
		return Fun{From: toTypesType(t.From), To: toTypesType(t.To)}
	case coreast.DatatypeType:
		return Datatype{Name: t.Name}
	default:
		cerr.Panic("unreachable coreast type %T", t)
		return nil
	}
}

// zonkAll applies the final substitution to every recorded annotation, so
// that by the time CheckProgram returns no *TVar remains anywhere in Info
// (spec invariant 4).
func (c *Checker) zonkAll() {
	for e, t := range c.info.Exprs {
		c.info.Exprs[e] = Apply(c.sub, t)
	}
	for p, t := range c.info.Patterns {
		c.info.Patterns[p] = Apply(c.sub, t)
	}
	for p, s := range c.info.Schemes {
		c.info.Schemes[p] = ApplyScheme(c.sub, s)
	}
}

func asErr(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return cerr.ArityMismatch(0, 0)
}
