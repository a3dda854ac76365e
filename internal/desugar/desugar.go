// Package desugar lowers a rawast.Program into a coreast.Program (spec
// §4.2): infix precedence resolution, `if`/multi-clause-`fun`/
// _builtincall surface-form expansion, and datatype registration with
// dense per-datatype discriminants.
//
// Grounded on the teacher's internal/elaborate/elaborate.go: a single
// stateful pass over the raw tree threading a symbol table and a
// diagnostics sink, expanding derived forms into the smaller core form
// before anything downstream sees them. Constructor names are resolved
// eagerly here at every expression site, against a table built in
// declaration order; pattern-site Variable-vs-Constructor resolution is
// deliberately left to internal/types (see DESIGN.md).
package desugar

import (
	"github.com/ailang-mir/mlc/internal/cerr"
	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/rawast"
	"github.com/ailang-mir/mlc/internal/symbol"
)

// priInfo is an operator's declared fixity.
type priInfo struct {
	Priority int
	Assoc    rawast.Assoc
}

// defaultPriorities seeds the arithmetic/comparison operators spec §6
// exposes as builtins, so `a + b * c` parses correctly even before any
// user `infix` declaration — grounded on Standard ML's fixity table,
// which this surface syntax otherwise mirrors.
func defaultPriorities() map[string]priInfo {
	return map[string]priInfo{
		"*": {7, rawast.AssocLeft}, "/": {7, rawast.AssocLeft}, "%": {7, rawast.AssocLeft},
		"+": {6, rawast.AssocLeft}, "-": {6, rawast.AssocLeft},
		"=": {4, rawast.AssocLeft}, "<>": {4, rawast.AssocLeft},
		"<": {4, rawast.AssocLeft}, "<=": {4, rawast.AssocLeft},
		">": {4, rawast.AssocLeft}, ">=": {4, rawast.AssocLeft},
	}
}

var builtinOps = map[string]coreast.BuiltinOp{
	"+": coreast.OpAdd, "-": coreast.OpSub, "*": coreast.OpMul, "/": coreast.OpDiv, "%": coreast.OpMod,
	"=": coreast.OpEq, "<>": coreast.OpNeq, ">": coreast.OpGt, ">=": coreast.OpGe, "<": coreast.OpLt, "<=": coreast.OpLe,
}

// builtinNameTable maps a `_builtincall "name"` literal to its op, per
// spec §6's fixed enumeration.
var builtinNameTable = map[string]coreast.BuiltinOp{
	"add": coreast.OpAdd, "sub": coreast.OpSub, "mul": coreast.OpMul, "div": coreast.OpDiv, "mod": coreast.OpMod,
	"eq": coreast.OpEq, "neq": coreast.OpNeq, "gt": coreast.OpGt, "ge": coreast.OpGe, "lt": coreast.OpLt, "le": coreast.OpLe,
}

// Desugarer holds the state threaded through one pass over a program:
// the shared symbol table, the diagnostics sink, the live infix-fixity
// table (only affects declarations that follow an InfixDecl, per
// rawast.Program's doc comment), and the set of constructor names
// declared so far.
type Desugarer struct {
	symbols    *symbol.Table
	sink       *diag.Sink
	priorities map[string]priInfo
	ctors      map[string]bool
}

// NewDesugarer creates a Desugarer over a shared symbol table and sink.
func NewDesugarer(symbols *symbol.Table, sink *diag.Sink) *Desugarer {
	return &Desugarer{symbols: symbols, sink: sink, priorities: defaultPriorities(), ctors: make(map[string]bool)}
}

// DesugarProgram lowers every top-level declaration in source order,
// continuing past a declaration that fails (spec §7).
func (d *Desugarer) DesugarProgram(prog *rawast.Program) *coreast.Program {
	out := &coreast.Program{}
	for _, decl := range prog.Decls {
		out.Decls = append(out.Decls, d.desugarDecl(decl)...)
	}
	return out
}

func (d *Desugarer) desugarDecl(decl rawast.Decl) []coreast.Decl {
	switch decl := decl.(type) {
	case *rawast.InfixDecl:
		for _, name := range decl.Names {
			d.priorities[name] = priInfo{Priority: decl.Priority, Assoc: decl.Assoc}
		}
		return nil

	case *rawast.DatatypeDecl:
		ctors := make([]coreast.CtorInfo, len(decl.Ctors))
		for i, c := range decl.Ctors {
			d.ctors[c.Name] = true
			ctors[i] = coreast.CtorInfo{Name: c.Name, Arg: d.desugarTypeExpr(c.Arg), Discriminant: i}
		}
		return []coreast.Decl{&coreast.DatatypeDecl{Name: decl.Name, Ctors: ctors, Pos: decl.Pos}}

	case *rawast.ValDecl:
		return d.desugarValDecl(decl)

	case *rawast.FunDecl:
		return d.desugarFunDecl(decl)

	default:
		cerr.Panic("unreachable raw declaration kind %T", decl)
		return nil
	}
}

func (d *Desugarer) desugarValDecl(decl *rawast.ValDecl) []coreast.Decl {
	if decl.Rec {
		name, ok := simpleVarName(decl.Pattern)
		if !ok {
			d.sink.Report(diag.SeverityError, decl.Pos, cerr.NonVariableRecBinding())
			return nil
		}
		sym := d.symbols.Fresh(name)
		d.symbols.Rebind(name, sym) // persists: visible to this RHS and every later top-level decl
		expr, err := d.desugarExpr(decl.Expr)
		if err != nil {
			return nil
		}
		return []coreast.Decl{&coreast.ValDecl{
			Rec:     true,
			Pattern: &coreast.VariablePattern{Sym: sym, Name: name},
			Expr:    expr,
			Pos:     decl.Pos,
		}}
	}

	expr, err := d.desugarExpr(decl.Expr)
	if err != nil {
		return nil
	}
	pat, _ := d.applyPattern(decl.Pattern) // bindings persist for subsequent top-level decls
	return []coreast.Decl{&coreast.ValDecl{Rec: false, Pattern: pat, Expr: expr, Pos: decl.Pos}}
}

// desugarFunDecl expands a multi-clause `fun` into one recursive Val
// binding a nested chain of Fn over a single Case whose scrutinee is the
// tuple of parameters (or the bare parameter, for arity 1) and whose arms
// are the clauses in source order (spec §4.2).
func (d *Desugarer) desugarFunDecl(decl *rawast.FunDecl) []coreast.Decl {
	if len(decl.Clauses) == 0 {
		return nil
	}
	name := decl.Clauses[0].Name
	arity := len(decl.Clauses[0].Params)
	for _, cl := range decl.Clauses[1:] {
		if cl.Name != name {
			d.sink.Report(diag.SeverityError, cl.Pos, cerr.ClauseNameMismatch(name, cl.Name))
			return nil
		}
	}
	if arity == 0 {
		d.sink.Errorf(decl.Pos, "fun %q must take at least one parameter", name)
		return nil
	}

	fnSym := d.symbols.Fresh(name)
	d.symbols.Rebind(name, fnSym) // persists: every clause body, and later decls, see the function recursively

	params := make([]symbol.Symbol, arity)
	for i := range params {
		params[i] = d.symbols.Fresh("arg")
	}

	var arms []coreast.CaseArm
	for _, cl := range decl.Clauses {
		if len(cl.Params) != arity {
			d.sink.Report(diag.SeverityError, cl.Pos, cerr.ClauseArityMismatch(name, arity, len(cl.Params)))
			continue
		}
		arm, err := d.desugarClause(cl, arity)
		if err != nil {
			continue
		}
		arms = append(arms, arm)
	}

	var scrutinee coreast.Expr
	if arity == 1 {
		scrutinee = &coreast.SymbolExpr{Sym: params[0], Pos: decl.Pos}
	} else {
		elems := make([]coreast.Expr, arity)
		for i, p := range params {
			elems[i] = &coreast.SymbolExpr{Sym: p, Pos: decl.Pos}
		}
		scrutinee = &coreast.TupleExpr{Elems: elems, Pos: decl.Pos}
	}

	var body coreast.Expr = &coreast.CaseExpr{Scrutinee: scrutinee, Arms: arms, Pos: decl.Pos}
	for i := arity - 1; i >= 0; i-- {
		body = &coreast.FnExpr{Param: params[i], Body: body, Pos: decl.Pos}
	}

	return []coreast.Decl{&coreast.ValDecl{
		Rec:     true,
		Pattern: &coreast.VariablePattern{Sym: fnSym, Name: name},
		Expr:    body,
		Pos:     decl.Pos,
	}}
}

func (d *Desugarer) desugarClause(cl rawast.FunClause, arity int) (coreast.CaseArm, error) {
	patterns := make([]coreast.Pattern, len(cl.Params))
	var all []rebind
	for i, p := range cl.Params {
		pat, rs := d.applyPattern(p)
		patterns[i] = pat
		all = append(all, rs...)
	}
	body, err := d.desugarExpr(cl.Body)
	for i := len(all) - 1; i >= 0; i-- {
		d.symbols.Restore(all[i].name, all[i].prev, all[i].had)
	}
	if err != nil {
		return coreast.CaseArm{}, err
	}

	var pat coreast.Pattern
	if arity == 1 {
		pat = patterns[0]
	} else {
		pat = &coreast.TuplePattern{Elems: patterns}
	}
	return coreast.CaseArm{Pattern: pat, Body: body}, nil
}

func simpleVarName(p rawast.Pattern) (string, bool) {
	v, ok := p.(*rawast.VarPattern)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// rebind records one symbol-table shadowing so a caller can restore it
// once the scope it opened (a pattern's bound variables) closes.
type rebind struct {
	name string
	sym  symbol.Symbol
	prev symbol.Symbol
	had  bool
}

// applyPattern lowers a surface pattern into a core pattern, freshening
// and rebinding every variable it introduces. The rebinds are returned so
// the caller can restore them once the pattern's scope ends; callers that
// want the bindings to persist (top-level val/fun) simply discard them.
func (d *Desugarer) applyPattern(p rawast.Pattern) (coreast.Pattern, []rebind) {
	switch p := p.(type) {
	case *rawast.LitPattern:
		return desugarLitPattern(p), nil

	case *rawast.VarPattern:
		sym := d.symbols.Fresh(p.Name)
		prev, had := d.symbols.Rebind(p.Name, sym)
		return &coreast.VariablePattern{Sym: sym, Name: p.Name}, []rebind{{name: p.Name, sym: sym, prev: prev, had: had}}

	case *rawast.WildcardPattern:
		return &coreast.WildcardPattern{}, nil

	case *rawast.TuplePattern:
		elems := make([]coreast.Pattern, len(p.Elems))
		var all []rebind
		for i, el := range p.Elems {
			ep, rs := d.applyPattern(el)
			elems[i] = ep
			all = append(all, rs...)
		}
		return &coreast.TuplePattern{Elems: elems}, all

	case *rawast.CtorPattern:
		var arg coreast.Pattern
		var rs []rebind
		if p.Arg != nil {
			arg, rs = d.applyPattern(p.Arg)
		}
		return &coreast.ConstructorPattern{Name: p.Name, Arg: arg}, rs

	default:
		cerr.Panic("unreachable raw pattern kind %T", p)
		return nil, nil
	}
}

func desugarLitPattern(p *rawast.LitPattern) coreast.Pattern {
	switch p.Lit.Kind {
	case rawast.IntLit:
		return &coreast.ConstantPattern{Value: p.Lit.Int}
	case rawast.CharLit:
		return &coreast.CharPattern{Value: p.Lit.Char}
	default:
		cerr.Panic("real literals cannot appear in patterns")
		return nil
	}
}

func (d *Desugarer) desugarExpr(expr rawast.Expr) (coreast.Expr, error) {
	switch e := expr.(type) {
	case *rawast.LitExpr:
		return &coreast.LiteralExpr{Lit: desugarLit(e.Lit), Pos: e.Pos}, nil

	case *rawast.IdentExpr:
		if d.ctors[e.Name] {
			return &coreast.ConstructorExpr{Name: e.Name, Pos: e.Pos}, nil
		}
		sym, ok := d.symbols.Lookup(e.Name)
		if !ok {
			sym = d.symbols.Intern(e.Name)
		}
		return &coreast.SymbolExpr{Sym: sym, Pos: e.Pos}, nil

	case *rawast.InfixExpr:
		return d.desugarInfix(e)

	case *rawast.IfExpr:
		return d.desugarIf(e)

	case *rawast.TupleExpr:
		elems := make([]coreast.Expr, len(e.Elems))
		for i, el := range e.Elems {
			v, err := d.desugarExpr(el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &coreast.TupleExpr{Elems: elems, Pos: e.Pos}, nil

	case *rawast.AppExpr:
		return d.desugarApp(e)

	case *rawast.FnExpr:
		sym := d.symbols.Fresh(e.Param)
		prev, had := d.symbols.Rebind(e.Param, sym)
		body, err := d.desugarExpr(e.Body)
		d.symbols.Restore(e.Param, prev, had)
		if err != nil {
			return nil, err
		}
		return &coreast.FnExpr{Param: sym, Body: body, Pos: e.Pos}, nil

	case *rawast.LetExpr:
		return d.desugarLetBindings(e.Binds, 0, e.Body, e.Pos)

	case *rawast.CaseExpr:
		return d.desugarCase(e)

	case *rawast.BuiltinCallExpr:
		return d.desugarBuiltinCall(e)

	case *rawast.ExternCallExpr:
		args := make([]coreast.Expr, len(e.Args))
		for i, a := range e.Args {
			v, err := d.desugarExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &coreast.ExternCallExpr{Module: e.Module, Fun: e.Fun, Args: args, Pos: e.Pos}, nil

	case *rawast.ProjExpr:
		tup, err := d.desugarExpr(e.Tuple)
		if err != nil {
			return nil, err
		}
		return &coreast.ProjExpr{Index: e.Index, Tuple: tup, Pos: e.Pos}, nil

	default:
		cerr.Panic("unreachable raw expr kind %T", expr)
		return nil, nil
	}
}

// desugarApp collapses `Ctor arg` (an App whose desugared head is a
// nullary ConstructorExpr) into a single applied ConstructorExpr, since
// coreast models constructor application directly rather than through App.
func (d *Desugarer) desugarApp(e *rawast.AppExpr) (coreast.Expr, error) {
	fun, err := d.desugarExpr(e.Fun)
	if err != nil {
		return nil, err
	}
	arg, err := d.desugarExpr(e.Arg)
	if err != nil {
		return nil, err
	}
	if ctor, ok := fun.(*coreast.ConstructorExpr); ok && ctor.Arg == nil {
		return &coreast.ConstructorExpr{Name: ctor.Name, Arg: arg, Pos: e.Pos}, nil
	}
	return &coreast.AppExpr{Fun: fun, Arg: arg, Pos: e.Pos}, nil
}

// desugarIf expands `if c then t else e` into Case(c, [(True,t),(False,e)])
// over the builtin `bool` datatype (spec §4.2; see DESIGN.md for why
// `bool` is pre-registered rather than added to the Type grammar).
func (d *Desugarer) desugarIf(e *rawast.IfExpr) (coreast.Expr, error) {
	cond, err := d.desugarExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	thenE, err := d.desugarExpr(e.Then)
	if err != nil {
		return nil, err
	}
	elseE, err := d.desugarExpr(e.Else)
	if err != nil {
		return nil, err
	}
	return &coreast.CaseExpr{
		Scrutinee: cond,
		Arms: []coreast.CaseArm{
			{Pattern: &coreast.ConstructorPattern{Name: "True"}, Body: thenE},
			{Pattern: &coreast.ConstructorPattern{Name: "False"}, Body: elseE},
		},
		Pos: e.Pos,
	}, nil
}

func (d *Desugarer) desugarCase(e *rawast.CaseExpr) (coreast.Expr, error) {
	scrut, err := d.desugarExpr(e.Scrutinee)
	if err != nil {
		return nil, err
	}
	arms := make([]coreast.CaseArm, 0, len(e.Arms))
	for _, a := range e.Arms {
		pat, rs := d.applyPattern(a.Pattern)
		body, err := d.desugarExpr(a.Body)
		for i := len(rs) - 1; i >= 0; i-- {
			d.symbols.Restore(rs[i].name, rs[i].prev, rs[i].had)
		}
		if err != nil {
			return nil, err
		}
		arms = append(arms, coreast.CaseArm{Pattern: pat, Body: body})
	}
	return &coreast.CaseExpr{Scrutinee: scrut, Arms: arms, Pos: e.Pos}, nil
}

// desugarLetBindings lowers a `let b1; b2; ... in body` chain one binding
// at a time. A binding whose pattern is a bare variable becomes a
// coreast.LetExpr (recursive or not, per that binding's own Rec flag); any
// other pattern (tuple or constructor destructuring) becomes a one-arm
// Case over the bound value, matching the irrefutable-pattern-let
// convention this surface syntax assumes.
func (d *Desugarer) desugarLetBindings(binds []rawast.LetBinding, i int, finalBody rawast.Expr, pos rawast.Pos) (coreast.Expr, error) {
	if i == len(binds) {
		return d.desugarExpr(finalBody)
	}
	b := binds[i]

	if name, ok := simpleVarName(b.Pattern); ok {
		sym := d.symbols.Fresh(name)

		var val coreast.Expr
		var err error
		if b.Rec {
			prev, had := d.symbols.Rebind(name, sym)
			val, err = d.desugarExpr(b.Value)
			d.symbols.Restore(name, prev, had)
		} else {
			val, err = d.desugarExpr(b.Value)
		}
		if err != nil {
			return nil, err
		}

		prev, had := d.symbols.Rebind(name, sym)
		rest, restErr := d.desugarLetBindings(binds, i+1, finalBody, pos)
		d.symbols.Restore(name, prev, had)
		if restErr != nil {
			return nil, restErr
		}

		return &coreast.LetExpr{Rec: b.Rec, Binds: []coreast.LetBind{{Sym: sym, Value: val}}, Body: rest, Pos: pos}, nil
	}

	val, err := d.desugarExpr(b.Value)
	if err != nil {
		return nil, err
	}
	pat, rs := d.applyPattern(b.Pattern)
	rest, err := d.desugarLetBindings(binds, i+1, finalBody, pos)
	for i := len(rs) - 1; i >= 0; i-- {
		d.symbols.Restore(rs[i].name, rs[i].prev, rs[i].had)
	}
	if err != nil {
		return nil, err
	}
	return &coreast.CaseExpr{Scrutinee: val, Arms: []coreast.CaseArm{{Pattern: pat, Body: rest}}, Pos: pos}, nil
}

func (d *Desugarer) desugarBuiltinCall(e *rawast.BuiltinCallExpr) (coreast.Expr, error) {
	op, ok := builtinNameTable[e.Name]
	if !ok {
		err := cerr.UnknownBuiltin(e.Name)
		d.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	args := make([]coreast.Expr, len(e.Args))
	for i, a := range e.Args {
		v, err := d.desugarExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if len(args) != 2 {
		err := cerr.InfixArityMismatch(e.Name, len(args))
		d.sink.Report(diag.SeverityError, e.Pos, err)
		return nil, err
	}
	return &coreast.BuiltinCallExpr{Op: op, Args: args, Pos: e.Pos}, nil
}

// --- infix precedence resolution ---

type opTok struct {
	Name string
	Pos  rawast.Pos
}

// flattenInfix walks a (possibly unbalanced) tree of InfixExpr nodes into
// a flat operand/operator sequence, left to right. The external parser is
// not expected to know any fixity, so it may hand back any shape of
// InfixExpr nesting; this recovers the source order regardless.
func flattenInfix(e rawast.Expr) ([]rawast.Expr, []opTok) {
	inf, ok := e.(*rawast.InfixExpr)
	if !ok {
		return []rawast.Expr{e}, nil
	}
	leftOperands, leftOps := flattenInfix(inf.Left)
	rightOperands, rightOps := flattenInfix(inf.Right)
	operands := append(leftOperands, rightOperands...)
	ops := append(leftOps, opTok{Name: inf.Op, Pos: inf.Pos})
	ops = append(ops, rightOps...)
	return operands, ops
}

// infixParser runs precedence climbing over an already-desugared operand
// sequence and the interleaving operator tokens.
type infixParser struct {
	operands   []coreast.Expr
	ops        []opTok
	priorities map[string]priInfo
	combine    func(opTok, coreast.Expr, coreast.Expr) coreast.Expr
	opndIdx    int
	opIdx      int
}

func (p *infixParser) parseExpr(minPrec int) (coreast.Expr, error) {
	left := p.operands[p.opndIdx]
	p.opndIdx++
	for p.opIdx < len(p.ops) {
		op := p.ops[p.opIdx]
		info, ok := p.priorities[op.Name]
		if !ok {
			return nil, cerr.UnknownOperator(op.Name)
		}
		if info.Priority < minPrec {
			break
		}
		p.opIdx++
		nextMin := info.Priority + 1
		if info.Assoc == rawast.AssocRight {
			nextMin = info.Priority
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = p.combine(op, left, right)
	}
	return left, nil
}

func (d *Desugarer) desugarInfix(top *rawast.InfixExpr) (coreast.Expr, error) {
	rawOperands, ops := flattenInfix(top)
	operands := make([]coreast.Expr, len(rawOperands))
	for i, o := range rawOperands {
		v, err := d.desugarExpr(o)
		if err != nil {
			return nil, err
		}
		operands[i] = v
	}
	parser := &infixParser{operands: operands, ops: ops, priorities: d.priorities, combine: d.combineInfix}
	result, err := parser.parseExpr(0)
	if err != nil {
		d.sink.Report(diag.SeverityError, top.Pos, err)
		return nil, err
	}
	return result, nil
}

// combineInfix builds the application for one resolved operator use:
// App(Symbol(op), Tuple[left, right]), for builtin-named operators and
// user-declared infix names alike. A builtin name's symbol is resolved
// to its operator meaning later, by the type checker (environment
// lookup against a pre-seeded scheme; see BuiltinSymbols below, and
// internal/types's seedBuiltinOperators) and by HIR lowering recognizing
// the shape and emitting a BuiltinCall;
// desugar itself no longer special-cases builtin names.
func (d *Desugarer) combineInfix(op opTok, left, right coreast.Expr) coreast.Expr {
	sym := d.operatorSymbol(op.Name)
	fn := &coreast.SymbolExpr{Sym: sym, Pos: op.Pos}
	return &coreast.AppExpr{
		Fun: fn,
		Arg: &coreast.TupleExpr{Elems: []coreast.Expr{left, right}, Pos: op.Pos},
		Pos: op.Pos,
	}
}

// operatorSymbol returns the stable Symbol an infix operator name resolves
// to, interning it on first use. A caller that has already called
// BuiltinSymbols against the same table gets back the identical Symbol
// for a builtin-named operator, regardless of whether/when that operator
// first appears in source.
func (d *Desugarer) operatorSymbol(name string) symbol.Symbol {
	if sym, ok := d.symbols.Lookup(name); ok {
		return sym
	}
	return d.symbols.Intern(name)
}

// BuiltinSymbols interns every fixed builtin operator name into symbols
// and returns the Symbol each resolves to, paired with its BuiltinOp.
// Called once per compilation unit so the type checker can pre-seed its
// initial environment and HIR building can recognize a builtin-operator
// App head, both keyed by the exact Symbol values combineInfix produces.
func BuiltinSymbols(symbols *symbol.Table) map[symbol.Symbol]coreast.BuiltinOp {
	out := make(map[symbol.Symbol]coreast.BuiltinOp, len(builtinOps))
	for name, op := range builtinOps {
		sym, ok := symbols.Lookup(name)
		if !ok {
			sym = symbols.Intern(name)
		}
		out[sym] = op
	}
	return out
}

func desugarLit(l rawast.Lit) coreast.Lit {
	return coreast.Lit{Kind: coreast.LitKind(l.Kind), Int: l.Int, Real: l.Real, Char: l.Char}
}

func (d *Desugarer) desugarTypeExpr(t rawast.TypeExpr) coreast.Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case rawast.IntTypeExpr:
		return coreast.IntType{}
	case rawast.RealTypeExpr:
		return coreast.RealType{}
	case rawast.CharTypeExpr:
		return coreast.CharType{}
	case rawast.TupleTypeExpr:
		elems := make([]coreast.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = d.desugarTypeExpr(e)
		}
		return coreast.TupleType{Elems: elems}
	case rawast.FunTypeExpr:
		return coreast.FunType{From: d.desugarTypeExpr(t.From), To: d.desugarTypeExpr(t.To)}
	case rawast.NamedTypeExpr:
		return coreast.DatatypeType{Name: t.Name}
	default:
		cerr.Panic("unreachable raw type expr kind %T", t)
		return nil
	}
}
