package desugar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/rawast"
	"github.com/ailang-mir/mlc/internal/symbol"
)

func newTestDesugarer() (*Desugarer, *diag.Sink) {
	sink := diag.NewSink()
	return NewDesugarer(symbol.NewTable(), sink), sink
}

func litInt(n int64) *rawast.LitExpr {
	return &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: n}}
}

// val x = 1 + 2 * 3 -- default fixity parenthesizes as 1 + (2 * 3)
// regardless of the raw tree's own left-leaning shape.
func TestInfixPrecedenceReordersLeftLeaningTree(t *testing.T) {
	d, sink := newTestDesugarer()

	sum := &rawast.InfixExpr{Op: "+", Left: litInt(1), Right: litInt(2)}
	full := &rawast.InfixExpr{Op: "*", Left: sum, Right: litInt(3)}
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: full},
	}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	require.Len(t, core.Decls, 1)

	// Every infix use desugars to App(Symbol(op), Tuple[left, right]),
	// builtin-named or not (spec §4.2): a single application of the
	// operator's symbol to a two-element tuple of its operands, never a
	// curried App(App(fn,left),right) or a direct BuiltinCallExpr.
	val := core.Decls[0].(*coreast.ValDecl)
	outer, ok := val.Expr.(*coreast.AppExpr)
	require.True(t, ok, "top-level operator should desugar to an App")
	outerFn, ok := outer.Fun.(*coreast.SymbolExpr)
	require.True(t, ok, "App head should be the operator's symbol")
	assert.Equal(t, "+", outerFn.Sym.Hint)
	outerArgs, ok := outer.Arg.(*coreast.TupleExpr)
	require.True(t, ok, "App argument should be a two-element tuple")
	require.Len(t, outerArgs.Elems, 2)

	inner, ok := outerArgs.Elems[1].(*coreast.AppExpr)
	require.True(t, ok, "right operand of + should be the * term")
	innerFn, ok := inner.Fun.(*coreast.SymbolExpr)
	require.True(t, ok)
	assert.Equal(t, "*", innerFn.Sym.Hint)
}

// val x = _builtincall "add" (1, 2)
func TestBuiltinCallDesugarsToBuiltinOp(t *testing.T) {
	d, sink := newTestDesugarer()
	call := &rawast.BuiltinCallExpr{Name: "add", Args: []rawast.Expr{litInt(1), litInt(2)}}
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: call},
	}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	val := core.Decls[0].(*coreast.ValDecl)
	builtin, ok := val.Expr.(*coreast.BuiltinCallExpr)
	require.True(t, ok)
	assert.Equal(t, coreast.OpAdd, builtin.Op)
}

// val x = _builtincall "nope" (1, 2) -- unknown builtin reports an error
// and the declaration is dropped, but the sink does not panic.
func TestUnknownBuiltinReportsError(t *testing.T) {
	d, sink := newTestDesugarer()
	call := &rawast.BuiltinCallExpr{Name: "nope", Args: []rawast.Expr{litInt(1), litInt(2)}}
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: call},
	}}

	core := d.DesugarProgram(prog)
	require.NotEmpty(t, sink.All())
	assert.Empty(t, core.Decls)
}

// if c then 1 else 2 -- expands to a Case over the builtin bool datatype.
func TestIfDesugarsToCaseOverBool(t *testing.T) {
	d, sink := newTestDesugarer()
	ifExpr := &rawast.IfExpr{
		Cond: &rawast.IdentExpr{Name: "c"},
		Then: litInt(1),
		Else: litInt(2),
	}
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "c"}, Expr: &rawast.IdentExpr{Name: "True"}},
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: ifExpr},
	}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	val := core.Decls[1].(*coreast.ValDecl)
	caseExpr, ok := val.Expr.(*coreast.CaseExpr)
	require.True(t, ok)
	require.Len(t, caseExpr.Arms, 2)
	assert.Equal(t, "True", caseExpr.Arms[0].Pattern.(*coreast.ConstructorPattern).Name)
	assert.Equal(t, "False", caseExpr.Arms[1].Pattern.(*coreast.ConstructorPattern).Name)
}

// fun f Nil _ = Nil | f _ Nil = Nil -- two clauses fold into one recursive
// Val binding a 2-argument curried Fn over a single tuple-scrutinee Case.
func TestMultiClauseFunDesugarsToRecursiveCaseOverTupleOfArgs(t *testing.T) {
	d, sink := newTestDesugarer()
	listDecl := &rawast.DatatypeDecl{Name: "list", Ctors: []rawast.CtorDecl{
		{Name: "Nil"}, {Name: "Cons", Arg: rawast.NamedTypeExpr{Name: "list"}},
	}}
	nilIdent := &rawast.IdentExpr{Name: "Nil"}
	fDecl := &rawast.FunDecl{Clauses: []rawast.FunClause{
		{Name: "f", Params: []rawast.Pattern{&rawast.CtorPattern{Name: "Nil"}, &rawast.WildcardPattern{}}, Body: nilIdent},
		{Name: "f", Params: []rawast.Pattern{&rawast.WildcardPattern{}, &rawast.CtorPattern{Name: "Nil"}}, Body: nilIdent},
	}}
	prog := &rawast.Program{Decls: []rawast.Decl{listDecl, fDecl}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	require.Len(t, core.Decls, 2)

	val := core.Decls[1].(*coreast.ValDecl)
	assert.True(t, val.Rec)

	outerFn, ok := val.Expr.(*coreast.FnExpr)
	require.True(t, ok)
	innerFn, ok := outerFn.Body.(*coreast.FnExpr)
	require.True(t, ok)
	caseExpr, ok := innerFn.Body.(*coreast.CaseExpr)
	require.True(t, ok)
	require.Len(t, caseExpr.Arms, 2)

	scrutTup, ok := caseExpr.Scrutinee.(*coreast.TupleExpr)
	require.True(t, ok)
	assert.Len(t, scrutTup.Elems, 2)

	armPat, ok := caseExpr.Arms[0].Pattern.(*coreast.TuplePattern)
	require.True(t, ok)
	assert.Len(t, armPat.Elems, 2)
}

// fun clauses naming different functions is rejected.
func TestFunClauseNameMismatchReportsError(t *testing.T) {
	d, sink := newTestDesugarer()
	fDecl := &rawast.FunDecl{Clauses: []rawast.FunClause{
		{Name: "f", Params: []rawast.Pattern{&rawast.VarPattern{Name: "x"}}, Body: &rawast.IdentExpr{Name: "x"}},
		{Name: "g", Params: []rawast.Pattern{&rawast.VarPattern{Name: "y"}}, Body: &rawast.IdentExpr{Name: "y"}},
	}}
	prog := &rawast.Program{Decls: []rawast.Decl{fDecl}}

	core := d.DesugarProgram(prog)
	require.NotEmpty(t, sink.All())
	assert.Empty(t, core.Decls)
}

// datatype order = GREATER | EQUAL | LESS -- constructors get dense,
// source-order discriminants.
func TestDatatypeDeclAssignsDenseDiscriminants(t *testing.T) {
	d, sink := newTestDesugarer()
	decl := &rawast.DatatypeDecl{Name: "order", Ctors: []rawast.CtorDecl{
		{Name: "GREATER"}, {Name: "EQUAL"}, {Name: "LESS"},
	}}
	prog := &rawast.Program{Decls: []rawast.Decl{decl}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	out := core.Decls[0].(*coreast.DatatypeDecl)
	require.Len(t, out.Ctors, 3)
	for i, c := range out.Ctors {
		assert.Equal(t, i, c.Discriminant)
	}
}

// val x = 1 ; val y = x -- a later declaration resolves an earlier
// top-level binding through the shared symbol table.
func TestTopLevelValBindingsPersistAcrossDeclarations(t *testing.T) {
	d, sink := newTestDesugarer()
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: litInt(1)},
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "y"}, Expr: &rawast.IdentExpr{Name: "x"}},
	}}

	core := d.DesugarProgram(prog)
	require.Empty(t, sink.All())
	xSym := core.Decls[0].(*coreast.ValDecl).Pattern.(*coreast.VariablePattern).Sym
	yRef := core.Decls[1].(*coreast.ValDecl).Expr.(*coreast.SymbolExpr)
	assert.Equal(t, xSym, yRef.Sym)
}

// Desugaring the same program twice, each against its own fresh symbol
// table, is a no-op up to structure: every fresh counter starts at the
// same state, so the two resulting core trees must be exactly equal.
func TestDesugaringIsIdempotentAcrossFreshRuns(t *testing.T) {
	buildProg := func() *rawast.Program {
		sum := &rawast.InfixExpr{Op: "+", Left: litInt(1), Right: litInt(2)}
		return &rawast.Program{Decls: []rawast.Decl{
			&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x"}, Expr: sum},
			&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "y"}, Expr: &rawast.IdentExpr{Name: "x"}},
		}}
	}

	d1, sink1 := newTestDesugarer()
	core1 := d1.DesugarProgram(buildProg())
	require.Empty(t, sink1.All())

	d2, sink2 := newTestDesugarer()
	core2 := d2.DesugarProgram(buildProg())
	require.Empty(t, sink2.All())

	if diff := cmp.Diff(core1, core2); diff != "" {
		t.Fatalf("desugaring the same program twice produced different trees (-first +second):\n%s", diff)
	}
}
