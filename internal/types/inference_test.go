package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/symbol"
)

func newTestChecker() (*Checker, *symbol.Table, *diag.Sink) {
	symbols := symbol.NewTable()
	sink := diag.NewSink()
	return NewChecker(sink, nil), symbols, sink
}

// val x = 1
func TestCheckProgramInfersLiteral(t *testing.T) {
	c, symbols, sink := newTestChecker()
	xSym := symbols.Fresh("x")
	lit := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 1}}
	pat := &coreast.VariablePattern{Sym: xSym, Name: "x"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Pattern: pat, Expr: lit},
	}}

	typed := c.CheckProgram(prog)
	require.Empty(t, sink.All())
	assert.Equal(t, Int{}, typed.Info.TypeOf(lit))
	assert.Equal(t, Int{}, typed.Info.PatternType(pat))
}

// val id = fn x => x, generalized since a bare lambda is a syntactic value.
func TestLambdaGeneralizesUnderValueRestriction(t *testing.T) {
	c, symbols, sink := newTestChecker()
	idSym := symbols.Fresh("id")
	xSym := symbols.Fresh("x")

	body := &coreast.SymbolExpr{Sym: xSym}
	fn := &coreast.FnExpr{Param: xSym, Body: body}
	pat := &coreast.VariablePattern{Sym: idSym, Name: "id"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Pattern: pat, Expr: fn},
	}}

	typed := c.CheckProgram(prog)
	require.Empty(t, sink.All())
	scheme := typed.Info.Schemes[pat]
	require.NotNil(t, scheme)
	assert.NotEmpty(t, scheme.Vars, "fn x => x should generalize over its parameter type")
}

// val bad = (fn x => x) 1, an application: not a syntactic value, so its
// binding must stay monomorphic even though its type happens to be closed.
func TestApplicationDoesNotGeneralize(t *testing.T) {
	c, symbols, sink := newTestChecker()
	badSym := symbols.Fresh("bad")
	xSym := symbols.Fresh("x")

	fn := &coreast.FnExpr{Param: xSym, Body: &coreast.SymbolExpr{Sym: xSym}}
	one := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 1}}
	app := &coreast.AppExpr{Fun: fn, Arg: one}
	pat := &coreast.VariablePattern{Sym: badSym, Name: "bad"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Pattern: pat, Expr: app},
	}}

	typed := c.CheckProgram(prog)
	require.Empty(t, sink.All())
	scheme := typed.Info.Schemes[pat]
	require.NotNil(t, scheme)
	assert.Empty(t, scheme.Vars)
	assert.Equal(t, Int{}, scheme.Type)
}

// val bad = 1 + #'a' -- a builtin Add applied to mismatched operand types.
func TestBuiltinCallOperandMismatchReportsError(t *testing.T) {
	c, _, sink := newTestChecker()
	one := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 1}}
	ch := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.CharLit, Char: 'a'}}
	call := &coreast.BuiltinCallExpr{Op: coreast.OpAdd, Args: []coreast.Expr{one, ch}}
	pat := &coreast.VariablePattern{Name: "bad"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Pattern: pat, Expr: call},
	}}

	c.CheckProgram(prog)
	require.NotEmpty(t, sink.All())
	assert.Equal(t, diag.SeverityError, sink.All()[0].Severity)
}

// datatype order = GREATER | EQUAL | LESS, then referencing GREATER.
func TestDatatypeDeclRegistersConstructorsWithDenseDiscriminants(t *testing.T) {
	c, _, sink := newTestChecker()
	orderDecl := &coreast.DatatypeDecl{Name: "order", Ctors: []coreast.CtorInfo{
		{Name: "GREATER"}, {Name: "EQUAL"}, {Name: "LESS"},
	}}
	greater := &coreast.ConstructorExpr{Name: "GREATER"}
	pat := &coreast.VariablePattern{Name: "x"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		orderDecl,
		&coreast.ValDecl{Pattern: pat, Expr: greater},
	}}

	typed := c.CheckProgram(prog)
	require.Empty(t, sink.All())
	assert.Equal(t, Datatype{Name: "order"}, typed.Info.TypeOf(greater))

	sig, ok := c.Ctors().Lookup("LESS")
	require.True(t, ok)
	assert.Equal(t, 2, sig.Discriminant)
	assert.Equal(t, []string{"GREATER", "EQUAL", "LESS"}, c.Ctors().Siblings("GREATER"))
}

// case (1,2,3) of (x,y,z) => z -- tuple decomposition, result type Int.
func TestCaseOverTuplePatternBindsElementTypes(t *testing.T) {
	c, symbols, sink := newTestChecker()
	xSym, ySym, zSym := symbols.Fresh("x"), symbols.Fresh("y"), symbols.Fresh("z")

	one := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 1}}
	two := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 2}}
	three := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 3}}
	scrut := &coreast.TupleExpr{Elems: []coreast.Expr{one, two, three}}

	arm := coreast.CaseArm{
		Pattern: &coreast.TuplePattern{Elems: []coreast.Pattern{
			&coreast.VariablePattern{Sym: xSym, Name: "x"},
			&coreast.VariablePattern{Sym: ySym, Name: "y"},
			&coreast.VariablePattern{Sym: zSym, Name: "z"},
		}},
		Body: &coreast.SymbolExpr{Sym: zSym},
	}
	caseExpr := &coreast.CaseExpr{Scrutinee: scrut, Arms: []coreast.CaseArm{arm}}
	pat := &coreast.VariablePattern{Name: "result"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Pattern: pat, Expr: caseExpr},
	}}

	typed := c.CheckProgram(prog)
	require.Empty(t, sink.All())
	assert.Equal(t, Int{}, typed.Info.TypeOf(caseExpr))
}

// val rec loop = fn n => loop n -- recursive binding must see its own name
// at a monomorphic placeholder type before its body is elaborated.
func TestRecursiveValDeclSeesItsOwnPlaceholder(t *testing.T) {
	c, symbols, sink := newTestChecker()
	loopSym := symbols.Fresh("loop")
	nSym := symbols.Fresh("n")

	body := &coreast.AppExpr{Fun: &coreast.SymbolExpr{Sym: loopSym}, Arg: &coreast.SymbolExpr{Sym: nSym}}
	fn := &coreast.FnExpr{Param: nSym, Body: body}
	pat := &coreast.VariablePattern{Sym: loopSym, Name: "loop"}

	prog := &coreast.Program{Decls: []coreast.Decl{
		&coreast.ValDecl{Rec: true, Pattern: pat, Expr: fn},
	}}

	c.CheckProgram(prog)
	require.Empty(t, sink.All())
}

// Unbound symbol reference is reported but does not panic elaboration of
// the rest of the program (spec's "attempts to continue" policy).
func TestUnboundSymbolReportsErrorAndContinues(t *testing.T) {
	c, _, sink := newTestChecker()
	bad := &coreast.ValDecl{Pattern: &coreast.VariablePattern{Name: "bad"},
		Expr: &coreast.SymbolExpr{Sym: symbol.Symbol{Hint: "nope"}}}
	ok := &coreast.ValDecl{Pattern: &coreast.VariablePattern{Name: "ok"},
		Expr: &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 1}}}

	prog := &coreast.Program{Decls: []coreast.Decl{bad, ok}}

	c.CheckProgram(prog)
	require.NotEmpty(t, sink.All())
	assert.Equal(t, Int{}, c.Info().TypeOf(ok.Expr))
}
