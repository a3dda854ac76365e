package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailang-mir/mlc/internal/diag"
	"github.com/ailang-mir/mlc/internal/pipeline"
	"github.com/ailang-mir/mlc/internal/rawast"
)

func pos() rawast.Pos { return rawast.Pos{File: "<test>", Line: 1, Column: 1} }

// val x = _builtincall "add" (1, 2)
func TestRunSimpleArithmeticValue(t *testing.T) {
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{
			Pattern: &rawast.VarPattern{Name: "x", Pos: pos()},
			Expr: &rawast.BuiltinCallExpr{
				Name: "add",
				Args: []rawast.Expr{
					&rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()},
					&rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 2}, Pos: pos()},
				},
				Pos: pos(),
			},
			Pos: pos(),
		},
	}}

	result, err := pipeline.Run(pipeline.Config{DumpCore: true, DumpHIR: true}, pipeline.Source{Name: "arith", Program: prog})
	require.NoError(t, err)
	require.NotEmpty(t, result.CorrelationID)
	require.Len(t, result.Functions, 1)
	assert.Contains(t, result.CoreDump, "val x")
	assert.Contains(t, result.HIRDump, "val x")
	assert.Contains(t, result.PhaseTimings, "desugar")
	assert.Contains(t, result.PhaseTimings, "typecheck")
	assert.Contains(t, result.PhaseTimings, "hir")
	assert.Contains(t, result.PhaseTimings, "mir")
}

// val bad = _builtincall "nope" (1, 2) -- unknown builtin, fails at desugar.
func TestRunReportsDesugarError(t *testing.T) {
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{
			Pattern: &rawast.VarPattern{Name: "bad", Pos: pos()},
			Expr: &rawast.BuiltinCallExpr{
				Name: "nope",
				Args: []rawast.Expr{
					&rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()},
					&rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 2}, Pos: pos()},
				},
				Pos: pos(),
			},
			Pos: pos(),
		},
	}}

	result, err := pipeline.Run(pipeline.Config{}, pipeline.Source{Name: "bad", Program: prog})
	require.Error(t, err)
	require.NotEmpty(t, result.Diagnostics)
	assert.Nil(t, result.Functions)
}

// val x = 1 ; val y = x -- exercises a multi-declaration unit sharing one
// symbol table and typed environment across Run.
func TestRunMultipleDeclarations(t *testing.T) {
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.ValDecl{
			Pattern: &rawast.VarPattern{Name: "x", Pos: pos()},
			Expr:    &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()},
			Pos:     pos(),
		},
		&rawast.ValDecl{
			Pattern: &rawast.VarPattern{Name: "y", Pos: pos()},
			Expr:    &rawast.IdentExpr{Name: "x", Pos: pos()},
			Pos:     pos(),
		},
	}}

	result, err := pipeline.Run(pipeline.Config{}, pipeline.Source{Name: "multi", Program: prog})
	require.NoError(t, err)
	assert.Len(t, result.Functions, 2)
}

// infix 6 + ; val x = 1 + 2 -- resolves to the builtin Add and survives
// end-to-end through MIR with no diagnostics.
func TestRunInfixDeclResolvesToBuiltinAdd(t *testing.T) {
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.InfixDecl{Priority: 6, Names: []string{"+"}, Pos: pos()},
		&rawast.ValDecl{
			Pattern: &rawast.VarPattern{Name: "x", Pos: pos()},
			Expr: &rawast.InfixExpr{
				Op:    "+",
				Left:  &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()},
				Right: &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 2}, Pos: pos()},
				Pos:   pos(),
			},
			Pos: pos(),
		},
	}}

	result, err := pipeline.Run(pipeline.Config{DumpCore: true}, pipeline.Source{Name: "infix-add", Program: prog})
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	require.Len(t, result.Functions, 1)
	assert.Contains(t, result.CoreDump, "+")
}

// infix 6 + ; infix 7 * ; val x = 1 + 2 * 3 -- higher-priority * binds
// tighter than + regardless of the raw tree's own left-leaning shape.
func TestRunInfixPrecedenceMultipliesBeforeAdding(t *testing.T) {
	left := &rawast.InfixExpr{
		Op:   "+",
		Left: &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()},
		Right: &rawast.LitExpr{
			Lit: rawast.Lit{Kind: rawast.IntLit, Int: 2}, Pos: pos(),
		},
		Pos: pos(),
	}
	full := &rawast.InfixExpr{
		Op:   "*",
		Left: left,
		Right: &rawast.LitExpr{
			Lit: rawast.Lit{Kind: rawast.IntLit, Int: 3}, Pos: pos(),
		},
		Pos: pos(),
	}
	prog := &rawast.Program{Decls: []rawast.Decl{
		&rawast.InfixDecl{Priority: 6, Names: []string{"+"}, Pos: pos()},
		&rawast.InfixDecl{Priority: 7, Names: []string{"*"}, Pos: pos()},
		&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "x", Pos: pos()}, Expr: full, Pos: pos()},
	}}

	result, err := pipeline.Run(pipeline.Config{DumpCore: true}, pipeline.Source{Name: "precedence", Program: prog})
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	require.Len(t, result.Functions, 1)
	// The desugared dump should show + applied at the outermost level, its
	// right operand the * term, confirming 1 + (2 * 3) over (1 + 2) * 3.
	assert.Contains(t, result.CoreDump, "+")
}

// fun f Nil _ = Nil | f _ Nil = Nil -- (cons, cons) is never covered, so a
// non-exhaustiveness warning survives end-to-end, but the unit still
// compiles down to MIR since it is a warning, not an error.
func TestRunMultiClauseFunReportsNonExhaustiveWarning(t *testing.T) {
	listDecl := &rawast.DatatypeDecl{Name: "list", Ctors: []rawast.CtorDecl{
		{Name: "Nil"},
		{Name: "Cons", Arg: rawast.NamedTypeExpr{Name: "list"}},
	}, Pos: pos()}
	nilIdent := &rawast.IdentExpr{Name: "Nil", Pos: pos()}
	fDecl := &rawast.FunDecl{Clauses: []rawast.FunClause{
		{Name: "f", Params: []rawast.Pattern{
			&rawast.CtorPattern{Name: "Nil", Pos: pos()}, &rawast.WildcardPattern{Pos: pos()},
		}, Body: nilIdent, Pos: pos()},
		{Name: "f", Params: []rawast.Pattern{
			&rawast.WildcardPattern{Pos: pos()}, &rawast.CtorPattern{Name: "Nil", Pos: pos()},
		}, Body: nilIdent, Pos: pos()},
	}, Pos: pos()}
	prog := &rawast.Program{Decls: []rawast.Decl{listDecl, fDecl}}

	result, err := pipeline.Run(pipeline.Config{}, pipeline.Source{Name: "nonexhaustive-fun", Program: prog})
	require.NoError(t, err)
	// Two lifted lambdas (one per curried parameter) plus f's own Val.
	require.Len(t, result.Functions, 3)
	require.NotEmpty(t, result.Diagnostics)
	foundWarning := false
	for _, d := range result.Diagnostics {
		if d.Severity == diag.SeverityWarning {
			foundWarning = true
		}
	}
	assert.True(t, foundWarning, "expected a non-exhaustiveness warning for the missing (Cons, Cons) case")
}

// datatype order = GREATER | EQUAL | LESS, then a case omitting LESS warns;
// adding a wildcard arm suppresses the warning.
func TestRunCaseOverDatatypeOmittingOneCtorWarnsUnlessWildcardPresent(t *testing.T) {
	orderDecl := &rawast.DatatypeDecl{Name: "order", Ctors: []rawast.CtorDecl{
		{Name: "GREATER"}, {Name: "EQUAL"}, {Name: "LESS"},
	}, Pos: pos()}

	buildProg := func(withWildcard bool) *rawast.Program {
		arms := []rawast.CaseArm{
			{Pattern: &rawast.CtorPattern{Name: "GREATER", Pos: pos()}, Body: &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 1}, Pos: pos()}},
			{Pattern: &rawast.CtorPattern{Name: "EQUAL", Pos: pos()}, Body: &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: 0}, Pos: pos()}},
		}
		if withWildcard {
			arms = append(arms, rawast.CaseArm{
				Pattern: &rawast.WildcardPattern{Pos: pos()},
				Body:    &rawast.LitExpr{Lit: rawast.Lit{Kind: rawast.IntLit, Int: -1}, Pos: pos()},
			})
		}
		return &rawast.Program{Decls: []rawast.Decl{
			orderDecl,
			&rawast.ValDecl{Pattern: &rawast.VarPattern{Name: "o", Pos: pos()}, Expr: &rawast.IdentExpr{Name: "GREATER", Pos: pos()}, Pos: pos()},
			&rawast.ValDecl{
				Pattern: &rawast.VarPattern{Name: "result", Pos: pos()},
				Expr: &rawast.CaseExpr{
					Scrutinee: &rawast.IdentExpr{Name: "o", Pos: pos()},
					Arms:      arms,
					Pos:       pos(),
				},
				Pos: pos(),
			},
		}}
	}

	withoutWildcard, err := pipeline.Run(pipeline.Config{}, pipeline.Source{Name: "order-missing-less", Program: buildProg(false)})
	require.NoError(t, err)
	hasWarning := false
	for _, d := range withoutWildcard.Diagnostics {
		if d.Severity == diag.SeverityWarning {
			hasWarning = true
		}
	}
	assert.True(t, hasWarning, "omitting LESS with no wildcard arm should warn")

	withWildcard, err := pipeline.Run(pipeline.Config{}, pipeline.Source{Name: "order-with-wildcard", Program: buildProg(true)})
	require.NoError(t, err)
	assert.Empty(t, withWildcard.Diagnostics, "a wildcard arm should suppress the non-exhaustiveness warning")
}
