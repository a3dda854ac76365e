package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/rawast"
	"github.com/ailang-mir/mlc/internal/types"
)

// case opt of Some x => x | None => 0, over a two-constructor datatype,
// compiled through dtree and lowered to HIR: exercises SwitchCtor with an
// argument binding and no Default (the match is exhaustive).
func TestLowerCaseOverConstructors(t *testing.T) {
	b, symbols := newTestBuilder()
	b.ctors.Register("None", "option", nil)
	b.ctors.Register("Some", "option", types.Int{})

	optSym := symbols.Fresh("opt")
	xSym := symbols.Fresh("x")

	scrutinee := &coreast.SymbolExpr{Sym: optSym}
	b.info.Exprs[scrutinee] = types.Datatype{Name: "option"}

	someBody := &coreast.SymbolExpr{Sym: xSym}
	noneBody := &coreast.LiteralExpr{Lit: coreast.Lit{Kind: coreast.IntLit, Int: 0}}
	b.info.Exprs[someBody] = types.Int{}
	b.info.Exprs[noneBody] = types.Int{}

	caseExpr := &coreast.CaseExpr{
		Scrutinee: scrutinee,
		Arms: []coreast.CaseArm{
			{Pattern: &coreast.ConstructorPattern{Name: "Some", Arg: &coreast.VariablePattern{Sym: xSym, Name: "x"}}, Body: someBody},
			{Pattern: &coreast.ConstructorPattern{Name: "None"}, Body: noneBody},
		},
		Pos: rawast.Pos{},
	}
	b.info.Exprs[caseExpr] = types.Int{}

	result := b.lowerExpr(caseExpr, nil)
	hc, ok := result.(*Case)
	require.True(t, ok)
	require.Len(t, hc.Arms, 2)

	var sawSome, sawNone bool
	for _, arm := range hc.Arms {
		cp, ok := arm.Pattern.(*ConstructorPattern)
		require.True(t, ok)
		switch cp.Name {
		case "Some":
			sawSome = true
			require.NotNil(t, cp.Arg)
			// The arm's own variable x is bound to the pattern's arg
			// symbol by a single-binding Binds around the leaf body.
			body, ok := arm.Body.(*Binds)
			require.True(t, ok)
			require.Len(t, body.Binds, 1)
			assert.Equal(t, xSym, body.Binds[0].Name)
			bound, ok := body.Binds[0].Expr.(*Sym)
			require.True(t, ok)
			assert.Equal(t, cp.Arg.Sym, bound.Name)
			ret, ok := body.Ret.(*Sym)
			require.True(t, ok)
			assert.Equal(t, xSym, ret.Name)
		case "None":
			sawNone = true
			assert.Nil(t, cp.Arg)
		}
	}
	assert.True(t, sawSome)
	assert.True(t, sawNone)
}
