package hir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ailang-mir/mlc/internal/coreast"
	"github.com/ailang-mir/mlc/internal/symbol"
)

func litInt(n int64) coreast.Lit { return coreast.Lit{Kind: coreast.IntLit, Int: n} }

func TestPrettyValRendersLetAndCase(t *testing.T) {
	symbols := symbol.NewTable()
	n := symbols.Fresh("n")
	x := symbols.Fresh("x")

	val := &Val{
		Name: n,
		Ty:   TInt{},
		Expr: &Binds{
			Binds: []*Val{{Name: x, Ty: TInt{}, Expr: &Lit{Value: litInt(1)}}},
			Ret: &Case{
				Scrutinee: &Sym{Name: x},
				Arms: []CaseArm{
					{Pattern: &ConstantPattern{Value: 0}, Body: &Lit{Value: litInt(10)}},
					{Pattern: &VarPattern{Sym: x}, Body: &Sym{Name: x}},
				},
			},
		},
	}

	out := Pretty([]*Val{val})
	assert.True(t, strings.Contains(out, "let\n"))
	assert.True(t, strings.Contains(out, "in\n"))
	assert.True(t, strings.Contains(out, "end"))
	assert.True(t, strings.Contains(out, "case "))
	assert.True(t, strings.Contains(out, " of"))
}
