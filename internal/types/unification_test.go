package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyIdenticalPrimitives(t *testing.T) {
	u := NewUnifier()
	sub, err := u.Unify(Int{}, Int{}, Substitution{})
	require.NoError(t, err)
	assert.Empty(t, sub)
}

func TestUnifyMismatchedPrimitivesFails(t *testing.T) {
	u := NewUnifier()
	_, err := u.Unify(Int{}, Char{}, Substitution{})
	require.Error(t, err)
}

func TestUnifyBindsVariable(t *testing.T) {
	u := NewUnifier()
	v := &TVar{ID: 1}
	sub, err := u.Unify(v, Int{}, Substitution{})
	require.NoError(t, err)
	assert.Equal(t, Int{}, Apply(sub, v))
}

func TestUnifyOccursCheckFails(t *testing.T) {
	u := NewUnifier()
	v := &TVar{ID: 1}
	selfReferential := Tuple{Elems: []Type{v}}
	_, err := u.Unify(v, selfReferential, Substitution{})
	require.Error(t, err)
}

func TestUnifyTuplesElementwise(t *testing.T) {
	u := NewUnifier()
	v1 := &TVar{ID: 1}
	v2 := &TVar{ID: 2}
	t1 := Tuple{Elems: []Type{v1, Int{}}}
	t2 := Tuple{Elems: []Type{Char{}, v2}}

	sub, err := u.Unify(t1, t2, Substitution{})
	require.NoError(t, err)
	assert.Equal(t, Char{}, Apply(sub, v1))
	assert.Equal(t, Int{}, Apply(sub, v2))
}

func TestUnifyTupleArityMismatchFails(t *testing.T) {
	u := NewUnifier()
	t1 := Tuple{Elems: []Type{Int{}, Int{}}}
	t2 := Tuple{Elems: []Type{Int{}}}
	_, err := u.Unify(t1, t2, Substitution{})
	require.Error(t, err)
}

func TestUnifyFunctionTypes(t *testing.T) {
	u := NewUnifier()
	v := &TVar{ID: 1}
	f1 := Fun{From: Int{}, To: v}
	f2 := Fun{From: Int{}, To: Char{}}

	sub, err := u.Unify(f1, f2, Substitution{})
	require.NoError(t, err)
	assert.Equal(t, Char{}, Apply(sub, v))
}

func TestUnifyDatatypesByName(t *testing.T) {
	u := NewUnifier()
	_, err := u.Unify(Datatype{Name: "bool"}, Datatype{Name: "bool"}, Substitution{})
	assert.NoError(t, err)

	_, err = u.Unify(Datatype{Name: "bool"}, Datatype{Name: "option"}, Substitution{})
	assert.Error(t, err)
}

func TestApplyPathCompresses(t *testing.T) {
	v1 := &TVar{ID: 1}
	v2 := &TVar{ID: 2}
	sub := Substitution{1: v2, 2: Int{}}
	assert.Equal(t, Int{}, Apply(sub, v1))
}
