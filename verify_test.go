package statelogic_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borzacchiello/statelogic"
)

func TestEquivalent(t *testing.T) {
	a := newSignal(t, "a", 1)
	b := newSignal(t, "b", 1)
	lookup := statelogic.SignalLookup(a, b)

	tests := []struct {
		lhs, rhs string
		expected bool
	}{
		{"a & b", "a & b", true},
		{"~(a & b)", "~a | ~b", true},
		{"a ^ b", "(a | b) & ~(a & b)", true},
		{"a == b", "~(a ^ b)", true},
		{"a | b", "a & b", false},
		{"a", "a | (a & b)", true},
		{"a", "b", false},
	}
	for _, tc := range tests {
		lhs := statelogic.MustParseExpression(tc.lhs, lookup)
		rhs := statelogic.MustParseExpression(tc.rhs, lookup)
		eq, err := statelogic.Equivalent(lhs, rhs)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, eq, "%s <=> %s", tc.lhs, tc.rhs)
	}
}

func TestCheckExclusive(t *testing.T) {
	a := newSignal(t, "a", 1)
	b := newSignal(t, "b", 1)
	lookup := statelogic.SignalLookup(a, b)

	go1 := statelogic.MustParseExpression("a & ~b", lookup)
	go2 := statelogic.MustParseExpression("~a", lookup)
	overlaps, err := statelogic.CheckExclusive(go1, go2)
	require.NoError(t, err)
	assert.Empty(t, overlaps)

	go3 := statelogic.MustParseExpression("a", lookup)
	overlaps, err = statelogic.CheckExclusive(go1, go2, go3)
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, []int{0, 2}, overlaps[0].Conditions)
	assert.Equal(t, []*statelogic.Signal{a, b}, overlaps[0].Inputs)
	assert.Equal(t, "1", overlaps[0].Values[0].String())
	assert.Equal(t, "0", overlaps[0].Values[1].String())
}

func TestCheckExclusiveNotBoolean(t *testing.T) {
	x := newSignal(t, "x", 2)
	e := newExpr(t, statelogic.OpNot, x)
	_, err := statelogic.CheckExclusive(e)
	assert.Equal(t, statelogic.ErrNotBoolean, errors.Cause(err))
}

func TestNeverTrue(t *testing.T) {
	a := newSignal(t, "a", 1)
	lookup := statelogic.SignalLookup(a)

	never, err := statelogic.NeverTrue(statelogic.MustParseExpression("a & ~a", lookup))
	require.NoError(t, err)
	assert.True(t, never)

	never, err = statelogic.NeverTrue(statelogic.MustParseExpression("a | ~a", lookup))
	require.NoError(t, err)
	assert.False(t, never)
}
