package statelogic

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropExpressions(t *testing.T, s *Signal, n int) {
	t.Helper()
	for range n {
		_, err := NewExpression(OpNot, s)
		require.NoError(t, err)
	}
}

func TestDroppedExpressionsUnsubscribe(t *testing.T) {
	a, err := NewSignal("a", 1)
	require.NoError(t, err)
	kept, err := NewExpression(OpNot, a)
	require.NoError(t, err)

	dropExpressions(t, a, 100)
	assert.Equal(t, 101, a.ls.len())

	runtime.GC()
	runtime.GC()
	require.NoError(t, a.SetCurrentValue(MustParseBitVector("1")))
	assert.Equal(t, 1, a.ls.len())
	assert.Equal(t, "0", kept.CurrentValue().String())

	require.NoError(t, a.SetCurrentValue(MustParseBitVector("0")))
	assert.Equal(t, "1", kept.CurrentValue().String())
	runtime.KeepAlive(kept)
}

func TestDroppedNestedExpressionUnsubscribes(t *testing.T) {
	a, err := NewSignal("a", 1)
	require.NoError(t, err)
	func() {
		inner, err := NewExpression(OpNot, a)
		require.NoError(t, err)
		_, err = NewExpression(OpNot, inner)
		require.NoError(t, err)
	}()
	// inner and the clone owned by the outer expression
	assert.Equal(t, 2, a.ls.len())

	runtime.GC()
	runtime.GC()
	require.NoError(t, a.SetCurrentValue(MustParseBitVector("1")))
	assert.Equal(t, 0, a.ls.len())
}
