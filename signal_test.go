package statelogic_test

import (
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borzacchiello/statelogic"
)

type recorder struct {
	events []statelogic.Event
}

func (r *recorder) listen(_ statelogic.Value, ev statelogic.Event) {
	r.events = append(r.events, ev)
}

func newSignal(t *testing.T, name string, size uint) *statelogic.Signal {
	t.Helper()
	s, err := statelogic.NewSignal(name, size)
	require.NoError(t, err)
	return s
}

func bv(s string) statelogic.BitVector {
	return statelogic.MustParseBitVector(s)
}

func TestSignalZeroSize(t *testing.T) {
	_, err := statelogic.NewSignal("x", 0)
	assert.Equal(t, statelogic.ErrResizedToZero, errors.Cause(err))
}

func TestSignalRename(t *testing.T) {
	s := newSignal(t, "a", 1)
	r := &recorder{}
	s.Subscribe(r.listen)

	s.SetName("b")
	assert.Equal(t, "b", s.Name())
	assert.Equal(t, []statelogic.Event{statelogic.EventRenamed, statelogic.EventStructureChanged}, r.events)
}

func TestSignalResize(t *testing.T) {
	s := newSignal(t, "x", 4)
	require.NoError(t, s.SetInitialValue(bv("1011")))
	s.Reinitialize()

	r := &recorder{}
	s.Subscribe(r.listen)
	require.NoError(t, s.Resize(2))
	assert.Equal(t, "11", s.CurrentValue().String())
	assert.Equal(t, "11", s.InitialValue().String())
	assert.Equal(t, []statelogic.Event{statelogic.EventResized, statelogic.EventStructureChanged, statelogic.EventValueChanged}, r.events)

	require.NoError(t, s.Resize(5))
	assert.Equal(t, "00011", s.CurrentValue().String())

	err := s.Resize(0)
	assert.Equal(t, statelogic.ErrResizedToZero, errors.Cause(err))
	assert.Equal(t, uint(5), s.Size())
}

func TestSignalSetCurrentValue(t *testing.T) {
	s := newSignal(t, "x", 4)
	r := &recorder{}
	s.Subscribe(r.listen)

	require.NoError(t, s.SetCurrentValue(bv("1010")))
	assert.Equal(t, "1010", s.CurrentValue().String())
	assert.Len(t, r.events, 1)

	// same value, no notification
	require.NoError(t, s.SetCurrentValue(bv("1010")))
	assert.Len(t, r.events, 1)

	err := s.SetCurrentValue(bv("10"))
	assert.Equal(t, statelogic.ErrSizeMismatch, errors.Cause(err))
	assert.Equal(t, "1010", s.CurrentValue().String())
}

func TestSignalSetCurrentValueSubRange(t *testing.T) {
	s := newSignal(t, "x", 4)

	require.NoError(t, s.SetCurrentValueSubRange(bv("1"), 0, -1))
	assert.Equal(t, "0001", s.CurrentValue().String())

	require.NoError(t, s.SetCurrentValueSubRange(bv("11"), 3, 2))
	assert.Equal(t, "1101", s.CurrentValue().String())

	tests := []struct {
		name           string
		value          string
		rangeL, rangeR int
		cause          error
	}{
		{"single bit too wide", "11", 1, -1, statelogic.ErrSizeMismatch},
		{"range too narrow", "1", 3, 1, statelogic.ErrSizeMismatch},
		{"reversed range", "11", 1, 2, statelogic.ErrOutOfRange},
		{"equal bounds", "1", 1, 1, statelogic.ErrOutOfRange},
		{"past the end", "11", 4, 3, statelogic.ErrOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.SetCurrentValueSubRange(bv(tc.value), tc.rangeL, tc.rangeR)
			assert.Equal(t, tc.cause, errors.Cause(err))
			assert.Equal(t, "1101", s.CurrentValue().String())
		})
	}
}

func TestSignalInitialValue(t *testing.T) {
	s := newSignal(t, "x", 2)
	err := s.SetInitialValue(bv("1"))
	assert.Equal(t, statelogic.ErrSizeMismatch, errors.Cause(err))

	require.NoError(t, s.SetInitialValue(bv("10")))
	assert.Equal(t, "00", s.CurrentValue().String())
	s.Reinitialize()
	assert.Equal(t, "10", s.CurrentValue().String())
}

func TestSignalInitialValueUnchanged(t *testing.T) {
	s := newSignal(t, "x", 2)
	require.NoError(t, s.SetInitialValue(bv("10")))

	r := &recorder{}
	s.Subscribe(r.listen)
	require.NoError(t, s.SetInitialValue(bv("10")))
	assert.Empty(t, r.events)

	require.NoError(t, s.SetInitialValue(bv("01")))
	assert.Equal(t, []statelogic.Event{statelogic.EventStructureChanged}, r.events)
}

func TestSignalConstant(t *testing.T) {
	k, err := statelogic.NewConstantSignal("k", bv("0101"))
	require.NoError(t, err)
	assert.True(t, k.IsConstant())

	err = k.SetCurrentValue(bv("1111"))
	assert.Equal(t, statelogic.ErrConstantSignal, errors.Cause(err))
	assert.Equal(t, "0101", k.CurrentValue().String())

	require.NoError(t, k.SetInitialValue(bv("0011")))
	assert.Equal(t, "0011", k.CurrentValue().String())
}

func TestSignalBoolean(t *testing.T) {
	s := newSignal(t, "a", 1)
	f, err := s.IsFalse()
	require.NoError(t, err)
	assert.True(t, f)

	require.NoError(t, s.SetCurrentValue(bv("1")))
	v, err := s.IsTrue()
	require.NoError(t, err)
	assert.True(t, v)

	wide := newSignal(t, "w", 2)
	_, err = wide.IsTrue()
	assert.Equal(t, statelogic.ErrNotBoolean, errors.Cause(err))
}

func TestSignalDelete(t *testing.T) {
	s := newSignal(t, "a", 1)
	ref := s.Ref()
	r := &recorder{}
	s.Subscribe(r.listen)

	got, err := ref.Get()
	require.NoError(t, err)
	assert.Same(t, s, got)

	s.Delete()
	assert.True(t, s.IsDeleted())
	assert.Equal(t, []statelogic.Event{statelogic.EventDeleted}, r.events)
	_, err = ref.Get()
	assert.Equal(t, statelogic.ErrExpiredReference, err)
	assert.False(t, ref.Valid())

	// no more notifications once deleted
	s.SetName("b")
	assert.Len(t, r.events, 1)
}

func TestSignalRefCollected(t *testing.T) {
	s := newSignal(t, "a", 1)
	ref := s.Ref()
	s = nil
	runtime.GC()
	assert.False(t, ref.Valid())
}

func TestSubscriptionCancel(t *testing.T) {
	s := newSignal(t, "a", 1)
	r := &recorder{}
	sub := s.Subscribe(r.listen)
	sub.Cancel()
	sub.Cancel()

	require.NoError(t, s.SetCurrentValue(bv("1")))
	assert.Empty(t, r.events)
}
