package statelogic

import (
	"weak"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Signal is a named value holding an initial and a current BitVector of the
// same size. Signals are created and deleted by their owner (usually a state
// machine); expressions only hold weak references to them.
type Signal struct {
	name     string
	initial  BitVector
	current  BitVector
	constant bool
	deleted  bool
	ls       *listeners
}

// NewSignal returns a signal of the given size, initialized to all zeros.
func NewSignal(name string, size uint) (*Signal, error) {
	if size == 0 {
		return nil, errors.Wrapf(ErrResizedToZero, "signal %q", name)
	}
	v := NewBitVector(size, false)
	return &Signal{name: name, initial: v, current: v, ls: &listeners{}}, nil
}

// NewConstantSignal returns a signal whose current value is always value.
func NewConstantSignal(name string, value BitVector) (*Signal, error) {
	if value.IsNull() {
		return nil, errors.Wrapf(ErrResizedToZero, "constant %q", name)
	}
	return &Signal{name: name, initial: value, current: value, constant: true, ls: &listeners{}}, nil
}

func (s *Signal) Name() string {
	return s.name
}

func (s *Signal) SetName(name string) {
	if name == s.name {
		return
	}
	s.name = name
	s.ls.emit(s, EventRenamed, EventStructureChanged)
}

func (s *Signal) Size() uint {
	return s.current.Size()
}

// Resize truncates or zero-extends both the initial and current values.
func (s *Signal) Resize(size uint) error {
	if size == 0 {
		return errors.Wrapf(ErrResizedToZero, "signal %q", s.name)
	}
	if size == s.Size() {
		return nil
	}
	// neither call can fail for size > 0
	_ = s.initial.Resize(size)
	_ = s.current.Resize(size)
	s.ls.emit(s, EventResized, EventStructureChanged, EventValueChanged)
	return nil
}

func (s *Signal) IsConstant() bool {
	return s.constant
}

func (s *Signal) InitialValue() BitVector {
	return s.initial
}

// SetInitialValue sets the value restored by Reinitialize. For a constant
// signal it also sets the current value.
func (s *Signal) SetInitialValue(v BitVector) error {
	if v.Size() != s.Size() {
		return errors.Wrapf(sizeMismatch(v.Size(), s.Size()), "initial value of %q", s.name)
	}
	if v.Equal(s.initial) {
		return nil
	}
	s.initial = v
	if !s.constant || s.current.Equal(v) {
		s.ls.emit(s, EventStructureChanged)
		return nil
	}
	s.current = v
	s.ls.emit(s, EventStructureChanged, EventValueChanged)
	return nil
}

// Reinitialize sets the current value back to the initial value.
func (s *Signal) Reinitialize() {
	if s.current.Equal(s.initial) {
		return
	}
	s.current = s.initial
	s.ls.emit(s, EventValueChanged)
}

func (s *Signal) CurrentValue() BitVector {
	return s.current
}

// SetCurrentValue replaces the whole current value.
func (s *Signal) SetCurrentValue(v BitVector) error {
	return s.SetCurrentValueSubRange(v, -1, -1)
}

// SetCurrentValueSubRange replaces part of the current value:
//
//   - rangeL < 0: the whole value, v must have the signal's size;
//   - rangeL >= 0, rangeR < 0: bit rangeL, v must be 1 bit wide;
//   - rangeL > rangeR >= 0: bits rangeR..rangeL, v must be rangeL-rangeR+1 bits wide.
//
// On error the current value is left untouched.
func (s *Signal) SetCurrentValueSubRange(v BitVector, rangeL, rangeR int) error {
	if s.constant {
		return errors.Wrapf(ErrConstantSignal, "setting current value of %q", s.name)
	}
	var (
		next BitVector
		err  error
	)
	switch {
	case rangeL < 0:
		if v.Size() != s.Size() {
			return errors.Wrapf(sizeMismatch(v.Size(), s.Size()), "current value of %q", s.name)
		}
		next = v
	case rangeR < 0:
		if v.Size() != 1 {
			return errors.Wrapf(sizeMismatch(v.Size(), 1), "bit %d of %q", rangeL, s.name)
		}
		next, err = s.current.ReplaceSlice(uint(rangeL), uint(rangeL), v)
	default:
		if rangeL <= rangeR {
			return errors.Wrapf(ErrOutOfRange, "range [%d..%d] of %q", rangeL, rangeR, s.name)
		}
		next, err = s.current.ReplaceSlice(uint(rangeL), uint(rangeR), v)
	}
	if err != nil {
		return errors.Wrapf(err, "current value of %q", s.name)
	}
	if next.Equal(s.current) {
		return nil
	}
	s.current = next
	s.ls.emit(s, EventValueChanged)
	return nil
}

// IsTrue reports whether a 1 bit signal is set.
func (s *Signal) IsTrue() (bool, error) {
	if s.Size() != 1 {
		return false, errors.Wrapf(ErrNotBoolean, "%q is %d bits wide", s.name, s.Size())
	}
	return s.current.IsAllOnes(), nil
}

// IsFalse reports whether a 1 bit signal is cleared.
func (s *Signal) IsFalse() (bool, error) {
	if s.Size() != 1 {
		return false, errors.Wrapf(ErrNotBoolean, "%q is %d bits wide", s.name, s.Size())
	}
	return s.current.IsAllZeros(), nil
}

func (s *Signal) Subscribe(fn Listener) *Subscription {
	return s.ls.add(fn)
}

// Delete notifies dependents that the signal is gone. References obtained
// with Ref stop resolving.
func (s *Signal) Delete() {
	if s.deleted {
		return
	}
	s.deleted = true
	log.Debugf("signal %q deleted, notifying %d listeners", s.name, s.ls.len())
	s.ls.emit(s, EventDeleted)
	for _, e := range s.ls.entries {
		e.dead = true
	}
	s.ls.entries = nil
}

func (s *Signal) IsDeleted() bool {
	return s.deleted
}

// Ref returns a weak reference to s.
func (s *Signal) Ref() SignalRef {
	return SignalRef{p: weak.Make(s)}
}

// SignalRef is a non-owning reference to a Signal. It stops resolving once the
// signal is deleted or garbage collected.
type SignalRef struct {
	p weak.Pointer[Signal]
}

// Get resolves r.
func (r SignalRef) Get() (*Signal, error) {
	s := r.p.Value()
	if s == nil || s.deleted {
		return nil, ErrExpiredReference
	}
	return s, nil
}

// Valid reports whether r still resolves.
func (r SignalRef) Valid() bool {
	_, err := r.Get()
	return err == nil
}
