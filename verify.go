package statelogic

import (
	"github.com/pkg/errors"
)

// Overlap is a row of a truth table where more than one condition holds.
type Overlap struct {
	Inputs     []*Signal
	Values     []BitVector
	Conditions []int
}

// Equivalent reports whether a and b compute the same value for every
// assignment of their variables.
func Equivalent(a, b *Expression) (bool, error) {
	if a.Hash() == b.Hash() && a.DeepEqual(b) {
		return true, nil
	}
	tt, err := NewTruthTable(a, b)
	if err != nil {
		return false, err
	}
	for _, out := range tt.OutputRows() {
		if !out[0].Equal(out[1]) {
			return false, nil
		}
	}
	return true, nil
}

func checkConditions(tt *TruthTable) error {
	for _, out := range tt.OutputRows() {
		for i, v := range out {
			if !v.IsNull() && v.Size() != 1 {
				return errors.Wrapf(ErrNotBoolean, "condition %q is %d bits wide", tt.texts[i], v.Size())
			}
		}
	}
	return nil
}

// CheckExclusive returns the assignments where two or more of conds are true
// at the same time. Conditions must be 1 bit wide; failed conditions count as
// false.
func CheckExclusive(conds ...*Expression) ([]Overlap, error) {
	tt, err := NewTruthTable(conds...)
	if err != nil {
		return nil, err
	}
	if err := checkConditions(tt); err != nil {
		return nil, err
	}

	var res []Overlap
	for row, out := range tt.OutputRows() {
		var active []int
		for i, v := range out {
			if v.IsAllOnes() {
				active = append(active, i)
			}
		}
		if len(active) > 1 {
			res = append(res, Overlap{Inputs: tt.Inputs(), Values: tt.InputRows()[row], Conditions: active})
		}
	}
	return res, nil
}

// NeverTrue reports whether cond is false (or failed) for every assignment.
func NeverTrue(cond *Expression) (bool, error) {
	tt, err := NewTruthTable(cond)
	if err != nil {
		return false, err
	}
	if err := checkConditions(tt); err != nil {
		return false, err
	}
	for _, v := range tt.SingleOutput() {
		if v.IsAllOnes() {
			return false, nil
		}
	}
	return true, nil
}
