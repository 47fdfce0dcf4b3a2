package statelogic

import (
	log "github.com/sirupsen/logrus"
)

// recompute refreshes the cached value and notifies listeners. Value changed
// fires only when the bit pattern differs, resized only when the width does.
func (e *Expression) recompute() {
	if e.quiet {
		return
	}
	next, cause := e.evaluate()
	if cause != e.cause {
		log.Debugf("%s expression: failure cause %s -> %s", e.op, e.cause, cause)
	}
	prev := e.current
	e.current, e.cause = next, cause

	var evs []Event
	if !next.Equal(prev) {
		evs = append(evs, EventValueChanged)
	}
	if next.Size() != prev.Size() {
		evs = append(evs, EventResized)
	}
	e.ls.emit(e, evs...)
}

func (e *Expression) evaluate() (BitVector, FailureCause) {
	if e.op == OpConstant {
		return e.constant, CauseNone
	}

	values := make([]BitVector, len(e.operands))
	for i, o := range e.operands {
		if o == nil {
			return BitVector{}, CauseNullOperand
		}
		v, ok := o.resolve()
		if !ok {
			return BitVector{}, CauseNullOperand
		}
		values[i] = v.CurrentValue()
	}
	for _, v := range values {
		if v.IsNull() {
			return BitVector{}, CauseIncompleteOperand
		}
	}
	if e.op != OpConcat {
		for i := 1; i < len(values); i++ {
			if values[i].Size() != values[0].Size() {
				return BitVector{}, CauseSizeMismatch
			}
		}
	}

	switch e.op {
	case OpIdentity:
		return values[0], CauseNone
	case OpNot:
		return values[0].Not(), CauseNone
	case OpExtract:
		return e.extract(values[0])
	case OpEqual:
		return boolVector(values[0].Equal(values[1])), CauseNone
	case OpDiffer:
		return boolVector(!values[0].Equal(values[1])), CauseNone
	case OpConcat:
		res := values[0]
		for _, v := range values[1:] {
			res = res.Concat(v)
		}
		return res, CauseNone
	}

	res := values[0]
	for _, v := range values[1:] {
		// sizes were checked above
		switch e.op {
		case OpAnd, OpNand:
			res, _ = res.And(v)
		case OpOr, OpNor:
			res, _ = res.Or(v)
		case OpXor, OpXnor:
			res, _ = res.Xor(v)
		}
	}
	if e.op.IsInverted() {
		res = res.Not()
	}
	return res, CauseNone
}

func (e *Expression) extract(v BitVector) (BitVector, FailureCause) {
	if e.rangeL < 0 {
		return BitVector{}, CauseMissingParameter
	}
	high, low := e.rangeL, e.rangeR
	if low < 0 {
		low = high
	}
	if high < low || uint(high) >= v.Size() {
		return BitVector{}, CauseIncorrectParameter
	}
	res, err := v.Slice(uint(high), uint(low))
	if err != nil {
		return BitVector{}, CauseIncorrectParameter
	}
	return res, CauseNone
}

func boolVector(b bool) BitVector {
	if b {
		return NewBitVector(1, true)
	}
	return NewBitVector(1, false)
}
