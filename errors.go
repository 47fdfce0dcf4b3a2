package statelogic

import (
	"github.com/pkg/errors"
)

// Error kinds. Operations wrap one of these with context; use errors.Cause to
// classify a returned error.
var (
	ErrSizeMismatch          = errors.New("size mismatch")
	ErrOutOfRange            = errors.New("out of range")
	ErrResizedToZero         = errors.New("resized to zero")
	ErrUnsupportedCharacter  = errors.New("unsupported character")
	ErrIllegalOperandCount   = errors.New("illegal operand count")
	ErrIllegalOperatorChange = errors.New("illegal operator change")
	ErrNullOperand           = errors.New("null operand")
	ErrIncompleteOperand     = errors.New("incomplete operand")
	ErrMissingParameter      = errors.New("missing parameter")
	ErrIncorrectParameter    = errors.New("incorrect parameter")
	ErrExpiredReference      = errors.New("expired reference")
	ErrNotBoolean            = errors.New("not boolean")
	ErrConstantSignal        = errors.New("signal is constant")
	ErrTooManyInputs         = errors.New("too many input bits")
	ErrSyntax                = errors.New("syntax error")
)

func sizeMismatch(a, b uint) error {
	return errors.Wrapf(ErrSizeMismatch, "different sizes %d and %d", a, b)
}

// FailureCause tells why an Expression could not compute its current value.
type FailureCause int

const (
	CauseNone FailureCause = iota
	CauseNullOperand
	CauseIncompleteOperand
	CauseSizeMismatch
	CauseMissingParameter
	CauseIncorrectParameter
)

func (c FailureCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseNullOperand:
		return "null operand"
	case CauseIncompleteOperand:
		return "incomplete operand"
	case CauseSizeMismatch:
		return "size mismatch"
	case CauseMissingParameter:
		return "missing parameter"
	case CauseIncorrectParameter:
		return "incorrect parameter"
	}
	return "unknown"
}

// Err returns the error kind matching c, or nil for CauseNone.
func (c FailureCause) Err() error {
	switch c {
	case CauseNullOperand:
		return ErrNullOperand
	case CauseIncompleteOperand:
		return ErrIncompleteOperand
	case CauseSizeMismatch:
		return ErrSizeMismatch
	case CauseMissingParameter:
		return ErrMissingParameter
	case CauseIncorrectParameter:
		return ErrIncorrectParameter
	}
	return nil
}
