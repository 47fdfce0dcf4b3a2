package statelogic

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MaxInputBits bounds the total width of the inputs of a TruthTable.
const MaxInputBits = 24

// ErrorText is the rendering of a value that could not be computed.
const ErrorText = "<error>"

// ValueText renders v as a bit string, or ErrorText for the null value.
func ValueText(v BitVector) string {
	if v.IsNull() {
		return ErrorText
	}
	return v.String()
}

// TruthTable is a snapshot of the outputs of a set of expressions over every
// assignment of their free variables. It is not updated when the expressions
// or signals change afterwards.
type TruthTable struct {
	inputs     []*Signal
	texts      []string
	inputRows  [][]BitVector
	outputRows [][]BitVector
}

// NewTruthTable enumerates every assignment of the variables of roots, in
// binary counting order from all zeros: the first input is the most significant
// block. The current value of every input is restored before returning.
func NewTruthTable(roots ...*Expression) (*TruthTable, error) {
	tt := &TruthTable{}
	seen := make(map[*Signal]bool)
	for _, r := range roots {
		tt.texts = append(tt.texts, r.Text())
		r.collectVariables(&tt.inputs, seen)
	}

	bits := uint(0)
	for _, s := range tt.inputs {
		bits += s.Size()
	}
	if bits > MaxInputBits {
		return nil, errors.Wrapf(ErrTooManyInputs, "%d input bits, at most %d", bits, MaxInputBits)
	}
	rows := 1 << bits
	log.Debugf("truth table: %d inputs, %d bits, %d rows, %d outputs", len(tt.inputs), bits, rows, len(roots))

	saved := make([]BitVector, len(tt.inputs))
	for i, s := range tt.inputs {
		saved[i] = s.CurrentValue()
	}
	defer func() {
		for i, s := range tt.inputs {
			// same size as before, cannot fail
			_ = s.SetCurrentValue(saved[i])
		}
	}()

	row := make([]BitVector, len(tt.inputs))
	for i, s := range tt.inputs {
		row[i] = NewBitVector(s.Size(), false)
	}

	tt.inputRows = make([][]BitVector, 0, rows)
	tt.outputRows = make([][]BitVector, 0, rows)
	for n := 0; n < rows; n++ {
		for i, s := range tt.inputs {
			if err := s.SetCurrentValue(row[i]); err != nil {
				return nil, errors.Wrapf(err, "row %d", n)
			}
		}
		in := make([]BitVector, len(row))
		copy(in, row)
		out := make([]BitVector, len(roots))
		for i, r := range roots {
			out[i] = r.CurrentValue()
		}
		tt.inputRows = append(tt.inputRows, in)
		tt.outputRows = append(tt.outputRows, out)

		for i := len(row) - 1; i >= 0; i-- {
			if !row[i].Increment() {
				break
			}
		}
	}
	return tt, nil
}

// Inputs returns the free variables, in column order.
func (tt *TruthTable) Inputs() []*Signal {
	return tt.inputs
}

// InputRows returns one value per input for every row. The result must not be
// modified.
func (tt *TruthTable) InputRows() [][]BitVector {
	return tt.inputRows
}

// OutputRows returns one value per expression for every row. Failed outputs are
// null values. The result must not be modified.
func (tt *TruthTable) OutputRows() [][]BitVector {
	return tt.outputRows
}

// SingleOutput returns the only output column, or nil when the table does not
// have exactly one output.
func (tt *TruthTable) SingleOutput() []BitVector {
	if len(tt.texts) != 1 {
		return nil
	}
	res := make([]BitVector, len(tt.outputRows))
	for i, r := range tt.outputRows {
		res[i] = r[0]
	}
	return res
}

// OutputTexts returns the text of each expression at construction time.
func (tt *TruthTable) OutputTexts() []string {
	return tt.texts
}

func (tt *TruthTable) RowCount() int {
	return len(tt.inputRows)
}

func (tt *TruthTable) InputCount() int {
	return len(tt.inputs)
}

func (tt *TruthTable) OutputCount() int {
	return len(tt.texts)
}

func (tt *TruthTable) Input(row, col int) (BitVector, error) {
	if row < 0 || row >= len(tt.inputRows) || col < 0 || col >= len(tt.inputs) {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "input (%d, %d)", row, col)
	}
	return tt.inputRows[row][col], nil
}

func (tt *TruthTable) Output(row, col int) (BitVector, error) {
	if row < 0 || row >= len(tt.outputRows) || col < 0 || col >= len(tt.texts) {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "output (%d, %d)", row, col)
	}
	return tt.outputRows[row][col], nil
}
