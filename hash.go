package statelogic

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a structural hash of e. Structurally equal expressions have the
// same hash; signals contribute their name and size.
func (e *Expression) Hash() uint64 {
	h := xxhash.New()
	e.writeHash(h)
	return h.Sum64()
}

func writeUint(h *xxhash.Digest, v uint64) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, v)
	h.Write(raw)
}

func (e *Expression) writeHash(h *xxhash.Digest) {
	h.WriteString(e.op.String())
	switch e.op {
	case OpConstant:
		writeUint(h, uint64(e.constant.Size()))
		h.WriteString(e.constant.String())
	case OpExtract:
		writeUint(h, uint64(int64(e.rangeL)))
		writeUint(h, uint64(int64(e.rangeR)))
	}
	writeUint(h, uint64(len(e.operands)))
	for _, o := range e.operands {
		var v Value
		if o != nil {
			v, _ = o.resolve()
		}
		switch v := v.(type) {
		case *Signal:
			h.WriteString("$")
			h.WriteString(v.Name())
			writeUint(h, uint64(v.Size()))
		case *Expression:
			h.WriteString("(")
			v.writeHash(h)
			h.WriteString(")")
		default:
			h.WriteString(missingText)
		}
	}
}

// DeepEqual reports whether e and o have the same structure and reference the
// same signals.
func (e *Expression) DeepEqual(o *Expression) bool {
	if e == o {
		return true
	}
	if o == nil || e.op != o.op || len(e.operands) != len(o.operands) {
		return false
	}
	switch e.op {
	case OpConstant:
		if !e.constant.Equal(o.constant) {
			return false
		}
	case OpExtract:
		if e.rangeL != o.rangeL || e.rangeR != o.rangeR {
			return false
		}
	}
	for i := range e.operands {
		if !operandEqual(e.operands[i], o.operands[i]) {
			return false
		}
	}
	return true
}

func operandEqual(a, b operand) bool {
	var va, vb Value
	if a != nil {
		va, _ = a.resolve()
	}
	if b != nil {
		vb, _ = b.resolve()
	}
	switch va := va.(type) {
	case nil:
		return vb == nil
	case *Signal:
		sb, ok := vb.(*Signal)
		return ok && sb == va
	case *Expression:
		eb, ok := vb.(*Expression)
		return ok && va.DeepEqual(eb)
	}
	return false
}
