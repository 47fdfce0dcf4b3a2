package statelogic

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

var zero = big.NewInt(0)
var one = big.NewInt(1)

// BitVector is a fixed-size binary value. Bit 0 is the least significant bit.
// The zero BitVector has size 0 and is used as the null value.
//
// BitVector has value semantics: the underlying big.Int is never modified in
// place, so copies never alias.
type BitVector struct {
	size  uint
	value *big.Int
}

func makeMask(size uint) *big.Int {
	m := new(big.Int).Lsh(one, size)
	return m.Sub(m, one)
}

// NewBitVector returns a BitVector of the given size with every bit set to fill.
func NewBitVector(size uint, fill bool) BitVector {
	if size == 0 {
		return BitVector{}
	}
	if fill {
		return BitVector{size: size, value: makeMask(size)}
	}
	return BitVector{size: size, value: new(big.Int)}
}

// BitVectorFromUint returns value truncated to size bits.
func BitVectorFromUint(value uint64, size uint) BitVector {
	if size == 0 {
		return BitVector{}
	}
	v := new(big.Int).SetUint64(value)
	return BitVector{size: size, value: v.And(v, makeMask(size))}
}

// BitVectorFromBigInt returns v truncated to size bits. Negative values are
// taken in two's complement.
func BitVectorFromBigInt(v *big.Int, size uint) BitVector {
	if size == 0 {
		return BitVector{}
	}
	return BitVector{size: size, value: new(big.Int).And(v, makeMask(size))}
}

// NullBitVector returns the size 0 sentinel.
func NullBitVector() BitVector {
	return BitVector{}
}

// ParseBitVector reads a string of '0' and '1' characters, most significant
// bit first. The empty string yields the null value.
func ParseBitVector(s string) (BitVector, error) {
	for i, c := range s {
		if c != '0' && c != '1' {
			return BitVector{}, errors.Wrapf(ErrUnsupportedCharacter, "%q at position %d", c, i)
		}
	}
	if len(s) == 0 {
		return BitVector{}, nil
	}
	v, _ := new(big.Int).SetString(s, 2)
	return BitVector{size: uint(len(s)), value: v}, nil
}

// MustParseBitVector is like ParseBitVector but panics on error.
func MustParseBitVector(s string) BitVector {
	bv, err := ParseBitVector(s)
	if err != nil {
		panic(err)
	}
	return bv
}

func (bv BitVector) val() *big.Int {
	if bv.value == nil {
		return zero
	}
	return bv.value
}

func (bv BitVector) Size() uint {
	return bv.size
}

func (bv BitVector) IsNull() bool {
	return bv.size == 0
}

// Bit returns the state of bit i.
func (bv BitVector) Bit(i uint) (bool, error) {
	if i >= bv.size {
		return false, errors.Wrapf(ErrOutOfRange, "bit %d of a %d bits value", i, bv.size)
	}
	return bv.val().Bit(int(i)) == 1, nil
}

// SetBit sets bit i to v.
func (bv *BitVector) SetBit(i uint, v bool) error {
	if i >= bv.size {
		return errors.Wrapf(ErrOutOfRange, "bit %d of a %d bits value", i, bv.size)
	}
	b := uint(0)
	if v {
		b = 1
	}
	bv.value = new(big.Int).SetBit(bv.val(), int(i), b)
	return nil
}

func (bv BitVector) Not() BitVector {
	if bv.size == 0 {
		return bv
	}
	return BitVector{size: bv.size, value: new(big.Int).Xor(bv.val(), makeMask(bv.size))}
}

func (bv BitVector) And(o BitVector) (BitVector, error) {
	if bv.size != o.size {
		return BitVector{}, sizeMismatch(bv.size, o.size)
	}
	return BitVector{size: bv.size, value: new(big.Int).And(bv.val(), o.val())}, nil
}

func (bv BitVector) Or(o BitVector) (BitVector, error) {
	if bv.size != o.size {
		return BitVector{}, sizeMismatch(bv.size, o.size)
	}
	return BitVector{size: bv.size, value: new(big.Int).Or(bv.val(), o.val())}, nil
}

func (bv BitVector) Xor(o BitVector) (BitVector, error) {
	if bv.size != o.size {
		return BitVector{}, sizeMismatch(bv.size, o.size)
	}
	return BitVector{size: bv.size, value: new(big.Int).Xor(bv.val(), o.val())}, nil
}

// Resize truncates (dropping high bits) or zero-extends bv to size bits.
func (bv *BitVector) Resize(size uint) error {
	if size == 0 {
		return errors.Wrapf(ErrResizedToZero, "resizing a %d bits value", bv.size)
	}
	bv.value = new(big.Int).And(bv.val(), makeMask(size))
	bv.size = size
	return nil
}

// Increment adds one modulo 2^size and reports the carry out.
func (bv *BitVector) Increment() bool {
	if bv.size == 0 {
		return true
	}
	v := new(big.Int).Add(bv.val(), one)
	if v.Bit(int(bv.size)) == 1 {
		bv.value = new(big.Int)
		return true
	}
	bv.value = v
	return false
}

// Decrement subtracts one modulo 2^size and reports the borrow.
func (bv *BitVector) Decrement() bool {
	if bv.size == 0 {
		return true
	}
	if bv.val().Sign() == 0 {
		bv.value = makeMask(bv.size)
		return true
	}
	bv.value = new(big.Int).Sub(bv.val(), one)
	return false
}

func (bv BitVector) Equal(o BitVector) bool {
	return bv.size == o.size && bv.val().Cmp(o.val()) == 0
}

// Compare orders by size first, then by unsigned value.
func (bv BitVector) Compare(o BitVector) int {
	switch {
	case bv.size < o.size:
		return -1
	case bv.size > o.size:
		return 1
	}
	return bv.val().Cmp(o.val())
}

func (bv BitVector) IsAllZeros() bool {
	return bv.size > 0 && bv.val().Sign() == 0
}

func (bv BitVector) IsAllOnes() bool {
	return bv.size > 0 && bv.val().Cmp(makeMask(bv.size)) == 0
}

// Slice returns bits low..high (inclusive).
func (bv BitVector) Slice(high, low uint) (BitVector, error) {
	if high < low {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "high %d is lower than low %d", high, low)
	}
	if high >= bv.size {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "bit %d of a %d bits value", high, bv.size)
	}
	size := high - low + 1
	v := new(big.Int).Rsh(bv.val(), low)
	return BitVector{size: size, value: v.And(v, makeMask(size))}, nil
}

// ReplaceSlice returns a copy of bv with bits low..high replaced by v.
func (bv BitVector) ReplaceSlice(high, low uint, v BitVector) (BitVector, error) {
	if high < low {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "high %d is lower than low %d", high, low)
	}
	if high >= bv.size {
		return BitVector{}, errors.Wrapf(ErrOutOfRange, "bit %d of a %d bits value", high, bv.size)
	}
	if v.size != high-low+1 {
		return BitVector{}, sizeMismatch(v.size, high-low+1)
	}
	hole := new(big.Int).Lsh(makeMask(v.size), low)
	res := new(big.Int).AndNot(bv.val(), hole)
	res.Or(res, new(big.Int).Lsh(v.val(), low))
	return BitVector{size: bv.size, value: res}, nil
}

// Concat returns bv followed by lower: bv ends up in the most significant bits.
func (bv BitVector) Concat(lower BitVector) BitVector {
	v := new(big.Int).Lsh(bv.val(), lower.size)
	return BitVector{size: bv.size + lower.size, value: v.Or(v, lower.val())}
}

// BigInt returns the unsigned value of bv.
func (bv BitVector) BigInt() *big.Int {
	return new(big.Int).Set(bv.val())
}

// Uint64 returns the low 64 bits of bv.
func (bv BitVector) Uint64() uint64 {
	return bv.val().Uint64()
}

// String renders one '0' or '1' per bit, most significant bit first.
func (bv BitVector) String() string {
	if bv.size == 0 {
		return ""
	}
	s := bv.val().Text(2)
	if uint(len(s)) < bv.size {
		s = strings.Repeat("0", int(bv.size)-len(s)) + s
	}
	return s
}
