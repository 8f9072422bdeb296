package ir

import "fmt"

// BitKind tags the variant held by a Bit.
type BitKind uint8

const (
	// BitInput is a raw input reference (partial product, operand bit, offset bit, input constant).
	BitInput BitKind = iota
	// BitConstant is a structural constant inserted by the engine itself.
	BitConstant
	// BitHalfSum is the sum output of a half adder.
	BitHalfSum
	// BitHalfCarry is the carry output of a half adder.
	BitHalfCarry
	// BitFullSum is the sum output of a full adder.
	BitFullSum
	// BitFullCarry is the carry-out output of a full adder.
	BitFullCarry
)

var bitKindNames = [...]string{
	BitInput:     "input",
	BitConstant:  "constant",
	BitHalfSum:   "half_sum",
	BitHalfCarry: "half_carry",
	BitFullSum:   "full_sum",
	BitFullCarry: "full_carry",
}

func (k BitKind) String() string {
	if int(k) < len(bitKindNames) {
		return bitKindNames[k]
	}
	return fmt.Sprintf("BitKind(%d)", uint8(k))
}

// Bit is a bit source: a tagged union over raw inputs of type T, structural
// constants and the outputs of adder cells.
//
// Only the field matching Kind is meaningful. Cell is an index into the
// half-adder list (BitHalfSum, BitHalfCarry) or the full-adder list
// (BitFullSum, BitFullCarry).
type Bit[T any] struct {
	Kind  BitKind
	Input T
	Cell  int
	Value bool
}

// Input wraps a raw input reference.
func Input[T any](in T) Bit[T] {
	return Bit[T]{Kind: BitInput, Input: in}
}

// Constant returns a structural constant bit.
func Constant[T any](v bool) Bit[T] {
	return Bit[T]{Kind: BitConstant, Value: v}
}

// Zero is the structural constant 0 used to pad short columns.
func Zero[T any]() Bit[T] {
	return Constant[T](false)
}

// HalfSum references the sum output of half adder i.
func HalfSum[T any](i int) Bit[T] {
	return Bit[T]{Kind: BitHalfSum, Cell: i}
}

// HalfCarry references the carry output of half adder i.
func HalfCarry[T any](i int) Bit[T] {
	return Bit[T]{Kind: BitHalfCarry, Cell: i}
}

// FullSum references the sum output of full adder i.
func FullSum[T any](i int) Bit[T] {
	return Bit[T]{Kind: BitFullSum, Cell: i}
}

// FullCarry references the carry-out output of full adder i.
func FullCarry[T any](i int) Bit[T] {
	return Bit[T]{Kind: BitFullCarry, Cell: i}
}

// String renders the bit in the notation used by summaries and test failures:
// ha[3].sum, fa[0].cout, 1'b0, or the input's own String form.
func (b Bit[T]) String() string {
	switch b.Kind {
	case BitInput:
		return fmt.Sprint(b.Input)
	case BitConstant:
		if b.Value {
			return "1'b1"
		}
		return "1'b0"
	case BitHalfSum:
		return fmt.Sprintf("ha[%d].sum", b.Cell)
	case BitHalfCarry:
		return fmt.Sprintf("ha[%d].carry", b.Cell)
	case BitFullSum:
		return fmt.Sprintf("fa[%d].sum", b.Cell)
	case BitFullCarry:
		return fmt.Sprintf("fa[%d].cout", b.Cell)
	default:
		return b.Kind.String()
	}
}
