package matrix

import (
	"fmt"
	"math"

	"github.com/roach88/dadda/internal/ir"
)

// MaxOperandWidth bounds int_bits+frac_bits so that every product fits the
// 64-bit words used by the final adder.
const MaxOperandWidth = 32

// Mode selects how the partial-product matrix is populated.
type Mode int

const (
	// Multiply is a plain a*b multiplier.
	Multiply Mode = iota
	// ConstAccumulate multiplies a by a compile-time coefficient and adds a
	// compile-time addend.
	ConstAccumulate
	// Accumulate is a fused multiply-add: a*b + offset.
	Accumulate
)

var modeNames = map[Mode]string{
	Multiply:        "multiply",
	ConstAccumulate: "const_accumulate",
	Accumulate:      "accumulate",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name used by design files, scenarios and flags.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, &Error{
		Code:    ErrCodeInvalidMode,
		Field:   "mode",
		Message: fmt.Sprintf("unknown mode %q: must be one of multiply, const_accumulate, accumulate", s),
	}
}

// Request describes one multiplier block to synthesize.
//
// Both operands are IntBits+FracBits wide; the product is twice that, with
// 2*FracBits fractional bits.
type Request struct {
	Name     string
	IntBits  int
	FracBits int
	Mode     Mode

	// Constant is the coefficient that replaces operand b in ConstAccumulate
	// mode, in the same fixed-point format as a.
	Constant uint64

	// Addend is added in ConstAccumulate mode. It is aligned to the
	// product's 2*FracBits fractional bits.
	Addend uint64

	// OffsetWidth is the width of the runtime addend port in Accumulate mode.
	OffsetWidth int
}

// OperandWidth is the width of operand a (and b, when present).
func (r Request) OperandWidth() int {
	return r.IntBits + r.FracBits
}

// OutputWidth is the product width W = 2 * OperandWidth.
func (r Request) OutputWidth() int {
	return 2 * r.OperandWidth()
}

// Validate checks the request before any allocation happens.
// Constants that exceed their allowance are rejected, never truncated.
func (r Request) Validate() error {
	if r.IntBits < 0 {
		return widthError("int_bits", "must not be negative (got %d)", r.IntBits)
	}
	if r.FracBits < 0 {
		return widthError("frac_bits", "must not be negative (got %d)", r.FracBits)
	}
	n := r.OperandWidth()
	if n == 0 {
		return widthError("int_bits", "operand width must be positive")
	}
	if n > MaxOperandWidth {
		return widthError("int_bits", "operand width %d exceeds maximum %d", n, MaxOperandWidth)
	}
	top := r.OutputWidth() - 1

	switch r.Mode {
	case Multiply:
		if r.OffsetWidth != 0 {
			return widthError("offset_width", "only used in accumulate mode")
		}
		if r.Constant != 0 {
			return constantError("constant", "only used in const_accumulate mode")
		}
		if r.Addend != 0 {
			return constantError("addend", "only used in const_accumulate mode")
		}

	case ConstAccumulate:
		if r.OffsetWidth != 0 {
			return widthError("offset_width", "only used in accumulate mode")
		}
		if r.Constant > Mask(n) {
			return constantError("constant", "%d does not fit in %d bits", r.Constant, n)
		}
		if 2*r.FracBits > top {
			// The addend would land in the top product column, which is
			// never reduced and would then hold three sources.
			return widthError("int_bits", "const_accumulate needs at least one integer bit")
		}
		if r.Addend > Mask(2*r.FracBits) {
			return constantError("addend", "%d does not fit in %d fractional bits", r.Addend, 2*r.FracBits)
		}

	case Accumulate:
		if r.OffsetWidth <= 0 {
			return widthError("offset_width", "must be positive (got %d)", r.OffsetWidth)
		}
		if r.OffsetWidth > top {
			return widthError("offset_width", "%d reaches the top product column (max %d)", r.OffsetWidth, top)
		}
		if r.Constant != 0 {
			return constantError("constant", "only used in const_accumulate mode")
		}
		if r.Addend != 0 {
			return constantError("addend", "only used in const_accumulate mode")
		}

	default:
		return &Error{Code: ErrCodeInvalidMode, Field: "mode", Message: r.Mode.String()}
	}
	return nil
}

// Reference computes, with plain integer arithmetic, the value the
// synthesized block must produce for ops, modulo 2^OutputWidth.
func (r Request) Reference(ops ir.Operands) uint64 {
	n := r.OperandWidth()
	a := ops.A & Mask(n)

	var v uint64
	switch r.Mode {
	case ConstAccumulate:
		v = a*r.Constant + r.Addend
	case Accumulate:
		v = a*(ops.B&Mask(n)) + ops.Offset&Mask(r.OffsetWidth)
	default:
		v = a * (ops.B & Mask(n))
	}
	return v & Mask(r.OutputWidth())
}

// Mask returns a word with the low w bits set.
func Mask(w int) uint64 {
	if w >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(w) - 1
}

// EncodeFixed converts a non-negative real coefficient to its fixed-point
// encoding with fracBits fractional bits, truncating toward zero.
func EncodeFixed(x float64, fracBits int) (uint64, error) {
	if fracBits < 0 {
		return 0, widthError("frac_bits", "must not be negative (got %d)", fracBits)
	}
	if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, constantError("constant", "%v is not a non-negative finite value", x)
	}
	scaled := math.Trunc(math.Ldexp(x, fracBits))
	if scaled >= math.Ldexp(1, 64) {
		return 0, constantError("constant", "%v overflows 64 bits at %d fractional bits", x, fracBits)
	}
	return uint64(scaled), nil
}
