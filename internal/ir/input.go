package ir

import "fmt"

// InputKind tags the variant held by an InputRef.
type InputKind uint8

const (
	// InputPartialProduct is a[A] & b[B].
	InputPartialProduct InputKind = iota
	// InputOperand is a[A] alone, gated in by a constant coefficient bit.
	InputOperand
	// InputOffset is offset[A], the runtime addend port.
	InputOffset
	// InputConstant is a compile-time addend bit.
	InputConstant
)

var inputKindNames = [...]string{
	InputPartialProduct: "pp",
	InputOperand:        "operand",
	InputOffset:         "offset",
	InputConstant:       "literal",
}

func (k InputKind) String() string {
	if int(k) < len(inputKindNames) {
		return inputKindNames[k]
	}
	return fmt.Sprintf("InputKind(%d)", uint8(k))
}

// InputRef is the raw-input payload of the multiplier Structural IR.
// A and B are operand bit positions; for InputOffset A is the offset bit.
type InputRef struct {
	Kind  InputKind
	A     int
	B     int
	Value bool
}

// PartialProduct references a[a] & b[b].
func PartialProduct(a, b int) InputRef {
	return InputRef{Kind: InputPartialProduct, A: a, B: b}
}

// OperandBit references a[a].
func OperandBit(a int) InputRef {
	return InputRef{Kind: InputOperand, A: a}
}

// OffsetBit references offset[k].
func OffsetBit(k int) InputRef {
	return InputRef{Kind: InputOffset, A: k}
}

// ConstantBit is a compile-time constant input.
func ConstantBit(v bool) InputRef {
	return InputRef{Kind: InputConstant, Value: v}
}

func (r InputRef) String() string {
	switch r.Kind {
	case InputPartialProduct:
		return fmt.Sprintf("a[%d]&b[%d]", r.A, r.B)
	case InputOperand:
		return fmt.Sprintf("a[%d]", r.A)
	case InputOffset:
		return fmt.Sprintf("offset[%d]", r.A)
	case InputConstant:
		if r.Value {
			return "1'b1"
		}
		return "1'b0"
	default:
		return r.Kind.String()
	}
}

// Operands is one assignment of values to the multiplier's input ports.
type Operands struct {
	A      uint64
	B      uint64
	Offset uint64
}

// Bit resolves an input reference under this assignment.
func (o Operands) Bit(r InputRef) bool {
	switch r.Kind {
	case InputPartialProduct:
		return o.A>>uint(r.A)&1 == 1 && o.B>>uint(r.B)&1 == 1
	case InputOperand:
		return o.A>>uint(r.A)&1 == 1
	case InputOffset:
		return o.Offset>>uint(r.A)&1 == 1
	case InputConstant:
		return r.Value
	default:
		panic(fmt.Sprintf("ir: unknown input kind %d", r.Kind))
	}
}
