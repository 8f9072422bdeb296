package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitString(t *testing.T) {
	tests := []struct {
		bit      Bit[InputRef]
		expected string
	}{
		{Input(PartialProduct(2, 3)), "a[2]&b[3]"},
		{Input(OperandBit(1)), "a[1]"},
		{Input(OffsetBit(4)), "offset[4]"},
		{Input(ConstantBit(true)), "1'b1"},
		{Zero[InputRef](), "1'b0"},
		{Constant[InputRef](true), "1'b1"},
		{HalfSum[InputRef](3), "ha[3].sum"},
		{HalfCarry[InputRef](3), "ha[3].carry"},
		{FullSum[InputRef](0), "fa[0].sum"},
		{FullCarry[InputRef](7), "fa[7].cout"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.bit.String())
		})
	}
}

func TestBitGenericOverInputType(t *testing.T) {
	// The union is parameterized over the raw input type.
	b := Input("x0")
	assert.Equal(t, BitInput, b.Kind)
	assert.Equal(t, "x0", b.String())
}

func TestOperandsBit(t *testing.T) {
	ops := Operands{A: 0b101, B: 0b010, Offset: 0b100}

	assert.True(t, ops.Bit(PartialProduct(0, 1)))
	assert.False(t, ops.Bit(PartialProduct(1, 1)))
	assert.True(t, ops.Bit(OperandBit(2)))
	assert.False(t, ops.Bit(OperandBit(1)))
	assert.True(t, ops.Bit(OffsetBit(2)))
	assert.False(t, ops.Bit(OffsetBit(0)))
	assert.True(t, ops.Bit(ConstantBit(true)))
	assert.False(t, ops.Bit(ConstantBit(false)))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "full_carry", BitFullCarry.String())
	assert.Equal(t, "BitKind(42)", BitKind(42).String())
	assert.Equal(t, "literal", InputConstant.String())
	assert.Equal(t, "InputKind(9)", InputKind(9).String())
}
