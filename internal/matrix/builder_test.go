package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
)

func TestBuild_Multiply(t *testing.T) {
	m, err := Build(Request{IntBits: 2})
	require.NoError(t, err)

	require.Equal(t, 4, m.Width())
	assert.Equal(t, []int{1, 2, 1, 0}, m.Heights())
	assert.Equal(t, 2, m.MaxHeight())

	// Outer loop over a, inner over b.
	assert.Equal(t, []ir.InputRef{ir.PartialProduct(0, 1), ir.PartialProduct(1, 0)}, m.Columns[1])
	assert.Empty(t, m.Columns[3])
}

func TestBuild_MultiplyHeights4x4(t *testing.T) {
	m, err := Build(Request{IntBits: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 3, 2, 1, 0}, m.Heights())
	assert.Equal(t, ir.Ports{A: 4, B: 4, Product: 8}, m.Ports())
}

func TestBuild_ConstAccumulate(t *testing.T) {
	// Coefficient 0b101 selects a[i] into columns i and i+2.
	m, err := Build(Request{IntBits: 2, FracBits: 1, Mode: ConstAccumulate, Constant: 0b101, Addend: 0b10})
	require.NoError(t, err)

	require.Equal(t, 6, m.Width())
	assert.Equal(t, []ir.InputRef{ir.OperandBit(0), ir.ConstantBit(false)}, m.Columns[0])
	assert.Equal(t, []ir.InputRef{ir.OperandBit(1), ir.ConstantBit(true)}, m.Columns[1])
	assert.Equal(t, []ir.InputRef{ir.OperandBit(0), ir.OperandBit(2)}, m.Columns[2])
	assert.Equal(t, []ir.InputRef{ir.OperandBit(1)}, m.Columns[3])
	assert.Equal(t, []ir.InputRef{ir.OperandBit(2)}, m.Columns[4])
	assert.Empty(t, m.Columns[5])
	assert.Equal(t, ir.Ports{A: 3, Product: 6}, m.Ports())
}

func TestBuild_Accumulate(t *testing.T) {
	m, err := Build(Request{IntBits: 2, Mode: Accumulate, OffsetWidth: 3})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 2, 0}, m.Heights())
	assert.Equal(t, ir.OffsetBit(2), m.Columns[2][1], "offset bits follow the partial products")
	assert.Equal(t, ir.Ports{A: 2, B: 2, Offset: 3, Product: 4}, m.Ports())
}

func TestBuild_RejectsBeforeAllocating(t *testing.T) {
	m, err := Build(Request{IntBits: 0})
	assert.Nil(t, m)
	assert.True(t, IsInvalidWidth(err))
}

func TestMatrixValueMatchesReference(t *testing.T) {
	requests := []Request{
		{IntBits: 3},
		{IntBits: 2, FracBits: 1, Mode: ConstAccumulate, Constant: 5, Addend: 3},
		{IntBits: 3, Mode: Accumulate, OffsetWidth: 4},
	}

	for _, req := range requests {
		t.Run(req.Mode.String(), func(t *testing.T) {
			m, err := Build(req)
			require.NoError(t, err)

			for a := uint64(0); a < 8; a++ {
				for b := uint64(0); b < 8; b++ {
					ops := ir.Operands{A: a, B: b, Offset: a ^ b<<1}
					assert.Equal(t, req.Reference(ops), m.Value(ops), "a=%d b=%d", a, b)
				}
			}
		})
	}
}
