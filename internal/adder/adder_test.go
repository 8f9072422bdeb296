package adder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/dadda"
	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

func TestCarryPropagate(t *testing.T) {
	tests := []struct {
		top, bottom uint64
		width       int
		want        uint64
	}{
		{0, 0, 8, 0},
		{1, 1, 8, 2},
		{0xff, 1, 8, 0},
		{0xff, 1, 9, 0x100},
		{0b1010, 0b0110, 4, 0},
		{12345, 54321, 32, 66666},
		{^uint64(0), 1, 64, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CarryPropagate(tt.top, tt.bottom, tt.width),
			"%d + %d over %d bits", tt.top, tt.bottom, tt.width)
	}
}

func TestSplit(t *testing.T) {
	cols := [][]ir.Bit[string]{
		{ir.Input("x"), ir.Zero[string]()},
		{ir.HalfSum[string](0), ir.HalfCarry[string](1)},
	}
	rows := Split(cols)

	assert.Equal(t, []ir.Bit[string]{ir.Input("x"), ir.HalfSum[string](0)}, rows.Top)
	assert.Equal(t, []ir.Bit[string]{ir.Zero[string](), ir.HalfCarry[string](1)}, rows.Bottom)

	assert.Panics(t, func() {
		Split([][]ir.Bit[string]{{ir.Input("x")}})
	})
}

func TestEvaluator_CellTruthTables(t *testing.T) {
	in := func(s string) bool { return s == "1" }
	bits := []string{"0", "1"}

	for _, a := range bits {
		for _, b := range bits {
			half := []ir.HalfAdder[string]{{A: ir.Input(a), B: ir.Input(b)}}
			ev := NewEvaluator(half, nil, in)
			n := boolInt(in(a)) + boolInt(in(b))
			assert.Equal(t, n&1 == 1, ev.Bit(ir.HalfSum[string](0)), "ha(%s,%s).sum", a, b)
			assert.Equal(t, n>>1 == 1, ev.Bit(ir.HalfCarry[string](0)), "ha(%s,%s).carry", a, b)

			for _, c := range bits {
				full := []ir.FullAdder[string]{{A: ir.Input(a), B: ir.Input(b), C: ir.Input(c)}}
				ev := NewEvaluator(nil, full, in)
				n := boolInt(in(a)) + boolInt(in(b)) + boolInt(in(c))
				assert.Equal(t, n&1 == 1, ev.Bit(ir.FullSum[string](0)), "fa(%s,%s,%s).sum", a, b, c)
				assert.Equal(t, n>>1 == 1, ev.Bit(ir.FullCarry[string](0)), "fa(%s,%s,%s).cout", a, b, c)
			}
		}
	}
}

func TestEvaluator_EvaluatesEachCellOnce(t *testing.T) {
	calls := 0
	in := func(s string) bool {
		calls++
		return true
	}
	half := []ir.HalfAdder[string]{
		{A: ir.Input("p"), B: ir.Input("q")},
		{A: ir.HalfSum[string](0), B: ir.HalfCarry[string](0)},
	}
	ev := NewEvaluator(half, nil, in)

	assert.True(t, ev.Bit(ir.HalfSum[string](1)))
	assert.False(t, ev.Bit(ir.HalfCarry[string](1)))
	assert.False(t, ev.Bit(ir.HalfSum[string](0)))
	assert.Equal(t, 2, calls)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func reduceToNetlist(t *testing.T, req matrix.Request) *ir.Netlist {
	t.Helper()
	m, err := matrix.Build(req)
	require.NoError(t, err)
	res := dadda.Reduce(m.Columns)
	return &ir.Netlist{
		Ports:      m.Ports(),
		HalfAdders: res.HalfAdders,
		FullAdders: res.FullAdders,
		Rows:       Split(res.Columns),
	}
}

func TestEvaluate_ConservesValueExhaustively(t *testing.T) {
	requests := []matrix.Request{
		{IntBits: 1},
		{IntBits: 2},
		{IntBits: 3},
		{IntBits: 2, FracBits: 2},
		{IntBits: 3, FracBits: 2},
		{IntBits: 3, Mode: matrix.Accumulate, OffsetWidth: 5},
		{IntBits: 2, FracBits: 2, Mode: matrix.Accumulate, OffsetWidth: 4},
		{IntBits: 2, FracBits: 2, Mode: matrix.ConstAccumulate, Constant: 0b1011, Addend: 0xa},
		{IntBits: 3, FracBits: 2, Mode: matrix.ConstAccumulate, Constant: 0b11111, Addend: 0xf},
	}

	for _, req := range requests {
		req := req
		name := fmt.Sprintf("%s_%d_%d", req.Mode, req.IntBits, req.FracBits)
		t.Run(name, func(t *testing.T) {
			nl := reduceToNetlist(t, req)
			n := req.OperandWidth()
			offsets := uint64(1)
			if req.Mode == matrix.Accumulate {
				offsets = 1 << uint(req.OffsetWidth)
			}

			for a := uint64(0); a < 1<<uint(n); a++ {
				for b := uint64(0); b < 1<<uint(n); b++ {
					for off := uint64(0); off < offsets; off++ {
						ops := ir.Operands{A: a, B: b, Offset: off}
						got := Evaluate(nl, ops)
						want := req.Reference(ops)
						if got.Product != want {
							t.Fatalf("a=%d b=%d offset=%d: got %d want %d", a, b, off, got.Product, want)
						}
						// Overflow past the top column is not modeled, so the
						// rows alone must already sum to the value modulo 2^W.
						require.Equal(t, want, (got.Top+got.Bottom)&matrix.Mask(req.OutputWidth()))
					}
				}
			}
		})
	}
}

func TestEvaluate_Wide(t *testing.T) {
	nl := reduceToNetlist(t, matrix.Request{IntBits: 32})
	req := matrix.Request{IntBits: 32}

	for _, ops := range []ir.Operands{
		{A: 0xffffffff, B: 0xffffffff},
		{A: 0x80000001, B: 0x7fffffff},
		{A: 0xdeadbeef, B: 0x12345678},
		{A: 0, B: 0xffffffff},
	} {
		assert.Equal(t, req.Reference(ops), Evaluate(nl, ops).Product, "a=%#x b=%#x", ops.A, ops.B)
	}
}
