package dadda

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

func buildMultiply(t *testing.T, n int) [][]ir.InputRef {
	t.Helper()
	m, err := matrix.Build(matrix.Request{IntBits: n})
	require.NoError(t, err)
	return m.Columns
}

func pp(a, b int) ir.Bit[ir.InputRef] {
	return ir.Input(ir.PartialProduct(a, b))
}

func TestReduce_CellCounts(t *testing.T) {
	tests := []struct {
		n       int
		half    int
		full    int
		targets []int
	}{
		{1, 0, 0, nil},
		{2, 0, 0, nil},
		{3, 2, 0, []int{2}},
		{4, 3, 3, []int{3, 2}},
		{5, 4, 8, []int{4, 3, 2}},
		{6, 10, 14, []int{4, 3, 2}},
		{7, 11, 23, []int{6, 4, 3, 2}},
		{8, 14, 34, []int{6, 4, 3, 2}},
	}

	for _, tt := range tests {
		res := Reduce(buildMultiply(t, tt.n))
		assert.Len(t, res.HalfAdders, tt.half, "n=%d half adders", tt.n)
		assert.Len(t, res.FullAdders, tt.full, "n=%d full adders", tt.n)
		assert.Equal(t, tt.targets, res.Targets, "n=%d targets", tt.n)
		assert.Len(t, res.Passes, len(res.Targets))
	}
}

func TestReduce_Exact4x4(t *testing.T) {
	res := Reduce(buildMultiply(t, 4))

	wantHalf := []ir.HalfAdder[ir.InputRef]{
		{A: pp(3, 0), B: pp(2, 1)},
		{A: pp(3, 1), B: pp(2, 2)},
		{A: pp(2, 0), B: pp(1, 1)},
	}
	wantFull := []ir.FullAdder[ir.InputRef]{
		{A: pp(1, 2), B: pp(0, 3), C: ir.HalfSum[ir.InputRef](0)},
		{A: pp(1, 3), B: ir.HalfCarry[ir.InputRef](0), C: ir.HalfSum[ir.InputRef](1)},
		{A: pp(3, 2), B: pp(2, 3), C: ir.HalfCarry[ir.InputRef](1)},
	}
	zero := ir.Zero[ir.InputRef]()
	wantColumns := [][]ir.Bit[ir.InputRef]{
		{pp(0, 0), zero},
		{pp(0, 1), pp(1, 0)},
		{ir.HalfSum[ir.InputRef](2), pp(0, 2)},
		{ir.FullSum[ir.InputRef](0), ir.HalfCarry[ir.InputRef](2)},
		{ir.FullSum[ir.InputRef](1), ir.FullCarry[ir.InputRef](0)},
		{ir.FullSum[ir.InputRef](2), ir.FullCarry[ir.InputRef](1)},
		{ir.FullCarry[ir.InputRef](2), pp(3, 3)},
		{zero, zero},
	}

	if diff := cmp.Diff(wantHalf, res.HalfAdders); diff != "" {
		t.Errorf("half adders mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantFull, res.FullAdders); diff != "" {
		t.Errorf("full adders mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantColumns, res.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1, 2, 2, 2, 2, 2, 2, 0}, res.Heights)
	assert.Equal(t, []int{2, 2}, res.Passes)
}

func TestReduce_HeightsAtMostTwo(t *testing.T) {
	for n := 1; n <= matrix.MaxOperandWidth; n++ {
		res := Reduce(buildMultiply(t, n))
		for k, h := range res.Heights {
			require.LessOrEqual(t, h, 2, "n=%d column %d", n, k)
		}
		for k, col := range res.Columns {
			require.Len(t, col, 2, "n=%d column %d", n, k)
		}
	}
}

func TestReduce_Degenerate(t *testing.T) {
	cols := [][]string{{"x0"}, {"x1", "y1"}, {}}
	res := Reduce(cols)

	assert.Empty(t, res.Targets)
	assert.Empty(t, res.HalfAdders)
	assert.Empty(t, res.FullAdders)
	assert.Equal(t, []int{1, 2, 0}, res.Heights)

	zero := ir.Zero[string]()
	want := [][]ir.Bit[string]{
		{ir.Input("x0"), zero},
		{ir.Input("x1"), ir.Input("y1")},
		{zero, zero},
	}
	assert.Equal(t, want, res.Columns)
}

func TestReduce_GenericPayload(t *testing.T) {
	// Three terms in column 0 need one half adder to reach height 2.
	res := Reduce([][]string{{"p", "q", "r"}, {}})

	require.Equal(t, []int{2}, res.Targets)
	require.Len(t, res.HalfAdders, 1)
	assert.Equal(t, ir.HalfAdder[string]{A: ir.Input("r"), B: ir.Input("q")}, res.HalfAdders[0])
	assert.Equal(t, []ir.Bit[string]{ir.HalfSum[string](0), ir.Input("p")}, res.Columns[0])
	assert.Equal(t, []ir.Bit[string]{ir.HalfCarry[string](0), ir.Zero[string]()}, res.Columns[1])
}

func TestReduce_Deterministic(t *testing.T) {
	m, err := matrix.Build(matrix.Request{IntBits: 6, FracBits: 2, Mode: matrix.Accumulate, OffsetWidth: 4})
	require.NoError(t, err)

	first := Reduce(m.Columns)
	second := Reduce(m.Columns)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reduction is not deterministic (-first +second):\n%s", diff)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	cols := buildMultiply(t, 5)
	before := make([]int, len(cols))
	for k, col := range cols {
		before[k] = len(col)
	}

	Reduce(cols)

	for k, col := range cols {
		assert.Len(t, col, before[k], "column %d", k)
	}
}
