package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	opsutil "github.com/roach88/dadda/internal/testutil"
)

func TestExhaustive(t *testing.T) {
	req := matrix.Request{IntBits: 3, Mode: matrix.Accumulate, OffsetWidth: 4}
	nl, err := Synthesize(req)
	require.NoError(t, err)

	r, err := Exhaustive(req, nl)
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, 8*8*16, r.Checked)
	assert.Empty(t, r.Mismatches)
}

func TestExhaustive_TooWide(t *testing.T) {
	req := matrix.Request{IntBits: 16}
	nl, err := Synthesize(req)
	require.NoError(t, err)

	_, err = Exhaustive(req, nl)
	assert.Error(t, err)
}

func TestSample_Wide(t *testing.T) {
	req := matrix.Request{IntBits: 12, FracBits: 12, Mode: matrix.Accumulate, OffsetWidth: 24}
	nl, err := Synthesize(req)
	require.NoError(t, err)

	r := Sample(req, nl, opsutil.NewSampler(5, nl.Ports), 500)
	assert.True(t, r.OK(), "mismatches: %v", r.Mismatches)
	assert.Equal(t, 500, r.Checked)
}

func TestCheck_DetectsBrokenNetlist(t *testing.T) {
	req := matrix.Request{IntBits: 4}
	nl, err := Synthesize(req)
	require.NoError(t, err)

	// Rewire one full adder input to a constant.
	nl.FullAdders[0].A = ir.Constant[ir.InputRef](true)

	mm, ok := Check(req, nl, ir.Operands{})
	assert.False(t, ok)
	assert.Equal(t, uint64(0), mm.Want)
	assert.NotEqual(t, uint64(0), mm.Got)

	r, err := Exhaustive(req, nl)
	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.Equal(t, 256, r.Checked)
	assert.LessOrEqual(t, len(r.Mismatches), maxRecorded)
	assert.GreaterOrEqual(t, r.Failed, len(r.Mismatches))
}

func TestVerify_FallsBackToSampling(t *testing.T) {
	narrow := matrix.Request{IntBits: 3}
	nl, err := Synthesize(narrow)
	require.NoError(t, err)
	assert.Equal(t, 64, Verify(narrow, nl, opsutil.NewSampler(1, nl.Ports), 10).Checked)

	wide := matrix.Request{IntBits: 20}
	nl, err = Synthesize(wide)
	require.NoError(t, err)
	r := Verify(wide, nl, opsutil.NewSampler(1, nl.Ports), 10)
	assert.Equal(t, 10, r.Checked)
	assert.True(t, r.OK())
}

func TestMismatchString(t *testing.T) {
	mm := Mismatch{Operands: ir.Operands{A: 3, B: 5}, Got: 14, Want: 15}
	assert.Equal(t, "a=3 b=5 offset=0: got 14, want 15", mm.String())
}
