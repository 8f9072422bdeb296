package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

func TestWriteNetlist_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, nl := synthesizeTestNetlist(t, "mul4", 4)

	fp, created, err := s.WriteNetlist(ctx, nl)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "faa4eb7240dbfe51cdcbc0daafddc3c9349865efc5651b4e4527fbb338e2af66", fp)

	fp2, created, err := s.WriteNetlist(ctx, nl)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, fp, fp2)

	n, err := s.CountNetlists(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordRun_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	req, nl := synthesizeTestNetlist(t, "mul4", 4)

	fp, _, err := s.WriteNetlist(ctx, nl)
	require.NoError(t, err)

	first, err := s.RecordRun(ctx, Run{Request: req, Fingerprint: fp, Checked: 256})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err, "run ID should be a UUID")
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, ir.EngineVersion, first.EngineVersion)

	second, err := s.RecordRun(ctx, Run{Request: req, Fingerprint: fp})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRecordRun_DuplicateIDIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	req := matrix.Request{Name: "zero"}

	run, err := s.RecordRun(ctx, Run{ID: "run-1", Request: req, Rejection: "INVALID_WIDTH"})
	require.NoError(t, err)

	again, err := s.RecordRun(ctx, Run{ID: "run-1", Request: req, Rejection: "INVALID_CONSTANT"})
	require.NoError(t, err)
	assert.Equal(t, run, again)

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordRun_RequiresExactlyOneOutcome(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{Request: matrix.Request{Name: "x"}})
	assert.ErrorContains(t, err, "exactly one")

	_, err = s.RecordRun(ctx, Run{Request: matrix.Request{Name: "x"}, Fingerprint: "ab", Rejection: "INVALID_WIDTH"})
	assert.ErrorContains(t, err, "exactly one")
}

func TestRecordRun_UnknownNetlist(t *testing.T) {
	s := createTestStore(t)

	_, err := s.RecordRun(context.Background(), Run{
		Request:     matrix.Request{Name: "ghost", IntBits: 4},
		Fingerprint: "0000000000000000000000000000000000000000000000000000000000000000",
	})
	assert.Error(t, err, "foreign key should reject a run without a stored netlist")
}

func TestRecordRun_RejectedRequestKeepsFullWidthOperands(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	req := matrix.Request{
		Name:     "huge",
		IntBits:  4,
		Mode:     matrix.ConstAccumulate,
		Constant: 1 << 63,
		Addend:   ^uint64(0),
	}

	run, err := s.RecordRun(ctx, Run{Request: req, Rejection: "INVALID_CONSTANT"})
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got.Request)

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, uint64(1<<63), runs[0].Request.Constant)
	assert.Equal(t, ^uint64(0), runs[0].Request.Addend)
	assert.Equal(t, "INVALID_CONSTANT", runs[0].Rejection)
}

func TestMarshalRequest_OperandsAreDecimalStrings(t *testing.T) {
	data, err := marshalRequest(matrix.Request{IntBits: 4, Mode: matrix.ConstAccumulate, Constant: 5, Addend: 3})
	require.NoError(t, err)
	assert.Contains(t, data, `"coefficient_bits":"5"`)
	assert.Contains(t, data, `"addend_bits":"3"`)
}
