package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory records two mul4 runs, one mul3 run and one rejection.
func seedHistory(t *testing.T) *RootOptions {
	t.Helper()
	opts := &RootOptions{Format: "text", DB: filepath.Join(t.TempDir(), "log.db")}

	for _, args := range [][]string{
		{"--name", "mul4", "--int-bits", "4"},
		{"--name", "mul3", "--int-bits", "3"},
		{"--name", "mul4", "--int-bits", "4"},
	} {
		_, err := execute(t, NewSynthCommand(opts), args...)
		require.NoError(t, err)
	}
	_, err := execute(t, NewSynthCommand(opts), "--name", "bad", "--int-bits", "0")
	require.Error(t, err)
	return opts
}

func TestHistory_ListText(t *testing.T) {
	opts := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(opts))
	require.NoError(t, err)

	assert.Contains(t, out, mul4Fingerprint[:12]+" checked 256 failed 0")
	assert.Contains(t, out, mul3Fingerprint[:12]+" checked 64 failed 0")
	assert.Contains(t, out, "rejected INVALID_WIDTH")
}

func TestHistory_ListJSONFilters(t *testing.T) {
	opts := seedHistory(t)
	opts.Format = "json"

	out, err := execute(t, NewHistoryCommand(opts), "--name", "mul4", "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []RunEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(3), resp.Data[0].Seq, "the most recent mul4 run")
	assert.Equal(t, "multiply", resp.Data[0].Mode)

	out, err = execute(t, NewHistoryCommand(opts), "--fingerprint", mul3Fingerprint[:8])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "mul3", resp.Data[0].Name)
	assert.Equal(t, mul3Fingerprint, resp.Data[0].Fingerprint)
}

func TestHistory_Empty(t *testing.T) {
	opts := &RootOptions{Format: "text", DB: filepath.Join(t.TempDir(), "log.db")}

	out, err := execute(t, NewHistoryCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestHistory_RequiresDB(t *testing.T) {
	_, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeStoreFailed)
}

func TestHistoryShow_PrintsCanonicalNetlist(t *testing.T) {
	opts := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(opts), "show", mul4Fingerprint[:10])
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"mul4"`)

	opts.Format = "json"
	out, err = execute(t, NewHistoryCommand(opts), "show", mul4Fingerprint)
	require.NoError(t, err)

	var resp struct {
		Data NetlistEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, mul4Fingerprint, resp.Data.Fingerprint)
	assert.Equal(t, "mul4", resp.Data.Name)
	assert.Equal(t, 3, resp.Data.HalfAdders)
	assert.Equal(t, 3, resp.Data.FullAdders)
	assert.Equal(t, 8, resp.Data.OutputWidth)
}

func TestHistoryShow_UnknownFingerprint(t *testing.T) {
	opts := seedHistory(t)

	_, err := execute(t, NewHistoryCommand(opts), "show", "0000")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
