package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	mul4Fingerprint = "faa4eb7240dbfe51cdcbc0daafddc3c9349865efc5651b4e4527fbb338e2af66"
	mul3Fingerprint = "cbfd8c0a8e8a1c4391b0d65d90c53a6925a104f67f1116cd5e8760961488125a"
)

var (
	harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	harnessGoldens   = filepath.Join("..", "harness", "testdata", "golden")
	harnessDesign    = filepath.Join("..", "harness", "testdata", "designs", "blocks.cue")
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
