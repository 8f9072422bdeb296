package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/synth"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// synthesizeTestNetlist synthesizes a plain n x n multiplier.
func synthesizeTestNetlist(t *testing.T, name string, n int) (matrix.Request, *ir.Netlist) {
	t.Helper()
	req := matrix.Request{Name: name, IntBits: n}
	nl, err := synth.Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}
	return req, nl
}
