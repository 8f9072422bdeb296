package testutil

import (
	"sync"

	"github.com/roach88/dadda/internal/ir"
)

// FixedOperands replays a fixed list of assignments, wrapping around at the
// end. Scenario files use it to pin specific operand cases.
//
// An empty list yields the all-zero assignment.
type FixedOperands struct {
	mu    sync.Mutex
	cases []ir.Operands
	next  int
}

// NewFixedOperands creates a source over cases. The slice is copied.
func NewFixedOperands(cases []ir.Operands) *FixedOperands {
	return &FixedOperands{cases: append([]ir.Operands(nil), cases...)}
}

// Next returns the next assignment in the list.
func (f *FixedOperands) Next() ir.Operands {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.cases) == 0 {
		return ir.Operands{}
	}
	ops := f.cases[f.next%len(f.cases)]
	f.next++
	return ops
}
