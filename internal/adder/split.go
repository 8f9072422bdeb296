// Package adder turns a reduced bit matrix into its two-row form and
// evaluates it: cell outputs under an operand assignment, and the final
// carry-propagate addition of the two rows.
package adder

import (
	"fmt"

	"github.com/roach88/dadda/internal/ir"
)

// Split extracts the two rows of a reduced, padded matrix: Top[k] is the
// first source of column k and Bottom[k] the second.
func Split[T any](columns [][]ir.Bit[T]) ir.Rows[T] {
	rows := ir.Rows[T]{
		Top:    make([]ir.Bit[T], len(columns)),
		Bottom: make([]ir.Bit[T], len(columns)),
	}
	for k, col := range columns {
		if len(col) != 2 {
			panic(fmt.Sprintf("adder: column %d has %d sources, want 2", k, len(col)))
		}
		rows.Top[k] = col[0]
		rows.Bottom[k] = col[1]
	}
	return rows
}
