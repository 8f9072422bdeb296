package adder

import (
	"fmt"

	"github.com/roach88/dadda/internal/ir"
)

// Sum is one evaluation of a two-row form.
type Sum struct {
	Top     uint64
	Bottom  uint64
	Product uint64
}

type cellState struct {
	done  bool
	sum   bool
	carry bool
}

// Evaluator resolves bit sources to values for one input assignment.
// Each cell is evaluated at most once.
type Evaluator[T any] struct {
	half  []ir.HalfAdder[T]
	full  []ir.FullAdder[T]
	input func(T) bool

	halfState []cellState
	fullState []cellState
}

// NewEvaluator returns an evaluator over the given cell lists. input
// resolves raw input references.
func NewEvaluator[T any](half []ir.HalfAdder[T], full []ir.FullAdder[T], input func(T) bool) *Evaluator[T] {
	return &Evaluator[T]{
		half:      half,
		full:      full,
		input:     input,
		halfState: make([]cellState, len(half)),
		fullState: make([]cellState, len(full)),
	}
}

// Bit returns the value of b.
func (e *Evaluator[T]) Bit(b ir.Bit[T]) bool {
	switch b.Kind {
	case ir.BitInput:
		return e.input(b.Input)
	case ir.BitConstant:
		return b.Value
	case ir.BitHalfSum:
		return e.halfCell(b.Cell).sum
	case ir.BitHalfCarry:
		return e.halfCell(b.Cell).carry
	case ir.BitFullSum:
		return e.fullCell(b.Cell).sum
	case ir.BitFullCarry:
		return e.fullCell(b.Cell).carry
	default:
		panic(fmt.Sprintf("adder: unknown bit kind %s", b.Kind))
	}
}

func (e *Evaluator[T]) halfCell(i int) cellState {
	if s := e.halfState[i]; s.done {
		return s
	}
	ha := e.half[i]
	a, b := e.Bit(ha.A), e.Bit(ha.B)
	s := cellState{done: true, sum: a != b, carry: a && b}
	e.halfState[i] = s
	return s
}

func (e *Evaluator[T]) fullCell(i int) cellState {
	if s := e.fullState[i]; s.done {
		return s
	}
	fa := e.full[i]
	a, b, c := e.Bit(fa.A), e.Bit(fa.B), e.Bit(fa.C)
	s := cellState{
		done:  true,
		sum:   a != b != c,
		carry: (a && b) || (a && c) || (b && c),
	}
	e.fullState[i] = s
	return s
}

// Row packs a row into an integer, bit k carrying weight 2^k.
func (e *Evaluator[T]) Row(row []ir.Bit[T]) uint64 {
	var v uint64
	for k, b := range row {
		if e.Bit(b) {
			v |= 1 << uint(k)
		}
	}
	return v
}

// Rows evaluates both rows and adds them with CarryPropagate.
func (e *Evaluator[T]) Rows(rows ir.Rows[T], width int) Sum {
	top, bottom := e.Row(rows.Top), e.Row(rows.Bottom)
	return Sum{
		Top:     top,
		Bottom:  bottom,
		Product: CarryPropagate(top, bottom, width),
	}
}

// Evaluate computes the output of a synthesized netlist for ops.
func Evaluate(n *ir.Netlist, ops ir.Operands) Sum {
	ev := NewEvaluator(n.HalfAdders, n.FullAdders, ops.Bit)
	return ev.Rows(n.Rows, n.OutputWidth())
}
