package dadda

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/dadda/internal/ir"
)

// Result is the output of Reduce.
type Result[T any] struct {
	// Targets holds the heights applied, in the order they were applied
	// (largest first).
	Targets []int

	// Passes[i] counts the passes run for Targets[i], including the final
	// pass that allocated nothing.
	Passes []int

	// HalfAdders and FullAdders are in allocation order. HalfSum(i) and
	// HalfCarry(i) refer to HalfAdders[i], and likewise for full adders.
	HalfAdders []ir.HalfAdder[T]
	FullAdders []ir.FullAdder[T]

	// Heights records each column's height after reduction, before padding.
	Heights []int

	// Columns is the reduced matrix, padded so that every column holds
	// exactly two sources.
	Columns [][]ir.Bit[T]
}

// Reduce runs Dadda reduction over columns. Columns[k] holds the raw terms
// of weight 2^k in insertion order; the input slices are not modified.
//
// Reduce cannot fail. It panics if a column is left with more than two
// sources, which would mean the algorithm itself is broken.
func Reduce[T any](columns [][]T) *Result[T] {
	r := &reducer[T]{cols: make([][]ir.Bit[T], len(columns))}
	for k, col := range columns {
		r.cols[k] = make([]ir.Bit[T], len(col))
		for j, in := range col {
			r.cols[k][j] = ir.Input(in)
		}
	}

	res := &Result[T]{}
	targets := Targets(r.maxHeight())
	slices.Reverse(targets)
	for _, t := range targets {
		passes := r.reduceTo(t)
		res.Targets = append(res.Targets, t)
		res.Passes = append(res.Passes, passes)
		slog.Debug("dadda target reduced",
			"target", t,
			"passes", passes,
			"half_adders", len(r.half),
			"full_adders", len(r.full),
		)
	}

	res.HalfAdders = r.half
	res.FullAdders = r.full
	res.Heights = make([]int, len(r.cols))
	for k, col := range r.cols {
		res.Heights[k] = len(col)
		if len(col) > 2 {
			panic(fmt.Sprintf("dadda: column %d left with %d sources after reduction", k, len(col)))
		}
		for len(col) < 2 {
			col = append(col, ir.Zero[T]())
		}
		r.cols[k] = col
	}
	res.Columns = r.cols
	return res
}

type reducer[T any] struct {
	cols [][]ir.Bit[T]
	half []ir.HalfAdder[T]
	full []ir.FullAdder[T]
}

func (r *reducer[T]) maxHeight() int {
	h := 0
	for _, col := range r.cols {
		h = max(h, len(col))
	}
	return h
}

// reduceTo brings every column below the top down to height t and returns
// the number of passes it took.
func (r *reducer[T]) reduceTo(t int) int {
	passes := 0
	for {
		passes++
		changed := false
		for i := 0; i < len(r.cols)-1; i++ {
			switch h := len(r.cols[i]); {
			case h == t+1:
				a, b := r.pop(i), r.pop(i)
				idx := len(r.half)
				r.half = append(r.half, ir.HalfAdder[T]{A: a, B: b})
				r.pushFront(i, ir.HalfSum[T](idx))
				r.pushFront(i+1, ir.HalfCarry[T](idx))
				changed = true
			case h > t+1:
				a, b, c := r.pop(i), r.pop(i), r.pop(i)
				idx := len(r.full)
				r.full = append(r.full, ir.FullAdder[T]{A: a, B: b, C: c})
				r.pushFront(i, ir.FullSum[T](idx))
				r.pushFront(i+1, ir.FullCarry[T](idx))
				changed = true
			}
		}
		if !changed {
			return passes
		}
	}
}

func (r *reducer[T]) pop(i int) ir.Bit[T] {
	col := r.cols[i]
	b := col[len(col)-1]
	r.cols[i] = col[:len(col)-1]
	return b
}

func (r *reducer[T]) pushFront(i int, b ir.Bit[T]) {
	r.cols[i] = slices.Insert(r.cols[i], 0, b)
}
