package synth

import (
	"fmt"

	"github.com/roach88/dadda/internal/adder"
	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

// MaxExhaustiveBits bounds the total input width Exhaustive will enumerate.
const MaxExhaustiveBits = 20

// maxRecorded caps the mismatches kept in a Report; Failed still counts all.
const maxRecorded = 16

// OperandSource yields operand assignments for sampled verification.
type OperandSource interface {
	Next() ir.Operands
}

// Mismatch is one assignment where the netlist disagreed with the request's
// reference arithmetic.
type Mismatch struct {
	Operands ir.Operands
	Got      uint64
	Want     uint64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("a=%d b=%d offset=%d: got %d, want %d",
		m.Operands.A, m.Operands.B, m.Operands.Offset, m.Got, m.Want)
}

// Report summarizes a verification run.
type Report struct {
	Checked    int
	Failed     int
	Mismatches []Mismatch
}

// OK reports whether every checked assignment matched.
func (r *Report) OK() bool {
	return r.Failed == 0
}

func (r *Report) record(req matrix.Request, nl *ir.Netlist, ops ir.Operands) {
	r.Checked++
	if mm, ok := Check(req, nl, ops); !ok {
		r.Failed++
		if len(r.Mismatches) < maxRecorded {
			r.Mismatches = append(r.Mismatches, mm)
		}
	}
}

// Check evaluates nl under ops and compares the result with
// req.Reference. ok is false on disagreement.
func Check(req matrix.Request, nl *ir.Netlist, ops ir.Operands) (mm Mismatch, ok bool) {
	got := adder.Evaluate(nl, ops).Product
	want := req.Reference(ops)
	return Mismatch{Operands: ops, Got: got, Want: want}, got == want
}

// Exhaustive checks every assignment of the netlist's input ports.
func Exhaustive(req matrix.Request, nl *ir.Netlist) (*Report, error) {
	p := nl.Ports
	if bits := p.A + p.B + p.Offset; bits > MaxExhaustiveBits {
		return nil, fmt.Errorf("exhaustive verification of %d input bits exceeds limit %d", bits, MaxExhaustiveBits)
	}

	r := &Report{}
	for a := uint64(0); a <= matrix.Mask(p.A); a++ {
		for b := uint64(0); b <= matrix.Mask(p.B); b++ {
			for off := uint64(0); off <= matrix.Mask(p.Offset); off++ {
				r.record(req, nl, ir.Operands{A: a, B: b, Offset: off})
			}
		}
	}
	return r, nil
}

// Sample checks count assignments drawn from src.
func Sample(req matrix.Request, nl *ir.Netlist, src OperandSource, count int) *Report {
	r := &Report{}
	for i := 0; i < count; i++ {
		r.record(req, nl, src.Next())
	}
	return r
}

// Verify checks exhaustively when the inputs are narrow enough and falls
// back to count samples from src otherwise.
func Verify(req matrix.Request, nl *ir.Netlist, src OperandSource, count int) *Report {
	if r, err := Exhaustive(req, nl); err == nil {
		return r
	}
	return Sample(req, nl, src, count)
}
