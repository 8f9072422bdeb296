package matrix

import (
	"github.com/samber/lo"

	"github.com/roach88/dadda/internal/ir"
)

// Matrix is the initial partial-product bit matrix: Columns[k] holds every
// term of weight 2^k in insertion order.
type Matrix struct {
	Request Request
	Columns [][]ir.InputRef
}

// Build validates req and populates its partial-product matrix.
//
// Term order within a column is part of the contract: the reduction engine
// consumes columns positionally, so it determines which terms each cell
// receives.
func Build(req Request) (*Matrix, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	n := req.OperandWidth()
	cols := make([][]ir.InputRef, req.OutputWidth())

	switch req.Mode {
	case ConstAccumulate:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if req.Constant>>uint(j)&1 == 1 {
					cols[i+j] = append(cols[i+j], ir.OperandBit(i))
				}
			}
		}
		for k := 0; k < 2*req.FracBits; k++ {
			cols[k] = append(cols[k], ir.ConstantBit(req.Addend>>uint(k)&1 == 1))
		}

	case Accumulate:
		addPartialProducts(cols, n)
		for k := 0; k < req.OffsetWidth; k++ {
			cols[k] = append(cols[k], ir.OffsetBit(k))
		}

	default:
		addPartialProducts(cols, n)
	}

	return &Matrix{Request: req, Columns: cols}, nil
}

func addPartialProducts(cols [][]ir.InputRef, n int) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cols[i+j] = append(cols[i+j], ir.PartialProduct(i, j))
		}
	}
}

// Width is the number of columns.
func (m *Matrix) Width() int {
	return len(m.Columns)
}

// Heights returns the height of every column.
func (m *Matrix) Heights() []int {
	return lo.Map(m.Columns, func(col []ir.InputRef, _ int) int {
		return len(col)
	})
}

// MaxHeight returns the tallest column's height (0 for an all-empty matrix).
func (m *Matrix) MaxHeight() int {
	return lo.Max(m.Heights())
}

// Ports returns the port widths of the block this matrix describes.
func (m *Matrix) Ports() ir.Ports {
	req := m.Request
	p := ir.Ports{
		A:       req.OperandWidth(),
		B:       req.OperandWidth(),
		Product: req.OutputWidth(),
	}
	switch req.Mode {
	case ConstAccumulate:
		p.B = 0
	case Accumulate:
		p.Offset = req.OffsetWidth
	}
	return p
}

// Value evaluates every term under ops and sums them by column weight,
// modulo 2^Width. This is the number the reduced rows must still represent.
func (m *Matrix) Value(ops ir.Operands) uint64 {
	var v uint64
	for k, col := range m.Columns {
		for _, ref := range col {
			if ops.Bit(ref) {
				v += 1 << uint(k)
			}
		}
	}
	return v & Mask(m.Width())
}
