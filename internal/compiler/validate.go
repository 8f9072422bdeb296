package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/render"
)

// Validation error codes (E100-E199)
const (
	ErrDuplicateName     = "E101" // two blocks render to the same module name
	ErrInvalidBlockName  = "E102" // name is not a plain identifier
	ErrLossyCoefficient  = "E103" // coefficient not exactly representable
	ErrZeroCoefficient   = "E104" // coefficient encodes to zero
	ErrReservedBlockName = "E105" // name collides with a cell primitive
)

// ValidationError represents a design-level validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// reservedNames are the cell modules every rendered design defines.
var reservedNames = map[string]bool{
	"half_adder": true,
	"full_adder": true,
}

// Validate checks a set of compiled blocks for problems that no single
// block can detect on its own, and for coefficients that lose precision.
// Returns all errors found (does not fail-fast).
func Validate(blocks []Block) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string)

	for _, b := range blocks {
		req := b.Request
		field := "multiplier." + req.Name
		line := b.Pos.Line()

		ident := render.Identifier(req.Name)
		if ident != req.Name {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("block name %q is not a Verilog identifier; it renders as %q", req.Name, ident),
				Code:    ErrInvalidBlockName,
				Line:    line,
			})
		}

		if reservedNames[ident] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("block name %q is reserved for a cell module", req.Name),
				Code:    ErrReservedBlockName,
				Line:    line,
			})
		}
		if prev, ok := seen[ident]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("blocks %q and %q both render as module %q", prev, req.Name, ident),
				Code:    ErrDuplicateName,
				Line:    line,
			})
		} else {
			seen[ident] = req.Name
		}

		if req.Mode != matrix.ConstAccumulate {
			continue
		}
		if req.Constant == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".coefficient",
				Message: "coefficient encodes to zero; the block only produces its addend",
				Code:    ErrZeroCoefficient,
				Line:    line,
			})
		}
		if b.Coefficient != nil {
			exact := math.Ldexp(*b.Coefficient, req.FracBits)
			if exact != float64(req.Constant) {
				errs = append(errs, ValidationError{
					Field: field + ".coefficient",
					Message: fmt.Sprintf("coefficient %v is not representable with %d fractional bits; truncated to %v",
						*b.Coefficient, req.FracBits, math.Ldexp(float64(req.Constant), -req.FracBits)),
					Code: ErrLossyCoefficient,
					Line: line,
				})
			}
		}
	}

	return errs
}
