package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dadda/internal/matrix"
)

// Block is one compiled multiplier declaration.
type Block struct {
	Request matrix.Request

	// Pos is the position of the block's struct in the design file.
	Pos token.Pos

	// Coefficient is the real coefficient as written, when the block gives
	// one. Request.Constant holds its truncated fixed-point encoding.
	Coefficient *float64
}

// knownFields lists every field a multiplier block may declare.
var knownFields = map[string]bool{
	"int_bits":         true,
	"frac_bits":        true,
	"mode":             true,
	"coefficient":      true,
	"coefficient_bits": true,
	"addend_bits":      true,
	"offset_width":     true,
}

// requestFields maps matrix.Request validation fields to the CUE fields
// that set them.
var requestFields = map[string][]string{
	"int_bits":     {"int_bits"},
	"frac_bits":    {"frac_bits"},
	"mode":         {"mode"},
	"constant":     {"coefficient", "coefficient_bits"},
	"addend":       {"addend_bits"},
	"offset_width": {"offset_width"},
}

// CompileMultiplier parses a CUE value into a validated Block.
//
// The value should be the block struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`multiplier: mul4: { int_bits: 4 }`)
//	block, err := CompileMultiplier(v.LookupPath(cue.ParsePath("multiplier.mul4")))
//
// A block declares int_bits (required), frac_bits (default 0) and mode
// (default "multiply"). const_accumulate blocks give their coefficient
// either as a real number (coefficient) or as its raw fixed-point encoding
// (coefficient_bits), plus an optional raw addend_bits. accumulate blocks
// may set offset_width, which defaults to 2*frac_bits, or to the operand
// width for integer blocks.
func CompileMultiplier(v cue.Value) (*Block, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	block := &Block{Pos: v.Pos()}
	req := &block.Request

	// Block name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		sel := labels[len(labels)-1]
		if sel.LabelType() == cue.StringLabel {
			req.Name = sel.Unquoted()
		} else {
			req.Name = sel.String()
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !knownFields[iter.Label()] {
			return nil, &CompileError{
				Field:   iter.Label(),
				Message: "unknown field in multiplier block",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	intVal := v.LookupPath(cue.ParsePath("int_bits"))
	if !intVal.Exists() {
		return nil, &CompileError{
			Field:   "int_bits",
			Message: "int_bits is required",
			Pos:     v.Pos(),
		}
	}
	if req.IntBits, err = intField(intVal); err != nil {
		return nil, err
	}

	if fracVal := v.LookupPath(cue.ParsePath("frac_bits")); fracVal.Exists() {
		if req.FracBits, err = intField(fracVal); err != nil {
			return nil, err
		}
	}

	if modeVal := v.LookupPath(cue.ParsePath("mode")); modeVal.Exists() {
		name, err := modeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if req.Mode, err = matrix.ParseMode(name); err != nil {
			return nil, &CompileError{Field: "mode", Message: err.Error(), Pos: modeVal.Pos(), Err: err}
		}
	}

	if err := compileCoefficient(v, block); err != nil {
		return nil, err
	}

	if addVal := v.LookupPath(cue.ParsePath("addend_bits")); addVal.Exists() {
		if req.Addend, err = uintField(addVal); err != nil {
			return nil, err
		}
	}

	offVal := v.LookupPath(cue.ParsePath("offset_width"))
	switch {
	case offVal.Exists():
		if req.OffsetWidth, err = intField(offVal); err != nil {
			return nil, err
		}
	case req.Mode == matrix.Accumulate:
		req.OffsetWidth = DefaultOffsetWidth(*req)
	}

	if err := req.Validate(); err != nil {
		return nil, validationError(v, err)
	}
	return block, nil
}

// DefaultOffsetWidth is the offset port width of an accumulate block that
// does not set one. It aligns the port with the product's fractional bits;
// integer blocks have none, so they get an operand-wide offset.
func DefaultOffsetWidth(req matrix.Request) int {
	if req.FracBits > 0 {
		return 2 * req.FracBits
	}
	return req.OperandWidth()
}

func compileCoefficient(v cue.Value, block *Block) error {
	realVal := v.LookupPath(cue.ParsePath("coefficient"))
	rawVal := v.LookupPath(cue.ParsePath("coefficient_bits"))

	switch {
	case realVal.Exists() && rawVal.Exists():
		return &CompileError{
			Field:   "coefficient",
			Message: "set either coefficient or coefficient_bits, not both",
			Pos:     rawVal.Pos(),
		}

	case realVal.Exists():
		x, err := numberField(realVal)
		if err != nil {
			return err
		}
		enc, err := matrix.EncodeFixed(x, block.Request.FracBits)
		if err != nil {
			return validationError(v, err)
		}
		block.Request.Constant = enc
		block.Coefficient = &x

	case rawVal.Exists():
		raw, err := uintField(rawVal)
		if err != nil {
			return err
		}
		block.Request.Constant = raw
	}
	return nil
}

func intField(v cue.Value) (int, error) {
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func uintField(v cue.Value) (uint64, error) {
	n, err := v.Uint64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func numberField(v cue.Value) (float64, error) {
	if v.IncompleteKind() == cue.IntKind {
		n, err := v.Int64()
		if err != nil {
			return 0, formatCUEError(err)
		}
		return float64(n), nil
	}
	x, err := v.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return x, nil
}

// validationError attaches the position of the offending CUE field to a
// matrix validation error.
func validationError(v cue.Value, err error) error {
	var me *matrix.Error
	if !errors.As(err, &me) {
		return err
	}
	field, pos := me.Field, v.Pos()
	for _, name := range requestFields[me.Field] {
		if fv := v.LookupPath(cue.ParsePath(name)); fv.Exists() {
			field, pos = name, fv.Pos()
			break
		}
	}
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("%s: %s", me.Code, me.Message),
		Pos:     pos,
		Err:     err,
	}
}

// CompileAll compiles every block under the top-level "multiplier" field,
// in declaration order. It keeps going after a failed block and returns
// every error it met.
func CompileAll(v cue.Value) ([]Block, []error) {
	blocksVal := v.LookupPath(cue.ParsePath("multiplier"))
	if !blocksVal.Exists() {
		return nil, nil
	}

	iter, err := blocksVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var blocks []Block
	var errs []error
	for iter.Next() {
		block, err := CompileMultiplier(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("multiplier.%s: %w", iter.Label(), err))
			continue
		}
		blocks = append(blocks, *block)
	}
	return blocks, errs
}
