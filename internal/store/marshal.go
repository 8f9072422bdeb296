package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

// requestRecord is the stored form of a matrix.Request. Field names match
// the CUE design format. The raw operand words are decimal strings because
// canonical integers are signed and rejected requests may carry any uint64.
type requestRecord struct {
	Name            string `json:"name"`
	IntBits         int    `json:"int_bits"`
	FracBits        int    `json:"frac_bits"`
	Mode            string `json:"mode"`
	CoefficientBits string `json:"coefficient_bits"`
	AddendBits      string `json:"addend_bits"`
	OffsetWidth     int    `json:"offset_width"`
}

// marshalRequest converts a request to canonical JSON TEXT for storage.
func marshalRequest(req matrix.Request) (string, error) {
	obj := ir.IRObject{
		"name":             ir.IRString(req.Name),
		"int_bits":         ir.IRInt(req.IntBits),
		"frac_bits":        ir.IRInt(req.FracBits),
		"mode":             ir.IRString(req.Mode.String()),
		"coefficient_bits": ir.IRString(strconv.FormatUint(req.Constant, 10)),
		"addend_bits":      ir.IRString(strconv.FormatUint(req.Addend, 10)),
		"offset_width":     ir.IRInt(req.OffsetWidth),
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}

// unmarshalRequest parses a stored request. Modes stored by an older engine
// that no longer exist are reported as errors.
func unmarshalRequest(data string) (matrix.Request, error) {
	var rec requestRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return matrix.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	mode, err := matrix.ParseMode(rec.Mode)
	if err != nil {
		return matrix.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	constant, err := strconv.ParseUint(rec.CoefficientBits, 10, 64)
	if err != nil {
		return matrix.Request{}, fmt.Errorf("unmarshal request: coefficient_bits: %w", err)
	}
	addend, err := strconv.ParseUint(rec.AddendBits, 10, 64)
	if err != nil {
		return matrix.Request{}, fmt.Errorf("unmarshal request: addend_bits: %w", err)
	}
	return matrix.Request{
		Name:        rec.Name,
		IntBits:     rec.IntBits,
		FracBits:    rec.FracBits,
		Mode:        mode,
		Constant:    constant,
		Addend:      addend,
		OffsetWidth: rec.OffsetWidth,
	}, nil
}

// marshalNetlist converts a netlist to its canonical JSON TEXT and
// fingerprint.
func marshalNetlist(nl *ir.Netlist) (canonical, fingerprint string, err error) {
	data, err := ir.MarshalCanonical(nl.Canonical())
	if err != nil {
		return "", "", fmt.Errorf("marshal netlist: %w", err)
	}
	return string(data), ir.FingerprintCanonical(data), nil
}
