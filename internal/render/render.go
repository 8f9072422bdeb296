package render

import (
	"fmt"
	"io"

	"github.com/roach88/dadda/internal/ir"
)

// Format selects a renderer.
type Format string

const (
	FormatVerilog Format = "verilog"
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatVerilog, FormatSummary, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown render format %q: must be verilog, summary, or json", s)
	}
}

// Render writes nl to w in the given format.
func Render(w io.Writer, nl *ir.Netlist, format Format) error {
	switch format {
	case FormatVerilog:
		return Verilog(w, nl, VerilogOptions{})
	case FormatSummary:
		return Summary(w, nl)
	case FormatJSON:
		return JSON(w, nl)
	default:
		return fmt.Errorf("unknown render format %q", format)
	}
}

// JSON writes the canonical JSON encoding of nl followed by a newline.
func JSON(w io.Writer, nl *ir.Netlist) error {
	data, err := ir.MarshalCanonical(nl.Canonical())
	if err != nil {
		return fmt.Errorf("marshal netlist: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
