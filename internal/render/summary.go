package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/dadda/internal/ir"
)

// Summary writes a human-readable description of nl: ports, targets, every
// cell with its inputs, and the two reduced rows from the most significant
// column down.
func Summary(w io.Writer, nl *ir.Netlist) error {
	var sb strings.Builder
	half, full := nl.CellCount()

	fmt.Fprintf(&sb, "block %s (%s)\n", nl.Name, nl.Mode)
	fmt.Fprintf(&sb, "ports: a=%d b=%d offset=%d product=%d\n",
		nl.Ports.A, nl.Ports.B, nl.Ports.Offset, nl.Ports.Product)
	fmt.Fprintf(&sb, "targets: %s\n", joinInts(nl.Targets))
	fmt.Fprintf(&sb, "cells: %d half adders, %d full adders\n", half, full)

	for i, ha := range nl.HalfAdders {
		fmt.Fprintf(&sb, "  ha[%d] <- %s, %s\n", i, ha.A, ha.B)
	}
	for i, fa := range nl.FullAdders {
		fmt.Fprintf(&sb, "  fa[%d] <- %s, %s, %s\n", i, fa.A, fa.B, fa.C)
	}

	fmt.Fprintf(&sb, "top:    %s\n", row(nl.Rows.Top))
	fmt.Fprintf(&sb, "bottom: %s\n", row(nl.Rows.Bottom))

	_, err := io.WriteString(w, sb.String())
	return err
}

func row(bits []ir.Bit[ir.InputRef]) string {
	names := lo.Map(bits, func(b ir.Bit[ir.InputRef], _ int) string {
		return b.String()
	})
	slices.Reverse(names)
	return strings.Join(names, " | ")
}
