package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/dadda/internal/ir"
)

// VerilogOptions tunes Verilog output.
type VerilogOptions struct {
	// OmitPrimitives leaves out the half_adder and full_adder module
	// definitions, for designs that link their own cell library.
	OmitPrimitives bool
}

// Verilog writes nl as a structural Verilog module: one half_adder or
// full_adder instance per cell in list order, the two reduced rows as
// product_top and product_bottom, and their sum as product.
func Verilog(w io.Writer, nl *ir.Netlist, opts VerilogOptions) error {
	e := &verilogEmitter{}
	e.emitModule(nl)
	if !opts.OmitPrimitives {
		e.line("")
		e.emitPrimitives()
	}
	_, err := w.Write(e.buf.Bytes())
	return err
}

type verilogEmitter struct {
	buf    bytes.Buffer
	indent int
}

func (e *verilogEmitter) line(format string, args ...any) {
	if format == "" {
		e.buf.WriteByte('\n')
		return
	}
	e.buf.WriteString(strings.Repeat("    ", e.indent))
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *verilogEmitter) emitModule(nl *ir.Netlist) {
	half, full := nl.CellCount()
	width := nl.OutputWidth()

	e.line("// Generated by dadda. Do not edit.")
	e.line("// mode: %s, half adders: %d, full adders: %d, targets: %s",
		nl.Mode, half, full, joinInts(nl.Targets))
	e.line("module %s (", Identifier(nl.Name))
	e.indent++
	ports := []string{fmt.Sprintf("input  wire %s a", bitRange(nl.Ports.A))}
	if nl.Ports.B > 0 {
		ports = append(ports, fmt.Sprintf("input  wire %s b", bitRange(nl.Ports.B)))
	}
	if nl.Ports.Offset > 0 {
		ports = append(ports, fmt.Sprintf("input  wire %s offset", bitRange(nl.Ports.Offset)))
	}
	ports = append(ports, fmt.Sprintf("output wire %s product", bitRange(width)))
	for i, p := range ports {
		if i < len(ports)-1 {
			p += ","
		}
		e.line("%s", p)
	}
	e.indent--
	e.line(");")
	e.indent++

	e.line("")
	if half > 0 {
		e.line("wire %s ha_sum;", bitRange(half))
		e.line("wire %s ha_carry;", bitRange(half))
	}
	if full > 0 {
		e.line("wire %s fa_sum;", bitRange(full))
		e.line("wire %s fa_cout;", bitRange(full))
	}
	e.line("wire %s product_top;", bitRange(width))
	e.line("wire %s product_bottom;", bitRange(width))

	if half > 0 {
		e.line("")
		for i, ha := range nl.HalfAdders {
			e.line("half_adder ha%d (.a(%s), .b(%s), .sum(ha_sum[%d]), .carry(ha_carry[%d]));",
				i, expr(ha.A), expr(ha.B), i, i)
		}
	}
	if full > 0 {
		e.line("")
		for i, fa := range nl.FullAdders {
			e.line("full_adder fa%d (.a(%s), .b(%s), .cin(%s), .sum(fa_sum[%d]), .cout(fa_cout[%d]));",
				i, expr(fa.A), expr(fa.B), expr(fa.C), i, i)
		}
	}

	e.line("")
	for k, b := range nl.Rows.Top {
		e.line("assign product_top[%d] = %s;", k, expr(b))
	}
	e.line("")
	for k, b := range nl.Rows.Bottom {
		e.line("assign product_bottom[%d] = %s;", k, expr(b))
	}

	e.line("")
	e.line("assign product = product_top + product_bottom;")
	e.indent--
	e.line("endmodule")
}

func (e *verilogEmitter) emitPrimitives() {
	e.line("module half_adder (")
	e.indent++
	e.line("input  wire a,")
	e.line("input  wire b,")
	e.line("output wire sum,")
	e.line("output wire carry")
	e.indent--
	e.line(");")
	e.indent++
	e.line("assign sum = a ^ b;")
	e.line("assign carry = a & b;")
	e.indent--
	e.line("endmodule")
	e.line("")
	e.line("module full_adder (")
	e.indent++
	e.line("input  wire a,")
	e.line("input  wire b,")
	e.line("input  wire cin,")
	e.line("output wire sum,")
	e.line("output wire cout")
	e.indent--
	e.line(");")
	e.indent++
	e.line("assign sum = a ^ b ^ cin;")
	e.line("assign cout = (a & b) | (a & cin) | (b & cin);")
	e.indent--
	e.line("endmodule")
}

// expr renders a bit source as a Verilog expression.
func expr(b ir.Bit[ir.InputRef]) string {
	switch b.Kind {
	case ir.BitInput:
		in := b.Input
		switch in.Kind {
		case ir.InputPartialProduct:
			return fmt.Sprintf("a[%d] & b[%d]", in.A, in.B)
		case ir.InputOperand:
			return fmt.Sprintf("a[%d]", in.A)
		case ir.InputOffset:
			return fmt.Sprintf("offset[%d]", in.A)
		default:
			return literal(in.Value)
		}
	case ir.BitConstant:
		return literal(b.Value)
	case ir.BitHalfSum:
		return fmt.Sprintf("ha_sum[%d]", b.Cell)
	case ir.BitHalfCarry:
		return fmt.Sprintf("ha_carry[%d]", b.Cell)
	case ir.BitFullSum:
		return fmt.Sprintf("fa_sum[%d]", b.Cell)
	default:
		return fmt.Sprintf("fa_cout[%d]", b.Cell)
	}
}

func literal(v bool) string {
	if v {
		return "1'b1"
	}
	return "1'b0"
}

func bitRange(w int) string {
	return fmt.Sprintf("[%d:0]", w-1)
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(xs, func(x int, _ int) string {
		return fmt.Sprint(x)
	}), " ")
}

// Identifier maps a block name to a legal Verilog identifier: characters
// outside [A-Za-z0-9_] become underscores, a leading digit gets an
// underscore prefix, and a reserved word gets an underscore suffix. An
// empty name becomes "multiplier".
func Identifier(name string) string {
	if name == "" {
		return "multiplier"
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if keywords[sb.String()] {
		sb.WriteByte('_')
	}
	return sb.String()
}

// keywords are the IEEE 1364-2005 reserved words.
var keywords = lo.SliceToMap(strings.Fields(`
	always and assign automatic begin buf bufif0 bufif1 case casex casez
	cell cmos config deassign default defparam design disable edge else end
	endcase endconfig endfunction endgenerate endmodule endprimitive
	endspecify endtable endtask event for force forever fork function
	generate genvar highz0 highz1 if ifnone incdir include initial inout
	input instance integer join large liblist library localparam
	macromodule medium module nand negedge nmos nor noshowcancelled not
	notif0 notif1 or output parameter pmos posedge primitive pull0 pull1
	pulldown pullup pulsestyle_ondetect pulsestyle_onevent rcmos real
	realtime reg release repeat rnmos rpmos rtran rtranif0 rtranif1
	scalared showcancelled signed small specify specparam strong0 strong1
	supply0 supply1 table task time tran tranif0 tranif1 tri tri0 tri1
	triand trior trireg unsigned use uwire vectored wait wand weak0 weak1
	while wire wor xnor xor`), func(w string) (string, bool) {
	return w, true
})
