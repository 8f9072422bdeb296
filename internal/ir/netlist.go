package ir

// HalfAdder is a two-input adder cell. Its outputs are HalfSum(i) and
// HalfCarry(i), where i is the cell's position in Netlist.HalfAdders.
type HalfAdder[T any] struct {
	A Bit[T]
	B Bit[T]
}

// FullAdder is a three-input adder cell. C is wired to the cell's carry-in.
type FullAdder[T any] struct {
	A Bit[T]
	B Bit[T]
	C Bit[T]
}

// Rows is the reduced matrix in two-row form. Top[k] and Bottom[k] both
// carry weight 2^k; both slices are exactly OutputWidth long.
type Rows[T any] struct {
	Top    []Bit[T]
	Bottom []Bit[T]
}

// Ports describes the widths of the synthesized block's ports.
// B is zero when a constant coefficient replaces the second operand, and
// Offset is zero unless the block has a runtime addend port.
type Ports struct {
	A       int `json:"a"`
	B       int `json:"b"`
	Offset  int `json:"offset"`
	Product int `json:"product"`
}

// Netlist is the Structural IR handed to emitters: the ordered cell lists
// and the final two-row description.
type Netlist struct {
	Name       string                `json:"name"`
	Mode       string                `json:"mode"`
	Ports      Ports                 `json:"ports"`
	Targets    []int                 `json:"targets"`
	HalfAdders []HalfAdder[InputRef] `json:"half_adders"`
	FullAdders []FullAdder[InputRef] `json:"full_adders"`
	Rows       Rows[InputRef]        `json:"rows"`
}

// OutputWidth is the number of product bits.
func (n *Netlist) OutputWidth() int {
	return n.Ports.Product
}

// CellCount returns the number of half and full adders.
func (n *Netlist) CellCount() (half, full int) {
	return len(n.HalfAdders), len(n.FullAdders)
}

// Canonical converts the netlist to the IR value tree used for canonical
// JSON and fingerprinting.
//
// Each bit source is encoded as an array whose first element names the
// variant: ["pp",a,b], ["operand",a], ["offset",k], ["literal",v],
// ["constant",v], ["half_sum",i], ["half_carry",i], ["full_sum",i],
// ["full_carry",i].
func (n *Netlist) Canonical() IRObject {
	half := make(IRArray, len(n.HalfAdders))
	for i, ha := range n.HalfAdders {
		half[i] = IRObject{
			"a": canonicalBit(ha.A),
			"b": canonicalBit(ha.B),
		}
	}
	full := make(IRArray, len(n.FullAdders))
	for i, fa := range n.FullAdders {
		full[i] = IRObject{
			"a": canonicalBit(fa.A),
			"b": canonicalBit(fa.B),
			"c": canonicalBit(fa.C),
		}
	}
	targets := make(IRArray, len(n.Targets))
	for i, t := range n.Targets {
		targets[i] = IRInt(t)
	}

	return IRObject{
		"ir_version": IRString(IRVersion),
		"name":       IRString(n.Name),
		"mode":       IRString(n.Mode),
		"ports": IRObject{
			"a":       IRInt(n.Ports.A),
			"b":       IRInt(n.Ports.B),
			"offset":  IRInt(n.Ports.Offset),
			"product": IRInt(n.Ports.Product),
		},
		"targets":     targets,
		"half_adders": half,
		"full_adders": full,
		"rows": IRObject{
			"top":    canonicalRow(n.Rows.Top),
			"bottom": canonicalRow(n.Rows.Bottom),
		},
	}
}

func canonicalRow(row []Bit[InputRef]) IRArray {
	out := make(IRArray, len(row))
	for i, b := range row {
		out[i] = canonicalBit(b)
	}
	return out
}

func canonicalBit(b Bit[InputRef]) IRArray {
	switch b.Kind {
	case BitInput:
		in := b.Input
		switch in.Kind {
		case InputPartialProduct:
			return IRArray{IRString(in.Kind.String()), IRInt(in.A), IRInt(in.B)}
		case InputConstant:
			return IRArray{IRString(in.Kind.String()), IRBool(in.Value)}
		default:
			return IRArray{IRString(in.Kind.String()), IRInt(in.A)}
		}
	case BitConstant:
		return IRArray{IRString(b.Kind.String()), IRBool(b.Value)}
	default:
		return IRArray{IRString(b.Kind.String()), IRInt(b.Cell)}
	}
}
