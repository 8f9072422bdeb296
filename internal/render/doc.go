// Package render turns a Structural IR netlist into text: a structural
// Verilog module, a human-readable summary, or canonical JSON.
//
// Renderers only read the netlist. Cells are emitted in list order and
// named by their list position, so the output is as deterministic as the
// netlist itself.
package render
