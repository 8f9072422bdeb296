package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/synth"
)

var blocks = map[string]matrix.Request{
	"mul2": {Name: "mul2", IntBits: 2},
	"mul3": {Name: "mul3", IntBits: 3},
	"mul4": {Name: "mul4", IntBits: 4},
	"cma":  {Name: "cma", IntBits: 2, FracBits: 1, Mode: matrix.ConstAccumulate, Constant: 0b101, Addend: 0b10},
	"fma":  {Name: "fma", IntBits: 2, Mode: matrix.Accumulate, OffsetWidth: 3},
}

func synthesize(t *testing.T, name string) *ir.Netlist {
	t.Helper()
	req, ok := blocks[name]
	require.True(t, ok, "unknown block %s", name)
	nl, err := synth.Synthesize(req)
	require.NoError(t, err)
	return nl
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestVerilogGolden(t *testing.T) {
	g := newGoldie(t)
	for _, name := range []string{"mul2", "mul4", "cma", "fma"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Verilog(&buf, synthesize(t, name), VerilogOptions{}))
			g.Assert(t, "verilog_"+name, buf.Bytes())
		})
	}
}

func TestVerilogWithoutPrimitives(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Verilog(&buf, synthesize(t, "mul4"), VerilogOptions{OmitPrimitives: true}))

	newGoldie(t).Assert(t, "verilog_mul4_no_primitives", buf.Bytes())
	assert.NotContains(t, buf.String(), "module half_adder")
}

func TestSummaryGolden(t *testing.T) {
	g := newGoldie(t)
	for _, name := range []string{"mul4", "fma", "cma"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Summary(&buf, synthesize(t, name)))
			g.Assert(t, "summary_"+name, buf.Bytes())
		})
	}
}

func TestJSONGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, synthesize(t, "mul3")))
	newGoldie(t).Assert(t, "json_mul3", buf.Bytes())
}

func TestRenderDispatch(t *testing.T) {
	nl := synthesize(t, "mul2")

	for _, f := range []Format{FormatVerilog, FormatSummary, FormatJSON} {
		var direct, dispatched bytes.Buffer
		require.NoError(t, Render(&dispatched, nl, f))
		switch f {
		case FormatVerilog:
			require.NoError(t, Verilog(&direct, nl, VerilogOptions{}))
		case FormatSummary:
			require.NoError(t, Summary(&direct, nl))
		case FormatJSON:
			require.NoError(t, JSON(&direct, nl))
		}
		assert.Equal(t, direct.String(), dispatched.String(), "format %s", f)
	}

	assert.Error(t, Render(&bytes.Buffer{}, nl, Format("vhdl")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("summary")
	require.NoError(t, err)
	assert.Equal(t, FormatSummary, f)

	_, err = ParseFormat("vhdl")
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"mul4":      "mul4",
		"Fma_Q4_4":  "Fma_Q4_4",
		"4x4":       "_4x4",
		"mul-4.v2":  "mul_4_v2",
		"":          "multiplier",
		"caf\u00e9": "caf_",
		"module":    "module_",
		"wire":      "wire_",
		"assign":    "assign_",
		"Module":    "Module",
		"module_":   "module_",
	}
	for in, want := range tests {
		assert.Equal(t, want, Identifier(in), "Identifier(%q)", in)
	}
}

func TestVerilogEscapesKeywordModuleName(t *testing.T) {
	nl, err := synth.Synthesize(matrix.Request{Name: "module", IntBits: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Verilog(&buf, nl, VerilogOptions{OmitPrimitives: true}))
	assert.Contains(t, buf.String(), "module module_ (")
	assert.NotContains(t, buf.String(), "module module (")
}

func TestVerilogUsesOnlyDeclaredCells(t *testing.T) {
	var buf bytes.Buffer
	nl, err := synth.Synthesize(matrix.Request{Name: "wide", IntBits: 8})
	require.NoError(t, err)
	require.NoError(t, Verilog(&buf, nl, VerilogOptions{OmitPrimitives: true}))

	out := buf.String()
	assert.Contains(t, out, "wire [13:0] ha_sum;")
	assert.Contains(t, out, "wire [33:0] fa_cout;")
	assert.Contains(t, out, "full_adder fa33 (")
	assert.NotContains(t, out, "fa34")
}
