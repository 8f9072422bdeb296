// Package harness runs conformance scenarios against the synthesizer.
//
// A scenario is a YAML file naming one multiplier block, either inline or
// by reference to a CUE design file, together with the structure it must
// synthesize to and how to check it numerically:
//
//	name: mul4
//	description: 4x4 multiply needs two reduction stages
//	request:
//	  int_bits: 4
//	verify:
//	  exhaustive: true
//	assertions:
//	  - type: cell_counts
//	    half_adders: 3
//	    full_adders: 3
//	  - type: targets
//	    targets: [3, 2]
//
// Each scenario synthesizes its block from scratch, so scenarios share no
// state and RunAll can run them concurrently. Results are deterministic,
// which makes them suitable for golden file comparison (see RunWithGolden).
package harness
