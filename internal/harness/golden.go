package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dadda/internal/ir"
)

// Snapshot converts a result to the canonical IR value stored in golden
// files. Rejected results record only the rejection code.
func Snapshot(r *Result) ir.IRObject {
	obj := ir.IRObject{
		"scenario_name": ir.IRString(r.Scenario),
	}
	if r.Netlist == nil {
		obj["rejection"] = ir.IRString(r.Rejection)
		return obj
	}

	half, full := r.Netlist.CellCount()
	targets := make(ir.IRArray, len(r.Netlist.Targets))
	for i, t := range r.Netlist.Targets {
		targets[i] = ir.IRInt(t)
	}
	obj["fingerprint"] = ir.IRString(r.Fingerprint)
	obj["half_adders"] = ir.IRInt(half)
	obj["full_adders"] = ir.IRInt(full)
	obj["targets"] = targets
	obj["checked"] = ir.IRInt(r.Checked())
	return obj
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
