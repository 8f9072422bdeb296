package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dadda/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	if a.Type == AssertRejected {
		return assertRejected(result, a)
	}
	if result.Netlist == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a synthesized netlist",
			Actual:   "request rejected with " + result.Rejection,
		}
	}

	switch a.Type {
	case AssertCellCounts:
		return assertCellCounts(result.Netlist, a)
	case AssertTargets:
		return assertTargets(result.Netlist, a)
	case AssertPorts:
		return assertPorts(result.Netlist, a)
	case AssertFingerprint:
		if result.Fingerprint != a.Fingerprint {
			return &AssertionError{Type: a.Type, Expected: a.Fingerprint, Actual: result.Fingerprint}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertRejected(result *Result, a Assertion) error {
	if result.Rejection == a.Code {
		return nil
	}
	actual := "synthesized successfully"
	if result.Rejection != "" {
		actual = "rejected with " + result.Rejection
	}
	return &AssertionError{Type: a.Type, Expected: "rejected with " + a.Code, Actual: actual}
}

func assertCellCounts(nl *ir.Netlist, a Assertion) error {
	half, full := nl.CellCount()
	if a.HalfAdders != nil && *a.HalfAdders != half || a.FullAdders != nil && *a.FullAdders != full {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("half_adders=%s full_adders=%s", optInt(a.HalfAdders), optInt(a.FullAdders)),
			Actual:   fmt.Sprintf("half_adders=%d full_adders=%d", half, full),
		}
	}
	return nil
}

func assertTargets(nl *ir.Netlist, a Assertion) error {
	if !slices.Equal(nl.Targets, a.Targets) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprint(a.Targets),
			Actual:   fmt.Sprint(nl.Targets),
		}
	}
	return nil
}

func assertPorts(nl *ir.Netlist, a Assertion) error {
	want := ir.Ports{A: a.Ports.A, B: a.Ports.B, Offset: a.Ports.Offset, Product: a.Ports.Product}
	if nl.Ports != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%+v", want),
			Actual:   fmt.Sprintf("%+v", nl.Ports),
		}
	}
	return nil
}

func optInt(p *int) string {
	if p == nil {
		return "any"
	}
	return fmt.Sprint(*p)
}
