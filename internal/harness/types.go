package harness

import (
	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/synth"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario's name.
	Scenario string `json:"scenario"`

	// Pass indicates overall success.
	Pass bool `json:"pass"`

	// Errors contains assertion and verification failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Request is the resolved block request. Its name falls back to the
	// scenario's when the request could not be resolved.
	Request matrix.Request `json:"-"`

	// Netlist is the synthesized block; nil when the request was rejected.
	Netlist *ir.Netlist `json:"-"`

	// Fingerprint is the netlist's content address.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Rejection is the validation error code when synthesis was rejected.
	Rejection string `json:"rejection,omitempty"`

	// Verification summarizes the numeric checks that ran.
	Verification *synth.Report `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Checked returns the number of operand assignments verified.
func (r *Result) Checked() int {
	if r.Verification == nil {
		return 0
	}
	return r.Verification.Checked
}
