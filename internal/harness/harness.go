package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/dadda/internal/adder"
	"github.com/roach88/dadda/internal/compiler"
	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/synth"
	"github.com/roach88/dadda/internal/testutil"
)

// DefaultSeed seeds sampled verification when a scenario gives no seed.
const DefaultSeed = 1

// Harness runs scenarios.
type Harness struct {
	synth  *synth.Synthesizer
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithSynthesizer runs scenarios through s, e.g. one that records metrics.
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(h *Harness) {
		h.synth = s
	}
}

// WithLogger sets the harness logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		synth:  synth.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Resolve the request, from the design file or the inline spec
// 2. Synthesize; a validation failure is a rejection, not an error
// 3. Run exhaustive or sampled verification and pinned cases
// 4. Evaluate assertions
//
// An error is returned only when the scenario cannot be executed at all,
// e.g. an unreadable design file. Failed checks are reported in the Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	result := NewResult(scenario.Name)

	req, err := resolveRequest(scenario)
	result.Request = req
	if result.Request.Name == "" {
		result.Request.Name = scenario.Name
	}
	if err == nil {
		result.Netlist, err = h.synth.Synthesize(req)
	}
	if err != nil {
		var me *matrix.Error
		if !errors.As(err, &me) {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Rejection = string(me.Code)
	}

	if result.Netlist != nil {
		fp, err := ir.Fingerprint(result.Netlist)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Fingerprint = fp
		h.verify(scenario, req, result)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"fingerprint", result.Fingerprint,
		"rejection", result.Rejection,
		"checked", result.Checked(),
	)
	return result, nil
}

func (h *Harness) verify(scenario *Scenario, req matrix.Request, result *Result) {
	nl := result.Netlist

	var report *synth.Report
	switch {
	case scenario.Verify.Exhaustive:
		r, err := synth.Exhaustive(req, nl)
		if err != nil {
			result.AddError(err.Error())
			return
		}
		report = r
	case scenario.Verify.Samples > 0:
		seed := scenario.Verify.Seed
		if seed == 0 {
			seed = DefaultSeed
		}
		report = synth.Sample(req, nl, testutil.NewSampler(seed, nl.Ports), scenario.Verify.Samples)
	}

	if len(scenario.Cases) > 0 {
		ops := make([]ir.Operands, len(scenario.Cases))
		for i, c := range scenario.Cases {
			ops[i] = ir.Operands{A: c.A, B: c.B, Offset: c.Offset}
			if got := adder.Evaluate(nl, ops[i]).Product; got != c.Product {
				result.AddError(fmt.Sprintf("cases[%d]: a=%d b=%d offset=%d: got %d, want %d",
					i, c.A, c.B, c.Offset, got, c.Product))
			}
		}
		pinned := synth.Sample(req, nl, testutil.NewFixedOperands(ops), len(ops))
		if report == nil {
			report = pinned
		} else {
			report.Checked += pinned.Checked
			report.Failed += pinned.Failed
			report.Mismatches = append(report.Mismatches, pinned.Mismatches...)
		}
	}

	result.Verification = report
	h.synth.ObserveReport(nl, report)
	if report == nil {
		return
	}
	for _, mm := range report.Mismatches {
		result.AddError("reference mismatch: " + mm.String())
	}
	if hidden := report.Failed - len(report.Mismatches); hidden > 0 {
		result.AddError(fmt.Sprintf("%d more reference mismatches", hidden))
	}
}

// resolveRequest builds the scenario's request from its design file or
// inline spec.
func resolveRequest(s *Scenario) (matrix.Request, error) {
	if s.Request != nil {
		return s.Request.ToRequest(s.Name)
	}

	src, err := os.ReadFile(s.Design)
	if err != nil {
		return matrix.Request{}, fmt.Errorf("failed to read design: %w", err)
	}
	v := cuecontext.New().CompileBytes(src, cue.Filename(s.Design))
	if err := v.Err(); err != nil {
		return matrix.Request{}, fmt.Errorf("failed to compile design: %w", err)
	}

	block := s.Block
	if block == "" {
		block = s.Name
	}
	bv := v.LookupPath(cue.MakePath(cue.Str("multiplier"), cue.Str(block)))
	if !bv.Exists() {
		return matrix.Request{}, fmt.Errorf("design %s has no multiplier block %q", s.Design, block)
	}
	b, err := compiler.CompileMultiplier(bv)
	if err != nil {
		return matrix.Request{}, err
	}
	return b.Request, nil
}

// RunAll executes scenarios concurrently, at most limit at a time (no limit
// if limit <= 0). Results are returned in scenario order. A scenario that
// cannot be executed yields a failed result; only cancellation of ctx
// aborts the run.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, s := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := h.Run(s)
			if err != nil {
				r = NewResult(s.Name)
				r.AddError(fmt.Sprintf("execution failed: %v", err))
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
