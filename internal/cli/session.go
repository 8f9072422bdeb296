package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/metrics"
	"github.com/roach88/dadda/internal/render"
	"github.com/roach88/dadda/internal/store"
	"github.com/roach88/dadda/internal/synth"
	"github.com/roach88/dadda/internal/testutil"
)

// session holds what one command invocation shares: a synthesizer that
// records into a fresh metrics registry and, when --db is set, the
// synthesis log.
type session struct {
	opts    *RootOptions
	metrics *metrics.Metrics
	synth   *synth.Synthesizer
	store   *store.Store
}

func openSession(opts *RootOptions) (*session, error) {
	m := metrics.New()
	s := &session{
		opts:    opts,
		metrics: m,
		synth:   synth.New(synth.WithMetrics(m)),
	}
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

// close exports the metrics textfile, if configured, and closes the log.
func (s *session) close() error {
	var errs []error
	if s.opts.MetricsTextfile != "" {
		if err := s.metrics.WriteTextfile(s.opts.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// verifyOptions bounds the reference check run after synthesis. Blocks
// narrow enough are checked exhaustively instead.
type verifyOptions struct {
	Samples int
	Seed    uint64
}

// BlockResult describes one synthesized or rejected block.
type BlockResult struct {
	Name        string   `json:"name"`
	Mode        string   `json:"mode"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	HalfAdders  int      `json:"half_adders"`
	FullAdders  int      `json:"full_adders"`
	Targets     []int    `json:"targets"`
	Ports       ir.Ports `json:"ports"`
	Checked     int      `json:"checked"`
	Failed      int      `json:"failed"`
	Mismatches  []string `json:"mismatches,omitempty"`
	Rejection   string   `json:"rejection,omitempty"`
	RunID       string   `json:"run_id,omitempty"`

	// Err is the validation error of a rejected block.
	Err error `json:"-"`

	netlist *ir.Netlist
}

// synthesize runs req through synthesis and the reference check and
// records the run. A rejected request is reported in the result, not as
// an error; errors come from the synthesis log only.
func (s *session) synthesize(ctx context.Context, req matrix.Request, v verifyOptions) (*BlockResult, error) {
	if req.Name == "" {
		req.Name = synth.DefaultName
	}
	res := &BlockResult{Name: req.Name, Mode: req.Mode.String(), Targets: []int{}}

	nl, err := s.synth.Synthesize(req)
	if err != nil {
		var me *matrix.Error
		if !errors.As(err, &me) {
			return nil, err
		}
		res.Rejection = string(me.Code)
		res.Err = err
		return res, s.record(ctx, res, store.Run{Request: req, Rejection: res.Rejection})
	}

	report := synth.Verify(req, nl, testutil.NewSampler(v.Seed, nl.Ports), v.Samples)
	s.synth.ObserveReport(nl, report)
	res.netlist = nl
	res.Fingerprint = ir.MustFingerprint(nl)
	res.HalfAdders, res.FullAdders = nl.CellCount()
	res.Targets = append(res.Targets, nl.Targets...)
	res.Ports = nl.Ports
	res.Checked = report.Checked
	res.Failed = report.Failed
	for _, mm := range report.Mismatches {
		res.Mismatches = append(res.Mismatches, mm.String())
	}

	if s.store != nil {
		if _, _, err := s.store.WriteNetlist(ctx, nl); err != nil {
			return nil, fmt.Errorf("synthesis log: %w", err)
		}
	}
	return res, s.record(ctx, res, store.Run{
		Request:     req,
		Fingerprint: res.Fingerprint,
		Checked:     res.Checked,
		Failed:      res.Failed,
	})
}

func (s *session) record(ctx context.Context, res *BlockResult, run store.Run) error {
	if s.store == nil {
		return nil
	}
	run, err := s.store.RecordRun(ctx, run)
	if err != nil {
		return fmt.Errorf("synthesis log: %w", err)
	}
	res.RunID = run.ID
	return nil
}

// emitBlocks renders netlists one after another. Verilog output defines
// the cell primitives once, ahead of the first module.
func emitBlocks(w io.Writer, format render.Format, blocks []*BlockResult) error {
	first := true
	for _, b := range blocks {
		if b.netlist == nil {
			continue
		}
		if !first && format != render.FormatJSON {
			fmt.Fprintln(w)
		}
		var err error
		if format == render.FormatVerilog {
			err = render.Verilog(w, b.netlist, render.VerilogOptions{OmitPrimitives: !first})
		} else {
			err = render.Render(w, b.netlist, format)
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", b.Name, err)
		}
		first = false
	}
	return nil
}

// blockLine is the one-line text summary of a block.
func blockLine(b *BlockResult) string {
	if b.Rejection != "" {
		return fmt.Sprintf("\u2717 %s: rejected: %v", b.Name, b.Err)
	}
	line := fmt.Sprintf("%s: %s, %d-bit operands, %d half adders, %d full adders, checked %d",
		b.Name, b.Mode, b.Ports.A, b.HalfAdders, b.FullAdders, b.Checked)
	if b.Failed > 0 {
		return fmt.Sprintf("\u2717 %s, %d failed", line, b.Failed)
	}
	return fmt.Sprintf("\u2713 %s, %s", line, b.Fingerprint[:12])
}
