// Package synth turns a multiplier request into its Structural IR netlist.
//
// Synthesis runs the matrix builder, the Dadda reduction engine and the
// row splitter in sequence. The only way it can fail is request
// validation, which happens before anything is allocated.
package synth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/dadda/internal/adder"
	"github.com/roach88/dadda/internal/dadda"
	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
	"github.com/roach88/dadda/internal/metrics"
)

// DefaultName is used for requests that do not name their block.
const DefaultName = "multiplier"

// Synthesizer runs synthesis requests. It holds no per-request state, so a
// single Synthesizer may serve concurrent callers.
type Synthesizer struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMetrics records every synthesis in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synthesizer) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for duration metrics.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the netlist for req.
func (s *Synthesizer) Synthesize(req matrix.Request) (*ir.Netlist, error) {
	start := s.now()

	m, err := matrix.Build(req)
	if err != nil {
		s.reject(req, err)
		return nil, err
	}

	res := dadda.Reduce(m.Columns)

	name := req.Name
	if name == "" {
		name = DefaultName
	}
	nl := &ir.Netlist{
		Name:       name,
		Mode:       req.Mode.String(),
		Ports:      m.Ports(),
		Targets:    res.Targets,
		HalfAdders: res.HalfAdders,
		FullAdders: res.FullAdders,
		Rows:       adder.Split(res.Columns),
	}

	elapsed := s.now().Sub(start)
	slog.Info("block synthesized",
		"name", nl.Name,
		"mode", nl.Mode,
		"width", m.Width(),
		"max_height", m.MaxHeight(),
		"half_adders", len(nl.HalfAdders),
		"full_adders", len(nl.FullAdders),
		"targets", nl.Targets,
	)
	if s.metrics != nil {
		s.metrics.ObserveSynthesis(nl.Mode, len(nl.HalfAdders), len(nl.FullAdders), elapsed)
	}
	return nl, nil
}

// ObserveReport records the verification report of nl. A nil report is
// ignored.
func (s *Synthesizer) ObserveReport(nl *ir.Netlist, r *Report) {
	if r == nil {
		return
	}
	if !r.OK() {
		slog.Warn("netlist disagrees with reference arithmetic",
			"name", nl.Name,
			"checked", r.Checked,
			"failed", r.Failed,
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveVerification(r.Checked, r.Failed)
	}
}

func (s *Synthesizer) reject(req matrix.Request, err error) {
	slog.Debug("synthesis request rejected", "name", req.Name, "error", err)
	if s.metrics == nil {
		return
	}
	code := "UNKNOWN"
	var me *matrix.Error
	if errors.As(err, &me) {
		code = string(me.Code)
	}
	s.metrics.ObserveRejection(code)
}

// Synthesize builds the netlist for req with a default Synthesizer.
func Synthesize(req matrix.Request) (*ir.Netlist, error) {
	return New().Synthesize(req)
}
