package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dadda/internal/harness"
	"github.com/roach88/dadda/internal/render"
	"github.com/roach88/dadda/internal/synth"
)

// SynthOptions holds flags for the synth command.
type SynthOptions struct {
	*RootOptions
	Name            string
	IntBits         int
	FracBits        int
	Mode            string
	Coefficient     float64
	CoefficientBits uint64
	AddendBits      uint64
	OffsetWidth     int
	Emit            string // render format
	Output          string // output file path
	Samples         int
	Seed            uint64
}

// SynthOutput is the JSON payload of the synth command.
type SynthOutput struct {
	*BlockResult
	Rendered string `json:"rendered,omitempty"`
	Output   string `json:"output,omitempty"`
}

// NewSynthCommand creates the synth command.
func NewSynthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SynthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize one multiplier block from flags",
		Long: `Synthesize a single multiplier block described by flags.

The netlist is checked against integer arithmetic (exhaustively when the
inputs are at most 20 bits wide, by seeded sampling otherwise) and then
rendered to stdout or --output.`,
		Example: `  dadda synth --int-bits 8
  dadda synth --int-bits 4 --frac-bits 4 --mode const_accumulate --coefficient 0.5 --emit verilog
  dadda synth --int-bits 3 --mode accumulate --offset-width 4 -o fma3.v --emit verilog`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Name, "name", synth.DefaultName, "module name")
	flags.IntVar(&opts.IntBits, "int-bits", 0, "integer bits per operand (required)")
	flags.IntVar(&opts.FracBits, "frac-bits", 0, "fractional bits per operand")
	flags.StringVar(&opts.Mode, "mode", "multiply", "multiply|const_accumulate|accumulate")
	flags.Float64Var(&opts.Coefficient, "coefficient", 0, "const_accumulate coefficient as a real number")
	flags.Uint64Var(&opts.CoefficientBits, "coefficient-bits", 0, "const_accumulate coefficient as its fixed-point encoding")
	flags.Uint64Var(&opts.AddendBits, "addend-bits", 0, "const_accumulate addend, aligned to the product's fractional bits")
	flags.IntVar(&opts.OffsetWidth, "offset-width", 0, "accumulate offset port width (default 2*frac-bits, or the operand width)")
	flags.StringVar(&opts.Emit, "emit", string(render.FormatSummary), "render format (verilog|summary|json)")
	flags.StringVarP(&opts.Output, "output", "o", "", "output file path")
	flags.IntVar(&opts.Samples, "samples", 1024, "sampled checks when exhaustive checking is too wide")
	flags.Uint64Var(&opts.Seed, "seed", 1, "sampler seed")
	_ = cmd.MarkFlagRequired("int-bits")

	return cmd
}

func runSynth(opts *SynthOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	format, err := render.ParseFormat(opts.Emit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	spec := harness.RequestSpec{
		IntBits:     opts.IntBits,
		FracBits:    opts.FracBits,
		Mode:        opts.Mode,
		AddendBits:  opts.AddendBits,
		OffsetWidth: opts.OffsetWidth,
	}
	if cmd.Flags().Changed("coefficient") {
		spec.Coefficient = &opts.Coefficient
	}
	if cmd.Flags().Changed("coefficient-bits") {
		spec.CoefficientBits = &opts.CoefficientBits
	}
	req, err := spec.ToRequest(opts.Name)
	if err != nil {
		return formatter.FailWith(ExitCommandError, err)
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	formatter.VerboseLog("Synthesizing %s (%s, %d.%d)", req.Name, req.Mode, req.IntBits, req.FracBits)
	res, err := sess.synthesize(cmd.Context(), req, verifyOptions{Samples: opts.Samples, Seed: opts.Seed})
	if closeErr := sess.close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	if res.Rejection != "" {
		return formatter.FailWith(ExitCommandError, res.Err)
	}
	if res.Failed > 0 {
		return formatter.Fail(ExitFailure, ErrCodeMismatch,
			fmt.Sprintf("%s: %d of %d checked assignments disagree with the reference", res.Name, res.Failed, res.Checked),
			res.Mismatches)
	}

	var buf bytes.Buffer
	if err := emitBlocks(&buf, format, []*BlockResult{res}); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	out := SynthOutput{BlockResult: res}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		out.Output = opts.Output
	} else {
		out.Rendered = buf.String()
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if opts.Output == "" {
		_, err := formatter.Writer.Write(buf.Bytes())
		return err
	}
	fmt.Fprintln(formatter.Writer, blockLine(res))
	fmt.Fprintf(formatter.Writer, "Wrote %s to %s\n", format, opts.Output)
	return nil
}
