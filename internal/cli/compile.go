package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dadda/internal/compiler"
	"github.com/roach88/dadda/internal/render"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Emit    string // render format
	Output  string // output file path
	Samples int
	Seed    uint64
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Blocks []*BlockResult `json:"blocks"`
	Output string         `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <design>",
		Short: "Compile a CUE design into netlists",
		Long: `Compile every multiplier block of a CUE design.

<design> is a .cue file or a directory holding one CUE package. Blocks are
validated, synthesized, checked against integer arithmetic, and optionally
rendered into a single output file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Emit, "emit", string(render.FormatVerilog), "render format (verilog|summary|json)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().IntVar(&opts.Samples, "samples", 256, "sampled checks per block when exhaustive checking is too wide")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "sampler seed")

	return cmd
}

func runCompile(opts *CompileOptions, design string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	format, err := render.ParseFormat(opts.Emit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadDesign(design, LoadModeCollectAll)
	if loadResult == nil {
		return formatter.FailWith(ExitCommandError, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, design)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	if lint := compiler.Validate(loadResult.Blocks); len(lint) > 0 {
		return outputValidationErrors(formatter, lint)
	}

	sess, err := openSession(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	result := &CompilationResult{}
	failed := 0
	for _, block := range loadResult.Blocks {
		formatter.VerboseLog("Synthesizing block: %s", block.Request.Name)
		res, err := sess.synthesize(cmd.Context(), block.Request, verifyOptions{Samples: opts.Samples, Seed: opts.Seed})
		if err != nil {
			_ = sess.close()
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		if res.Rejection != "" || res.Failed > 0 {
			failed++
		}
		result.Blocks = append(result.Blocks, res)
	}
	if err := sess.close(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := writeBlocks(opts.Output, format, result.Blocks); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		result.Output = opts.Output
	}

	if err := outputCompileResult(formatter, result, format); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d block(s) failed the reference check", failed))
	}
	return nil
}

func writeBlocks(path string, format render.Format, blocks []*BlockResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := emitBlocks(f, format, blocks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// outputCompileResult outputs compiled blocks.
func outputCompileResult(formatter *OutputFormatter, result *CompilationResult, format render.Format) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Compiled %d block(s)\n\n", len(result.Blocks))
	for _, b := range result.Blocks {
		fmt.Fprintf(formatter.Writer, "  %s\n", blockLine(b))
		for _, mm := range b.Mismatches {
			fmt.Fprintf(formatter.Writer, "      %s\n", mm)
		}
	}
	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote %s to %s\n", format, result.Output)
	}
	return nil
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = CLIError{
				Code:    MapErrorCode(err),
				Message: errorMessage(err),
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		if err := formatter.respond(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", MapErrorCode(err), errorMessage(err))
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}
