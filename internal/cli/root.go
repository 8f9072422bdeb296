package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands. Every field except
// ConfigFile may also come from the config file or a DADDA_ environment
// variable; flags win.
type RootOptions struct {
	Verbose         bool
	Format          string // "json" | "text"
	ConfigFile      string
	DB              string // synthesis log; empty disables recording
	MetricsTextfile string // node-exporter textfile; empty disables export
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EnvPrefix prefixes environment variables that override config keys,
// e.g. DADDA_DB.
const EnvPrefix = "dadda"

// NewRootCommand creates the root command for the dadda CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dadda",
		Short: "Dadda multiplier synthesis",
		Long: `Synthesize combinational multipliers as Dadda reduction trees.

Blocks are declared in CUE designs or on the command line, reduced to
half and full adder cells, checked against integer arithmetic, and
rendered as structural Verilog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cmd, opts); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: loading config: %v\n", err)
				return WrapExitError(ExitCommandError, "loading config", err)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", msg)
				return NewExitError(ExitCommandError, msg)
			}
			installLogger(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default is $HOME/.dadda/config.yaml)")
	flags.StringVar(&opts.DB, "db", "", "synthesis log database path")
	flags.StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this textfile")

	// Add subcommands
	cmd.AddCommand(NewSynthCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// configKeys maps config keys to the persistent flags they back.
var configKeys = map[string]string{
	"verbose":          "verbose",
	"format":           "format",
	"db":               "db",
	"metrics_textfile": "metrics-textfile",
}

// initConfig layers the config file and DADDA_ environment variables under
// the command-line flags. A missing default config file is not an error;
// a missing --config file is.
func initConfig(cmd *cobra.Command, opts *RootOptions) error {
	v := viper.New()

	configFile := opts.ConfigFile
	if configFile == "" {
		home, err := homedir.Dir()
		if err == nil {
			configFile = filepath.Join(home, ".dadda", "config.yaml")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for key, flag := range configKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return err
		}
	}

	if configFile != "" {
		_, statErr := os.Stat(configFile)
		switch {
		case statErr == nil:
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading %s: %w", configFile, err)
			}
		case opts.ConfigFile != "":
			return fmt.Errorf("config file %s: %w", configFile, statErr)
		}
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.DB = v.GetString("db")
	opts.MetricsTextfile = v.GetString("metrics_textfile")
	return nil
}

// installLogger routes slog output to stderr: warnings only by default,
// everything under --verbose.
func installLogger(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

// Execute runs the root command with args and returns the process exit
// code. Commands report their own failures; errors cobra raises before a
// command runs (unknown flags, wrong argument counts) are printed here.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitCommandError
	}
	return GetExitCode(err)
}
