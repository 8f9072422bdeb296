package cli

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/dadda/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Name        string
	Fingerprint string
	Limit       int
}

// RunEntry is one recorded run as the history command reports it.
type RunEntry struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Name          string `json:"name"`
	Mode          string `json:"mode"`
	Fingerprint   string `json:"fingerprint,omitempty"`
	Rejection     string `json:"rejection,omitempty"`
	Checked       int    `json:"checked"`
	Failed        int    `json:"failed"`
	EngineVersion string `json:"engine_version"`
}

// NetlistEntry is a stored netlist as history show reports it.
type NetlistEntry struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	OutputWidth int    `json:"output_width"`
	HalfAdders  int    `json:"half_adders"`
	FullAdders  int    `json:"full_adders"`
	IRVersion   string `json:"ir_version"`
	Canonical   string `json:"canonical"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded synthesis runs",
		Long: `List the runs recorded in the synthesis log given by --db, oldest first.

Use "history show <fingerprint>" to print a stored netlist. A unique
fingerprint prefix is enough.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "only runs of this block")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only runs that produced this netlist (prefix allowed)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "most recent runs to list (0 for all)")

	cmd.AddCommand(newHistoryShowCommand(rootOpts))
	return cmd
}

func newHistoryShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <fingerprint>",
		Short:         "Print a stored netlist",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(rootOpts, args[0], cmd)
		},
	}
}

// openHistory opens the synthesis log, which must already exist.
func openHistory(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	if opts.DB == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "no synthesis log: set --db, DADDA_DB or db in the config file", nil)
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	return st, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := openHistory(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	filter := store.RunFilter{Name: opts.Name, Limit: opts.Limit}
	if opts.Fingerprint != "" {
		fp, err := st.ResolveFingerprint(ctx, opts.Fingerprint)
		if err != nil {
			return failLookup(formatter, err)
		}
		filter.Fingerprint = fp
	}

	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	entries := lo.Map(runs, func(r store.Run, _ int) RunEntry {
		return RunEntry{
			ID:            r.ID,
			Seq:           r.Seq,
			Name:          r.Request.Name,
			Mode:          r.Request.Mode.String(),
			Fingerprint:   r.Fingerprint,
			Rejection:     r.Rejection,
			Checked:       r.Checked,
			Failed:        r.Failed,
			EngineVersion: r.EngineVersion,
		}
	})

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	for _, e := range entries {
		outcome := "rejected " + e.Rejection
		if e.Fingerprint != "" {
			outcome = fmt.Sprintf("%s checked %d failed %d", e.Fingerprint[:12], e.Checked, e.Failed)
		}
		fmt.Fprintf(w, "%4d  %s  %-16s %-18s %s\n", e.Seq, e.ID[:8], e.Name, e.Mode, outcome)
	}
	return nil
}

func runHistoryShow(opts *RootOptions, prefix string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	st, err := openHistory(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	fp, err := st.ResolveFingerprint(ctx, prefix)
	if err != nil {
		return failLookup(formatter, err)
	}
	rec, err := st.ReadNetlist(ctx, fp)
	if err != nil {
		return failLookup(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(NetlistEntry{
			Fingerprint: rec.Fingerprint,
			Name:        rec.Name,
			Mode:        rec.Mode,
			OutputWidth: rec.OutputWidth,
			HalfAdders:  rec.HalfAdders,
			FullAdders:  rec.FullAdders,
			IRVersion:   rec.IRVersion,
			Canonical:   string(rec.Canonical),
		})
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", rec.Canonical)
	return err
}

func failLookup(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
}
