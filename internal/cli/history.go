package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sfrayan/goGreen/internal/config"
	"github.com/sfrayan/goGreen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunList is the history listing.
type RunList struct {
	Runs []store.Run `json:"runs"`
}

func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "no runs recorded"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tYEAR\tMODE\tCOMMITS\tSTATUS")
	for _, r := range l.Runs {
		commits := fmt.Sprintf("%d/%d", r.Committed, r.Planned)
		status := r.Status
		if r.DryRun {
			status += " (dry-run)"
		}
		if r.Pushed {
			status += " pushed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Year, r.Mode, commits, status)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// RunDetail is one run with its events.
type RunDetail struct {
	Run    store.Run     `json:"run"`
	Events []store.Event `json:"events"`
}

func (d RunDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s  %d  %s  %s\n", d.Run.ID, d.Run.Year, d.Run.Mode, d.Run.Status)
	if d.Run.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", d.Run.Error)
	}
	for _, ev := range d.Events {
		mark := " "
		if ev.Committed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %4d  %s  %s\n", mark, ev.Seq, ev.Timestamp, ev.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded generate runs",
		Long: `List past generate runs from the run history database, newest first.
With a run ID, show that run's scheduled commits and which were made.

Examples:
  gogreen history
  gogreen history --limit 5 --format json
  gogreen history 01928c5e-7d3a-7c4e-9f00-3b1d2a6c8e11`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", config.DefaultHistoryDB, "path to the run history database (default from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts.RootOptions, cmd)

	if !cmd.Flags().Changed("db") {
		cfg, err := loadSettings(opts.RootOptions, time.Now(), opts.logger(cmd))
		if err != nil {
			_ = out.Error(CodeConfig, err)
			return err
		}
		if cfg.HistoryDB != "" {
			opts.Database = cfg.HistoryDB
		}
	}

	// Opening would create an empty database; a missing one means no runs.
	if _, err := os.Stat(opts.Database); err != nil {
		return out.fail(ExitCommandError, CodeHistory, "history database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.fail(ExitCommandError, CodeHistory, "failed to open history database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		run, err := st.GetRun(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return out.fail(ExitCommandError, CodeHistory, "unknown run", err)
		}
		if err != nil {
			return out.fail(ExitFailure, CodeHistory, "failed to read run", err)
		}
		events, err := st.Events(ctx, run.ID)
		if err != nil {
			return out.fail(ExitFailure, CodeHistory, "failed to read events", err)
		}
		return out.Success(RunDetail{Run: run, Events: events})
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return out.fail(ExitFailure, CodeHistory, "failed to list runs", err)
	}
	if runs == nil {
		runs = []store.Run{}
	}
	return out.Success(RunList{Runs: runs})
}
