package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sfrayan/goGreen/internal/config"
	"github.com/sfrayan/goGreen/internal/marker"
	"github.com/sfrayan/goGreen/internal/runner"
	"github.com/sfrayan/goGreen/internal/store"
	"github.com/sfrayan/goGreen/internal/vcs"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	flags *config.Config

	// Repository overrides the git working copy (for testing).
	Repository vcs.Repository
	// RunnerOptions are appended to the runner's options (for testing).
	RunnerOptions []runner.Option
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&GenerateOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *GenerateOptions) *cobra.Command {
	opts.flags = config.Default(time.Now())

	cmd := &cobra.Command{
		Use:   "generate [year] [maxPerDay]",
		Short: "Create backdated commits for a year",
		Long: `Create one backdated commit per scheduled event in the current repository.

With --text the text is drawn onto the year's contribution graph, darker
rows getting more commits. Without it every day of the year gets between
0 and maxPerDay commits at random times.

Each commit rewrites a small marker file, stages it and commits it with
author and committer dates set to the event time.

Examples:
  gogreen generate 2025 --text HELLO --dry-run
  gogreen generate 2024 5 --push --remote-url git@github.com:me/art.git
  gogreen generate --config gogreen.yaml --format json`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd, args)
		},
	}

	bindPlanFlags(cmd.Flags(), opts.flags)
	bindRunFlags(cmd.Flags(), opts.flags)

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command, args []string) error {
	logger := opts.logger(cmd)
	out := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd, opts.flags, args, logger)
	if err != nil {
		_ = out.Error(CodeConfig, err)
		return err
	}

	runOpts := []runner.Option{runner.WithLogger(logger)}
	if !cfg.NoHistory {
		st, err := openHistory(cfg.HistoryDB, logger)
		if st != nil {
			defer func() {
				if closeErr := st.Close(); closeErr != nil {
					logger.Error("error closing history database", "error", closeErr)
				}
			}()
			runOpts = append(runOpts, runner.WithLedger(st))
		} else {
			logger.Warn("run history disabled", "path", cfg.HistoryDB, "error", err)
		}
	}
	runOpts = append(runOpts, opts.RunnerOptions...)

	repo := opts.Repository
	if repo == nil {
		repo = vcs.NewGit(cfg.RepoDir)
	}
	markerPath, err := resolveMarkerPath(cfg.RepoDir, cfg.MarkerPath)
	if err != nil {
		return out.fail(ExitCommandError, CodeConfig, "failed to resolve marker path", err)
	}

	ctx, stop := signalContext(cmd.Context(), logger)
	defer stop()

	r := runner.New(cfg, repo, marker.NewWriter(markerPath), runOpts...)
	res, err := r.Run(ctx)
	if err != nil {
		return out.fail(ExitFailure, CodeRun, fmt.Sprintf("generate stopped after %d of %d commits", res.Committed, res.Planned), err)
	}
	return out.Success(res)
}

// openHistory opens the run ledger. The ledger is optional, so callers
// degrade to running without it.
func openHistory(path string, logger *slog.Logger) (*store.Store, error) {
	logger.Debug("opening history database", "path", path)
	return store.Open(path)
}

// resolveMarkerPath places a relative marker path inside repoDir and makes
// it absolute, so git resolves it the same way from any working directory.
func resolveMarkerPath(repoDir, path string) (string, error) {
	if !filepath.IsAbs(path) && repoDir != "" {
		path = filepath.Join(repoDir, path)
	}
	return filepath.Abs(path)
}

// signalContext cancels on SIGINT or SIGTERM. Cancellation stops the run
// between two commits.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after the current commit", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
