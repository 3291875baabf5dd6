package cli

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sfrayan/goGreen/internal/config"
)

// bindPlanFlags registers the flags that shape the schedule. They write into
// c, which only holds flag values; loadConfig copies the changed ones over
// the layered configuration.
func bindPlanFlags(fs *pflag.FlagSet, c *config.Config) {
	fs.IntVar(&c.Year, "year", c.Year, "target year (default current year)")
	fs.IntVar(&c.MaxPerDay, "max-per-day", c.MaxPerDay, "random mode: maximum commits per day")
	fs.StringVar(&c.Text, "text", c.Text, "text to draw; random mode when empty")
	fs.StringVar(&c.Intensities, "intensities", c.Intensities, "commit counts for light,medium,dark cells")
	fs.StringVar(&c.WeekStart, "week-start", c.WeekStart, "first weekday of a graph column")
	fs.IntVar(&c.Offset, "offset", c.Offset, "week columns to shift the text right")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA zone for commit times (default local)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed; 0 picks one from the clock")
}

// bindRunFlags registers the flags that only matter when commits are made.
func bindRunFlags(fs *pflag.FlagSet, c *config.Config) {
	fs.BoolVar(&c.Push, "push", c.Push, "push after committing")
	fs.StringVar(&c.Remote, "remote", c.Remote, "remote to push to")
	fs.StringVar(&c.RemoteURL, "remote-url", c.RemoteURL, "ensure a remote with this URL exists before pushing")
	fs.StringVar(&c.Branch, "branch", c.Branch, "branch to push")
	fs.StringVarP(&c.Message, "message", "m", c.Message, "commit message prefix")
	fs.StringVar(&c.AuthorName, "author-name", c.AuthorName, "commit author name (default git identity)")
	fs.StringVar(&c.AuthorEmail, "author-email", c.AuthorEmail, "commit author email (default git identity)")
	fs.BoolVarP(&c.DryRun, "dry-run", "n", c.DryRun, "log the schedule without touching the repository")
	fs.StringVar(&c.MarkerPath, "marker", c.MarkerPath, "marker file rewritten before each commit")
	fs.StringVarP(&c.RepoDir, "repo", "C", c.RepoDir, "repository directory (default current directory)")
	fs.StringVar(&c.HistoryDB, "history-db", c.HistoryDB, "SQLite run history database")
	fs.BoolVar(&c.NoHistory, "no-history", c.NoHistory, "do not record the run")
}

// overlayFlags copies every flag the user set from src to dst.
func overlayFlags(fs *pflag.FlagSet, dst, src *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "year":
			dst.Year = src.Year
		case "max-per-day":
			dst.MaxPerDay = src.MaxPerDay
		case "text":
			dst.Text = src.Text
		case "intensities":
			dst.Intensities = src.Intensities
		case "week-start":
			dst.WeekStart = src.WeekStart
		case "offset":
			dst.Offset = src.Offset
		case "timezone":
			dst.Timezone = src.Timezone
		case "seed":
			dst.Seed = src.Seed
		case "push":
			dst.Push = src.Push
		case "remote":
			dst.Remote = src.Remote
		case "remote-url":
			dst.RemoteURL = src.RemoteURL
		case "branch":
			dst.Branch = src.Branch
		case "message":
			dst.Message = src.Message
		case "author-name":
			dst.AuthorName = src.AuthorName
		case "author-email":
			dst.AuthorEmail = src.AuthorEmail
		case "dry-run":
			dst.DryRun = src.DryRun
		case "marker":
			dst.MarkerPath = src.MarkerPath
		case "repo":
			dst.RepoDir = src.RepoDir
		case "history-db":
			dst.HistoryDB = src.HistoryDB
		case "no-history":
			dst.NoHistory = src.NoHistory
		}
	})
}

// loadSettings layers defaults, .env and GOGREEN_* variables and the
// config file. Commands without flags of their own read it directly.
func loadSettings(opts *RootOptions, now time.Time, logger *slog.Logger) (*config.Config, error) {
	cfg := config.Default(now)

	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load env file", err)
	}
	cfg.ApplyEnv(os.LookupEnv, logger)

	if opts.ConfigFile != "" {
		if err := cfg.LoadFile(opts.ConfigFile); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}
	return cfg, nil
}

// loadConfig adds positional [year] [maxPerDay] arguments and changed flags
// on top of loadSettings, then normalizes the result.
func loadConfig(opts *RootOptions, cmd *cobra.Command, flagValues *config.Config, args []string, logger *slog.Logger) (*config.Config, error) {
	now := time.Now()
	cfg, err := loadSettings(opts, now, logger)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			// Normalize reports and replaces it.
			year = 0
		}
		cfg.Year = year
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			logger.Warn("invalid max per day, using default", "value", args[1], "fallback", config.DefaultMaxPerDay)
			n = config.DefaultMaxPerDay
		}
		cfg.MaxPerDay = n
	}

	overlayFlags(cmd.Flags(), cfg, flagValues)
	cfg.Normalize(logger, now)
	return cfg, nil
}
