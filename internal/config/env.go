package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "GOGREEN_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GOGREEN_* variables onto c. Unparsable numbers and
// booleans are logged and ignored.
func (c *Config) ApplyEnv(lookup LookupFunc, logger *slog.Logger) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if logger == nil {
		logger = slog.Default()
	}
	get := func(name string) (string, bool) { return lookup(EnvPrefix + name) }

	intVar := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				logger.Warn("ignoring invalid integer", "var", EnvPrefix+name, "value", v)
				return
			}
			*dst = n
		}
	}
	boolVar := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				logger.Warn("ignoring invalid boolean", "var", EnvPrefix+name, "value", v)
				return
			}
			*dst = b
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	intVar("YEAR", &c.Year)
	intVar("MAX_PER_DAY", &c.MaxPerDay)
	stringVar("TEXT", &c.Text)
	stringVar("INTENSITIES", &c.Intensities)
	boolVar("PUSH", &c.Push)
	stringVar("REMOTE", &c.Remote)
	stringVar("REMOTE_URL", &c.RemoteURL)
	stringVar("BRANCH", &c.Branch)
	stringVar("MESSAGE", &c.Message)
	stringVar("AUTHOR_NAME", &c.AuthorName)
	stringVar("AUTHOR_EMAIL", &c.AuthorEmail)
	boolVar("DRY_RUN", &c.DryRun)
	stringVar("WEEK_START", &c.WeekStart)
	intVar("OFFSET", &c.Offset)
	stringVar("TIMEZONE", &c.Timezone)
	stringVar("MARKER_PATH", &c.MarkerPath)
	stringVar("REPO_DIR", &c.RepoDir)
	stringVar("HISTORY_DB", &c.HistoryDB)
	boolVar("NO_HISTORY", &c.NoHistory)

	if v, ok := get("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			logger.Warn("ignoring invalid seed", "var", EnvPrefix+"SEED", "value", v)
		} else {
			c.Seed = seed
		}
	}
}
