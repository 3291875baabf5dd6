// Package config builds the single Config value a run is driven by.
//
// Values are layered: built-in defaults, then GOGREEN_* environment
// variables (optionally loaded from a .env file), then a YAML or CUE config
// file, then command-line flags. Out-of-range values never fail a run; they
// are logged and replaced by their defaults in Normalize.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sfrayan/goGreen/internal/intensity"
	"github.com/sfrayan/goGreen/internal/marker"
	"github.com/sfrayan/goGreen/internal/schedule"
)

// Defaults for fields whose zero value is not meaningful.
const (
	DefaultMaxPerDay   = 3
	DefaultRemote      = "origin"
	DefaultBranch      = "main"
	DefaultMessage     = "Contribution"
	DefaultIntensities = "1,4,8"
	DefaultWeekStart   = "sunday"
	DefaultHistoryDB   = ".gogreen.db"

	MinYear = 1
	MaxYear = 9999
)

// Config is the full configuration of a run.
type Config struct {
	Year        int    `json:"year" yaml:"year"`
	MaxPerDay   int    `json:"max_per_day" yaml:"max_per_day"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
	Intensities string `json:"intensities" yaml:"intensities"`

	Push      bool   `json:"push" yaml:"push"`
	Remote    string `json:"remote" yaml:"remote"`
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Branch    string `json:"branch" yaml:"branch"`

	Message     string `json:"message" yaml:"message"`
	AuthorName  string `json:"author_name,omitempty" yaml:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty" yaml:"author_email,omitempty"`

	DryRun    bool   `json:"dry_run" yaml:"dry_run"`
	WeekStart string `json:"week_start" yaml:"week_start"`
	Offset    int    `json:"offset" yaml:"offset"`
	Timezone  string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	MarkerPath string `json:"marker_path" yaml:"marker_path"`
	RepoDir    string `json:"repo_dir,omitempty" yaml:"repo_dir,omitempty"`
	HistoryDB  string `json:"history_db" yaml:"history_db"`
	NoHistory  bool   `json:"no_history" yaml:"no_history"`

	// Seed fixes the random source when non-zero.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Default returns the built-in configuration. The target year is the
// calendar year of now.
func Default(now time.Time) *Config {
	return &Config{
		Year:        now.Year(),
		MaxPerDay:   DefaultMaxPerDay,
		Intensities: DefaultIntensities,
		Remote:      DefaultRemote,
		Branch:      DefaultBranch,
		Message:     DefaultMessage,
		WeekStart:   DefaultWeekStart,
		MarkerPath:  marker.DefaultPath,
		HistoryDB:   DefaultHistoryDB,
	}
}

// Normalize replaces invalid values with defaults, logging a warning for
// each replacement. It never fails.
func (c *Config) Normalize(logger *slog.Logger, now time.Time) {
	if logger == nil {
		logger = slog.Default()
	}
	if c.Year < MinYear || c.Year > MaxYear {
		logger.Warn("invalid year, using current year", "year", c.Year, "fallback", now.Year())
		c.Year = now.Year()
	}
	if c.MaxPerDay < 0 {
		logger.Warn("negative max per day, using 0", "max_per_day", c.MaxPerDay)
		c.MaxPerDay = 0
	}
	tiers, ok := intensity.Parse(c.Intensities)
	if !ok {
		logger.Warn("invalid intensities, using sanitized list", "intensities", c.Intensities, "fallback", tiers.String())
	}
	c.Intensities = tiers.String()
	if c.Offset < 0 {
		logger.Warn("negative column offset, using 0", "offset", c.Offset)
		c.Offset = 0
	}
	if _, err := ParseWeekday(c.WeekStart); err != nil {
		logger.Warn("invalid week start, using sunday", "week_start", c.WeekStart)
		c.WeekStart = DefaultWeekStart
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			logger.Warn("unknown timezone, using local time", "timezone", c.Timezone, "error", err)
			c.Timezone = ""
		}
	}
	if c.Remote == "" {
		c.Remote = DefaultRemote
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.Message == "" {
		c.Message = DefaultMessage
	}
	if c.MarkerPath == "" {
		c.MarkerPath = marker.DefaultPath
	}
	if c.HistoryDB == "" {
		c.HistoryDB = DefaultHistoryDB
	}
}

// Mode resolves the generation mode: pattern mode when text is set,
// random mode otherwise.
func (c *Config) Mode() schedule.Mode {
	return schedule.ResolveMode(c.Text, c.MaxPerDay)
}

// Tiers returns the parsed intensity list.
func (c *Config) Tiers() intensity.Tiers {
	tiers, _ := intensity.Parse(c.Intensities)
	return tiers
}

// Weekday returns the configured week start, Sunday if unparsable.
func (c *Config) Weekday() time.Weekday {
	wd, err := ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// Location returns the timezone events are generated in. Local time is
// used when Timezone is empty or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParseWeekday accepts full or three-letter English day names in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
