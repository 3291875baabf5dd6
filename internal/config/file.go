package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// fileConfig mirrors Config with optional fields so a file only overrides
// what it sets.
type fileConfig struct {
	Year        *int    `json:"year,omitempty" yaml:"year"`
	MaxPerDay   *int    `json:"max_per_day,omitempty" yaml:"max_per_day"`
	Text        *string `json:"text,omitempty" yaml:"text"`
	Intensities *string `json:"intensities,omitempty" yaml:"intensities"`
	Push        *bool   `json:"push,omitempty" yaml:"push"`
	Remote      *string `json:"remote,omitempty" yaml:"remote"`
	RemoteURL   *string `json:"remote_url,omitempty" yaml:"remote_url"`
	Branch      *string `json:"branch,omitempty" yaml:"branch"`
	Message     *string `json:"message,omitempty" yaml:"message"`
	AuthorName  *string `json:"author_name,omitempty" yaml:"author_name"`
	AuthorEmail *string `json:"author_email,omitempty" yaml:"author_email"`
	DryRun      *bool   `json:"dry_run,omitempty" yaml:"dry_run"`
	WeekStart   *string `json:"week_start,omitempty" yaml:"week_start"`
	Offset      *int    `json:"offset,omitempty" yaml:"offset"`
	Timezone    *string `json:"timezone,omitempty" yaml:"timezone"`
	MarkerPath  *string `json:"marker_path,omitempty" yaml:"marker_path"`
	RepoDir     *string `json:"repo_dir,omitempty" yaml:"repo_dir"`
	HistoryDB   *string `json:"history_db,omitempty" yaml:"history_db"`
	NoHistory   *bool   `json:"no_history,omitempty" yaml:"no_history"`
	Seed        *uint64 `json:"seed,omitempty" yaml:"seed"`
}

// LoadFile overlays the config file at path onto c. Files ending in .cue
// are evaluated with CUE against the embedded schema; anything else is
// parsed as YAML (which also accepts JSON).
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		fc, err = decodeCUE(path, data)
	default:
		fc, err = decodeYAML(data)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	fc.apply(c)
	return nil
}

func decodeYAML(data []byte) (fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return fc, nil
		}
		return fc, fmt.Errorf("parse yaml: %w", err)
	}
	return fc, nil
}

func decodeCUE(path string, data []byte) (fileConfig, error) {
	var fc fileConfig

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fc, fmt.Errorf("compile schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fc, fmt.Errorf("compile cue: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fc, fmt.Errorf("validate cue: %w", err)
	}
	if err := unified.Decode(&fc); err != nil {
		return fc, fmt.Errorf("decode cue: %w", err)
	}
	return fc, nil
}

func (fc fileConfig) apply(c *Config) {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	setInt(&c.Year, fc.Year)
	setInt(&c.MaxPerDay, fc.MaxPerDay)
	setStr(&c.Text, fc.Text)
	setStr(&c.Intensities, fc.Intensities)
	setBool(&c.Push, fc.Push)
	setStr(&c.Remote, fc.Remote)
	setStr(&c.RemoteURL, fc.RemoteURL)
	setStr(&c.Branch, fc.Branch)
	setStr(&c.Message, fc.Message)
	setStr(&c.AuthorName, fc.AuthorName)
	setStr(&c.AuthorEmail, fc.AuthorEmail)
	setBool(&c.DryRun, fc.DryRun)
	setStr(&c.WeekStart, fc.WeekStart)
	setInt(&c.Offset, fc.Offset)
	setStr(&c.Timezone, fc.Timezone)
	setStr(&c.MarkerPath, fc.MarkerPath)
	setStr(&c.RepoDir, fc.RepoDir)
	setStr(&c.HistoryDB, fc.HistoryDB)
	setBool(&c.NoHistory, fc.NoHistory)
	if fc.Seed != nil {
		c.Seed = *fc.Seed
	}
}
