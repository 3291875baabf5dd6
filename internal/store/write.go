package store

import (
	"context"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// TimeLayout is how run times are stored. The fixed-width fraction keeps
// lexical order equal to time order for UTC values.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one generate invocation.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Year       int       `json:"year"`
	Mode       string    `json:"mode"`
	Text       string    `json:"text,omitempty"`
	DryRun     bool      `json:"dry_run"`
	Planned    int       `json:"planned"`
	Committed  int       `json:"committed"`
	Pushed     bool      `json:"pushed"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Event is one scheduled commit of a run. Timestamp keeps the event's own
// offset.
type Event struct {
	RunID     string `json:"run_id"`
	Seq       int    `json:"seq"`
	Day       string `json:"day"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Committed bool   `json:"committed"`
}

// Outcome closes a run.
type Outcome struct {
	FinishedAt time.Time
	Committed  int
	Pushed     bool
	Status     string
	Error      string
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	status := run.Status
	if status == "" {
		status = StatusRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, year, mode, text, dry_run, planned, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(TimeLayout),
		run.Year,
		run.Mode,
		run.Text,
		boolToInt(run.DryRun),
		run.Planned,
		status,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordEvent stores an event. Writing the same (run, seq) again updates
// its committed flag.
func (s *Store) RecordEvent(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(run_id, seq, day, timestamp, message, committed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO UPDATE SET committed = excluded.committed
	`,
		ev.RunID,
		ev.Seq,
		ev.Day,
		ev.Timestamp,
		ev.Message,
		boolToInt(ev.Committed),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id string, out Outcome) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, committed = ?, pushed = ?, status = ?, error = ?
		WHERE id = ?
	`,
		out.FinishedAt.UTC().Format(TimeLayout),
		out.Committed,
		boolToInt(out.Pushed),
		out.Status,
		out.Error,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrNotFound, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
