package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

const runColumns = `id, started_at, finished_at, year, mode, text, dry_run, planned, committed, pushed, status, error`

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run: %w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Events returns the events of a run in schedule order.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, day, timestamp, message, committed
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var committed int
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Day, &ev.Timestamp, &ev.Message, &committed); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		ev.Committed = committed != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// CommittedPerDay sums committed events per day for one year across all
// runs. Keys are YYYY-MM-DD.
func (s *Store) CommittedPerDay(ctx context.Context, year int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, COUNT(*)
		FROM events
		WHERE committed = 1 AND day LIKE ?
		GROUP BY day
	`, fmt.Sprintf("%04d-%%", year))
	if err != nil {
		return nil, fmt.Errorf("committed per day: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("committed per day: %w", err)
		}
		out[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("committed per day: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run               Run
		started, finished string
		dryRun, pushed    int
	)
	err := row.Scan(&run.ID, &started, &finished, &run.Year, &run.Mode, &run.Text,
		&dryRun, &run.Planned, &run.Committed, &pushed, &run.Status, &run.Error)
	if err != nil {
		return Run{}, err
	}
	run.DryRun = dryRun != 0
	run.Pushed = pushed != 0

	if run.StartedAt, err = time.Parse(TimeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if finished != "" {
		if run.FinishedAt, err = time.Parse(TimeLayout, finished); err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	return run, nil
}
