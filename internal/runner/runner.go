// Package runner executes a commit schedule against a repository.
//
// Execution is strictly sequential: each event's marker write, stage and
// commit finish before the next event is generated, because the working
// copy is a single stateful resource. The first collaborator failure aborts
// the rest of the schedule; commits already made are left in place.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sfrayan/goGreen/internal/calendar"
	"github.com/sfrayan/goGreen/internal/config"
	"github.com/sfrayan/goGreen/internal/glyph"
	"github.com/sfrayan/goGreen/internal/marker"
	"github.com/sfrayan/goGreen/internal/pattern"
	"github.com/sfrayan/goGreen/internal/schedule"
	"github.com/sfrayan/goGreen/internal/store"
	"github.com/sfrayan/goGreen/internal/vcs"
)

// Runner drives one generate run.
type Runner struct {
	cfg    *config.Config
	repo   vcs.Repository
	marker Marker
	ledger Ledger
	logger *slog.Logger
	clock  Clock
	ids    IDGenerator
	rand   schedule.Rand
}

// Option configures a Runner.
type Option func(*Runner)

// WithLedger records the run and its events in l.
func WithLedger(l Ledger) Option { return func(r *Runner) { r.ledger = l } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithClock sets the clock used for run start and finish times.
func WithClock(c Clock) Option { return func(r *Runner) { r.clock = c } }

// WithIDGenerator sets the run ID source.
func WithIDGenerator(g IDGenerator) Option { return func(r *Runner) { r.ids = g } }

// WithRand sets the random source, overriding cfg.Seed.
func WithRand(rng schedule.Rand) Option { return func(r *Runner) { r.rand = rng } }

// New returns a Runner for cfg. repo and m are not touched in dry-run mode
// and may be nil there.
func New(cfg *config.Config, repo vcs.Repository, m Marker, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		repo:   repo,
		marker: m,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  SystemClock{},
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(r.clock.Now().UnixNano())
		}
		r.rand = schedule.NewRand(seed)
	}
	return r
}

// Result summarizes a run.
type Result struct {
	RunID     string `json:"run_id"`
	Year      int    `json:"year"`
	Mode      string `json:"mode"`
	DryRun    bool   `json:"dry_run"`
	Planned   int    `json:"planned"`
	Committed int    `json:"committed"`
	Pushed    bool   `json:"pushed"`
	Clipped   int    `json:"clipped,omitempty"`

	Events []schedule.CommitEvent `json:"-"`
}

func (r *Result) String() string {
	switch {
	case r.DryRun:
		return fmt.Sprintf("[dry-run] %d commits planned for %d (%s), nothing written", r.Planned, r.Year, r.Mode)
	case r.Pushed:
		return fmt.Sprintf("%d commits created for %d (%s) and pushed", r.Committed, r.Year, r.Mode)
	default:
		return fmt.Sprintf("%d commits created for %d (%s)", r.Committed, r.Year, r.Mode)
	}
}

// Plan resolves the mode and builds the schedule without executing it.
// Text that cannot be drawn completely is logged as a warning.
func (r *Runner) Plan() (schedule.Plan, []schedule.CommitEvent) {
	plan := schedule.NewPlan(r.cfg.Mode(), schedule.Options{
		Year:      r.cfg.Year,
		Tiers:     r.cfg.Tiers(),
		WeekStart: r.cfg.Weekday(),
		Offset:    r.cfg.Offset,
		Rand:      r.rand,
	})

	if m, ok := plan.Mode.(schedule.PatternMode); ok {
		if bad := pattern.Unsupported(m.Text); len(bad) > 0 {
			r.logger.Warn("characters without a glyph are drawn blank",
				"chars", string(bad),
				"supported", string(glyph.Runes()),
			)
		}
	}
	if plan.Clipped > 0 {
		r.logger.Warn("pattern cells outside the year were clipped",
			"year", plan.Year,
			"clipped", plan.Clipped,
		)
	}
	return plan, plan.Events(r.cfg.Message, r.rand, r.cfg.Location())
}

// Run plans and executes the schedule, then pushes if requested.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	plan, events := r.Plan()
	res := &Result{
		RunID:   r.ids.Generate(),
		Year:    r.cfg.Year,
		Mode:    plan.Mode.String(),
		DryRun:  r.cfg.DryRun,
		Planned: len(events),
		Clipped: plan.Clipped,
		Events:  events,
	}

	r.logger.Info("generating commits",
		"run_id", res.RunID,
		"year", res.Year,
		"mode", res.Mode,
		"max_per_day", r.cfg.MaxPerDay,
		"planned", res.Planned,
	)

	r.beginRun(ctx, res, plan)

	err := r.execute(ctx, plan, res)
	if err == nil {
		err = r.publish(ctx, res)
	}

	r.finishRun(ctx, res, err)
	return res, err
}

func (r *Runner) execute(ctx context.Context, plan schedule.Plan, res *Result) error {
	var day calendar.Date
	for _, ev := range res.Events {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborted before event %d: %w", ev.Seq, err)
		}
		if ev.Date != day {
			day = ev.Date
			r.logger.Debug("planned commits", "date", day.String(), "count", plan.Counts.Get(day))
		}

		if r.cfg.DryRun {
			r.logger.Info("[dry-run] would commit", "message", ev.Message, "timestamp", ev.Timestamp())
			r.recordEvent(ctx, res.RunID, ev, false)
			continue
		}

		if err := r.commit(ctx, res.RunID, ev); err != nil {
			r.recordEvent(ctx, res.RunID, ev, false)
			return fmt.Errorf("event %d at %s: %w", ev.Seq, ev.Timestamp(), err)
		}
		res.Committed++
		r.recordEvent(ctx, res.RunID, ev, true)
		r.logger.Info("committed", "timestamp", ev.Timestamp())
	}
	return nil
}

func (r *Runner) commit(ctx context.Context, runID string, ev schedule.CommitEvent) error {
	if err := r.marker.Write(marker.Record{Date: ev.Timestamp(), Seq: ev.Seq, RunID: runID}); err != nil {
		return err
	}
	if err := r.repo.Stage(ctx, r.marker.Path()); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	err := r.repo.Commit(ctx, ev.Message, vcs.CommitOptions{
		Date:        ev.Time,
		AuthorName:  r.cfg.AuthorName,
		AuthorEmail: r.cfg.AuthorEmail,
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// publish handles everything after the last event: the empty and dry-run
// short circuits, remote setup and push.
func (r *Runner) publish(ctx context.Context, res *Result) error {
	if res.Planned == 0 {
		r.logger.Info("no commits created, nothing to push")
		return nil
	}
	if r.cfg.DryRun {
		r.logger.Info("[dry-run] created commits (no push)", "count", res.Planned)
		return nil
	}
	if !r.cfg.Push {
		r.logger.Info("created commits locally",
			"count", res.Committed,
			"hint", fmt.Sprintf("git push %s %s", r.cfg.Remote, r.cfg.Branch),
		)
		return nil
	}

	if r.cfg.RemoteURL != "" {
		r.ensureRemote(ctx)
	}

	r.logger.Info("pushing", "count", res.Committed, "remote", r.cfg.Remote, "branch", r.cfg.Branch)
	if err := r.repo.Push(ctx, r.cfg.Remote, r.cfg.Branch); err != nil {
		return fmt.Errorf("push %s/%s: %w", r.cfg.Remote, r.cfg.Branch, err)
	}
	res.Pushed = true
	r.logger.Info("done pushing", "count", res.Committed, "year", res.Year)
	return nil
}

// ensureRemote makes sure some remote points at cfg.RemoteURL. Failures are
// logged and never abort the run.
func (r *Runner) ensureRemote(ctx context.Context) {
	remotes, err := r.repo.ListRemotes(ctx)
	if err != nil {
		r.logger.Warn("could not validate remote", "error", err)
		return
	}
	if vcs.HasURL(remotes, r.cfg.RemoteURL) {
		return
	}

	r.logger.Info("adding remote", "name", r.cfg.Remote, "url", r.cfg.RemoteURL)
	addErr := r.repo.AddRemote(ctx, r.cfg.Remote, r.cfg.RemoteURL)
	if addErr == nil {
		return
	}
	// The name is probably taken by a remote with another URL.
	if err := r.repo.SetRemoteURL(ctx, r.cfg.Remote, r.cfg.RemoteURL); err != nil {
		r.logger.Warn("could not add remote",
			"name", r.cfg.Remote,
			"url", r.cfg.RemoteURL,
			"add_error", addErr,
			"error", err,
		)
	}
}

func (r *Runner) beginRun(ctx context.Context, res *Result, plan schedule.Plan) {
	if r.ledger == nil {
		return
	}
	text := ""
	if m, ok := plan.Mode.(schedule.PatternMode); ok {
		text = m.Text
	}
	err := r.ledger.BeginRun(ctx, store.Run{
		ID:        res.RunID,
		StartedAt: r.clock.Now(),
		Year:      res.Year,
		Mode:      res.Mode,
		Text:      text,
		DryRun:    res.DryRun,
		Planned:   res.Planned,
	})
	if err != nil {
		r.logger.Warn("history disabled for this run", "error", err)
		r.ledger = nil
	}
}

func (r *Runner) recordEvent(ctx context.Context, runID string, ev schedule.CommitEvent, committed bool) {
	if r.ledger == nil {
		return
	}
	err := r.ledger.RecordEvent(ctx, store.Event{
		RunID:     runID,
		Seq:       ev.Seq,
		Day:       ev.Date.String(),
		Timestamp: ev.Timestamp(),
		Message:   ev.Message,
		Committed: committed,
	})
	if err != nil {
		r.logger.Warn("could not record event", "seq", ev.Seq, "error", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, res *Result, runErr error) {
	if r.ledger == nil {
		return
	}
	out := store.Outcome{
		FinishedAt: r.clock.Now(),
		Committed:  res.Committed,
		Pushed:     res.Pushed,
		Status:     store.StatusSucceeded,
	}
	if runErr != nil {
		out.Status = store.StatusFailed
		out.Error = runErr.Error()
	}
	// The run context may already be cancelled; the outcome is still worth
	// keeping.
	if err := r.ledger.FinishRun(context.WithoutCancel(ctx), res.RunID, out); err != nil {
		r.logger.Warn("could not finish run record", "error", err)
	}
}
