package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sfrayan/goGreen/internal/marker"
	"github.com/sfrayan/goGreen/internal/store"
)

// Clock supplies wall time for run bookkeeping.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so runs listed by
// ID are also listed by start time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Marker persists the marker record written before each commit.
type Marker interface {
	Path() string
	Write(rec marker.Record) error
}

// Ledger records runs and their events. *store.Store implements it.
type Ledger interface {
	BeginRun(ctx context.Context, run store.Run) error
	RecordEvent(ctx context.Context, ev store.Event) error
	FinishRun(ctx context.Context, id string, out store.Outcome) error
}

var _ Ledger = (*store.Store)(nil)
