package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sfrayan/goGreen/internal/marker"
	"github.com/sfrayan/goGreen/internal/vcs"
)

// Call is one recorded repository operation.
type Call struct {
	Op   string
	Args []string
	Opts vcs.CommitOptions
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	return c.Op + " " + strings.Join(c.Args, " ")
}

// RecordingRepository is an in-memory vcs.Repository that logs every call.
// Errors can be injected per operation name ("stage", "commit", "push",
// "list-remotes", "add-remote", "set-url"); FailAt makes only the nth call
// of that operation fail.
type RecordingRepository struct {
	mu      sync.Mutex
	calls   []Call
	counts  map[string]int
	errs    map[string]error
	failAt  map[string]int
	Remotes []vcs.Remote
}

// NewRecordingRepository creates an empty fake with the given remotes.
func NewRecordingRepository(remotes ...vcs.Remote) *RecordingRepository {
	return &RecordingRepository{
		counts:  make(map[string]int),
		errs:    make(map[string]error),
		failAt:  make(map[string]int),
		Remotes: remotes,
	}
}

// Fail makes every call of op return err.
func (r *RecordingRepository) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[op] = err
	delete(r.failAt, op)
}

// FailAt makes the nth (1-based) call of op return err.
func (r *RecordingRepository) FailAt(op string, n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[op] = err
	r.failAt[op] = n
}

// Calls returns a copy of the call log.
func (r *RecordingRepository) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Count returns how many times op was called.
func (r *RecordingRepository) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op]
}

// Commits returns the recorded commit calls in order.
func (r *RecordingRepository) Commits() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Op == "commit" {
			out = append(out, c)
		}
	}
	return out
}

func (r *RecordingRepository) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	r.counts[c.Op]++
	err, ok := r.errs[c.Op]
	if !ok {
		return nil
	}
	if n, only := r.failAt[c.Op]; only && n != r.counts[c.Op] {
		return nil
	}
	return err
}

func (r *RecordingRepository) Stage(_ context.Context, paths ...string) error {
	return r.record(Call{Op: "stage", Args: paths})
}

func (r *RecordingRepository) Commit(_ context.Context, message string, opts vcs.CommitOptions) error {
	return r.record(Call{Op: "commit", Args: []string{message}, Opts: opts})
}

func (r *RecordingRepository) Push(_ context.Context, remote, branch string) error {
	return r.record(Call{Op: "push", Args: []string{remote, branch}})
}

func (r *RecordingRepository) ListRemotes(context.Context) ([]vcs.Remote, error) {
	if err := r.record(Call{Op: "list-remotes"}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.Remotes), nil
}

func (r *RecordingRepository) AddRemote(_ context.Context, name, url string) error {
	if err := r.record(Call{Op: "add-remote", Args: []string{name, url}}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.Remotes {
		if rm.Name == name {
			return fmt.Errorf("remote %s already exists", name)
		}
	}
	r.Remotes = append(r.Remotes, vcs.Remote{Name: name, FetchURL: url, PushURL: url})
	return nil
}

func (r *RecordingRepository) SetRemoteURL(_ context.Context, name, url string) error {
	if err := r.record(Call{Op: "set-url", Args: []string{name, url}}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Remotes {
		if r.Remotes[i].Name == name {
			r.Remotes[i].FetchURL = url
			r.Remotes[i].PushURL = url
			return nil
		}
	}
	return fmt.Errorf("no such remote %s", name)
}

var _ vcs.Repository = (*RecordingRepository)(nil)

// MemoryMarker keeps marker records in memory.
type MemoryMarker struct {
	mu      sync.Mutex
	path    string
	Records []marker.Record
	Err     error
}

// NewMemoryMarker creates a marker that reports path.
func NewMemoryMarker(path string) *MemoryMarker {
	if path == "" {
		path = marker.DefaultPath
	}
	return &MemoryMarker{path: path}
}

// Path returns the configured path.
func (m *MemoryMarker) Path() string { return m.path }

// Write appends rec, or returns Err when set.
func (m *MemoryMarker) Write(rec marker.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}
