package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// CommandError reports a failed git invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: exit %d: %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Git drives a working copy through the git executable.
type Git struct {
	// Dir is the working tree. Empty means the process working directory.
	Dir string

	// Binary is the git executable. Empty means "git" from PATH.
	Binary string
}

// NewGit returns a Git rooted at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir}
}

var _ Repository = (*Git)(nil)

// Stage adds paths to the index.
func (g *Git) Stage(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := g.run(ctx, nil, args...)
	return err
}

// Commit records the index with both author and committer dates set to
// opts.Date, so the commit shows up on that day of the contribution graph.
func (g *Git) Commit(ctx context.Context, message string, opts CommitOptions) error {
	args := []string{"commit", "--quiet", "-m", message}
	var env []string
	if !opts.Date.IsZero() {
		iso := opts.Date.Format(time.RFC3339)
		args = append(args, "--date", iso)
		env = append(env, "GIT_AUTHOR_DATE="+iso, "GIT_COMMITTER_DATE="+iso)
	}
	if author := opts.Author(); author != "" {
		args = append(args, "--author", author)
	}
	_, err := g.run(ctx, env, args...)
	return err
}

// Push pushes branch to remote.
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, nil, "push", remote, branch)
	return err
}

// ListRemotes returns the configured remotes sorted by name.
func (g *Git) ListRemotes(ctx context.Context) ([]Remote, error) {
	out, err := g.run(ctx, nil, "remote", "-v")
	if err != nil {
		return nil, err
	}
	return parseRemotes(out), nil
}

// AddRemote registers a new remote.
func (g *Git) AddRemote(ctx context.Context, name, url string) error {
	_, err := g.run(ctx, nil, "remote", "add", name, url)
	return err
}

// SetRemoteURL changes the URL of an existing remote.
func (g *Git) SetRemoteURL(ctx context.Context, name, url string) error {
	_, err := g.run(ctx, nil, "remote", "set-url", name, url)
	return err
}

func (g *Git) run(ctx context.Context, env []string, args ...string) (string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = g.Dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &CommandError{Args: args, ExitCode: code, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// parseRemotes reads `git remote -v` output:
//
//	origin	git@example.com:me/repo.git (fetch)
//	origin	git@example.com:me/repo.git (push)
func parseRemotes(out string) []Remote {
	byName := map[string]*Remote{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		r, ok := byName[fields[0]]
		if !ok {
			r = &Remote{Name: fields[0]}
			byName[fields[0]] = r
		}
		kind := ""
		if len(fields) > 2 {
			kind = fields[2]
		}
		switch kind {
		case "(push)":
			r.PushURL = fields[1]
		default:
			r.FetchURL = fields[1]
		}
	}

	remotes := make([]Remote, 0, len(byName))
	for _, r := range byName {
		remotes = append(remotes, *r)
	}
	sort.Slice(remotes, func(i, j int) bool { return remotes[i].Name < remotes[j].Name })
	return remotes
}

// HasURL reports whether any remote fetches from or pushes to url.
func HasURL(remotes []Remote, url string) bool {
	for _, r := range remotes {
		if r.FetchURL == url || r.PushURL == url {
			return true
		}
	}
	return false
}
