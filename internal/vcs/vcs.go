// Package vcs is the version-control boundary of the pipeline: staging,
// committing with a backdated timestamp, remote management and push.
package vcs

import (
	"context"
	"time"
)

// Remote is one configured remote and its URLs.
type Remote struct {
	Name     string
	FetchURL string
	PushURL  string
}

// CommitOptions carry the authored date and optional author identity.
// An empty AuthorName or AuthorEmail leaves the repository identity in place.
type CommitOptions struct {
	Date        time.Time
	AuthorName  string
	AuthorEmail string
}

// Author returns the "Name <email>" form, or "" when either part is unset.
func (o CommitOptions) Author() string {
	if o.AuthorName == "" || o.AuthorEmail == "" {
		return ""
	}
	return o.AuthorName + " <" + o.AuthorEmail + ">"
}

// Repository is a serial, stateful working copy. Calls must not overlap.
type Repository interface {
	Stage(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string, opts CommitOptions) error
	Push(ctx context.Context, remote, branch string) error
	ListRemotes(ctx context.Context) ([]Remote, error)
	AddRemote(ctx context.Context, name, url string) error
	SetRemoteURL(ctx context.Context, name, url string) error
}
