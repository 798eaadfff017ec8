package providers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitRepoProvider is an API for accessing git repositories.
// Different implementers of GitRepoProvider may keep the repository on disk
// or in memory.
type GitRepoProvider interface {
	// FetchRepo is a single interface to acquire a GitRepo based on a provided
	// repository reference and the local path a clone should live at.
	// Providers that do not keep a clone on disk ignore localPath.
	FetchRepo(reference, localPath string) (GitRepo, error)
}

// GitRepo wraps individual git repositories behind a flat API surface able
// to enumerate commits, regardless of how the provider stores them.
type GitRepo interface {
	// Walk returns at most maxCount commits reachable from HEAD, most recent
	// first. A maxCount of zero or less walks the whole history.
	Walk(maxCount int) ([]RawCommit, error)

	// Done indicates that there is no more processing to be performed on the
	// GitRepo and any resources internal to the individual GitRepo may be
	// reaped and cleaned up.
	Done()
}

// LineStats holds the line totals of a single commit's diff.
type LineStats struct {
	Insertions int
	Deletions  int
}

// RawCommit is one commit as read from the log. Stats is evaluated lazily
// because computing a diff is the expensive part of a walk.
type RawCommit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	CommittedAt int64 // epoch seconds
	Message     string
	Stats       func() (LineStats, error)
}

// ProviderError is returned when a repository reference cannot be resolved:
// the remote is unreachable, authentication failed or the local path is
// unusable.
type ProviderError struct {
	Reference string
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("could not resolve repository %s: %s", redact(e.Reference), e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// tokenAuth returns the credentials used to fetch reference. Tokens only
// apply to http(s) remotes and an empty token means public access.
func tokenAuth(reference, token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	if !strings.HasPrefix(reference, "https://") && !strings.HasPrefix(reference, "http://") {
		return nil
	}
	return &githttp.BasicAuth{
		// GitHub ignores the username for token auth but it must be non-empty
		Username: "x-access-token",
		Password: token,
	}
}

// redact hides any credentials embedded in a reference before it is logged.
func redact(reference string) string {
	u, err := url.Parse(reference)
	if err != nil || u.User == nil {
		return reference
	}
	u.User = url.User("redacted")
	return u.String()
}
