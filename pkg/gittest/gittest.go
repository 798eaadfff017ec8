// package gittest builds throwaway on-disk git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit describes one commit to create. Lines are written to File (replacing
// its previous contents) before committing.
type Commit struct {
	File    string
	Lines   []string
	Author  string
	Email   string
	When    time.Time
	Message string
}

// NewRepo initializes a repository in dir and creates the commits in order.
// It returns the full hashes of the created commits.
func NewRepo(t testing.TB, dir string, commits []Commit) (*git.Repository, []string) {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("could not init repo: %s", err.Error())
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("could not open worktree: %s", err.Error())
	}

	hashes := make([]string, 0, len(commits))
	for _, c := range commits {
		file := c.File
		if file == "" {
			file = "README.md"
		}

		content := strings.Join(c.Lines, "\n")
		if content != "" {
			content += "\n"
		}

		full := filepath.Join(dir, file)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("could not create dir: %s", err.Error())
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("could not write file: %s", err.Error())
		}

		if _, err := wt.Add(file); err != nil {
			t.Fatalf("could not stage file: %s", err.Error())
		}

		sig := &object.Signature{Name: c.Author, Email: c.Email, When: c.When}
		hash, err := wt.Commit(c.Message, &git.CommitOptions{Author: sig, Committer: sig})
		if err != nil {
			t.Fatalf("could not commit: %s", err.Error())
		}
		hashes = append(hashes, hash.String())
	}

	return repo, hashes
}

// Linear returns n commits by a single author, one hour apart starting at
// start, each appending one line to README.md.
func Linear(n int, start time.Time) []Commit {
	commits := make([]Commit, 0, n)
	var lines []string
	for i := 0; i < n; i++ {
		lines = append(lines, "line "+strings.Repeat("x", i+1))
		commits = append(commits, Commit{
			Lines:   append([]string(nil), lines...),
			Author:  "Alice",
			Email:   "alice@example.com",
			When:    start.Add(time.Duration(i) * time.Hour),
			Message: "commit " + strings.Repeat("i", i+1),
		})
	}
	return commits
}
