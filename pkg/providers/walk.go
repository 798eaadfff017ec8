package providers

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// RepoLog implements the GitRepo interface over an opened go-git repository.
type RepoLog struct {
	repo *git.Repository
}

// NewRepoLog wraps an opened repository.
func NewRepoLog(repo *git.Repository) *RepoLog {
	return &RepoLog{repo: repo}
}

// Walk implements the GitRepo interface.
func (r *RepoLog) Walk(maxCount int) ([]RawCommit, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("repository already released")
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("could not inspect HEAD: %s", err.Error())
	}

	// Committer time order matches what "git log" prints by default
	commitIter, err := r.repo.Log(&git.LogOptions{
		From:  ref.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open commit log: %s", err.Error())
	}
	defer commitIter.Close()

	var commits []RawCommit
	err = commitIter.ForEach(func(c *object.Commit) error {
		if maxCount > 0 && len(commits) >= maxCount {
			return storer.ErrStop
		}
		commits = append(commits, newRawCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not iterate commits: %s", err.Error())
	}

	return commits, nil
}

// Done releases the repository.
func (r *RepoLog) Done() {
	r.repo = nil
}

func newRawCommit(c *object.Commit) RawCommit {
	return RawCommit{
		Hash:        c.Hash.String(),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		CommittedAt: c.Committer.When.Unix(),
		Message:     c.Message,
		Stats: func() (LineStats, error) {
			fileStats, err := c.Stats()
			if err != nil {
				return LineStats{}, err
			}

			var total LineStats
			for _, fs := range fileStats {
				total.Insertions += fs.Addition
				total.Deletions += fs.Deletion
			}
			return total, nil
		},
	}
}
