package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrNotRepository is returned when the local path is a non-empty directory
// that does not hold a git repository.
var ErrNotRepository = errors.New("local path exists but is not a git repository")

// CloneFunc clones a repository into path. It matches git.PlainClone with the
// bare flag fixed to false.
type CloneFunc func(path string, o *git.CloneOptions) (*git.Repository, error)

func plainClone(path string, o *git.CloneOptions) (*git.Repository, error) {
	return git.PlainClone(path, false, o)
}

// RepoDir is a key / value pair which represents the key to a git repository
// (typically the remote URL) and its file path on disk.
//
// A RepoDir caches by presence: when its path already holds a git repository
// that repository is used as-is and the remote is never contacted. Staleness
// is accepted unless Fetch is called explicitly.
type RepoDir struct {
	// key is, generally, the remote URL for the git repository
	key string

	// path denotes the filepath on-disk to the cloned git repository
	path string

	// minFreeDiskGb is the minimum amount of available disk (in Gb) required
	// before a new clone is attempted. Zero disables the check.
	minFreeDiskGb uint64

	clone CloneFunc
}

// NewRepoDir returns a RepoDir for the repository at key cloned into path.
func NewRepoDir(key, path string, minFreeDiskGb uint64) *RepoDir {
	return &RepoDir{
		key:           key,
		path:          filepath.Clean(path),
		minFreeDiskGb: minFreeDiskGb,
		clone:         plainClone,
	}
}

// WithCloneFunc replaces the function used to clone missing repositories.
func (g *RepoDir) WithCloneFunc(fn CloneFunc) *RepoDir {
	g.clone = fn
	return g
}

// Path returns the on-disk location of the clone.
func (g *RepoDir) Path() string {
	return g.path
}

// OpenOrClone returns the repository stored at the RepoDir's path, cloning it
// first when the path does not exist or is an empty directory. A non-empty
// directory that is not a git repository is never touched and fails with
// ErrNotRepository. The boolean result reports whether a clone happened.
func (g *RepoDir) OpenOrClone(auth transport.AuthMethod) (*git.Repository, bool, error) {
	// Check the directory based on the input key
	existed := false
	_, err := os.Stat(g.path)
	if err == nil {
		existed = true

		// The directory exists already on disk. If it is a valid git repo it
		// can be used without having to re-clone it.
		repo, openErr := git.PlainOpen(g.path)
		if openErr == nil {
			return repo, false, nil
		}

		entries, err := os.ReadDir(g.path)
		if err != nil {
			return nil, false, fmt.Errorf("could not read local repository path %s: %s", g.path, err.Error())
		}
		if len(entries) > 0 {
			return nil, false, fmt.Errorf("%w: %s holds %d entries (%s)", ErrNotRepository, g.path, len(entries), openErr.Error())
		}
	} else if !os.IsNotExist(err) {
		return nil, false, fmt.Errorf("could not stat local repository path: %s", err.Error())
	}

	if err := g.ensureFreeDisk(); err != nil {
		return nil, false, err
	}

	// Create the directory and all its parent dirs
	err = os.MkdirAll(g.path, os.ModePerm)
	if err != nil {
		return nil, false, fmt.Errorf("could not create directory for clone: %s", err.Error())
	}

	// Clone the full history to disk
	repo, err := g.clone(g.path, &git.CloneOptions{
		URL:  g.key,
		Auth: auth,
		Tags: git.NoTags,
	})
	if err != nil {
		// leave no half-written clone behind, it would be reused next run.
		// The directory was empty or missing before, so only clone output
		// is removed here.
		g.discardClone(existed)
		return nil, false, fmt.Errorf("could not clone into %s: %s", g.path, err.Error())
	}

	return repo, true, nil
}

// discardClone removes what a failed clone wrote. A directory that existed
// (empty) before the clone is kept and emptied.
func (g *RepoDir) discardClone(existed bool) {
	if !existed {
		_ = os.RemoveAll(g.path)
		return
	}
	entries, err := os.ReadDir(g.path)
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = os.RemoveAll(filepath.Join(g.path, e.Name()))
	}
}

// Fetch pulls the latest changes from the origin remote into the repository's
// current branch. If the git.NoErrAlreadyUpToDate error is produced, this
// function does not return an error.
func (g *RepoDir) Fetch(repo *git.Repository, auth transport.AuthMethod) error {
	// Get the worktree for the repository
	w, err := repo.Worktree()
	if err != nil {
		return err
	}

	// Pull the latest changes from the origin remote and merge into the current branch
	err = w.Pull(&git.PullOptions{Auth: auth})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return err
	}

	return nil
}

// ensureFreeDisk compares the available bytes on the filesystem that will
// hold the clone with the RepoDir's minFreeDiskGb.
func (g *RepoDir) ensureFreeDisk() error {
	if g.minFreeDiskGb == 0 {
		return nil
	}

	// the clone dir may not exist yet, measure its closest existing ancestor
	dir := g.path
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	freeSpace, err := availableBytes(dir)
	if err != nil {
		return fmt.Errorf("could not calculate disk space: %s", err.Error())
	}

	// lazy convert gb -> mb -> kb -> bytes
	minFreeBytes := g.minFreeDiskGb * 1024 * 1024 * 1024

	if freeSpace <= minFreeBytes {
		return fmt.Errorf("minimum free disk space: %d exceeds actual available disk space: %d", minFreeBytes, freeSpace)
	}

	return nil
}
