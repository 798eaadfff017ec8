package providers

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/cache"
	"github.com/open-sauced/pizza/gitstats/pkg/common"
)

// DiskOptions configures a DiskGitRepoProvider.
type DiskOptions struct {
	// AccessToken is attached to http(s) fetches. Empty means public access.
	AccessToken string

	// MinFreeDiskGb refuses to clone when less space is available. Zero
	// disables the check.
	MinFreeDiskGb uint64

	// Refresh pulls the latest changes into a clone that already exists.
	Refresh bool

	// Trust registers the clone path with the git tooling. Nil skips it.
	Trust TrustRegistrar
}

// DiskGitRepoProvider is a git repository provider that keeps a single clone
// on disk and reuses it whenever the local path already holds a repository.
// DiskGitRepoProvider implements and satisfies the GitRepoProvider interface.
type DiskGitRepoProvider struct {
	logger *zap.SugaredLogger
	opts   DiskOptions
	clone  cache.CloneFunc
}

// NewDiskGitRepoProvider returns a new DiskGitRepoProvider using the
// configured logger and options.
func NewDiskGitRepoProvider(l *zap.SugaredLogger, opts DiskOptions) *DiskGitRepoProvider {
	return &DiskGitRepoProvider{
		logger: l,
		opts:   opts,
		clone:  preflightClone,
	}
}

// WithCloneFunc replaces the function used to clone missing repositories.
func (d *DiskGitRepoProvider) WithCloneFunc(fn cache.CloneFunc) *DiskGitRepoProvider {
	d.clone = fn
	return d
}

// FetchRepo returns a GitRepo for reference backed by the clone at localPath,
// cloning it first if localPath does not hold a repository yet.
func (d *DiskGitRepoProvider) FetchRepo(reference, localPath string) (GitRepo, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return nil, &ProviderError{Reference: reference, Err: err}
	}

	if d.opts.Trust != nil {
		if err := d.opts.Trust.Register(abs); err != nil {
			d.logger.Warnf("Could not register %s as a git safe directory, continuing: %s", abs, err.Error())
		} else {
			d.logger.Debugf("Registered git safe directory: %s", abs)
		}
	}

	normalized, err := common.NormalizeGitURL(reference)
	if err != nil {
		return nil, &ProviderError{Reference: reference, Err: err}
	}

	auth := tokenAuth(normalized, d.opts.AccessToken)
	repoDir := cache.NewRepoDir(normalized, abs, d.opts.MinFreeDiskGb).WithCloneFunc(d.clone)

	d.logger.Debugf("Opening or cloning repo %s at %s", redact(normalized), abs)
	repo, cloned, err := repoDir.OpenOrClone(auth)
	if err != nil {
		return nil, &ProviderError{Reference: normalized, Err: err}
	}

	if cloned {
		d.logger.Infof("Cloned repository %s into %s", redact(normalized), abs)
	} else {
		d.logger.Infof("Local repository already exists at %s, loading it directly", abs)
		if d.opts.Refresh {
			d.logger.Debugf("Pulling latest changes into %s", abs)
			if err := repoDir.Fetch(repo, auth); err != nil {
				d.logger.Warnf("Could not refresh %s, using the local history as-is: %s", abs, err.Error())
			}
		}
	}

	return NewRepoLog(repo), nil
}

// preflightClone checks a remote is reachable before cloning it, so an
// unreachable or private repository fails fast with the remote's message.
func preflightClone(path string, o *git.CloneOptions) (*git.Repository, error) {
	if !common.IsLocalReference(o.URL) {
		if _, err := common.IsValidGitRepo(o.URL, o.Auth); err != nil {
			return nil, err
		}
	}
	return git.PlainClone(path, false, o)
}
