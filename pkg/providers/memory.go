package providers

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/common"
)

// InMemoryGitRepoProvider implements and satisfies the GitRepoProvider
// interface. Nothing is written to disk and nothing is reused between runs.
type InMemoryGitRepoProvider struct {
	Logger      *zap.SugaredLogger
	AccessToken string
}

// NewInMemoryGitRepoProvider returns a new InMemoryGitRepoProvider using a
// configured logger
func NewInMemoryGitRepoProvider(logger *zap.SugaredLogger, accessToken string) *InMemoryGitRepoProvider {
	return &InMemoryGitRepoProvider{
		Logger:      logger,
		AccessToken: accessToken,
	}
}

// FetchRepo clones the configured repository into memory. localPath is
// ignored.
func (im *InMemoryGitRepoProvider) FetchRepo(reference, _ string) (GitRepo, error) {
	normalized, err := common.NormalizeGitURL(reference)
	if err != nil {
		return nil, &ProviderError{Reference: reference, Err: err}
	}

	im.Logger.Infof("Cloning repository into memory: %s", redact(normalized))
	inMemRepo, err := git.Clone(memory.NewStorage(), nil, &git.CloneOptions{
		URL:          normalized,
		Auth:         tokenAuth(normalized, im.AccessToken),
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return nil, &ProviderError{
			Reference: normalized,
			Err:       fmt.Errorf("could not clone in memory repo using in memory git repo provider: %s", err.Error()),
		}
	}

	return NewRepoLog(inMemRepo), nil
}
