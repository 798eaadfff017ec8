package providers

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/open-sauced/pizza/gitstats/pkg/cache"
	"github.com/open-sauced/pizza/gitstats/pkg/gittest"
)

var start = time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)

type mockTrust struct {
	mock.Mock
}

func (m *mockTrust) Register(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func failClone(t *testing.T) func(string, *git.CloneOptions) (*git.Repository, error) {
	return func(string, *git.CloneOptions) (*git.Repository, error) {
		t.Fatal("clone must not be called")
		return nil, nil
	}
}

func TestDiskProviderReusesLocalClone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp_repo")
	_, hashes := gittest.NewRepo(t, path, gittest.Linear(3, start))

	trust := &mockTrust{}
	trust.On("Register", path).Return(nil).Once()

	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{Trust: trust}).
		WithCloneFunc(failClone(t))

	repo, err := provider.FetchRepo("https://github.com/psf/requests.git", path)
	require.NoError(t, err)
	defer repo.Done()

	commits, err := repo.Walk(0)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	// most recent first
	assert.Equal(t, hashes[2], commits[0].Hash)
	assert.Equal(t, hashes[0], commits[2].Hash)
	trust.AssertExpectations(t)
}

func TestDiskProviderTrustFailureIsNonFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp_repo")
	gittest.NewRepo(t, path, gittest.Linear(1, start))

	trust := &mockTrust{}
	trust.On("Register", mock.AnythingOfType("string")).Return(errors.New("permission denied"))

	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{Trust: trust}).
		WithCloneFunc(failClone(t))

	repo, err := provider.FetchRepo("https://github.com/psf/requests.git", path)
	require.NoError(t, err)
	assert.NotNil(t, repo)
	trust.AssertExpectations(t)
}

func TestDiskProviderClonesMissingPath(t *testing.T) {
	source := filepath.Join(t.TempDir(), "source")
	gittest.NewRepo(t, source, gittest.Linear(5, start))

	target := filepath.Join(t.TempDir(), "clone")
	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{})

	repo, err := provider.FetchRepo(source, target)
	require.NoError(t, err)

	commits, err := repo.Walk(2)
	require.NoError(t, err)
	assert.Len(t, commits, 2)
}

func TestDiskProviderInvalidReference(t *testing.T) {
	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{}).
		WithCloneFunc(failClone(t))

	_, err := provider.FetchRepo("ftp://example.com/repo", filepath.Join(t.TempDir(), "clone"))
	require.Error(t, err)

	var providerErr *ProviderError
	assert.True(t, errors.As(err, &providerErr))
}

func TestDiskProviderCloneFailure(t *testing.T) {
	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{}).
		WithCloneFunc(func(string, *git.CloneOptions) (*git.Repository, error) {
			return nil, errors.New("authentication required")
		})

	_, err := provider.FetchRepo("https://github.com/private/repo", filepath.Join(t.TempDir(), "clone"))

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Contains(t, providerErr.Error(), "authentication required")
}

func TestDiskProviderRejectsNonRepositoryPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-notes")
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "thesis.txt"), []byte("draft"), 0o644))

	provider := NewDiskGitRepoProvider(zaptest.NewLogger(t).Sugar(), DiskOptions{}).
		WithCloneFunc(failClone(t))

	_, err := provider.FetchRepo("https://github.com/psf/requests.git", path)

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.True(t, errors.Is(err, cache.ErrNotRepository))
	assert.FileExists(t, filepath.Join(path, "thesis.txt"))
}

func TestMemoryProviderClonesLocalSource(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}

	source := filepath.Join(t.TempDir(), "source")
	gittest.NewRepo(t, source, gittest.Linear(2, start))

	provider := NewInMemoryGitRepoProvider(zaptest.NewLogger(t).Sugar(), "")
	repo, err := provider.FetchRepo(source, "ignored")
	require.NoError(t, err)

	commits, err := repo.Walk(10)
	require.NoError(t, err)
	assert.Len(t, commits, 2)
}

func TestWalkComputesLineStats(t *testing.T) {
	path := t.TempDir()
	gittest.NewRepo(t, path, []gittest.Commit{
		{Lines: []string{"a", "b", "c"}, Author: "Alice", Email: "a@x.io", When: start, Message: "first\n"},
		{Lines: []string{"a", "c", "d", "e"}, Author: "Bob", Email: "b@x.io", When: start.Add(time.Hour), Message: "second\n"},
	})

	repo, err := git.PlainOpen(path)
	require.NoError(t, err)

	log := NewRepoLog(repo)
	commits, err := log.Walk(0)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	latest := commits[0]
	assert.Equal(t, "Bob", latest.AuthorName)
	assert.Equal(t, "b@x.io", latest.AuthorEmail)
	assert.Equal(t, start.Add(time.Hour).Unix(), latest.CommittedAt)
	assert.Equal(t, "second\n", latest.Message)

	stats, err := latest.Stats()
	require.NoError(t, err)
	assert.Equal(t, LineStats{Insertions: 2, Deletions: 1}, stats)

	root, err := commits[1].Stats()
	require.NoError(t, err)
	assert.Equal(t, LineStats{Insertions: 3}, root)

	log.Done()
	_, err = log.Walk(1)
	assert.Error(t, err)
}

func TestTokenAuth(t *testing.T) {
	t.Parallel()

	assert.Nil(t, tokenAuth("https://github.com/psf/requests.git", ""))
	assert.Nil(t, tokenAuth("git@github.com:psf/requests.git", "secret"))

	auth, ok := tokenAuth("https://github.com/psf/requests.git", "secret").(*githttp.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "secret", auth.Password)
}

func TestRedact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://redacted@github.com/psf/requests.git", redact("https://tok@github.com/psf/requests.git"))
	assert.Equal(t, "https://github.com/psf/requests.git", redact("https://github.com/psf/requests.git"))
}
