package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/providers"
)

// fakeRepo is a GitRepo serving canned commits.
type fakeRepo struct {
	commits []providers.RawCommit
	err     error
	asked   int
}

func (f *fakeRepo) Walk(maxCount int) ([]providers.RawCommit, error) {
	f.asked = maxCount
	if f.err != nil {
		return nil, f.err
	}
	if maxCount > 0 && len(f.commits) > maxCount {
		return f.commits[:maxCount], nil
	}
	return f.commits, nil
}

func (f *fakeRepo) Done() {}

var base = time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

func stats(ins, del int) func() (providers.LineStats, error) {
	return func() (providers.LineStats, error) {
		return providers.LineStats{Insertions: ins, Deletions: del}, nil
	}
}

// newest-first commits, as a provider would return them
func syntheticCommits(n int) []providers.RawCommit {
	commits := make([]providers.RawCommit, 0, n)
	for i := n - 1; i >= 0; i-- {
		commits = append(commits, providers.RawCommit{
			Hash:        fmt.Sprintf("%08x%032d", i+1, 0),
			AuthorName:  "Alice",
			AuthorEmail: "alice@example.com",
			CommittedAt: base.Add(time.Duration(i) * time.Hour).Unix(),
			Message:     fmt.Sprintf("  commit %d \n", i),
			Stats:       stats(i, 1),
		})
	}
	return commits
}

func newTestExtractor(t *testing.T, opts Options) (*Extractor, *[]time.Duration) {
	opts.Location = time.UTC
	e := New(zaptest.NewLogger(t).Sugar(), opts)
	var pauses []time.Duration
	e.sleep = func(d time.Duration) { pauses = append(pauses, d) }
	return e, &pauses
}

func TestExtractSortsAndMapsRecords(t *testing.T) {
	e, _ := newTestExtractor(t, Options{})

	table, err := e.Extract(&fakeRepo{commits: syntheticCommits(5)}, 10)
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	for i := 1; i < table.Len(); i++ {
		assert.False(t, table.At(i).CommitTime.Before(table.At(i-1).CommitTime))
	}

	first := table.At(0)
	assert.Equal(t, "00000001", first.Hash)
	assert.Len(t, first.Hash, 8)
	assert.Equal(t, "commit 0", first.Message)
	assert.Equal(t, base, first.CommitTime)
	assert.Equal(t, 0, first.Insertions)
	assert.Equal(t, 1, first.Deletions)
}

func TestExtractBoundsRecordCount(t *testing.T) {
	e, _ := newTestExtractor(t, Options{})
	repo := &fakeRepo{commits: syntheticCommits(30)}

	table, err := e.Extract(repo, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, repo.asked)
	assert.Equal(t, 12, table.Len())

	// the twelve most recent commits survive
	first, last, _ := table.Span()
	assert.Equal(t, base.Add(18*time.Hour), first)
	assert.Equal(t, base.Add(29*time.Hour), last)
}

func TestExtractDefaultsMaxCount(t *testing.T) {
	e, _ := newTestExtractor(t, Options{})
	repo := &fakeRepo{commits: syntheticCommits(1)}

	_, err := e.Extract(repo, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCount, repo.asked)
}

func TestExtractDropsUnreadableCommits(t *testing.T) {
	commits := syntheticCommits(6)
	commits[1].Stats = func() (providers.LineStats, error) {
		return providers.LineStats{}, errors.New("object not found: parent tree is missing from the packfile index")
	}
	commits[3].Stats = nil
	commits[4].Hash = ""

	core, logs := observer.New(zap.WarnLevel)
	e := New(zap.New(core).Sugar(), Options{Location: time.UTC})

	table, err := e.Extract(&fakeRepo{commits: commits}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	skips := logs.FilterMessageSnippet("Skipping commit").All()
	require.Len(t, skips, 3)
	assert.Equal(t, "Skipping commit 00000005: object not found: parent tree is missing from the ", skips[0].Message)
}

func TestExtractEachDropRemovesExactlyOneRow(t *testing.T) {
	for drop := 0; drop < 4; drop++ {
		commits := syntheticCommits(4)
		commits[drop].Stats = func() (providers.LineStats, error) {
			return providers.LineStats{}, errors.New("binary diff")
		}

		e, _ := newTestExtractor(t, Options{})
		table, err := e.Extract(&fakeRepo{commits: commits}, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, table.Len())
		for _, r := range table.Records() {
			assert.NotEqual(t, commits[drop].Hash[:8], r.Hash)
		}
	}
}

func TestExtractWalkFailure(t *testing.T) {
	e, _ := newTestExtractor(t, Options{})

	_, err := e.Extract(&fakeRepo{err: errors.New("reference not found")}, 10)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, err.Error(), "reference not found")
}

func TestExtractThrottles(t *testing.T) {
	e, pauses := newTestExtractor(t, Options{ThrottleEvery: 20, ThrottlePause: 5 * time.Millisecond})

	commits := syntheticCommits(45)
	commits[20].Stats = nil // skipped commits still count towards the pacing

	_, err := e.Extract(&fakeRepo{commits: commits}, 100)
	require.NoError(t, err)

	// before commits 0, 20 and 40
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond}, *pauses)
}

func TestExtractWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	opts := DefaultOptions(dir)
	opts.ThrottleEvery = 0

	e, _ := newTestExtractor(t, opts)
	table, err := e.Extract(&fakeRepo{commits: syntheticCommits(3)}, 10)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, insights.CommitHistoryFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\ufeffcommit_hash,"))

	loaded, err := insights.LoadCSV(filepath.Join(dir, insights.CommitHistoryFile), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, table.Records(), loaded.Records())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "提交信", truncate("提交信息", 3))
}
