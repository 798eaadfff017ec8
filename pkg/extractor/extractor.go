// package extractor walks a repository's commit log and turns it into the
// commit table every report is computed from.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/providers"
)

const (
	// DefaultMaxCount bounds the number of commits walked.
	DefaultMaxCount = 800

	// DefaultThrottleEvery is how many commits are processed between pauses.
	DefaultThrottleEvery = 20

	// DefaultThrottlePause is the pause inserted while walking.
	DefaultThrottlePause = 100 * time.Millisecond

	shortHashLen    = 8
	maxReasonLength = 50
)

// ExtractionError is returned when the commit log cannot be read at all.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract commits: %s", e.Err.Error())
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SkipError describes a single commit left out of the table because one of
// its fields could not be read.
type SkipError struct {
	Hash   string
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped commit %s: %s", e.Hash, e.Reason)
}

// Options configures an Extractor.
type Options struct {
	// ThrottleEvery pauses the walk before every ThrottleEvery-th commit,
	// counting from the first. Zero disables throttling.
	ThrottleEvery int
	ThrottlePause time.Duration

	// OutputPath is where the table is written as CSV. Empty skips writing.
	OutputPath string

	// Location is the zone commit times are expressed in. Nil means local.
	Location *time.Location
}

// DefaultOptions returns the options used by the command line.
func DefaultOptions(outputDir string) Options {
	return Options{
		ThrottleEvery: DefaultThrottleEvery,
		ThrottlePause: DefaultThrottlePause,
		OutputPath:    filepath.Join(outputDir, insights.CommitHistoryFile),
	}
}

// Extractor builds commit tables from a GitRepo.
type Extractor struct {
	logger *zap.SugaredLogger
	opts   Options
	sleep  func(time.Duration)
}

// New returns an Extractor with the given logger and options.
func New(logger *zap.SugaredLogger, opts Options) *Extractor {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Extractor{
		logger: logger,
		opts:   opts,
		sleep:  time.Sleep,
	}
}

// Extract walks at most maxCount commits of repo and returns them as a table
// sorted by commit time. Commits whose fields cannot be read are logged and
// dropped; only a log that cannot be walked at all is an error.
func (e *Extractor) Extract(repo providers.GitRepo, maxCount int) (*insights.CommitTable, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	e.logger.Infof("Extracting up to %d commits", maxCount)
	commits, err := repo.Walk(maxCount)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	if len(commits) > maxCount {
		commits = commits[:maxCount]
	}

	records := make([]insights.CommitRecord, 0, len(commits))
	skipped := 0
	for idx, raw := range commits {
		if e.opts.ThrottleEvery > 0 && idx%e.opts.ThrottleEvery == 0 {
			e.sleep(e.opts.ThrottlePause)
		}

		record, err := e.toRecord(raw)
		if err != nil {
			skipped++
			reason := err.Error()
			var skip *SkipError
			if errors.As(err, &skip) {
				reason = skip.Reason
			}
			e.logger.Warnf("Skipping commit %s: %s", shortHash(raw.Hash), truncate(reason, maxReasonLength))
			continue
		}
		records = append(records, record)
	}

	table := insights.NewCommitTable(records)

	if e.opts.OutputPath != "" {
		if err := table.SaveCSV(e.opts.OutputPath); err != nil {
			return nil, &ExtractionError{Err: errors.Wrap(err, "could not save commit history")}
		}
		e.logger.Debugf("Wrote commit history to %s", e.opts.OutputPath)
	}

	e.logger.Infof("Extraction complete: %d valid commits, %d skipped", table.Len(), skipped)
	return table, nil
}

func (e *Extractor) toRecord(raw providers.RawCommit) (insights.CommitRecord, error) {
	if raw.Hash == "" {
		return insights.CommitRecord{}, &SkipError{Hash: "unknown", Reason: "missing hash"}
	}
	if raw.Stats == nil {
		return insights.CommitRecord{}, &SkipError{Hash: shortHash(raw.Hash), Reason: "stats unavailable"}
	}

	stats, err := raw.Stats()
	if err != nil {
		return insights.CommitRecord{}, &SkipError{Hash: shortHash(raw.Hash), Reason: err.Error()}
	}
	if stats.Insertions < 0 || stats.Deletions < 0 {
		return insights.CommitRecord{}, &SkipError{Hash: shortHash(raw.Hash), Reason: "negative line counts"}
	}

	return insights.CommitRecord{
		Hash:        shortHash(raw.Hash),
		AuthorName:  raw.AuthorName,
		AuthorEmail: raw.AuthorEmail,
		CommitTime:  time.Unix(raw.CommittedAt, 0).In(e.opts.Location),
		Message:     strings.TrimSpace(raw.Message),
		Insertions:  stats.Insertions,
		Deletions:   stats.Deletions,
	}, nil
}

func shortHash(hash string) string {
	if len(hash) > shortHashLen {
		return hash[:shortHashLen]
	}
	return hash
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
