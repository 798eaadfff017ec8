// Package report renders aggregated commit statistics: a console table and
// exactly one image per report.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/aggregate"
	"github.com/open-sauced/pizza/gitstats/pkg/github"
	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/tokenize"
)

// Artifact file names written inside the output directory.
const (
	ContributorsFile = "contributor_top10.png"
	ChurnFile        = "code_churn_year.png"
	WordCloudFile    = "commit_message_wordcloud.png"
)

// TrendFile returns the artifact file name of a trend chart.
func TrendFile(period aggregate.Period) string {
	return fmt.Sprintf("commit_trend_%s.png", period)
}

const (
	defaultDPI    = 150
	topN          = 10
	trendTailSize = 10
)

var headingColor = color.New(color.FgCyan, color.Bold)

// RenderError is returned when an artifact could not be produced.
type RenderError struct {
	Artifact string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("could not render %s: %s", e.Artifact, e.Err.Error())
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Options configures a Reporter.
type Options struct {
	OutputDir string

	// DPI of the chart images. Zero uses a default.
	DPI int

	Fonts FontConfig

	// Tokenizer splits commit messages for the word cloud. Nil uses
	// Unicode word boundaries.
	Tokenizer tokenize.Tokenizer

	// StopWords are excluded from the word cloud. Nil uses the defaults.
	StopWords []string
}

// Reporter prints summaries to out and writes chart images to the output
// directory.
type Reporter struct {
	logger *zap.SugaredLogger
	out    io.Writer
	opts   Options
}

// New returns a Reporter.
func New(logger *zap.SugaredLogger, out io.Writer, opts Options) *Reporter {
	if opts.DPI <= 0 {
		opts.DPI = defaultDPI
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenize.Unicode{}
	}
	if opts.StopWords == nil {
		opts.StopWords = aggregate.DefaultStopWords
	}
	return &Reporter{logger: logger, out: out, opts: opts}
}

func (r *Reporter) artifact(name string) string {
	return filepath.Join(r.opts.OutputDir, name)
}

// Contributors reports the ten authors with the most commits.
func (r *Reporter) Contributors(table *insights.CommitTable) (string, error) {
	top := aggregate.TopContributors(table, topN)

	r.heading("Top %d contributors by commits", topN)
	rows := make([][]string, 0, len(top))
	for i, c := range top {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.Name, strconv.Itoa(c.Commits)})
	}
	if err := r.printTable([]string{"Rank", "Author", "Commits"}, rows); err != nil {
		return "", err
	}

	path := r.artifact(ContributorsFile)
	if err := r.contributorChart(top, path); err != nil {
		return "", &RenderError{Artifact: path, Err: err}
	}
	r.logger.Infof("Contributor chart saved to %s", path)
	return path, nil
}

// Trend reports commit counts per period bucket. An unsupported period fails
// with an aggregate.ConfigurationError before anything is written.
func (r *Reporter) Trend(table *insights.CommitTable, period string) (string, error) {
	p, err := aggregate.ParsePeriod(period)
	if err != nil {
		return "", err
	}

	points, err := aggregate.CommitTrend(table, p)
	if err != nil {
		return "", err
	}

	r.heading("Commit trend per %s (last %d)", p.Label(), trendTailSize)
	tail := points
	if len(tail) > trendTailSize {
		tail = tail[len(tail)-trendTailSize:]
	}
	rows := make([][]string, 0, len(tail))
	for _, pt := range tail {
		rows = append(rows, []string{pt.End.Format("2006-01-02"), strconv.Itoa(pt.Commits)})
	}
	if err := r.printTable([]string{"Period end", "Commits"}, rows); err != nil {
		return "", err
	}

	path := r.artifact(TrendFile(p))
	if err := r.trendChart(points, p, path); err != nil {
		return "", &RenderError{Artifact: path, Err: err}
	}
	r.logger.Infof("Trend chart saved to %s", path)
	return path, nil
}

// Churn reports inserted and deleted lines per year.
func (r *Reporter) Churn(table *insights.CommitTable) (string, error) {
	churn := aggregate.ChurnByYear(table)

	r.heading("Code churn per year")
	rows := make([][]string, 0, len(churn))
	for _, yc := range churn {
		rows = append(rows, []string{
			strconv.Itoa(yc.Year),
			strconv.Itoa(yc.Insertions),
			strconv.Itoa(yc.Deletions),
			strconv.Itoa(yc.NetChange),
		})
	}
	if err := r.printTable([]string{"Year", "Insertions", "Deletions", "Net change"}, rows); err != nil {
		return "", err
	}

	path := r.artifact(ChurnFile)
	if err := r.churnChart(churn, path); err != nil {
		return "", &RenderError{Artifact: path, Err: err}
	}
	r.logger.Infof("Churn chart saved to %s", path)
	return path, nil
}

// WordCloud reports the most frequent words of the commit messages.
func (r *Reporter) WordCloud(table *insights.CommitTable) (string, error) {
	tokens := aggregate.MessageTokens(table, r.opts.Tokenizer, aggregate.StopWordSet(r.opts.StopWords))
	freq := aggregate.WordFrequencies(tokens, aggregate.MaxCloudWords)

	r.heading("Commit message words (top %d)", topN)
	rows := make([][]string, 0, topN)
	for i, wc := range freq {
		if i == topN {
			break
		}
		rows = append(rows, []string{wc.Word, strconv.Itoa(wc.Count)})
	}
	if err := r.printTable([]string{"Word", "Count"}, rows); err != nil {
		return "", err
	}

	path := r.artifact(WordCloudFile)
	if err := r.wordCloud(freq, path); err != nil {
		return "", &RenderError{Artifact: path, Err: err}
	}
	r.logger.Infof("Word cloud saved to %s", path)
	return path, nil
}

// Repository prints the metadata of the analyzed repository.
func (r *Reporter) Repository(s *github.RepoSummary) error {
	r.heading("Repository %s", s.FullName)
	return r.printTable([]string{"Field", "Value"}, [][]string{
		{"Description", s.Description},
		{"Default branch", s.DefaultBranch},
		{"Stars", strconv.Itoa(s.Stars)},
		{"Forks", strconv.Itoa(s.Forks)},
		{"Open issues", strconv.Itoa(s.OpenIssues)},
		{"Archived", strconv.FormatBool(s.Archived)},
	})
}

func (r *Reporter) heading(format string, args ...any) {
	_, _ = headingColor.Fprintf(r.out, "\n=== "+format+" ===\n", args...)
}

func (r *Reporter) printTable(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(r.out)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
