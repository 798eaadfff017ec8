// package analyzer drives a run: it resolves the repository, extracts its
// commit table and renders every report from it.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/config"
	"github.com/open-sauced/pizza/gitstats/pkg/extractor"
	"github.com/open-sauced/pizza/gitstats/pkg/github"
	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/providers"
	"github.com/open-sauced/pizza/gitstats/pkg/report"
	"github.com/open-sauced/pizza/gitstats/pkg/validator"
)

// Describer fetches repository metadata from the hosting service.
type Describer interface {
	DescribeRepo(ctx context.Context, owner, repo string) (*github.RepoSummary, error)
}

// StepResult is the outcome of one report step.
type StepResult struct {
	Name     string
	Artifact string
	Err      error
}

// StepsError is returned when one or more report steps failed.
type StepsError struct {
	Failed []StepResult
}

func (e *StepsError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, s := range e.Failed {
		names = append(names, s.Name)
	}
	return fmt.Sprintf("%d report step(s) failed: %s", len(e.Failed), strings.Join(names, ", "))
}

// Analyzer provides a leveled logger and the components of the pipeline.
type Analyzer struct {
	Logger    *zap.SugaredLogger
	Provider  providers.GitRepoProvider
	Extractor *extractor.Extractor
	Reporter  *report.Reporter

	// Describer is optional. Nil skips repository metadata.
	Describer Describer
}

// NewAnalyzer returns an Analyzer wired with the given components.
func NewAnalyzer(logger *zap.SugaredLogger, provider providers.GitRepoProvider, ext *extractor.Extractor, rep *report.Reporter) *Analyzer {
	return &Analyzer{
		Logger:    logger,
		Provider:  provider,
		Extractor: ext,
		Reporter:  rep,
	}
}

// Run resolves cfg.Repo, extracts its history and renders the reports.
// Provider and extraction failures end the run. Report steps are isolated
// from each other unless cfg.FailFast is set; their failures are collected
// into a StepsError.
func (a *Analyzer) Run(ctx context.Context, cfg *config.Config) ([]StepResult, error) {
	a.Logger.Infof("Resolving repository: %s", cfg.Repo)
	repo, err := a.Provider.FetchRepo(cfg.Repo, cfg.Path)
	if err != nil {
		return nil, err
	}
	defer repo.Done()

	if cfg.Describe {
		a.describe(ctx, cfg.Repo)
	}

	table, err := a.Extractor.Extract(repo, cfg.MaxCommits)
	if err != nil {
		return nil, err
	}

	return a.Report(table, cfg.Periods, cfg.FailFast)
}

// Report renders every report from an existing table, in a fixed order:
// contributors, one trend per period, churn, then the word cloud.
func (a *Analyzer) Report(table *insights.CommitTable, periods []string, failFast bool) ([]StepResult, error) {
	type step struct {
		name   string
		render func() (string, error)
	}

	steps := []step{{"contributors", func() (string, error) { return a.Reporter.Contributors(table) }}}
	for _, p := range periods {
		period := p
		steps = append(steps, step{"trend_" + period, func() (string, error) { return a.Reporter.Trend(table, period) }})
	}
	steps = append(steps,
		step{"churn", func() (string, error) { return a.Reporter.Churn(table) }},
		step{"wordcloud", func() (string, error) { return a.Reporter.WordCloud(table) }},
	)

	var results []StepResult
	var failed []StepResult
	for _, s := range steps {
		res := a.runStep(s.name, s.render)
		results = append(results, res)
		if res.Err == nil {
			continue
		}

		failed = append(failed, res)
		a.Logger.Errorf("Report step %s failed: %s", s.name, res.Err.Error())
		if failFast {
			a.Logger.Warnf("Fail fast is set, skipping the remaining report steps")
			break
		}
	}

	if len(failed) > 0 {
		return results, &StepsError{Failed: failed}
	}
	a.Logger.Infof("All %d report steps completed", len(results))
	return results, nil
}

// runStep turns a panicking renderer into a failed step.
func (a *Analyzer) runStep(name string, render func() (string, error)) (res StepResult) {
	res.Name = name
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("panic while rendering %s: %v", name, rec)
		}
	}()

	a.Logger.Debugf("Running report step: %s", name)
	res.Artifact, res.Err = render()
	return res
}

func (a *Analyzer) describe(ctx context.Context, repo string) {
	if a.Describer == nil {
		return
	}

	owner, name, ok := validator.GithubOwnerRepo(repo)
	if !ok {
		a.Logger.Warnf("Repository %s is not hosted on github.com, skipping its metadata", repo)
		return
	}

	summary, err := a.Describer.DescribeRepo(ctx, owner, name)
	if err != nil {
		a.Logger.Warnf("Could not fetch repository metadata, continuing: %s", err.Error())
		return
	}
	if err := a.Reporter.Repository(summary); err != nil {
		a.Logger.Warnf("Could not print repository metadata: %s", err.Error())
	}
}
