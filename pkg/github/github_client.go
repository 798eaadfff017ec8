package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v54/github"
	"github.com/pkg/errors"
)

type GithubClient struct {
	client *github.Client
}

// RepoSummary is the repository metadata printed next to the reports.
type RepoSummary struct {
	FullName      string
	Description   string
	DefaultBranch string
	Stars         int
	Forks         int
	OpenIssues    int
	Archived      bool
}

func NewTokenClient(token string) *GithubClient {
	ctx := context.Background()
	s := &GithubClient{
		client: github.NewTokenClient(ctx, token),
	}
	return s
}

func NewClient(httpClient *http.Client) *GithubClient {
	s := &GithubClient{
		client: github.NewClient(httpClient),
	}
	return s
}

// DescribeRepo fetches the metadata of owner/repo.
func (s *GithubClient) DescribeRepo(ctx context.Context, owner, repo string) (*RepoSummary, error) {
	r, _, err := s.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, errors.Wrapf(err, "could not describe %s/%s", owner, repo)
	}

	return &RepoSummary{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Archived:      r.GetArchived(),
	}, nil
}
