package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GithubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	c.client.BaseURL = base
	return c
}

func TestDescribeRepo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/psf/requests" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"full_name": "psf/requests",
			"description": "A simple, yet elegant, HTTP library.",
			"default_branch": "main",
			"stargazers_count": 51000,
			"forks_count": 9000,
			"open_issues_count": 250,
			"archived": false
		}`)
	})

	got, err := c.DescribeRepo(context.Background(), "psf", "requests")
	require.NoError(t, err)
	assert.Equal(t, &RepoSummary{
		FullName:      "psf/requests",
		Description:   "A simple, yet elegant, HTTP library.",
		DefaultBranch: "main",
		Stars:         51000,
		Forks:         9000,
		OpenIssues:    250,
	}, got)
}

func TestDescribeRepoNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	_, err := c.DescribeRepo(context.Background(), "psf", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "psf/missing")
}
