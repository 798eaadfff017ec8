package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGithubOwnerRepo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{name: "Plain", url: "https://github.com/psf/requests", owner: "psf", repo: "requests", ok: true},
		{name: "Git suffix", url: "https://github.com/psf/requests.git", owner: "psf", repo: "requests", ok: true},
		{name: "Dotted name", url: "https://github.com/open-sauced/pizza.cli", owner: "open-sauced", repo: "pizza.cli", ok: true},
		{name: "Other host", url: "https://gitlab.com/psf/requests", ok: false},
		{name: "Missing repo", url: "https://github.com/psf", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, ok := GithubOwnerRepo(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.ok, MatchesGithubURL(tt.url))
		})
	}
}

func TestValidatorErr(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err())

	ValidateReference(v, "  ")
	ValidateOneOf(v, "provider", "s3", "disk", "memory")
	v.CheckConstraint(false, "repo", "should not replace the first message")

	assert.False(t, v.Valid())
	assert.Len(t, v.Errors, 2)
	assert.EqualError(t, v.Err(),
		`invalid configuration: provider: "s3" is not one of disk, memory; repo: repository reference must be provided`)
}
