package common

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// IsValidGitRepo returns true if the provided git repo URL is a valid and reachable
// git repository. This is equivalent to running "git ls-remote" on the provided
// URL string. This may result in some unexpected "authentication required" or
// "repository not found" errors which is standard for git to return in these
// situations.
func IsValidGitRepo(repoURL string, auth transport.AuthMethod) (bool, error) {
	remoteConfig := &config.RemoteConfig{
		Name: "source",
		URLs: []string{
			repoURL,
		},
	}

	remote := git.NewRemote(memory.NewStorage(), remoteConfig)

	_, err := remote.List(&git.ListOptions{Auth: auth})
	if err != nil {
		return false, fmt.Errorf("could not list remote repository: %s", err.Error())
	}

	return true, nil
}

// IsLocalReference reports whether the reference names a path on disk rather
// than a remote URL.
func IsLocalReference(reference string) bool {
	if strings.HasPrefix(reference, "file://") {
		return true
	}
	if strings.Contains(reference, "://") {
		return false
	}
	// scp-like ssh syntax: git@github.com:owner/repo.git
	if i := strings.Index(reference, ":"); i > 0 && !filepath.IsAbs(reference) && !strings.Contains(reference[:i], "/") {
		return false
	}
	return true
}

// NormalizeGitURL attempts to take a raw repository reference and ensure it is
// normalized before being cloned. Local paths are cleaned, remote URLs must use
// a supported scheme and lose any trailing slash.
func NormalizeGitURL(repoURL string) (string, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return "", fmt.Errorf("empty repository reference")
	}

	if IsLocalReference(repoURL) {
		if strings.HasPrefix(repoURL, "file://") {
			return "file://" + filepath.ToSlash(filepath.Clean(strings.TrimPrefix(repoURL, "file://"))), nil
		}
		return filepath.Clean(repoURL), nil
	}

	if !strings.Contains(repoURL, "://") {
		// scp-like syntax carries no scheme to validate
		return strings.TrimSuffix(repoURL, "/"), nil
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil {
		return "", err
	}

	// Check if it has a valid protocol specified (e.g., https, ssh, git)
	switch parsedURL.Scheme {
	case "git", "https", "http", "ssh":
	default:
		return "", fmt.Errorf("repo URL missing valid protocol scheme (https, http, git, ssh, file): %s", repoURL)
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("repo URL missing host: %s", repoURL)
	}

	// Trim trailing slashes
	// Example: https://github.com/psf/requests/ to https://github.com/psf/requests
	parsedURL.Path = strings.TrimRight(parsedURL.Path, "/")

	return parsedURL.String(), nil
}
