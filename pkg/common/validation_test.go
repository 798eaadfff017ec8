package common

import "testing"

func TestNormalizeGitURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "Keeps the .git suffix",
			url:      "https://github.com/psf/requests.git",
			expected: "https://github.com/psf/requests.git",
		},
		{
			name:     "Removes trailing slash",
			url:      "https://github.com/user/repo/",
			expected: "https://github.com/user/repo",
		},
		{
			name:     "Trims surrounding whitespace",
			url:      "  https://github.com/user/repo  ",
			expected: "https://github.com/user/repo",
		},
		{
			name:     "Cleans local paths",
			url:      "./some/../repo/",
			expected: "repo",
		},
		{
			name:     "Cleans file URLs",
			url:      "file:///tmp/x/../repo",
			expected: "file:///tmp/repo",
		},
		{
			name:     "Keeps scp-like references",
			url:      "git@github.com:psf/requests.git",
			expected: "git@github.com:psf/requests.git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizedURL, err := NormalizeGitURL(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %s", err.Error())
			}

			if normalizedURL != tt.expected {
				t.Fatalf("normalized URL: %s is not expected: %s", normalizedURL, tt.expected)
			}
		})
	}
}

func TestNormalizeGitURLError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{
			name: "Empty reference fails",
			url:  "   ",
		},
		{
			name: "Malformed protocol fails",
			url:  "ht://github.com/user/repo",
		},
		{
			name: "Unusable protocol fails",
			url:  "ftp://github.com/user/repo",
		},
		{
			name: "Missing host fails",
			url:  "https:///user/repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizedURL, err := NormalizeGitURL(tt.url)
			if err == nil {
				t.Fatalf("expected error, got none: %s", normalizedURL)
			}
		})
	}
}

func TestIsLocalReference(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"/tmp/repo":                        true,
		"./temp_repo":                      true,
		"file:///tmp/repo":                 true,
		"https://github.com/psf/requests":  false,
		"git@github.com:psf/requests.git":  false,
		"ssh://git@github.com/psf/requests": false,
	}

	for ref, want := range tests {
		if got := IsLocalReference(ref); got != want {
			t.Errorf("IsLocalReference(%q) = %v, want %v", ref, got, want)
		}
	}
}
