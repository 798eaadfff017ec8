package providers

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// TrustRegistrar marks a local repository path as trusted for the git
// tooling operating on it.
type TrustRegistrar interface {
	Register(path string) error
}

// GitSafeDirectory registers paths in git's global safe.directory list by
// executing the local 'git' binary. Each path is registered at most once.
type GitSafeDirectory struct {
	registered map[string]bool
}

var _ TrustRegistrar = &GitSafeDirectory{} // Compile-time check

// NewGitSafeDirectory creates a new registrar.
func NewGitSafeDirectory() *GitSafeDirectory {
	return &GitSafeDirectory{registered: make(map[string]bool)}
}

// Register implements the TrustRegistrar interface.
func (g *GitSafeDirectory) Register(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs = filepath.ToSlash(abs)

	if g.registered[abs] {
		return nil
	}

	out, err := run("config", "--global", "--get-all", "safe.directory")
	// exit status 1 means the key is unset, anything else is a real failure
	var exitErr *exec.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		return err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == abs || strings.TrimSpace(line) == "*" {
			g.registered[abs] = true
			return nil
		}
	}

	if _, err := run("config", "--global", "--add", "safe.directory", abs); err != nil {
		return err
	}
	g.registered[abs] = true
	return nil
}

func run(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == 1 && len(exitErr.Stderr) == 0 {
			return out, err
		}
		return nil, fmt.Errorf("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}
