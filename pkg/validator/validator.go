// package validator provides the necessary utilities
// to validate configuration before a run touches the network or the disk
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	githubRegex = regexp.MustCompile(`^https://github.com/([\w.-]+)/([\w.-]+?)(\.git)?/?$`)
)

// Validator: type which contains a map of validation errors (error name : string -> error_description : string)
type Validator struct {
	Errors map[string]string
}

// New: return an instance of a validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid: returns true if there are no errors, otherwise false
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError: add a new error to the validator
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// CheckConstraint: Receives a constraint that evaluates to a boolean expression to validate
// false -> add error
// true -> skip
func (v *Validator) CheckConstraint(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Err folds the collected errors into a single error ordered by key, or nil
// when the validator is valid.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}

	keys := make([]string, 0, len(v.Errors))
	for k := range v.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Errors[k]))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

// ValidateReference checks the repository reference is present
func ValidateReference(validator *Validator, reference string) {
	validator.CheckConstraint(strings.TrimSpace(reference) != "", "repo", "repository reference must be provided")
}

// ValidateOneOf checks that value is one of the allowed values
func ValidateOneOf(validator *Validator, key, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	validator.AddError(key, fmt.Sprintf("%q is not one of %s", value, strings.Join(allowed, ", ")))
}

// MatchesGithubURL reports whether url points at a github.com repository
func MatchesGithubURL(url string) bool {
	return githubRegex.MatchString(url)
}

// GithubOwnerRepo splits a github.com repository URL into its owner and
// repository name. The ".git" suffix is dropped.
func GithubOwnerRepo(url string) (string, string, bool) {
	m := githubRegex.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
