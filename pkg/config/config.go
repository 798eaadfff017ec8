// package config holds the settings of a run. Values are layered: defaults,
// then an optional yaml file, then the environment, then command line flags.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/open-sauced/pizza/gitstats/pkg/validator"
)

const (
	ProviderDisk   = "disk"
	ProviderMemory = "memory"

	TokenizerUnicode    = "unicode"
	TokenizerDictionary = "dictionary"

	// TokenEnv is the environment variable holding the access token.
	TokenEnv = "GITHUB_TOKEN"
)

// Config is everything a run needs. Nothing in the pipeline reads the
// environment directly.
type Config struct {
	Repo       string   `yaml:"repo"`
	Path       string   `yaml:"path"`
	MaxCommits int      `yaml:"max_commits"`
	Periods    []string `yaml:"periods"`
	Out        string   `yaml:"out"`
	Provider   string   `yaml:"provider"`
	Tokenizer  string   `yaml:"tokenizer"`
	Refresh    bool     `yaml:"refresh"`
	FailFast   bool     `yaml:"fail_fast"`
	Describe   bool     `yaml:"describe"`

	// AccessToken is only used to fetch the repository and to describe it.
	AccessToken string `yaml:"access_token"`

	// FontResource and LocaleFonts only affect the word cloud.
	FontResource string   `yaml:"font_resource"`
	LocaleFonts  []string `yaml:"locale_fonts"`

	MinFreeDiskGb uint64        `yaml:"min_free_disk_gb"`
	ThrottleEvery int           `yaml:"throttle_every"`
	ThrottlePause time.Duration `yaml:"throttle_pause"`
	DPI           int           `yaml:"dpi"`

	// Timezone names the zone commit times are reported in. Empty means the
	// local zone.
	Timezone string `yaml:"timezone"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Repo:          "https://github.com/psf/requests.git",
		Path:          "./temp_repo",
		MaxCommits:    800,
		Periods:       []string{"ME", "W"},
		Out:           "data",
		Provider:      ProviderDisk,
		Tokenizer:     TokenizerDictionary,
		ThrottleEvery: 20,
		ThrottlePause: 100 * time.Millisecond,
		DPI:           150,
	}
}

// Load reads the yaml file at path on top of the defaults. Unknown keys are
// rejected so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read yaml configuration file")
	}

	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "could not unmarshal configuration file %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides the access token from the environment, read through
// lookup. An unset or empty variable leaves the configured value alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if token, ok := lookup(TokenEnv); ok && token != "" {
		c.AccessToken = token
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate reports every invalid field at once. Trend periods are checked
// by the report step that uses them, so one bad period does not block the
// other reports.
func (c *Config) Validate() error {
	v := validator.New()

	validator.ValidateReference(v, c.Repo)
	validator.ValidateOneOf(v, "provider", c.Provider, ProviderDisk, ProviderMemory)
	validator.ValidateOneOf(v, "tokenizer", c.Tokenizer, TokenizerUnicode, TokenizerDictionary)

	v.CheckConstraint(c.Provider != ProviderDisk || c.Path != "", "path", "local clone path must be provided")
	v.CheckConstraint(c.Out != "", "out", "output directory must be provided")
	v.CheckConstraint(c.MaxCommits >= 0, "max_commits", "must not be negative")
	v.CheckConstraint(c.ThrottleEvery >= 0, "throttle_every", "must not be negative")
	v.CheckConstraint(c.ThrottlePause >= 0, "throttle_pause", "must not be negative")
	v.CheckConstraint(c.DPI >= 0, "dpi", "must not be negative")
	v.CheckConstraint(!c.Describe || validator.MatchesGithubURL(c.Repo), "describe", "only github.com repositories can be described")

	if _, err := c.Location(); err != nil {
		v.AddError("timezone", err.Error())
	}

	return v.Err()
}
