package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-sauced/pizza/gitstats/pkg/analyzer"
	"github.com/open-sauced/pizza/gitstats/pkg/config"
	"github.com/open-sauced/pizza/gitstats/pkg/extractor"
	"github.com/open-sauced/pizza/gitstats/pkg/github"
	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/providers"
	"github.com/open-sauced/pizza/gitstats/pkg/report"
	"github.com/open-sauced/pizza/gitstats/pkg/tokenize"
)

var Version = "dev"

var (
	configPath string
	debugMode  bool
	csvPath    string

	// flags are bound here and only copied onto the loaded configuration
	// when set on the command line
	flagValues = config.Defaults()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitstats",
	Short: "Extract a repository's commit history and chart it",
	Long: `gitstats clones (or reuses) a git repository, writes its commit history
to commit_history.csv and renders contributor, trend, churn and word cloud
charts into the output directory.`,
	SilenceUsage: true,
	RunE:         runAnalyze,
}

var reportCmd = &cobra.Command{
	Use:          "report",
	Short:        "Render the reports from an existing commit_history.csv",
	SilenceUsage: true,
	RunE:         runReport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gitstats %s\n", Version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to .yaml file config")
	pf.BoolVar(&debugMode, "debug", false, "run in debug mode")
	pf.StringVar(&flagValues.Out, "out", flagValues.Out, "output directory")
	pf.StringSliceVar(&flagValues.Periods, "periods", flagValues.Periods, "trend periods (ME, W, D)")
	pf.StringVar(&flagValues.Tokenizer, "tokenizer", flagValues.Tokenizer, "word cloud tokenizer (dictionary, unicode)")
	pf.BoolVar(&flagValues.FailFast, "fail-fast", false, "stop at the first failing report")

	f := rootCmd.Flags()
	f.StringVar(&flagValues.Repo, "repo", flagValues.Repo, "repository URL or local path")
	f.StringVar(&flagValues.Path, "path", flagValues.Path, "local clone path")
	f.IntVar(&flagValues.MaxCommits, "max-commits", flagValues.MaxCommits, "maximum number of commits to walk")
	f.StringVar(&flagValues.Provider, "provider", flagValues.Provider, "git provider (disk, memory)")
	f.BoolVar(&flagValues.Refresh, "refresh", false, "pull the latest changes into an existing clone")
	f.BoolVar(&flagValues.Describe, "describe", false, "print GitHub repository metadata")

	reportCmd.Flags().StringVar(&csvPath, "csv", "", "commit history to render (defaults to <out>/"+insights.CommitHistoryFile+")")

	rootCmd.AddCommand(reportCmd, versionCmd)
}

func newLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if debugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("could not initiate debug zap logger: %v", err)
		}
	} else {
		logger, err = zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("could not initiate production zap logger: %v", err)
		}
	}

	sugarLogger := logger.Sugar()
	sugarLogger.Infof("initiated zap logger with level: %d", sugarLogger.Level())
	return sugarLogger, nil
}

// loadConfig layers the configuration: defaults, the yaml file, the
// environment, then the flags set on cmd.
func loadConfig(cmd *cobra.Command, logger *zap.SugaredLogger) (*config.Config, error) {
	cfg := config.Defaults()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Infof("Configuration was set using yaml file: %s", configPath)
	}

	// Load the environment variables from the .env file
	if err := godotenv.Load(); err != nil {
		logger.Warnf("Failed to load the dot env file. Continuing with existing environment: %v", err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("repo", func() { cfg.Repo = flagValues.Repo })
	set("path", func() { cfg.Path = flagValues.Path })
	set("max-commits", func() { cfg.MaxCommits = flagValues.MaxCommits })
	set("periods", func() { cfg.Periods = flagValues.Periods })
	set("out", func() { cfg.Out = flagValues.Out })
	set("provider", func() { cfg.Provider = flagValues.Provider })
	set("tokenizer", func() { cfg.Tokenizer = flagValues.Tokenizer })
	set("refresh", func() { cfg.Refresh = flagValues.Refresh })
	set("fail-fast", func() { cfg.FailFast = flagValues.FailFast })
	set("describe", func() { cfg.Describe = flagValues.Describe })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newReporter(cfg *config.Config, logger *zap.SugaredLogger) (*report.Reporter, error) {
	tok, err := tokenize.New(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	return report.New(logger, os.Stdout, report.Options{
		OutputDir: cfg.Out,
		DPI:       cfg.DPI,
		Fonts:     report.FontConfig{Resource: cfg.FontResource, LocaleFonts: cfg.LocaleFonts},
		Tokenizer: tok,
	}), nil
}

func newProvider(cfg *config.Config, logger *zap.SugaredLogger) providers.GitRepoProvider {
	switch cfg.Provider {
	case config.ProviderMemory:
		logger.Infof("Initiating in-memory git provider")
		return providers.NewInMemoryGitRepoProvider(logger, cfg.AccessToken)
	default:
		logger.Infof("Initiating disk git provider")
		return providers.NewDiskGitRepoProvider(logger, providers.DiskOptions{
			AccessToken:   cfg.AccessToken,
			MinFreeDiskGb: cfg.MinFreeDiskGb,
			Refresh:       cfg.Refresh,
			Trust:         providers.NewGitSafeDirectory(),
		})
	}
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		log.Fatal(err)
	}
	//nolint:errcheck
	defer logger.Sync()

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	rep, err := newReporter(cfg, logger)
	if err != nil {
		return err
	}

	extOpts := extractor.DefaultOptions(cfg.Out)
	extOpts.ThrottleEvery = cfg.ThrottleEvery
	extOpts.ThrottlePause = cfg.ThrottlePause
	extOpts.Location = loc

	a := analyzer.NewAnalyzer(logger, newProvider(cfg, logger), extractor.New(logger, extOpts), rep)
	if cfg.Describe {
		if cfg.AccessToken != "" {
			a.Describer = github.NewTokenClient(cfg.AccessToken)
		} else {
			a.Describer = github.NewClient(nil)
		}
	}

	_, err = a.Run(context.Background(), cfg)
	return err
}

func runReport(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		log.Fatal(err)
	}
	//nolint:errcheck
	defer logger.Sync()

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	path := csvPath
	if path == "" {
		path = filepath.Join(cfg.Out, insights.CommitHistoryFile)
	}

	logger.Infof("Loading commit history from %s", path)
	table, err := insights.LoadCSV(path, loc)
	if err != nil {
		return err
	}

	rep, err := newReporter(cfg, logger)
	if err != nil {
		return err
	}

	a := analyzer.NewAnalyzer(logger, nil, nil, rep)
	_, err = a.Report(table, cfg.Periods, cfg.FailFast)
	return err
}
