// Package main provides the CLI entrypoint for quotype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/quotype/internal/config"
	"github.com/verte-zerg/quotype/internal/logging"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/stats"
	"github.com/verte-zerg/quotype/internal/store"
	"github.com/verte-zerg/quotype/internal/tui"
)

const (
	defaultDurationSec     = 30
	defaultFetchTimeoutSec = 10
	defaultStatsLast       = 50
)

type options struct {
	durationSec     int
	quoteURL        string
	quotesFile      string
	fetchTimeoutSec int
	dbPath          string
	logFile         string
	logLevel        string

	statsLast int
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "quotype",
		Short:         "Timed quote typing test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTest(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", config.DefaultDBPath(), "path to the results database")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", config.DefaultLogPath(), "path to the log file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().IntVar(&opts.durationSec, "duration", defaultDurationSec, "seconds per attempt")
	rootCmd.Flags().StringVar(&opts.quoteURL, "quote-url", quote.DefaultURL, "quote collection endpoint")
	rootCmd.Flags().StringVar(&opts.quotesFile, "quotes-file", "", "read quotes from a local file instead, one per line")
	rootCmd.Flags().IntVar(&opts.fetchTimeoutSec, "fetch-timeout", defaultFetchTimeoutSec, "seconds to wait for a quote")

	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTest(cmd *cobra.Command, opts *options) error {
	fileCfg, err := loadFileConfig(cmd, opts)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "quote-url", &opts.quoteURL, fileCfg.Test.QuoteURL)
	applyStringConfig(cmd, "quotes-file", &opts.quotesFile, fileCfg.Test.QuotesFile)
	applyIntConfig(cmd, "duration", &opts.durationSec, fileCfg.Test.DurationSec)
	applyIntConfig(cmd, "fetch-timeout", &opts.fetchTimeoutSec, fileCfg.Test.FetchTimeoutSec)

	cfg := model.Config{
		Duration:     time.Duration(opts.durationSec) * time.Second,
		QuoteURL:     opts.quoteURL,
		QuotesFile:   opts.quotesFile,
		FetchTimeout: time.Duration(opts.fetchTimeoutSec) * time.Second,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := logging.New(opts.logFile, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	src, err := newQuoteSource(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", zap.Error(cerr))
		}
	}()

	logger.Info("starting typing test",
		zap.Duration("duration", cfg.Duration),
		zap.String("quote_url", cfg.QuoteURL),
		zap.String("quotes_file", cfg.QuotesFile),
	)
	program := tea.NewProgram(tui.NewModel(cfg, st, src, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newQuoteSource(cfg model.Config) (quote.Source, error) {
	if cfg.QuotesFile != "" {
		src, err := quote.LoadFile(cfg.QuotesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load quotes file %s: %w", cfg.QuotesFile, err)
		}
		return src, nil
	}
	return quote.NewHTTPSource(cfg.QuoteURL, cfg.FetchTimeout), nil
}

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show leaderboard and attempt history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.statsLast, "last", defaultStatsLast, "limit history to the last N attempts (0 for all)")
	return cmd
}

func runStats(cmd *cobra.Command, opts *options) error {
	if _, err := loadFileConfig(cmd, opts); err != nil {
		return err
	}
	if opts.statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, opts.statsLast)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderLeaderboard(out, report.Leaderboard); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSummary(out, report.Attempts, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// loadFileConfig reads the config file and applies the settings shared by all commands.
func loadFileConfig(cmd *cobra.Command, opts *options) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &opts.dbPath, fileCfg.Test.DBPath)
	applyStringConfig(cmd, "log-file", &opts.logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
	if _, err := logging.ParseLevel(opts.logLevel); err != nil {
		return config.FileConfig{}, err
	}
	return fileCfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# quotype configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# duration = %d           # Seconds per attempt
# quote-url = %q
# quotes-file = ""        # Local quotes, one per line; overrides quote-url
# fetch-timeout = %d      # Seconds to wait for a quote
# db = %q

[log]
# file = %q
# level = %q
`,
		defaultDurationSec,
		quote.DefaultURL,
		defaultFetchTimeoutSec,
		config.DefaultDBPath(),
		config.DefaultLogPath(),
		logging.DefaultLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("--fetch-timeout must be > 0")
	}
	if cfg.QuotesFile == "" && strings.TrimSpace(cfg.QuoteURL) == "" {
		return fmt.Errorf("--quote-url must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
