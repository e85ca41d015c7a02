// Package main provides the CLI entrypoint for memverse.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/memverse/internal/config"
	"github.com/verte-zerg/memverse/internal/generator"
	"github.com/verte-zerg/memverse/internal/logging"
	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
	"github.com/verte-zerg/memverse/internal/plan"
	"github.com/verte-zerg/memverse/internal/source"
	"github.com/verte-zerg/memverse/internal/store"
	"github.com/verte-zerg/memverse/internal/tui"
)

const version = "0.1.0"

const (
	defaultTranslation = "NKJV"
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultConcurrency = 4
	defaultLogLevel    = "info"
	sourceURLEnv       = "MEMVERSE_SOURCE_URL"
)

var (
	practiceTranslation string
	practiceCommuter    bool
	practicePlan        string
	practiceFocusWeak   bool
	practiceWeakTop     int
	practiceWeakFactor  float64
	practiceWeakWindow  int

	sourceURL         string
	sourceOfflineFile string
	sourceNoCache     bool

	logLevel  string
	logCloser io.Closer
)

func main() {
	rootCmd := newRootCmd()
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	if logCloser != nil {
		if cerr := logCloser.Close(); cerr != nil {
			// Best-effort log close.
			_ = cerr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "memverse [reference]",
		Short:             "TUI scripture memorization trainer",
		Example:           "  memverse \"John 3:16\"\n  memverse --plan psalms.yaml --focus-weak\n  memverse --commuter \"Ps 23\"",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE:              runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&practiceTranslation, "translation", defaultTranslation, "translation code, remembered once given")
	rootCmd.Flags().BoolVar(&practiceCommuter, "commuter", false, "start in commuter mode (spoken commands)")
	rootCmd.Flags().StringVar(&practicePlan, "plan", "", "memorization plan file (.yaml or line list)")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias plan picks toward weak passages")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak passages to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak passages")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts to compute weak passages")
	addSourceFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newBooksCmd())
	rootCmd.AddCommand(newTranslationCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceURL, "source-url", source.DefaultBaseURL, "text source base URL")
	cmd.Flags().StringVar(&sourceOfflineFile, "offline-file", "", "read verses from a local JSON file instead of the network")
	cmd.Flags().BoolVar(&sourceNoCache, "no-cache", false, "skip the local chapter cache")
}

// setupLogging loads .env and routes slog to the state log file. A broken
// config file is reported by the command that needs it.
func setupLogging(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	if fileCfg, err := config.LoadConfig(config.DefaultConfigPath()); err == nil {
		applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	}
	closer, err := logging.Setup(config.DefaultLogPath(), logLevel)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return nil
	}
	logCloser = closer
	return nil
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "translation", &practiceTranslation, fileCfg.Practice.Translation)
	applyBoolConfig(cmd, "commuter", &practiceCommuter, fileCfg.Practice.Commuter)
	applyStringConfig(cmd, "plan", &practicePlan, fileCfg.Practice.Plan)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applySourceConfig(cmd, fileCfg.Source)

	cfg := model.Config{
		Translation: practiceTranslation,
		Commuter:    practiceCommuter,
		PlanPath:    practicePlan,
		FocusWeak:   practiceFocusWeak,
		WeakTop:     practiceWeakTop,
		WeakFactor:  practiceWeakFactor,
		WeakWindow:  practiceWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	var memPlan plan.Plan
	if cfg.PlanPath != "" {
		memPlan, err = plan.Load(cfg.PlanPath)
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	cfg.Translation, err = resolveTranslation(ctx, st, cmd.Flags().Changed("translation"), fileCfg.Practice.Translation != nil, cfg.Translation, memPlan.Translation)
	if err != nil {
		return err
	}

	src, err := buildSource(st, timeoutFrom(fileCfg.Source))
	if err != nil {
		return err
	}

	if cfg.FocusWeak && len(memPlan.Entries) == 0 {
		logErrln("--focus-weak only applies to plans; picking normally")
	}

	initial := strings.TrimSpace(strings.Join(args, " "))
	m := tui.NewModel(cfg, passage.NewLoader(src), st, generator.New(), memPlan.Labels(), initial)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveTranslation picks the practice translation. An explicit flag wins
// and is remembered; then the plan, the config file, the remembered choice
// and finally the default.
func resolveTranslation(ctx context.Context, st *store.Store, flagSet, configSet bool, value, planTranslation string) (string, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch {
	case flagSet:
		if err := st.SetTranslation(ctx, value); err != nil {
			return "", fmt.Errorf("failed to save translation: %w", err)
		}
		return value, nil
	case planTranslation != "":
		return planTranslation, nil
	case configSet:
		return value, nil
	}
	stored, err := st.Translation(ctx, defaultTranslation)
	if err != nil {
		return "", fmt.Errorf("failed to read translation: %w", err)
	}
	return stored, nil
}

func applySourceConfig(cmd *cobra.Command, cfg config.SourceConfig) {
	applyStringConfig(cmd, "source-url", &sourceURL, cfg.URL)
	applyStringConfig(cmd, "offline-file", &sourceOfflineFile, cfg.OfflineFile)
	if cfg.Cache != nil && !cmd.Flags().Changed("no-cache") {
		sourceNoCache = !*cfg.Cache
	}
	if !cmd.Flags().Changed("source-url") {
		sourceURL = resolveSourceURL(sourceURL, os.Getenv(sourceURLEnv))
	}
}

// resolveSourceURL lets the environment override a URL that did not come
// from an explicit flag.
func resolveSourceURL(current, env string) string {
	if env = strings.TrimSpace(env); env != "" {
		return env
	}
	return current
}

func timeoutFrom(cfg config.SourceConfig) time.Duration {
	if cfg.TimeoutSec != nil && *cfg.TimeoutSec > 0 {
		return time.Duration(*cfg.TimeoutSec) * time.Second
	}
	return source.DefaultTimeout
}

// buildSource assembles the text source chain from the source flags.
func buildSource(st *store.Store, timeout time.Duration) (passage.Source, error) {
	var next passage.Source
	if sourceOfflineFile != "" {
		file, err := source.LoadFile(sourceOfflineFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load offline file: %w", err)
		}
		next = file
	} else {
		next = source.NewHTTP(sourceURL, timeout)
	}
	if sourceNoCache {
		return next, nil
	}
	return source.NewCached(st, next), nil
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.Translation) == "" {
		return fmt.Errorf("--translation must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
