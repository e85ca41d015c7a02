package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/memverse/internal/config"
	"github.com/verte-zerg/memverse/internal/export"
	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
	"github.com/verte-zerg/memverse/internal/plan"
	"github.com/verte-zerg/memverse/internal/reference"
	"github.com/verte-zerg/memverse/internal/source"
	"github.com/verte-zerg/memverse/internal/stats"
	"github.com/verte-zerg/memverse/internal/statsui"
	"github.com/verte-zerg/memverse/internal/store"
)

var (
	statsReference   string
	statsTranslation string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	fetchConcurrency int
	fetchTranslation string

	exportFormat string
	exportOut    string
	exportSince  string
)

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

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# memverse configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# translation = %q        # Translation code
# commuter = false          # Start in commuter mode (spoken commands)
# plan = "~/verses.yaml"    # Memorization plan file
# focus-weak = false        # Bias plan picks toward weak passages
# weak-top = %d              # Number of weak passages to focus on
# weak-factor = %.1f        # Weight factor for weak passages
# weak-window = %d          # Number of recent attempts to compute weak passages

[source]
# url = %q   # Text source base URL (MEMVERSE_SOURCE_URL overrides)
# timeout-sec = %d          # Request timeout in seconds
# offline-file = ""         # Local JSON verse file used instead of the network
# cache = true              # Keep fetched chapters in the local database

[log]
# level = %q              # debug, info, warn or error
`,
		defaultTranslation,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		source.DefaultBaseURL,
		int(source.DefaultTimeout/time.Second),
		defaultLogLevel,
	)
}

func newBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List book names and abbreviations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeBooks(cmd.OutOrStdout())
		},
	}
}

func writeBooks(w io.Writer) error {
	for _, b := range reference.Books {
		if _, err := fmt.Fprintf(w, "%2d  %-16s %s\n", b.ID, b.Name, strings.Join(b.Abbrevs, ", ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newTranslationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translation [code]",
		Short: "Show or set the preferred translation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTranslationCmd,
	}
}

func runTranslationCmd(cmd *cobra.Command, args []string) error {
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
	if len(args) == 1 {
		code := strings.TrimSpace(args[0])
		if code == "" {
			return fmt.Errorf("translation code must not be empty")
		}
		if err := st.SetTranslation(ctx, code); err != nil {
			return fmt.Errorf("failed to save translation: %w", err)
		}
	}
	current, err := st.Translation(ctx, defaultTranslation)
	if err != nil {
		return fmt.Errorf("failed to read translation: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), current); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsReference, "reference", "", "passage filter, e.g. \"John 3:16\"")
	cmd.Flags().StringVar(&statsTranslation, "translation", "", "translation filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	ref := strings.TrimSpace(statsReference)
	if ref != "" {
		if canonical, err := canonicalReference(ref); err == nil {
			ref = canonical
		}
	}
	cfg := model.StatsConfig{
		Reference:   ref,
		Translation: strings.ToUpper(strings.TrimSpace(statsTranslation)),
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
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

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return writePlainStats(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderPassageTable(w, report.Passages); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	return stats.RenderHistory(w, report.Sessions)
}

func canonicalReference(text string) (string, error) {
	ref, book, err := passage.Resolve(text)
	if err != nil {
		return "", err
	}
	return passage.Canonical(ref, book), nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <plan>",
		Short: "Download every chapter of a plan into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetchCmd,
	}
	cmd.Flags().IntVar(&fetchConcurrency, "concurrency", defaultConcurrency, "parallel chapter downloads")
	cmd.Flags().StringVar(&fetchTranslation, "translation", "", "translation code (default: plan, then preferred)")
	cmd.Flags().StringVar(&sourceURL, "source-url", source.DefaultBaseURL, "text source base URL")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	if fetchConcurrency < 1 {
		return fmt.Errorf("--concurrency must be >= 1")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source-url", &sourceURL, fileCfg.Source.URL)
	if !cmd.Flags().Changed("source-url") {
		sourceURL = resolveSourceURL(sourceURL, os.Getenv(sourceURLEnv))
	}

	memPlan, err := plan.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
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
	translation := strings.ToUpper(strings.TrimSpace(fetchTranslation))
	if translation == "" {
		translation = memPlan.Translation
	}
	if translation == "" {
		translation, err = st.Translation(ctx, defaultTranslation)
		if err != nil {
			return fmt.Errorf("failed to read translation: %w", err)
		}
	}

	cached := source.NewCached(st, source.NewHTTP(sourceURL, timeoutFrom(fileCfg.Source)))
	return prefetch(ctx, cached, translation, memPlan.Chapters(), fetchConcurrency)
}

// prefetch loads every chapter through src, at most limit at a time. The
// first failure cancels the rest.
func prefetch(ctx context.Context, src *source.Cached, translation string, chapters []plan.Chapter, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, ch := range chapters {
		g.Go(func() error {
			name := fmt.Sprintf("book %d", ch.BookID)
			if book, ok := reference.ByID(ch.BookID); ok {
				name = book.Name
			}
			verses, err := src.FetchChapter(ctx, translation, ch.BookID, ch.Chapter)
			if err != nil {
				return fmt.Errorf("failed to fetch %s %d: %w", name, ch.Chapter, err)
			}
			if len(verses) == 0 {
				logErrf("No verses for %s %d (%s)\n", name, ch.Chapter, translation)
				return nil
			}
			logErrf("Cached %s %d (%d verses)\n", name, ch.Chapter, len(verses))
			return nil
		})
	}
	return g.Wait()
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export practice history",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "", "yaml or parquet (default: from --out extension)")
	cmd.Flags().StringVar(&exportOut, "out", "", "output file, or - for stdout")
	cmd.Flags().StringVar(&exportSince, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if exportOut == "" {
		return fmt.Errorf("--out is required")
	}
	format, err := resolveExportFormat(exportFormat, exportOut)
	if err != nil {
		return err
	}
	since, err := parseSince(exportSince)
	if err != nil {
		return err
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

	sessions, err := st.ListSessions(cmd.Context(), model.StatsConfig{Since: since})
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}
	if exportOut == "-" {
		return export.Write(cmd.OutOrStdout(), format, sessions)
	}
	if err := export.WriteFile(exportOut, format, sessions); err != nil {
		return err
	}
	logErrf("Wrote %d attempts to %s\n", len(sessions), exportOut)
	return nil
}

func resolveExportFormat(format, out string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" {
		if format != export.FormatYAML && format != export.FormatParquet {
			return "", fmt.Errorf("--format must be %s or %s", export.FormatYAML, export.FormatParquet)
		}
		return format, nil
	}
	if inferred, ok := export.FormatFor(out); ok {
		return inferred, nil
	}
	return "", fmt.Errorf("cannot infer format from %q; pass --format", out)
}
