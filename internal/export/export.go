// Package export writes practice history as YAML or Parquet.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/stats"
)

// Supported formats.
const (
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

// Record is one exported attempt.
type Record struct {
	UUID         string  `yaml:"uuid" parquet:"uuid"`
	EndedAt      string  `yaml:"ended_at" parquet:"ended_at"`
	Reference    string  `yaml:"reference" parquet:"reference"`
	Translation  string  `yaml:"translation" parquet:"translation"`
	Words        int64   `yaml:"words" parquet:"words"`
	CorrectWords int64   `yaml:"correct_words" parquet:"correct_words"`
	Mistakes     int64   `yaml:"mistakes" parquet:"mistakes"`
	Helps        int64   `yaml:"helps" parquet:"helps"`
	Progress     int64   `yaml:"progress" parquet:"progress"`
	Completed    bool    `yaml:"completed" parquet:"completed"`
	DurationMs   int64   `yaml:"duration_ms" parquet:"duration_ms"`
	WPM          float64 `yaml:"wpm" parquet:"wpm"`
	Accuracy     float64 `yaml:"accuracy" parquet:"accuracy"`
	HelpRate     float64 `yaml:"help_rate" parquet:"help_rate"`
}

// Records converts attempts into export records.
func Records(sessions []model.SessionAggregate) []Record {
	out := make([]Record, 0, len(sessions))
	for _, s := range sessions {
		wpm, acc, help := stats.AttemptMetrics(s.CorrectWords, s.Mistakes, s.Helps, s.Words, s.DurationMs)
		out = append(out, Record{
			UUID:         s.UUID,
			EndedAt:      s.EndedAt.UTC().Format(time.RFC3339),
			Reference:    s.Reference,
			Translation:  s.Translation,
			Words:        int64(s.Words),
			CorrectWords: int64(s.CorrectWords),
			Mistakes:     int64(s.Mistakes),
			Helps:        int64(s.Helps),
			Progress:     int64(s.Progress),
			Completed:    s.Completed,
			DurationMs:   s.DurationMs,
			WPM:          wpm,
			Accuracy:     acc,
			HelpRate:     help,
		})
	}
	return out
}

// FormatFor infers a format from the output file extension.
func FormatFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".parquet":
		return FormatParquet, true
	default:
		return "", false
	}
}

// Write encodes attempts to w in the given format.
func Write(w io.Writer, format string, sessions []model.SessionAggregate) error {
	records := Records(sessions)
	switch strings.ToLower(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]Record{"attempts": records}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatParquet:
		pw := parquet.NewGenericWriter[Record](w)
		if _, err := pw.Write(records); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("failed to close parquet writer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q (use %s or %s)", format, FormatYAML, FormatParquet)
	}
}

// WriteFile writes attempts to path through a temp file and rename.
func WriteFile(path, format string, sessions []model.SessionAggregate) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "memverse-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Write(tmpFile, format, sessions); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
