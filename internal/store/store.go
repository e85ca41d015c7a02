// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/memverse/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const prefTranslation = "translation"

// Store wraps SQLite access for practice history, cached chapters and preferences.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps concurrent cache
	// fills from failing with "database is locked".
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS practice_sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			reference TEXT NOT NULL,
			translation TEXT NOT NULL,
			words INTEGER NOT NULL,
			correct_words INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			helps INTEGER NOT NULL,
			progress INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			revealed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chapter_cache (
			translation TEXT NOT NULL,
			book_id INTEGER NOT NULL,
			chapter INTEGER NOT NULL,
			verse INTEGER NOT NULL,
			text TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (translation, book_id, chapter, verse)
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_practice_sessions_ended_at ON practice_sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_practice_sessions_reference ON practice_sessions(reference);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a practice attempt. A missing UUID is generated.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats) (int64, error) {
	if stats.UUID == "" {
		stats.UUID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_sessions (uuid, started_at, ended_at, reference, translation, words, correct_words, mistakes, helps, progress, completed, revealed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.UUID,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Reference,
		stats.Translation,
		stats.Words,
		stats.CorrectWords,
		stats.Mistakes,
		stats.Helps,
		stats.Progress,
		boolInt(stats.Completed),
		boolInt(stats.Revealed),
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns attempts filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Reference != "" {
		clauses = append(clauses, "reference = ?")
		args = append(args, cfg.Reference)
	}
	if cfg.Translation != "" {
		clauses = append(clauses, "translation = ?")
		args = append(args, cfg.Translation)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, uuid, ended_at, reference, translation, words, correct_words, mistakes, helps, progress, completed, duration_ms
		FROM practice_sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		var completed int
		if err := rows.Scan(&agg.SessionID, &agg.UUID, &endedAt, &agg.Reference, &agg.Translation, &agg.Words,
			&agg.CorrectWords, &agg.Mistakes, &agg.Helps, &agg.Progress, &completed, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Completed = completed != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListPassageAggregates groups the most recent attempts by reference. A
// window of zero or less covers every attempt.
func (s *Store) ListPassageAggregates(ctx context.Context, window int) ([]model.PassageAggregate, error) {
	limit := -1
	if window > 0 {
		limit = window
	}
	query := `WITH recent AS (
		SELECT * FROM practice_sessions
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT reference, COUNT(*), SUM(completed), SUM(words), SUM(mistakes), SUM(helps), MAX(progress), MAX(ended_at)
	FROM recent
	GROUP BY reference
	ORDER BY reference ASC`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.PassageAggregate
	for rows.Next() {
		var agg model.PassageAggregate
		var lastEnded string
		if err := rows.Scan(&agg.Reference, &agg.Attempts, &agg.Completions, &agg.Words, &agg.Mistakes,
			&agg.Helps, &agg.BestProgress, &lastEnded); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastEnded)
		if err != nil {
			return nil, err
		}
		agg.LastEndedAt = parsed
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CachedChapter returns the cached verses of a chapter, ordered by verse.
// The boolean is false when nothing is cached.
func (s *Store) CachedChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT verse, text FROM chapter_cache
		 WHERE translation = ? AND book_id = ? AND chapter = ?
		 ORDER BY verse ASC`, strings.ToUpper(translation), bookID, chapter)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var verses []model.Verse
	for rows.Next() {
		var v model.Verse
		if err := rows.Scan(&v.Number, &v.Text); err != nil {
			return nil, false, err
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return verses, len(verses) > 0, nil
}

// PutChapter replaces the cached verses of a chapter.
func (s *Store) PutChapter(ctx context.Context, translation string, bookID, chapter int, verses []model.Verse) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	translation = strings.ToUpper(translation)
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM chapter_cache WHERE translation = ? AND book_id = ? AND chapter = ?`,
		translation, bookID, chapter); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chapter_cache (translation, book_id, chapter, verse, text, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	now := time.Now().Format(time.RFC3339Nano)
	for _, v := range verses {
		if _, err = stmt.ExecContext(ctx, translation, bookID, chapter, v.Number, v.Text, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Preference returns a stored preference value; ok is false when unset.
func (s *Store) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetPreference stores a preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Translation returns the preferred translation, or fallback when none is stored.
func (s *Store) Translation(ctx context.Context, fallback string) (string, error) {
	value, ok, err := s.Preference(ctx, prefTranslation)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return fallback, nil
	}
	return value, nil
}

// SetTranslation persists the preferred translation.
func (s *Store) SetTranslation(ctx context.Context, code string) error {
	return s.SetPreference(ctx, prefTranslation, strings.ToUpper(strings.TrimSpace(code)))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
