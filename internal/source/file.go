package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
)

// File serves chapters from an offline JSON document keyed
// "<TRANSLATION>/<bookID>/<chapter>".
type File struct {
	chapters map[string][]model.Verse
}

// LoadFile reads an offline chapter file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read offline file: %w", err)
	}
	var raw map[string][]model.Verse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode offline file: %w", err)
	}
	chapters := make(map[string][]model.Verse, len(raw))
	for key, verses := range raw {
		chapters[strings.ToUpper(strings.TrimSpace(key))] = verses
	}
	return &File{chapters: chapters}, nil
}

// ChapterKey returns the lookup key used by offline files.
func ChapterKey(translation string, bookID, chapter int) string {
	return fmt.Sprintf("%s/%d/%d", strings.ToUpper(translation), bookID, chapter)
}

// FetchChapter implements passage.Source. Missing chapters yield no verses.
func (f *File) FetchChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", passage.ErrSourceUnavailable, err)
	}
	return f.chapters[ChapterKey(translation, bookID, chapter)], nil
}
