package source

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
)

// ChapterCache stores fetched chapters. store.Store satisfies it.
type ChapterCache interface {
	CachedChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, bool, error)
	PutChapter(ctx context.Context, translation string, bookID, chapter int, verses []model.Verse) error
}

// Cached reads through a chapter cache in front of another source.
type Cached struct {
	cache ChapterCache
	next  passage.Source
}

// NewCached wraps next with cache.
func NewCached(cache ChapterCache, next passage.Source) *Cached {
	return &Cached{cache: cache, next: next}
}

// FetchChapter implements passage.Source. Cache failures fall through to the
// wrapped source; empty chapters are never cached.
func (c *Cached) FetchChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, error) {
	verses, ok, err := c.cache.CachedChapter(ctx, translation, bookID, chapter)
	if err != nil {
		slog.Warn("source: cache read failed", "err", err)
	} else if ok {
		slog.Debug("source: cache hit", "translation", translation, "book_id", bookID, "chapter", chapter)
		return verses, nil
	}

	verses, err = c.next.FetchChapter(ctx, translation, bookID, chapter)
	if err != nil {
		return nil, err
	}
	if len(verses) > 0 {
		if err := c.cache.PutChapter(ctx, translation, bookID, chapter, verses); err != nil {
			slog.Warn("source: cache write failed", "err", err)
		}
	}
	return verses, nil
}
