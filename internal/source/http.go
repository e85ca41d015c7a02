// Package source provides the chapter text sources behind passage.Loader.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
)

// DefaultBaseURL is the public bolls.life API root.
const DefaultBaseURL = "https://bolls.life"

// DefaultTimeout bounds a single chapter request.
const DefaultTimeout = 15 * time.Second

// HTTP fetches chapters from a bolls.life style API.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns an HTTP source. An empty base URL selects DefaultBaseURL and
// a non-positive timeout selects DefaultTimeout.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// ChapterURL builds the request URL for a chapter.
func (h *HTTP) ChapterURL(translation string, bookID, chapter int) string {
	return fmt.Sprintf("%s/get-text/%s/%d/%d/", h.BaseURL, strings.ToUpper(translation), bookID, chapter)
}

// FetchChapter implements passage.Source.
func (h *HTTP) FetchChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, error) {
	url := h.ChapterURL(translation, bookID, chapter)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", passage.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", passage.ErrSourceUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status: %s", passage.ErrSourceUnavailable, resp.Status)
	}
	var verses []model.Verse
	if err := json.NewDecoder(resp.Body).Decode(&verses); err != nil {
		return nil, fmt.Errorf("%w: failed to decode chapter: %w", passage.ErrSourceUnavailable, err)
	}
	slog.Debug("source: chapter fetched", "url", url, "verses", len(verses), "elapsed", time.Since(start))
	return verses, nil
}
