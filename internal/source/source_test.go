package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
	"github.com/verte-zerg/memverse/internal/store"
)

func TestHTTPFetchChapter(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"pk":1,"verse":1,"text":"In the beginning"},{"pk":2,"verse":2,"text":"was the <i>Word</i>"}]`))
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL+"/", time.Second)
	verses, err := src.FetchChapter(context.Background(), "nkjv", 43, 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/get-text/NKJV/43/1/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(verses) != 2 || verses[1].Number != 2 || verses[1].Text != "was the <i>Word</i>" {
		t.Fatalf("unexpected verses %+v", verses)
	}
}

func TestHTTPFetchChapterFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"detail":"missing"}`},
		{"server error", http.StatusInternalServerError, ``},
		{"bad json", http.StatusOK, `<html>`},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := NewHTTP(srv.URL, time.Second).FetchChapter(context.Background(), "KJV", 1, 1)
		srv.Close()
		if !errors.Is(err, passage.ErrSourceUnavailable) {
			t.Fatalf("%s: expected source unavailable, got %v", tc.name, err)
		}
	}
}

func TestNewHTTPDefaults(t *testing.T) {
	src := NewHTTP("", 0)
	if src.BaseURL != DefaultBaseURL || src.Client.Timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults %q %v", src.BaseURL, src.Client.Timeout)
	}
	if got := src.ChapterURL("esv", 19, 23); got != "https://bolls.life/get-text/ESV/19/23/" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bible.json")
	data := `{"nkjv/43/3": [{"verse": 16, "text": "For God so loved the world"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	verses, err := src.FetchChapter(context.Background(), "NKJV", 43, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(verses) != 1 || verses[0].Number != 16 {
		t.Fatalf("unexpected verses %+v", verses)
	}
	missing, err := src.FetchChapter(context.Background(), "NKJV", 43, 4)
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected no verses, got %+v err=%v", missing, err)
	}
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bible.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

type countingSource struct {
	verses []model.Verse
	calls  int
}

func (c *countingSource) FetchChapter(context.Context, string, int, int) ([]model.Verse, error) {
	c.calls++
	return c.verses, nil
}

func TestCachedSource(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "memverse.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()

	next := &countingSource{verses: []model.Verse{{Number: 1, Text: "Blessed is the man"}}}
	src := NewCached(st, next)
	for i := 0; i < 3; i++ {
		verses, err := src.FetchChapter(context.Background(), "KJV", 19, 1)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(verses) != 1 || verses[0].Text != "Blessed is the man" {
			t.Fatalf("unexpected verses %+v", verses)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", next.calls)
	}
}

func TestCachedSourceSkipsEmptyChapters(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "memverse.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()

	next := &countingSource{}
	src := NewCached(st, next)
	for i := 0; i < 2; i++ {
		if _, err := src.FetchChapter(context.Background(), "KJV", 19, 200); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("expected empty chapters to bypass cache, got %d calls", next.calls)
	}
}
