// Package passage assembles a practice passage from a reference and a text source.
package passage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/normalize"
	"github.com/verte-zerg/memverse/internal/reference"
)

var (
	// ErrInvalidReference means the text matches no accepted reference shape.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrUnknownBook means the reference parsed but its book is not in the table.
	ErrUnknownBook = errors.New("unknown book")
	// ErrSourceUnavailable means the text source failed or returned a malformed payload.
	ErrSourceUnavailable = errors.New("text source unavailable")
	// ErrEmptyResult means the source answered but no verses were left.
	ErrEmptyResult = errors.New("no verses found")
)

// Source fetches the verses of one chapter.
type Source interface {
	FetchChapter(ctx context.Context, translation string, bookID, chapter int) ([]model.Verse, error)
}

// Passage is a loaded practice text.
type Passage struct {
	Reference   reference.Reference
	Book        reference.Book
	Translation string
	Text        string
}

// Label renders the reference with the canonical book name, e.g. "James 1:2-4".
// Practice history is keyed by it.
func (p Passage) Label() string {
	return Canonical(p.Reference, p.Book)
}

// Title renders the passage heading, e.g. "James 1:2-4 (NKJV)".
func (p Passage) Title() string {
	return fmt.Sprintf("%s (%s)", p.Label(), p.Translation)
}

// Canonical renders ref using the table name of book.
func Canonical(ref reference.Reference, book reference.Book) string {
	ref.Book = book.Name
	return ref.String()
}

// Combine joins verse texts into one passage. A non-empty selected list keeps
// only those verse numbers; the result always follows verse order.
func Combine(verses []model.Verse, selected []int) string {
	keep := map[int]struct{}{}
	for _, v := range selected {
		keep[v] = struct{}{}
	}
	chosen := make([]model.Verse, 0, len(verses))
	for _, v := range verses {
		if len(keep) > 0 {
			if _, ok := keep[v.Number]; !ok {
				continue
			}
		}
		chosen = append(chosen, v)
	}
	sort.SliceStable(chosen, func(i, j int) bool {
		return chosen[i].Number < chosen[j].Number
	})
	parts := make([]string, 0, len(chosen))
	for _, v := range chosen {
		parts = append(parts, normalize.StripTags(v.Text))
	}
	return strings.Join(parts, " ")
}

// UnknownBookError carries the unresolved book name and an optional suggestion.
type UnknownBookError struct {
	Name       string
	Suggestion string
}

func (e *UnknownBookError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown book %q (did you mean %s?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown book %q", e.Name)
}

// Unwrap lets errors.Is match ErrUnknownBook.
func (e *UnknownBookError) Unwrap() error {
	return ErrUnknownBook
}

// Resolve parses text and resolves its book against the book table.
func Resolve(text string) (reference.Reference, reference.Book, error) {
	ref, ok := reference.Parse(text)
	if !ok {
		return reference.Reference{}, reference.Book{}, fmt.Errorf("%w: %q", ErrInvalidReference, strings.TrimSpace(text))
	}
	book, ok := reference.Lookup(ref.Book)
	if !ok {
		bookErr := &UnknownBookError{Name: ref.Book}
		if s, ok := reference.Suggest(ref.Book); ok {
			bookErr.Suggestion = s.Name
		}
		return reference.Reference{}, reference.Book{}, bookErr
	}
	return ref, book, nil
}

// Loader resolves references and fetches their text.
type Loader struct {
	source Source
}

// NewLoader returns a Loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{source: src}
}

// Load resolves text and fetches the passage in the given translation.
func (l *Loader) Load(ctx context.Context, text, translation string) (Passage, error) {
	ref, book, err := Resolve(text)
	if err != nil {
		return Passage{}, err
	}
	verses, err := l.source.FetchChapter(ctx, translation, book.ID, ref.Chapter)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return Passage{}, err
		}
		return Passage{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	combined := Combine(verses, ref.Verses)
	if normalize.IsEmpty(normalize.Tokens(combined)) {
		return Passage{}, fmt.Errorf("%w: %s", ErrEmptyResult, ref.String())
	}
	slog.Info("passage loaded", "reference", ref.String(), "book_id", book.ID, "translation", translation, "verses", len(verses))
	return Passage{
		Reference:   ref,
		Book:        book,
		Translation: translation,
		Text:        combined,
	}, nil
}

// Status renders a load error as a user-facing status line.
func Status(err error) string {
	var bookErr *UnknownBookError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &bookErr):
		if bookErr.Suggestion != "" {
			return fmt.Sprintf("Invalid book %q (did you mean %s?).", bookErr.Name, bookErr.Suggestion)
		}
		return fmt.Sprintf("Invalid book %q.", bookErr.Name)
	case errors.Is(err, ErrInvalidReference):
		return "Reference not found."
	case errors.Is(err, ErrEmptyResult):
		return "No verses found."
	case errors.Is(err, ErrSourceUnavailable):
		return "Text source unavailable."
	default:
		return "Failed to load passage."
	}
}
