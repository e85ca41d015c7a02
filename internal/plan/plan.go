// Package plan loads memorization plans: named lists of passages to review.
//
// A plan is either a YAML document
//
//	name: Sermon on the Mount
//	translation: ESV
//	passages:
//	  - Matthew 5:3-12
//	  - Matthew 6:9-13
//
// or a plain text file with one reference per line ('#' starts a comment).
package plan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/memverse/internal/passage"
	"github.com/verte-zerg/memverse/internal/reference"
)

// Entry is one resolved plan passage.
type Entry struct {
	Reference reference.Reference
	Book      reference.Book
	Line      int
}

// Label renders the entry with its canonical book name.
func (e Entry) Label() string {
	return passage.Canonical(e.Reference, e.Book)
}

// Plan is a loaded memorization plan.
type Plan struct {
	Name        string
	Translation string
	Entries     []Entry
}

// Labels returns the canonical references of the plan in file order.
func (p Plan) Labels() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Label()
	}
	return out
}

// Chapter identifies one chapter of one book.
type Chapter struct {
	BookID  int
	Chapter int
}

// Chapters returns the distinct chapters the plan touches, in first-seen order.
func (p Plan) Chapters() []Chapter {
	seen := map[Chapter]struct{}{}
	var out []Chapter
	for _, e := range p.Entries {
		ch := Chapter{BookID: e.Book.ID, Chapter: e.Reference.Chapter}
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}

type document struct {
	Name        string      `yaml:"name"`
	Translation string      `yaml:"translation"`
	Passages    []yaml.Node `yaml:"passages"`
}

// Load reads a plan from path. Files ending in .yaml or .yml are parsed as
// YAML, anything else as a line list.
func Load(path string) (Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to open plan: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only plan.
			_ = cerr
		}
	}()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(file, name)
	default:
		return ParseLines(file, name)
	}
}

// ParseYAML parses a YAML plan. fallbackName is used when the document has no name.
func ParseYAML(r io.Reader, fallbackName string) (Plan, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan: %w", err)
	}
	p := Plan{Name: strings.TrimSpace(doc.Name), Translation: strings.ToUpper(strings.TrimSpace(doc.Translation))}
	if p.Name == "" {
		p.Name = fallbackName
	}
	for _, node := range doc.Passages {
		if node.Kind != yaml.ScalarNode {
			return Plan{}, fmt.Errorf("line %d: passage must be a string", node.Line)
		}
		entry, err := resolve(node.Value, node.Line)
		if err != nil {
			return Plan{}, err
		}
		p.Entries = append(p.Entries, entry)
	}
	if len(p.Entries) == 0 {
		return Plan{}, fmt.Errorf("plan %q has no passages", p.Name)
	}
	return p, nil
}

// ParseLines parses one reference per line. Blank lines and '#' comments are skipped.
func ParseLines(r io.Reader, name string) (Plan, error) {
	p := Plan{Name: name}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		entry, err := resolve(text, line)
		if err != nil {
			return Plan{}, err
		}
		p.Entries = append(p.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return Plan{}, fmt.Errorf("failed to read plan: %w", err)
	}
	if len(p.Entries) == 0 {
		return Plan{}, fmt.Errorf("plan %q has no passages", p.Name)
	}
	return p, nil
}

func resolve(text string, line int) (Entry, error) {
	ref, book, err := passage.Resolve(text)
	if err != nil {
		return Entry{}, fmt.Errorf("line %d: %s: %w", line, passage.Status(err), err)
	}
	return Entry{Reference: ref, Book: book, Line: line}, nil
}
