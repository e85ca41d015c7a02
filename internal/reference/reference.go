// Package reference parses free-text Bible references and resolves book names.
package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Reference is a parsed passage reference. Empty Verses means the whole chapter.
type Reference struct {
	Book    string
	Chapter int
	Verses  []int
}

var (
	versePattern   = regexp.MustCompile(`^\s*(\d*\s*[\p{L}][\p{L}\s.]*?)\s*(\d+)\s*:\s*([\d\s,-]+?)\s*$`)
	chapterPattern = regexp.MustCompile(`^\s*(\d*\s*[\p{L}][\p{L}\s.]*?)\s*(\d+)\s*$`)
)

// maxNumber caps chapter and verse numbers. Psalm 119 is the longest
// chapter (176 verses) and Psalms the longest book (150 chapters).
const maxNumber = 200

// Parse reads "<book> <chapter>:<verses>" or "<book> <chapter>". The verse
// list accepts single numbers and inclusive ranges separated by commas.
func Parse(text string) (Reference, bool) {
	if m := versePattern.FindStringSubmatch(text); m != nil {
		chapter, ok := parsePositive(m[2])
		if !ok {
			return Reference{}, false
		}
		verses, ok := parseVerseSpec(m[3])
		if !ok {
			return Reference{}, false
		}
		return Reference{Book: cleanBook(m[1]), Chapter: chapter, Verses: verses}, true
	}
	if m := chapterPattern.FindStringSubmatch(text); m != nil {
		chapter, ok := parsePositive(m[2])
		if !ok {
			return Reference{}, false
		}
		return Reference{Book: cleanBook(m[1]), Chapter: chapter, Verses: []int{}}, true
	}
	return Reference{}, false
}

func parseVerseSpec(spec string) ([]int, bool) {
	seen := map[int]struct{}{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		bounds := strings.Split(part, "-")
		switch len(bounds) {
		case 1:
			v, ok := parsePositive(bounds[0])
			if !ok {
				return nil, false
			}
			seen[v] = struct{}{}
		case 2:
			start, ok := parsePositive(bounds[0])
			if !ok {
				return nil, false
			}
			end, ok := parsePositive(bounds[1])
			if !ok || end < start {
				return nil, false
			}
			for v := start; v <= end; v++ {
				seen[v] = struct{}{}
			}
		default:
			return nil, false
		}
	}
	verses := make([]int, 0, len(seen))
	for v := range seen {
		verses = append(verses, v)
	}
	sort.Ints(verses)
	return verses, true
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > maxNumber {
		return 0, false
	}
	return n, true
}

func cleanBook(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// String renders the reference as "Book C" or "Book C:V-V,V".
func (r Reference) String() string {
	if len(r.Verses) == 0 {
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
	return fmt.Sprintf("%s %d:%s", r.Book, r.Chapter, formatVerses(r.Verses))
}

func formatVerses(verses []int) string {
	parts := []string{}
	for i := 0; i < len(verses); {
		j := i
		for j+1 < len(verses) && verses[j+1] == verses[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(verses[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", verses[i], verses[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
