// Package normalize canonicalizes passage and input text into comparable tokens.
package normalize

import (
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`</?[^>]+(>|$)`)
	spacePattern = regexp.MustCompile(`[\s\p{Zs}]+`)
)

const dropped = ".,/#!?\"“”$%^&*;:{}=_`~()"

// StripTags removes <...> markup, including an unterminated tag at the end of s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Text returns the canonical form of raw: no markup, no punctuation,
// single-spaced, lowercase and trimmed.
func Text(raw string) string {
	s := StripTags(raw)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(dropped, r) {
			return -1
		}
		if r == '—' {
			return ' '
		}
		return r
	}, s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	return strings.TrimSpace(s)
}

// Tokens splits the canonical form of raw into words. Empty input yields a
// single empty token.
func Tokens(raw string) []string {
	return strings.Split(Text(raw), " ")
}

// IsEmpty reports whether tokens carries no words.
func IsEmpty(tokens []string) bool {
	return len(tokens) == 0 || (len(tokens) == 1 && tokens[0] == "")
}
