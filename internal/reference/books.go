package reference

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const suggestThreshold = 0.80

// Book is one entry of the canonical 66-book table.
type Book struct {
	ID      int
	Name    string
	Abbrevs []string
}

// Books lists the canonical books in order; ID matches the index plus one.
var Books = []Book{
	{1, "Genesis", []string{"gen", "ge", "gn"}},
	{2, "Exodus", []string{"exod", "exo", "ex"}},
	{3, "Leviticus", []string{"lev", "le", "lv"}},
	{4, "Numbers", []string{"num", "nu", "nm", "nb"}},
	{5, "Deuteronomy", []string{"deut", "de", "dt"}},
	{6, "Joshua", []string{"josh", "jos", "jsh"}},
	{7, "Judges", []string{"judg", "jdg", "jg", "jdgs"}},
	{8, "Ruth", []string{"rth", "ru"}},
	{9, "1 Samuel", []string{"1sam", "1sa", "1sm", "1s", "isamuel"}},
	{10, "2 Samuel", []string{"2sam", "2sa", "2sm", "2s", "iisamuel"}},
	{11, "1 Kings", []string{"1kgs", "1ki", "1kin", "1k", "ikings"}},
	{12, "2 Kings", []string{"2kgs", "2ki", "2kin", "2k", "iikings"}},
	{13, "1 Chronicles", []string{"1chron", "1chr", "1ch", "ichronicles"}},
	{14, "2 Chronicles", []string{"2chron", "2chr", "2ch", "iichronicles"}},
	{15, "Ezra", []string{"ezr", "ez"}},
	{16, "Nehemiah", []string{"neh", "ne"}},
	{17, "Esther", []string{"est", "esth", "es"}},
	{18, "Job", []string{"jb"}},
	{19, "Psalms", []string{"psalm", "ps", "psa", "pslm", "psm", "pss"}},
	{20, "Proverbs", []string{"prov", "pro", "prv", "pr"}},
	{21, "Ecclesiastes", []string{"eccles", "eccle", "ecc", "ec", "qoh"}},
	{22, "Song of Solomon", []string{"song", "songofsongs", "sos", "so", "canticles", "cant"}},
	{23, "Isaiah", []string{"isa", "is"}},
	{24, "Jeremiah", []string{"jer", "je", "jr"}},
	{25, "Lamentations", []string{"lam", "la"}},
	{26, "Ezekiel", []string{"ezek", "eze", "ezk"}},
	{27, "Daniel", []string{"dan", "da", "dn"}},
	{28, "Hosea", []string{"hos", "ho"}},
	{29, "Joel", []string{"jl"}},
	{30, "Amos", []string{"am"}},
	{31, "Obadiah", []string{"obad", "ob"}},
	{32, "Jonah", []string{"jnh", "jon"}},
	{33, "Micah", []string{"mic", "mc"}},
	{34, "Nahum", []string{"nah", "na"}},
	{35, "Habakkuk", []string{"hab", "hb"}},
	{36, "Zephaniah", []string{"zeph", "zep", "zp"}},
	{37, "Haggai", []string{"hag", "hg"}},
	{38, "Zechariah", []string{"zech", "zec", "zc"}},
	{39, "Malachi", []string{"mal", "ml"}},
	{40, "Matthew", []string{"matt", "mt"}},
	{41, "Mark", []string{"mrk", "mar", "mk", "mr"}},
	{42, "Luke", []string{"luk", "lk"}},
	{43, "John", []string{"joh", "jhn", "jn"}},
	{44, "Acts", []string{"act", "ac"}},
	{45, "Romans", []string{"rom", "ro", "rm"}},
	{46, "1 Corinthians", []string{"1cor", "1co", "icorinthians"}},
	{47, "2 Corinthians", []string{"2cor", "2co", "iicorinthians"}},
	{48, "Galatians", []string{"gal", "ga"}},
	{49, "Ephesians", []string{"eph", "ephes"}},
	{50, "Philippians", []string{"phil", "php", "pp"}},
	{51, "Colossians", []string{"col", "co"}},
	{52, "1 Thessalonians", []string{"1thess", "1thes", "1th", "ithessalonians"}},
	{53, "2 Thessalonians", []string{"2thess", "2thes", "2th", "iithessalonians"}},
	{54, "1 Timothy", []string{"1tim", "1ti", "itimothy"}},
	{55, "2 Timothy", []string{"2tim", "2ti", "iitimothy"}},
	{56, "Titus", []string{"tit", "ti"}},
	{57, "Philemon", []string{"philem", "phm", "pm"}},
	{58, "Hebrews", []string{"heb"}},
	{59, "James", []string{"jas", "jm"}},
	{60, "1 Peter", []string{"1pet", "1pe", "1pt", "1p", "ipeter"}},
	{61, "2 Peter", []string{"2pet", "2pe", "2pt", "2p", "iipeter"}},
	{62, "1 John", []string{"1jhn", "1jn", "1jo", "1j", "ijohn"}},
	{63, "2 John", []string{"2jhn", "2jn", "2jo", "2j", "iijohn"}},
	{64, "3 John", []string{"3jhn", "3jn", "3jo", "3j", "iiijohn"}},
	{65, "Jude", []string{"jud", "jd"}},
	{66, "Revelation", []string{"rev", "re", "revelations", "theRevelation"}},
}

var bookIndex = buildIndex()

func buildIndex() map[string]Book {
	idx := make(map[string]Book, len(Books)*5)
	for _, b := range Books {
		idx[bookKey(b.Name)] = b
		for _, a := range b.Abbrevs {
			idx[bookKey(a)] = b
		}
	}
	return idx
}

func bookKey(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' || r == '\t' {
			return -1
		}
		return r
	}, name)
}

// Lookup resolves a book name or abbreviation, ignoring case, spaces and dots.
func Lookup(name string) (Book, bool) {
	b, ok := bookIndex[bookKey(name)]
	return b, ok
}

// ByID returns the book with the given 1-based id.
func ByID(id int) (Book, bool) {
	if id < 1 || id > len(Books) {
		return Book{}, false
	}
	return Books[id-1], true
}

// Suggest returns the book whose name is closest to name by Jaro-Winkler
// similarity, if any scores above the acceptance threshold.
func Suggest(name string) (Book, bool) {
	key := bookKey(name)
	if key == "" {
		return Book{}, false
	}
	var best Book
	bestScore := 0.0
	for _, b := range Books {
		candidates := append([]string{b.Name}, b.Abbrevs...)
		for _, c := range candidates {
			score := matchr.JaroWinkler(key, bookKey(c), false)
			if score > bestScore {
				best, bestScore = b, score
			}
		}
	}
	if bestScore < suggestThreshold {
		return Book{}, false
	}
	return best, true
}
