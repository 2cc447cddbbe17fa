// Package books is the canonical table of USFM book codes: 3-letter code,
// English display name, and canonical ordering for the 66-book Protestant
// canon. Codes outside the table are tolerated by the parsing layers but
// carry no name or order.
package books

import (
	"sort"
	"strings"
)

// Book is one canon table entry.
type Book struct {
	Code   string // 3-letter USFM code, upper case
	Name   string // English display name
	Number int    // 1-based canonical position
}

// canon lists the books in canonical order.
var canon = []Book{
	{"GEN", "Genesis", 1}, {"EXO", "Exodus", 2}, {"LEV", "Leviticus", 3},
	{"NUM", "Numbers", 4}, {"DEU", "Deuteronomy", 5}, {"JOS", "Joshua", 6},
	{"JDG", "Judges", 7}, {"RUT", "Ruth", 8}, {"1SA", "1 Samuel", 9},
	{"2SA", "2 Samuel", 10}, {"1KI", "1 Kings", 11}, {"2KI", "2 Kings", 12},
	{"1CH", "1 Chronicles", 13}, {"2CH", "2 Chronicles", 14}, {"EZR", "Ezra", 15},
	{"NEH", "Nehemiah", 16}, {"EST", "Esther", 17}, {"JOB", "Job", 18},
	{"PSA", "Psalms", 19}, {"PRO", "Proverbs", 20}, {"ECC", "Ecclesiastes", 21},
	{"SNG", "Song of Solomon", 22}, {"ISA", "Isaiah", 23}, {"JER", "Jeremiah", 24},
	{"LAM", "Lamentations", 25}, {"EZK", "Ezekiel", 26}, {"DAN", "Daniel", 27},
	{"HOS", "Hosea", 28}, {"JOL", "Joel", 29}, {"AMO", "Amos", 30},
	{"OBA", "Obadiah", 31}, {"JON", "Jonah", 32}, {"MIC", "Micah", 33},
	{"NAM", "Nahum", 34}, {"HAB", "Habakkuk", 35}, {"ZEP", "Zephaniah", 36},
	{"HAG", "Haggai", 37}, {"ZEC", "Zechariah", 38}, {"MAL", "Malachi", 39},
	{"MAT", "Matthew", 40}, {"MRK", "Mark", 41}, {"LUK", "Luke", 42},
	{"JHN", "John", 43}, {"ACT", "Acts", 44}, {"ROM", "Romans", 45},
	{"1CO", "1 Corinthians", 46}, {"2CO", "2 Corinthians", 47},
	{"GAL", "Galatians", 48}, {"EPH", "Ephesians", 49}, {"PHP", "Philippians", 50},
	{"COL", "Colossians", 51}, {"1TH", "1 Thessalonians", 52},
	{"2TH", "2 Thessalonians", 53}, {"1TI", "1 Timothy", 54},
	{"2TI", "2 Timothy", 55}, {"TIT", "Titus", 56}, {"PHM", "Philemon", 57},
	{"HEB", "Hebrews", 58}, {"JAS", "James", 59}, {"1PE", "1 Peter", 60},
	{"2PE", "2 Peter", 61}, {"1JN", "1 John", 62}, {"2JN", "2 John", 63},
	{"3JN", "3 John", 64}, {"JUD", "Jude", 65}, {"REV", "Revelation", 66},
}

var (
	byCode = make(map[string]Book, len(canon))
	byName = make(map[string]Book, len(canon))
)

func init() {
	for _, b := range canon {
		byCode[b.Code] = b
		byName[strings.ToLower(b.Name)] = b
	}
}

// Lookup returns the table entry for a 3-letter code, case-insensitively.
func Lookup(code string) (Book, bool) {
	b, ok := byCode[strings.ToUpper(code)]
	return b, ok
}

// LookupName returns the table entry for an English name, case-insensitively.
func LookupName(name string) (Book, bool) {
	b, ok := byName[strings.ToLower(name)]
	return b, ok
}

// IsValid reports whether code is a known USFM book code.
func IsValid(code string) bool {
	_, ok := byCode[strings.ToUpper(code)]
	return ok
}

// Name returns the English display name, or the code itself when unknown.
func Name(code string) string {
	if b, ok := Lookup(code); ok {
		return b.Name
	}
	return code
}

// Number returns the 1-based canonical position, or 0 when unknown.
func Number(code string) int {
	if b, ok := Lookup(code); ok {
		return b.Number
	}
	return 0
}

// All returns the canon in canonical order. The slice is a copy.
func All() []Book {
	out := make([]Book, len(canon))
	copy(out, canon)
	return out
}

// SortCodes orders book codes canonically in place. Unknown codes sort
// after known ones, keeping their relative order.
func SortCodes(codes []string) {
	rank := func(c string) int {
		if n := Number(c); n > 0 {
			return n
		}
		return len(canon) + 1
	}
	sort.SliceStable(codes, func(i, j int) bool {
		return rank(codes[i]) < rank(codes[j])
	})
}
