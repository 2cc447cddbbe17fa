// Package ref parses USFM-style scripture references such as "GEN 1:1",
// "MRK 1:2-4", and "JHN 1:19-2:11" into typed ranges.
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openscriptures/sfmkit/core/books"
	"github.com/openscriptures/sfmkit/core/errors"
)

// Ref is a parsed reference. Zero Chapter means the whole book; zero Verse
// means the whole chapter. A range sets EndChapter and, unless the range is
// whole chapters, EndVerse.
type Ref struct {
	Book       string // 3-letter USFM code, upper case
	Chapter    int
	Verse      int
	EndChapter int
	EndVerse   int
}

// refGrammar covers "GEN", "GEN 1", "GEN 1:1", "GEN 1-2", "GEN 1:1-3",
// "GEN 1:1-2:5". Numbered books ("1SA 3:4") lex as Int + Ident.
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	CodePrefix string       `parser:"@Int?"`
	CodeName   string       `parser:"@Ident"`
	ChapterRef *chapterPart `parser:"@@?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int      `parser:"@Int"`
	Verse   *int     `parser:"( \":\" @Int )?"`
	End     *endPart `parser:"( \"-\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type endPart struct {
	First  int  `parser:"@Int"`
	Second *int `parser:"( \":\" @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string. The book code must be in the canon
// table; codes are accepted case-insensitively and normalized to upper case.
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference: %w", errors.ErrInvalidInput)
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", s, err)
	}

	code := strings.ToUpper(parsed.CodePrefix + parsed.CodeName)
	if !books.IsValid(code) {
		return nil, fmt.Errorf("unknown book code %q: %w", code, errors.ErrInvalidInput)
	}

	ref := &Ref{Book: code}
	cp := parsed.ChapterRef
	if cp == nil {
		return ref, nil
	}

	ref.Chapter = cp.Chapter
	if cp.Verse != nil {
		ref.Verse = *cp.Verse
	}
	if cp.End != nil {
		switch {
		case cp.End.Second != nil:
			// Cross-chapter range: "1:1-2:5".
			ref.EndChapter = cp.End.First
			ref.EndVerse = *cp.End.Second
		case cp.Verse != nil:
			// Verse range within the chapter: "1:1-3".
			ref.EndChapter = ref.Chapter
			ref.EndVerse = cp.End.First
		default:
			// Chapter range: "1-2".
			ref.EndChapter = cp.End.First
		}
	}

	if err := ref.check(); err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", s, err)
	}
	return ref, nil
}

func (r *Ref) check() error {
	if r.EndChapter > 0 && r.EndChapter < r.Chapter {
		return fmt.Errorf("range ends before it starts: %w", errors.ErrInvalidInput)
	}
	if r.EndChapter == r.Chapter && r.EndVerse > 0 && r.EndVerse < r.Verse {
		return fmt.Errorf("range ends before it starts: %w", errors.ErrInvalidInput)
	}
	return nil
}

// IsRange reports whether the reference spans more than one verse or chapter.
func (r *Ref) IsRange() bool {
	return r.EndChapter > r.Chapter ||
		(r.EndChapter == r.Chapter && r.EndVerse > r.Verse)
}

// Contains reports whether the given book/chapter/verse position falls
// within the reference.
func (r *Ref) Contains(book string, chapter, verse int) bool {
	if r.Book != strings.ToUpper(book) {
		return false
	}
	if r.Chapter == 0 {
		return true
	}
	endChapter := r.EndChapter
	if endChapter == 0 {
		endChapter = r.Chapter
	}
	if chapter < r.Chapter || chapter > endChapter {
		return false
	}
	if r.Verse == 0 && r.EndVerse == 0 {
		return true
	}
	if chapter == r.Chapter && r.Verse > 0 && verse < r.Verse {
		return false
	}
	if chapter == endChapter && r.EndVerse > 0 && verse > r.EndVerse {
		return false
	}
	if !r.IsRange() {
		return verse == r.Verse
	}
	return true
}

// String renders the reference back in canonical form.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter == 0 {
		return sb.String()
	}
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))
	if r.Verse > 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(r.Verse))
	}
	if !r.IsRange() {
		return sb.String()
	}
	sb.WriteString("-")
	if r.EndChapter != r.Chapter {
		sb.WriteString(strconv.Itoa(r.EndChapter))
		if r.EndVerse > 0 {
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(r.EndVerse))
		}
	} else {
		sb.WriteString(strconv.Itoa(r.EndVerse))
	}
	return sb.String()
}
