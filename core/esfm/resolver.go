package esfm

import (
	"strings"

	"github.com/openscriptures/sfmkit/internal/logging"
)

// nbsp replaces underline joins in plain output so joined source words stay
// on one line.
const nbsp = " "

// trailingPunct are characters split off a tag before field emission and
// re-emitted after it.
const trailingPunct = ".,;:?!»”’)"

// scanState names the resolver's finite-state machine states. The underline
// continuation of §word_word§ joins is carried inside the word buffer itself
// (an underscore is an ordinary word character), so three states suffice.
type scanState int

const (
	stateBare  scanState = iota // accumulating a bare word, or between words
	stateBrace                  // inside a {...} group
	stateTag                    // after an unescaped = attached to a word or group
)

// Resolver rewrites ESFM inline annotations into explicit character-style
// fields, recording occurrences and errors in the shared Dict. A Resolver
// is safe for concurrent use; each ResolveText call is independent.
type Resolver struct {
	dict *Dict
}

// NewResolver returns a resolver over the given dictionary snapshot.
func NewResolver(d *Dict) *Resolver {
	return &Resolver{dict: d}
}

// textScan is the per-call state of one resolution pass.
type textScan struct {
	dict    *Dict
	book    string
	chapter int
	verse   int

	state    scanState
	out      strings.Builder
	word     strings.Builder // current bare word, underscores included
	group    strings.Builder // raw brace content, spaces preserved
	tag      strings.Builder // tag text after '='
	pending  string          // completed brace group awaiting a possible tag
	havePend bool
}

// ResolveText scans one raw text string in (book, chapter, verse) context and
// returns it with annotations rewritten to `\sem ...\sem*` / `\str ...\str*`
// notation. Malformed input never aborts: every anomaly is logged and
// scanning continues with a best-effort interpretation.
func (r *Resolver) ResolveText(book string, chapter, verse int, text string) string {
	s := &textScan{dict: r.dict, book: book, chapter: chapter, verse: verse}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		// \= escapes a literal equals sign.
		if c == '\\' && i+1 < len(runes) && runes[i+1] == '=' && s.state == stateBare {
			s.word.WriteRune('=')
			i++
			continue
		}

		switch s.state {
		case stateBare:
			s.stepBare(c)
		case stateBrace:
			s.stepBrace(c)
		case stateTag:
			s.stepTag(c)
		}
	}
	s.finish()
	return s.out.String()
}

func (s *textScan) stepBare(c rune) {
	switch c {
	case '{':
		if s.word.Len() > 0 || s.havePend {
			s.warn("brace group opened mid-word", "{")
			s.flushWord()
		}
		s.state = stateBrace
	case '}':
		s.warn("unmatched closing brace treated as text", "}")
		s.word.WriteRune(c)
	case '=':
		if s.word.Len() > 0 || s.havePend {
			s.state = stateTag
		} else {
			// A free-standing equals is ordinary text.
			s.word.WriteRune(c)
		}
	case ' ':
		s.flushWord()
		s.out.WriteRune(' ')
	default:
		s.word.WriteRune(c)
	}
}

func (s *textScan) stepBrace(c rune) {
	switch c {
	case '{':
		s.warn("brace group inside brace group", "{")
		s.group.WriteRune(c)
	case '}':
		s.pending = s.group.String()
		s.havePend = true
		s.group.Reset()
		s.state = stateBare
	default:
		s.group.WriteRune(c)
	}
}

func (s *textScan) stepTag(c rune) {
	switch c {
	case ' ':
		s.flushTag()
		s.out.WriteRune(' ')
	case '{':
		s.warn("brace group opened while tagging", "{")
		s.flushTag()
		s.state = stateBrace
	default:
		s.tag.WriteRune(c)
	}
}

// finish flushes pending state exactly as a delimiter would.
func (s *textScan) finish() {
	switch s.state {
	case stateBrace:
		s.warn("unclosed brace group at end of text", "{")
		s.out.WriteString(s.group.String())
		s.group.Reset()
	case stateTag:
		s.flushTag()
	default:
		s.flushWord()
	}
}

// flushWord emits any buffered bare word (and any unconsumed brace group)
// as plain text, rendering underline joins as non-breaking spaces.
func (s *textScan) flushWord() {
	if s.havePend {
		// A group with no trailing tag reads as ordinary text.
		s.out.WriteString(s.pending)
		s.havePend = false
		s.pending = ""
	}
	if s.word.Len() > 0 {
		s.out.WriteString(strings.ReplaceAll(s.word.String(), "_", nbsp))
		s.word.Reset()
	}
}

// flushTag resolves the buffered tag against the attached word or brace
// group and emits the rewritten field.
func (s *textScan) flushTag() {
	tag := s.tag.String()
	s.tag.Reset()
	s.state = stateBare

	// Trailing sentence punctuation belongs after the field, not in the key.
	trail := ""
	for len(tag) > 0 && strings.ContainsRune(trailingPunct, rune(tag[len(tag)-1])) {
		trail = string(tag[len(tag)-1]) + trail
		tag = tag[:len(tag)-1]
	}

	word := s.takeWord()
	if tag == "" {
		s.warn("empty tag after equals sign", "=")
		s.out.WriteString(word)
		s.out.WriteString(trail)
		return
	}

	if tag[0] == 'S' && len(tag) >= 2 && strings.ContainsRune(StrongsLanguages, rune(tag[1])) {
		s.emitStrongs(string(tag[1]), tag[2:], word)
	} else {
		s.emitSemantic(string(tag[0]), tag[1:], word)
	}
	s.out.WriteString(trail)
}

// takeWord consumes the pending brace group (spaces become underscores) or
// the bare word buffer, whichever the tag attaches to.
func (s *textScan) takeWord() string {
	if s.havePend {
		s.havePend = false
		word := strings.ReplaceAll(s.pending, " ", "_")
		s.pending = ""
		return word
	}
	word := s.word.String()
	s.word.Reset()
	return word
}

func (s *textScan) emitStrongs(language, number, word string) {
	occ := Occurrence{Book: s.book, Chapter: s.chapter, Verse: s.verse, Word: word}
	if number == "" || !isDigits(number) {
		logging.Verse(logging.LevelWarn, "malformed Strong's number", s.book, s.chapter, s.verse,
			"language", language, "number", number)
		s.dict.AddTagError("S"+language, occ)
	} else if !s.dict.RecordStrongs(language, number, occ) {
		s.dict.AddMissing("S"+language, number, occ)
		logging.Verse(logging.LevelWarn, "Strong's number not in dictionary", s.book, s.chapter, s.verse,
			"language", language, "number", number, "word", word)
	}
	s.out.WriteString(`\str ` + language + " " + number + "=" + word + `\str*`)
}

func (s *textScan) emitSemantic(tag, content, word string) {
	if content == "" {
		content = word // the attached word itself is the key
	}
	occ := Occurrence{Book: s.book, Chapter: s.chapter, Verse: s.verse, Word: word}

	if !strings.Contains(SemanticTags, tag) {
		logging.Verse(logging.LevelWarn, "unknown semantic tag letter", s.book, s.chapter, s.verse,
			"tag", tag, "content", content)
		s.dict.AddTagError(tag, occ)
	} else if !s.dict.RecordSemantic(tag, content, occ) {
		s.dict.AddMissing(tag, content, occ)
		logging.Verse(logging.LevelWarn, "semantic tag content not in dictionary", s.book, s.chapter, s.verse,
			"tag", tag, "content", content, "word", word)
		content = word // literal word is the fallback content
	}

	if content == word || word == "" {
		s.out.WriteString(`\sem ` + tag + " " + content + `\sem*`)
	} else {
		s.out.WriteString(`\sem ` + tag + " " + content + "=" + word + `\sem*`)
	}
}

func (s *textScan) warn(msg, near string) {
	logging.Verse(logging.LevelWarn, msg, s.book, s.chapter, s.verse, "near", near)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
