package esfm

import (
	"strings"

	"github.com/openscriptures/sfmkit/core/errors"
	"github.com/openscriptures/sfmkit/core/sfm"
	"github.com/openscriptures/sfmkit/internal/logging"
)

// Dictionary sentinel substrings. A dictionary book announces itself in its
// first remark field; without the announcement the file is ordinary text and
// the loader refuses to treat it as a dictionary.
const (
	sentinelESFM     = "ESFM"
	sentinelSemantic = "SEM"
	sentinelStrongs  = "STR"
)

// LoadDictionary reads one dictionary book into the builder. The book uses
// ordinary SFM line syntax; its first `\id` or `\rem` field must contain
// "ESFM" plus "SEM" (semantic dictionary) or "STR" (Strong's dictionary).
// Entries are `\w <tag> <content>` fields: `\w P went_down` for a semantic
// key, `\w G 2424` for a Strong's number. Every other marker is descriptive
// and skipped. A missing sentinel returns an error with nothing loaded.
func LoadDictionary(lines sfm.LineSequence, path string, b *DictBuilder) error {
	if len(lines) == 0 {
		return errors.NewParse("ESFM", path, 0, "empty dictionary source")
	}

	first := lines[0]
	if first.Marker != "id" && first.Marker != "rem" {
		return errors.NewParse("ESFM", path, 1, "dictionary must open with an id or rem field")
	}
	kind, ok := dictionaryKind(first.Value)
	if !ok {
		return errors.NewParse("ESFM", path, 1, "missing ESFM SEM/STR dictionary sentinel")
	}

	defined := 0
	for _, f := range lines[1:] {
		if f.Marker != "w" {
			continue
		}
		tag, content, found := strings.Cut(f.Value, " ")
		if !found || tag == "" || content == "" {
			logging.Warn("malformed dictionary entry, skipped", "path", path, "value", f.Value)
			continue
		}
		content = strings.TrimSpace(content)

		switch kind {
		case sentinelSemantic:
			if !strings.Contains(SemanticTags, tag) {
				logging.Warn("dictionary entry with unknown semantic tag, skipped",
					"path", path, "tag", tag, "content", content)
				continue
			}
			b.DefineSemantic(tag, strings.ReplaceAll(content, " ", "_"))
		case sentinelStrongs:
			if !strings.Contains(StrongsLanguages, tag) {
				logging.Warn("dictionary entry with unknown Strong's language, skipped",
					"path", path, "language", tag, "number", content)
				continue
			}
			if !isDigits(content) {
				logging.Warn("dictionary entry with non-numeric Strong's number, skipped",
					"path", path, "language", tag, "number", content)
				continue
			}
			b.DefineStrongs(tag, content)
		}
		defined++
	}

	logging.Info("loaded annotation dictionary", "path", path, "kind", kind, "entries", defined)
	return nil
}

// dictionaryKind inspects a remark value for the dictionary sentinel.
func dictionaryKind(remark string) (string, bool) {
	if !strings.Contains(remark, sentinelESFM) {
		return "", false
	}
	switch {
	case strings.Contains(remark, sentinelSemantic):
		return sentinelSemantic, true
	case strings.Contains(remark, sentinelStrongs):
		return sentinelStrongs, true
	default:
		return "", false
	}
}
