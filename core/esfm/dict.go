// Package esfm resolves ESFM inline annotations: semantic tags and Strong's
// numbers embedded in translated text with `{...}=Ptag`, `word_word` and
// `=SG1234` syntax. Annotations are rewritten into explicit `\sem`/`\str`
// character-style fields, and every resolved tag records an occurrence in a
// companion dictionary.
package esfm

import (
	"fmt"
	"sort"
	"sync"
)

// SemanticTags is the fixed alphabet of semantic tag category letters:
// A animal, D deity, F flora, G group of people, L location, O object,
// P person, T title. S is reserved for Strong's tags.
const SemanticTags = "ADFGLOPT"

// StrongsLanguages are the recognized Strong's language codes:
// H Hebrew, G Greek.
const StrongsLanguages = "HG"

// Occurrence records one place a tagged word appears.
type Occurrence struct {
	Book    string
	Chapter int
	Verse   int
	Word    string
}

// DictBuilder is the single-writer construction stage of the annotation
// dictionaries. Define all known entries, then take a Snapshot before any
// concurrent resolution begins.
type DictBuilder struct {
	sem map[string]map[string][]Occurrence
	str map[string]map[string][]Occurrence
}

// NewDictBuilder returns an empty builder.
func NewDictBuilder() *DictBuilder {
	return &DictBuilder{
		sem: make(map[string]map[string][]Occurrence),
		str: make(map[string]map[string][]Occurrence),
	}
}

// DefineSemantic registers a semantic tag content key (e.g. tag "P",
// content "went_down"). The occurrence list starts empty.
func (b *DictBuilder) DefineSemantic(tag, content string) {
	if b.sem[tag] == nil {
		b.sem[tag] = make(map[string][]Occurrence)
	}
	if _, ok := b.sem[tag][content]; !ok {
		b.sem[tag][content] = nil
	}
}

// DefineStrongs registers a Strong's number under a language code
// (e.g. language "G", number "2424").
func (b *DictBuilder) DefineStrongs(language, number string) {
	if b.str[language] == nil {
		b.str[language] = make(map[string][]Occurrence)
	}
	if _, ok := b.str[language][number]; !ok {
		b.str[language][number] = nil
	}
}

// Snapshot freezes the builder into a Dict ready for concurrent resolution.
// The key sets become immutable; occurrence lists and error buckets remain
// appendable behind a lock.
func (b *DictBuilder) Snapshot() *Dict {
	return &Dict{
		sem:       b.sem,
		str:       b.str,
		missing:   make(map[string]map[string][]Occurrence),
		tagErrors: make(map[string][]Occurrence),
	}
}

// Dict holds the semantic and Strong's tables during resolution. All
// lookups and appends (occurrences and the "Missing" and "Tag errors"
// buckets) are funneled through one mutex so independent books can be
// resolved in parallel.
type Dict struct {
	mu        sync.Mutex
	sem       map[string]map[string][]Occurrence
	str       map[string]map[string][]Occurrence
	missing   map[string]map[string][]Occurrence // tag → content → occurrences
	tagErrors map[string][]Occurrence            // bad tag letter → occurrences
}

// HasSemantic reports whether the tag/content pair was defined at build time.
func (d *Dict) HasSemantic(tag, content string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.sem[tag][content]
	return ok
}

// HasStrongs reports whether the language/number pair was defined.
func (d *Dict) HasStrongs(language, number string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.str[language][number]
	return ok
}

// RecordSemantic appends an occurrence to the tag/content entry if it was
// defined at build time, reporting whether it was. Lookup and append happen
// under one lock so parallel resolvers never race the entry maps.
func (d *Dict) RecordSemantic(tag, content string, occ Occurrence) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sem[tag][content]; !ok {
		return false
	}
	d.sem[tag][content] = append(d.sem[tag][content], occ)
	return true
}

// RecordStrongs appends an occurrence to the language/number entry if it
// was defined, reporting whether it was.
func (d *Dict) RecordStrongs(language, number string, occ Occurrence) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.str[language][number]; !ok {
		return false
	}
	d.str[language][number] = append(d.str[language][number], occ)
	return true
}

// AddSemanticOccurrence appends an occurrence to a defined semantic entry.
func (d *Dict) AddSemanticOccurrence(tag, content string, occ Occurrence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sem[tag][content] = append(d.sem[tag][content], occ)
}

// AddStrongsOccurrence appends an occurrence to a defined Strong's entry.
func (d *Dict) AddStrongsOccurrence(language, number string, occ Occurrence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.str[language][number] = append(d.str[language][number], occ)
}

// AddMissing buckets a reference to a tag/content pair that was never
// defined. Resolution continues with fallback content.
func (d *Dict) AddMissing(tag, content string, occ Occurrence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.missing[tag] == nil {
		d.missing[tag] = make(map[string][]Occurrence)
	}
	d.missing[tag][content] = append(d.missing[tag][content], occ)
}

// AddTagError buckets a use of a tag letter outside the fixed alphabet.
func (d *Dict) AddTagError(tag string, occ Occurrence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tagErrors[tag] = append(d.tagErrors[tag], occ)
}

// SemanticOccurrences returns the recorded occurrences for an entry.
func (d *Dict) SemanticOccurrences(tag, content string) []Occurrence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Occurrence(nil), d.sem[tag][content]...)
}

// StrongsOccurrences returns the recorded occurrences for an entry.
func (d *Dict) StrongsOccurrences(language, number string) []Occurrence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Occurrence(nil), d.str[language][number]...)
}

// EachSemantic calls fn for every defined semantic entry with a copy of
// its occurrence list. Iteration order follows sorted tag and content keys.
func (d *Dict) EachSemantic(fn func(tag, content string, occs []Occurrence)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	eachEntry(d.sem, fn)
}

// EachStrongs calls fn for every defined Strong's entry with a copy of its
// occurrence list. Iteration order follows sorted language and number keys.
func (d *Dict) EachStrongs(fn func(language, number string, occs []Occurrence)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	eachEntry(d.str, fn)
}

func eachEntry(table map[string]map[string][]Occurrence, fn func(string, string, []Occurrence)) {
	var outer []string
	for k := range table {
		outer = append(outer, k)
	}
	sort.Strings(outer)
	for _, k := range outer {
		var inner []string
		for c := range table[k] {
			inner = append(inner, c)
		}
		sort.Strings(inner)
		for _, c := range inner {
			fn(k, c, append([]Occurrence(nil), table[k][c]...))
		}
	}
}

// Missing returns the missing-entry bucket for one tag letter.
func (d *Dict) Missing(tag string) map[string][]Occurrence {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string][]Occurrence, len(d.missing[tag]))
	for content, occs := range d.missing[tag] {
		out[content] = append([]Occurrence(nil), occs...)
	}
	return out
}

// TagErrors returns the unknown-tag-letter bucket.
func (d *Dict) TagErrors() map[string][]Occurrence {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string][]Occurrence, len(d.tagErrors))
	for tag, occs := range d.tagErrors {
		out[tag] = append([]Occurrence(nil), occs...)
	}
	return out
}

// Report summarizes the dictionary state after resolution: defined entry
// counts, total occurrences, and the error buckets. Lines are sorted for
// stable output.
func (d *Dict) Report() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var lines []string
	for _, table := range []struct {
		name    string
		entries map[string]map[string][]Occurrence
	}{
		{"semantic", d.sem},
		{"strongs", d.str},
		{"missing", d.missing},
	} {
		var tags []string
		for tag := range table.entries {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			var total int
			for _, occs := range table.entries[tag] {
				total += len(occs)
			}
			lines = append(lines, fmt.Sprintf("%s %s: %d entries, %d occurrences",
				table.name, tag, len(table.entries[tag]), total))
		}
	}
	var bad []string
	for tag := range d.tagErrors {
		bad = append(bad, tag)
	}
	sort.Strings(bad)
	for _, tag := range bad {
		lines = append(lines, fmt.Sprintf("tag error %s: %d occurrences", tag, len(d.tagErrors[tag])))
	}
	return lines
}
