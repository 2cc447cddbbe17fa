package sfm

import (
	"fmt"
	"strings"

	"github.com/openscriptures/sfmkit/internal/logging"
)

// MarkerRemap renames one marker to another. Remaps are applied in order to
// every scanned marker before any grouping logic, including key matching.
type MarkerRemap struct {
	From string
	To   string
}

// GroupOptions configures record grouping.
type GroupOptions struct {
	// KeyMarker delimits records; every field carrying it starts a new
	// record. Empty means infer it from the first non-ignored field.
	// A key marker containing a space or backslash is a programming error
	// and panics.
	KeyMarker string

	// IgnoredMarkers lists markers stripped from completed records.
	IgnoredMarkers []string

	// IgnoredEntries lists key-field values whose whole record is discarded.
	IgnoredEntries []string

	// RemapMarkers renames markers before any other processing.
	RemapMarkers []MarkerRemap

	// Path is used in diagnostics only.
	Path string
}

// Grouper partitions a flat field sequence into records and answers
// structural queries over the result.
type Grouper struct {
	key     string
	records RecordSet
	path    string
}

// Group partitions lines into records delimited by the key marker.
// The in-progress buffer at end of input is flushed through the same
// completion logic as interior records.
func Group(lines LineSequence, opts GroupOptions) *Grouper {
	if strings.ContainsAny(opts.KeyMarker, " \\") {
		panic(fmt.Sprintf("sfm: key marker %q must not contain a space or backslash", opts.KeyMarker))
	}

	ignored := make(map[string]bool, len(opts.IgnoredMarkers))
	for _, m := range opts.IgnoredMarkers {
		ignored[m] = true
	}
	dropEntries := make(map[string]bool, len(opts.IgnoredEntries))
	for _, v := range opts.IgnoredEntries {
		dropEntries[v] = true
	}

	g := &Grouper{key: opts.KeyMarker, path: opts.Path}

	var buf Record
	complete := func() {
		if len(buf) == 0 {
			return
		}
		rec := buf
		buf = nil
		if dropEntries[rec.Key().Value] {
			return
		}
		kept := make(Record, 0, len(rec))
		for _, f := range rec {
			if !ignored[f.Marker] {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			return
		}
		g.records = append(g.records, kept)
	}

	for _, f := range lines {
		marker := remapMarker(f.Marker, opts.RemapMarkers)
		if g.key == "" && !ignored[marker] {
			g.key = marker
			logging.Info("inferred record key marker", "marker", marker, "path", opts.Path)
		}
		if marker == g.key {
			complete()
		}
		buf = append(buf, Field{Marker: marker, Value: f.Value})
	}
	complete()

	return g
}

// GroupBytes scans raw file bytes and groups the result in one step.
func GroupBytes(data []byte, scan ScanOptions, opts GroupOptions) (*Grouper, error) {
	lines, err := ScanLines(data, scan)
	if err != nil {
		return nil, err
	}
	if opts.Path == "" {
		opts.Path = scan.Path
	}
	return Group(lines, opts), nil
}

func remapMarker(marker string, remaps []MarkerRemap) string {
	for _, r := range remaps {
		if marker == r.From {
			return r.To
		}
	}
	return marker
}

// KeyMarker returns the configured or inferred key marker.
func (g *Grouper) KeyMarker() string { return g.key }

// Records returns the grouped records in input order.
func (g *Grouper) Records() RecordSet { return g.records }

// Analysis summarizes a RecordSet's shape for stylesheet and schema
// discovery. Marker and value lists preserve first-seen order.
type Analysis struct {
	MinFields int
	MaxFields int
	Markers   []string
	Values    map[string][]string
}

// Analyze reports the minimum and maximum record length, the distinct
// markers seen, and the distinct values seen per marker.
func (g *Grouper) Analyze() Analysis {
	a := Analysis{Values: make(map[string][]string)}
	seenMarker := make(map[string]bool)
	seenValue := make(map[string]map[string]bool)

	for i, rec := range g.records {
		if i == 0 || len(rec) < a.MinFields {
			a.MinFields = len(rec)
		}
		if len(rec) > a.MaxFields {
			a.MaxFields = len(rec)
		}
		for _, f := range rec {
			if !seenMarker[f.Marker] {
				seenMarker[f.Marker] = true
				a.Markers = append(a.Markers, f.Marker)
			}
			if seenValue[f.Marker] == nil {
				seenValue[f.Marker] = make(map[string]bool)
			}
			if !seenValue[f.Marker][f.Value] {
				seenValue[f.Marker][f.Value] = true
				a.Values[f.Marker] = append(a.Values[f.Marker], f.Value)
			}
		}
	}
	return a
}

// ToList maps each record's key value to its remaining fields, in order.
// Repeated markers within a record are tolerated; repeated key values
// across records overwrite with a warning.
func (g *Grouper) ToList() map[string][]Field {
	out := make(map[string][]Field, len(g.records))
	for _, rec := range g.records {
		key := rec.Key().Value
		if _, dup := out[key]; dup {
			logging.Warn("duplicate record key, overwriting earlier record", "key", key, "path", g.path)
		}
		fields := make([]Field, len(rec)-1)
		copy(fields, rec[1:])
		out[key] = fields
	}
	return out
}

// ToDict maps each record's key value to a flat marker→value mapping.
// A marker repeated within one record overwrites the previous value with a
// warning; this is accepted lossy behavior, not an error.
func (g *Grouper) ToDict() map[string]map[string]string {
	out := make(map[string]map[string]string, len(g.records))
	for _, rec := range g.records {
		key := rec.Key().Value
		if _, dup := out[key]; dup {
			logging.Warn("duplicate record key, overwriting earlier record", "key", key, "path", g.path)
		}
		m := make(map[string]string, len(rec)-1)
		for i, f := range rec {
			if i == 0 {
				continue // key field carries the record identity
			}
			if _, dup := m[f.Marker]; dup {
				logging.Warn("duplicate marker within record, overwriting value",
					"key", key, "marker", f.Marker, "path", g.path)
			}
			m[f.Marker] = f.Value
		}
		out[key] = m
	}
	return out
}
