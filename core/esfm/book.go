package esfm

import (
	"strconv"
	"strings"

	"github.com/openscriptures/sfmkit/core/markers"
	"github.com/openscriptures/sfmkit/core/sfm"
	"github.com/openscriptures/sfmkit/internal/logging"
)

// ResolveBook walks one scanned book and rewrites every text-bearing field's
// annotations, tracking the chapter/verse position from `\c` and `\v`
// markers as it goes. bookCode is the USFM book code used in occurrence
// tuples. Fields that carry no verse-class text pass through untouched.
func (r *Resolver) ResolveBook(bookCode string, lines sfm.LineSequence) sfm.LineSequence {
	out := make(sfm.LineSequence, 0, len(lines))
	chapter, verse := 0, 0

	for _, f := range lines {
		switch markers.Standardize(f.Marker) {
		case "c":
			numText, _, _ := strings.Cut(f.Value, " ")
			n, err := strconv.Atoi(numText)
			if err != nil || n <= 0 {
				logging.Warn("unparseable chapter number", "book", bookCode, "value", f.Value)
			} else {
				chapter = n
				verse = 0
			}
			out = append(out, f)

		case "v":
			num, rest, _ := strings.Cut(f.Value, " ")
			first, _, _ := strings.Cut(num, "-") // tolerate verse ranges like 1-2
			n, err := strconv.Atoi(first)
			if err != nil || n <= 0 {
				logging.Warn("unparseable verse number", "book", bookCode, "chapter", chapter, "value", f.Value)
				out = append(out, f)
				continue
			}
			verse = n
			if rest == "" {
				out = append(out, f)
				continue
			}
			resolved := r.ResolveText(bookCode, chapter, verse, rest)
			out = append(out, sfm.Field{Marker: f.Marker, Value: num + " " + resolved})

		default:
			if markers.CarriesText(f.Marker) && f.Value != "" {
				resolved := r.ResolveText(bookCode, chapter, verse, f.Value)
				out = append(out, sfm.Field{Marker: f.Marker, Value: resolved})
			} else {
				out = append(out, f)
			}
		}
	}
	return out
}
