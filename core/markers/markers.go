// Package markers answers structural questions about USFM markers: whether a
// marker starts a new line, nests inside another field, or introduces a note,
// and what its standardized form is. It covers the marker subset the ESFM
// loader layer needs, not the full USFM stylesheet.
package markers

import "strings"

// newlineMarkers begin a new logical line in USFM text. Numbered variants
// (q1, s2, mt3...) are matched through Standardize.
var newlineMarkers = map[string]bool{
	"id": true, "ide": true, "h": true, "toc": true, "mt": true, "ms": true,
	"mr": true, "s": true, "r": true, "d": true, "sp": true, "rem": true,
	"c": true, "cl": true, "cp": true, "v": true,
	"p": true, "m": true, "po": true, "pr": true, "cls": true, "pmo": true,
	"pm": true, "pmc": true, "pmr": true, "pi": true, "mi": true, "nb": true,
	"pc": true, "b": true,
	"q": true, "qr": true, "qc": true, "qa": true, "qm": true, "qd": true,
	"lh": true, "li": true, "lf": true, "lim": true,
	"tr": true,
}

// internalMarkers are character styles that nest inside a text field and
// close with a matching *-form.
var internalMarkers = map[string]bool{
	"add": true, "bk": true, "dc": true, "k": true, "nd": true, "ord": true,
	"pn": true, "png": true, "qt": true, "sig": true, "sls": true, "tl": true,
	"wj": true, "em": true, "bd": true, "it": true, "bdit": true, "no": true,
	"sc": true, "sup": true, "w": true, "rb": true, "wa": true, "wg": true,
	"wh": true, "sem": true, "str": true,
}

// noteMarkers introduce footnote or cross-reference content.
var noteMarkers = map[string]bool{
	"f": true, "fe": true, "fr": true, "fk": true, "fq": true, "fqa": true,
	"ft": true, "fp": true, "fv": true, "fdc": true,
	"x": true, "xo": true, "xk": true, "xq": true, "xt": true, "xot": true,
	"xnt": true, "xdc": true,
}

// textBearing newline markers can carry verse text with inline annotations.
var textBearing = map[string]bool{
	"v": true, "p": true, "m": true, "pi": true, "mi": true, "nb": true,
	"pc": true, "q": true, "qr": true, "qc": true, "qm": true, "d": true,
	"li": true, "lim": true,
}

// Standardize returns the marker's base form: a closing `*` and any trailing
// level digits are removed, so "q2" and "mt3" report as "q" and "mt".
// The "toc1".."toc3" family standardizes to "toc".
func Standardize(marker string) string {
	marker = strings.TrimSuffix(marker, "*")
	base := strings.TrimRight(marker, "0123456789")
	if base == "" {
		return marker // purely numeric marker, leave as given
	}
	return base
}

// IsNewline reports whether the marker begins a new logical line.
func IsNewline(marker string) bool {
	return newlineMarkers[Standardize(marker)]
}

// IsInternal reports whether the marker is a nested character style.
func IsInternal(marker string) bool {
	return internalMarkers[Standardize(marker)]
}

// IsNote reports whether the marker introduces footnote or cross-reference
// content.
func IsNote(marker string) bool {
	return noteMarkers[Standardize(marker)]
}

// CarriesText reports whether a newline marker's value is verse-class text
// eligible for inline annotation resolution.
func CarriesText(marker string) bool {
	return textBearing[Standardize(marker)]
}
