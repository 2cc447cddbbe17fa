// Package encoding provides shared text escaping utilities for XML and HTML output.
package encoding

import "strings"

// Escape escapes the four characters that are never legal raw inside
// XML/HTML text or attribute values: & " < >.
// The ampersand is replaced first so already-present characters are not
// escaped twice by the later replacements.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeChecked is like Escape but, when checkFirst is true, leaves
// ampersands alone when they already introduce one of the escapes this
// package produces. Passing already-escaped text through with checkFirst
// set is therefore a no-op rather than a double escape.
func EscapeChecked(s string, checkFirst bool) string {
	if !checkFirst {
		return Escape(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			if startsOwnEntity(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '"':
			b.WriteString("&quot;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ownEntities are the escapes Escape itself produces.
var ownEntities = []string{"&amp;", "&quot;", "&lt;", "&gt;"}

func startsOwnEntity(s string) bool {
	for _, e := range ownEntities {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	return false
}

// EscapeWithOffsets escapes s and re-bases the given byte offsets so they
// keep pointing at the same characters in the escaped result. Offsets are
// assumed sorted ascending; offsets past the end of s are shifted by the
// total expansion. Used when standoff annotations carry indexes into text
// that is about to be escaped.
func EscapeWithOffsets(s string, offsets []int) (string, []int) {
	if len(offsets) == 0 {
		return Escape(s), nil
	}

	rebased := make([]int, len(offsets))
	var b strings.Builder
	b.Grow(len(s))

	next := 0
	for i := 0; i < len(s); i++ {
		for next < len(offsets) && offsets[next] == i {
			rebased[next] = b.Len()
			next++
		}
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteByte(s[i])
		}
	}
	for next < len(offsets) {
		rebased[next] = b.Len() + (offsets[next] - len(s))
		next++
	}
	return b.String(), rebased
}

// EscapeXMLText escapes only the three entities required in XML text
// content, leaving quotes untouched.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attribute values.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
