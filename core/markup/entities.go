package markup

// xmlEntities are the five predefined XML 1.0 entities.
var xmlEntities = map[string]bool{
	"quot": true, "amp": true, "apos": true, "lt": true, "gt": true,
}

// htmlEntities extends the XML set with the character entities commonly used
// in HTML output. Numeric references are handled separately.
var htmlEntities = map[string]bool{
	"quot": true, "amp": true, "apos": true, "lt": true, "gt": true,
	"nbsp": true, "copy": true, "reg": true, "trade": true, "sect": true,
	"para": true, "middot": true, "laquo": true, "raquo": true,
	"ndash": true, "mdash": true, "hellip": true, "bull": true,
	"lsquo": true, "rsquo": true, "ldquo": true, "rdquo": true,
	"dagger": true, "Dagger": true, "permil": true, "prime": true,
	"agrave": true, "aacute": true, "acirc": true, "atilde": true,
	"auml": true, "aring": true, "aelig": true, "ccedil": true,
	"egrave": true, "eacute": true, "ecirc": true, "euml": true,
	"igrave": true, "iacute": true, "icirc": true, "iuml": true,
	"ntilde": true, "ograve": true, "oacute": true, "ocirc": true,
	"otilde": true, "ouml": true, "oslash": true, "ugrave": true,
	"uacute": true, "ucirc": true, "uuml": true, "yacute": true,
	"szlig": true, "thorn": true, "eth": true,
}

// entities returns the recognized entity names for the writer's doctype.
func (w *Writer) entities() map[string]bool {
	if w.opts.Doctype == HTML {
		return htmlEntities
	}
	return xmlEntities
}

// scanEntities checks every ampersand in s for a recognizable entity
// reference: a name from the doctype's entity list, or a numeric character
// reference, terminated by a semicolon. It returns the first offending
// snippet and false on a violation.
func (w *Writer) scanEntities(s string) (string, bool) {
	known := w.entities()
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		semi := -1
		for j := i + 1; j < len(s) && j-i <= maxEntityLen; j++ {
			if s[j] == ';' {
				semi = j
				break
			}
		}
		if semi < 0 {
			return snippet(s, i), false
		}
		name := s[i+1 : semi]
		if !known[name] && !isNumericRef(name) {
			return snippet(s, i), false
		}
		i = semi
	}
	return "", true
}

// maxEntityLen bounds the search for a terminating semicolon.
const maxEntityLen = 10

// isNumericRef reports whether name is a numeric character reference body:
// #123 or #x1F62E.
func isNumericRef(name string) bool {
	if len(name) < 2 || name[0] != '#' {
		return false
	}
	digits := name[1:]
	hex := false
	if digits[0] == 'x' || digits[0] == 'X' {
		hex = true
		digits = digits[1:]
		if digits == "" {
			return false
		}
	}
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		switch {
		case c >= '0' && c <= '9':
		case hex && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		default:
			return false
		}
	}
	return true
}

func snippet(s string, i int) string {
	end := i + 12
	if end > len(s) {
		end = len(s)
	}
	return s[i:end]
}
