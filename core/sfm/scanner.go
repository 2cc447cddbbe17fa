package sfm

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/openscriptures/sfmkit/core/errors"
	"github.com/openscriptures/sfmkit/internal/logging"
)

// marker is the SFM field prefix character.
const markerPrefix = '\\'

// ScanOptions configures the flat line scanner.
type ScanOptions struct {
	// Path is used in diagnostics only.
	Path string

	// Encoding is the IANA name of the input encoding ("" means UTF-8).
	Encoding string

	// IgnoredMarkers lists markers whose fields are dropped entirely.
	// Continuation lines governed by an ignored marker are also dropped.
	IgnoredMarkers []string
}

// ScanFile reads and scans one file. Unreadable files return an error;
// everything recoverable inside the file is logged and skipped.
func ScanFile(path string, opts ScanOptions, read func(string) ([]byte, error)) (LineSequence, error) {
	data, err := read(path)
	if err != nil {
		logging.Error("cannot read source file", "path", path, "error", err)
		return nil, errors.NewIO("read", path, err)
	}
	opts.Path = path
	return ScanLines(data, opts)
}

// ScanLines splits decoded text into a LineSequence. Blank lines and `#`
// comment lines produce no field. A line not starting with a backslash is a
// continuation of the previous field, joined by a single space. A decode
// failure aborts the remainder of the file; fields already collected are
// returned. The only error returned is an unknown Encoding name.
func ScanLines(data []byte, opts ScanOptions) (LineSequence, error) {
	decode, err := lineDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]bool, len(opts.IgnoredMarkers))
	for _, m := range opts.IgnoredMarkers {
		ignored[m] = true
	}

	var seq LineSequence
	lastLine := ""       // last successfully decoded line, for diagnostics
	lastIgnored := false // whether the governing marker was ignored
	haveField := len(seq) > 0

	rawLines := bytes.Split(data, []byte{'\n'})
	for i, raw := range rawLines {
		lineNo := i + 1
		line, err := decode(raw)
		if err != nil {
			logging.SourceLine(logging.LevelError, "decode failure, abandoning rest of file",
				opts.Path, lineNo, "encoding", displayEncoding(opts.Encoding), "last_good_line", lastLine, "error", err)
			break
		}
		line = strings.TrimSuffix(line, "\r")
		if lineNo == 1 {
			if stripped, had := strings.CutPrefix(line, "\uFEFF"); had {
				logging.SourceLine(logging.LevelDebug, "stripped byte order mark", opts.Path, lineNo)
				line = stripped
			}
		}
		lastLine = line

		if line == "" {
			continue
		}
		if line[0] == '#' { // comment convention, flat mode only
			continue
		}

		if line[0] != markerPrefix {
			// Continuation line: attach to the most recent field.
			if lastIgnored {
				continue
			}
			if !haveField {
				logging.SourceLine(logging.LevelWarn, "continuation line with no preceding marker, discarded",
					opts.Path, lineNo, "text", line)
				continue
			}
			last := seq[len(seq)-1]
			seq = seq[:len(seq)-1]
			seq = append(seq, Field{Marker: last.Marker, Value: last.Value + " " + line})
			continue
		}

		marker, value := splitMarker(line)
		if marker == "" {
			logging.SourceLine(logging.LevelWarn, "line with empty marker, discarded", opts.Path, lineNo, "text", line)
			continue
		}
		if ignored[marker] {
			lastIgnored = true
			continue
		}
		lastIgnored = false
		seq = append(seq, Field{Marker: marker, Value: value})
		haveField = true
	}

	return seq, nil
}

// splitMarker separates `\marker value` into its parts. The marker token
// runs to the first space or embedded backslash. Exactly one separating
// space is dropped; when the marker abuts another backslash the value
// starts immediately at it.
func splitMarker(line string) (marker, value string) {
	i := 1
	for i < len(line) && line[i] != ' ' && line[i] != markerPrefix {
		i++
	}
	marker = line[1:i]
	switch {
	case i >= len(line):
		return marker, ""
	case line[i] == ' ':
		return marker, line[i+1:]
	default:
		return marker, line[i:]
	}
}

// lineDecoder returns a per-line decode function for the named IANA
// encoding. UTF-8 input is validated rather than transformed.
func lineDecoder(name string) (func([]byte) (string, error), error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return func(raw []byte) (string, error) {
			if !utf8.Valid(raw) {
				return "", errors.NewParse("SFM", "", 0, "invalid UTF-8 byte sequence")
			}
			return string(raw), nil
		}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, errors.NewUnsupported("encoding", name)
	}
	return func(raw []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}, nil
}

func displayEncoding(name string) string {
	if name == "" {
		return "utf-8"
	}
	return name
}
