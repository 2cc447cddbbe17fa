// Package markup is a streaming XML/HTML writer with tag-balance tracking,
// column-limited line wrapping, and entity checking. One Writer owns one
// output sink and must not be shared across goroutines.
package markup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openscriptures/sfmkit/core/encoding"
	"github.com/openscriptures/sfmkit/core/errors"
	"github.com/openscriptures/sfmkit/core/xml"
	"github.com/openscriptures/sfmkit/internal/logging"
)

// Doctype selects the markup dialect.
type Doctype int

const (
	// XML writes XML 1.0 with the five predefined entities.
	XML Doctype = iota
	// HTML writes HTML5-flavored markup with the expanded entity list.
	HTML
)

// Readable controls indentation and newline emission.
type Readable int

const (
	// ReadableAll indents every element and ends most operations with a newline.
	ReadableAll Readable = iota
	// ReadableNone suppresses all indentation and newlines.
	ReadableNone
	// ReadableHeader formats while the section is Header, then collapses.
	ReadableHeader
	// ReadableNLSpace indents but writes single spaces instead of newlines.
	ReadableNLSpace
)

// Section marks which part of the document the writer is in; it only
// matters under ReadableHeader.
type Section int

const (
	SectionNone Section = iota
	SectionHeader
	SectionMain
)

// writer lifecycle states.
type wstate int

const (
	stateIdle wstate = iota
	stateOpen
	stateClosed
)

// htmlNoNewline lists HTML tags that suppress the automatic trailing
// newline so inline runs stay on one line.
var htmlNoNewline = map[string]bool{
	"a": true, "b": true, "em": true, "i": true, "sup": true, "sub": true,
	"span": true, "p": true,
}

// Options configures a Writer. The zero value is XML, LF line endings,
// fully readable, two-space indents, no column limit.
type Options struct {
	Doctype     Doctype
	LineEnding  string // "\n" or "\r\n"; "" means "\n"
	WriteBOM    bool   // emit a UTF-8 byte order mark before any text
	OmitProlog  bool   // suppress the <?xml ...?> prolog (XML only)
	Readable    Readable
	IndentWidth int // spaces per open-stack level; 0 means 2
	MaxColumns  int // force a newline when the column reaches this; 0 = unlimited

	// SpaceBeforeSelfClose writes <tag /> instead of <tag/>.
	SpaceBeforeSelfClose bool

	// HaltOnErrors upgrades structural violations from logged warnings to
	// returned errors. Intended for strict and test contexts.
	HaltOnErrors bool
}

// Attr is one attribute. Int values are stringified automatically; all
// other values must be strings.
type Attr struct {
	Key   string
	Value interface{}
}

// Writer emits well-formed XML or HTML incrementally.
type Writer struct {
	out     *bufio.Writer
	closer  io.Closer // nil unless the writer owns the file
	path    string    // "" unless writing to a named file
	opts    Options
	state   wstate
	stack   []string
	column  int
	section Section
}

// NewWriter wraps an existing sink.
func NewWriter(w io.Writer, opts Options) *Writer {
	applyDefaults(&opts)
	return &Writer{out: bufio.NewWriter(w), opts: opts}
}

// NewFileWriter creates the named file and writes to it. The file is
// finalized by Close.
func NewFileWriter(path string, opts Options) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIO("create", path, err)
	}
	applyDefaults(&opts)
	return &Writer{out: bufio.NewWriter(f), closer: f, path: path, opts: opts}, nil
}

func applyDefaults(opts *Options) {
	if opts.LineEnding == "" {
		opts.LineEnding = "\n"
	}
	if opts.IndentWidth == 0 {
		opts.IndentWidth = 2
	}
}

// Start begins the document: optional BOM, then the XML prolog unless
// suppressed or writing HTML. Calling Start outside the Idle state is an
// error regardless of halt mode.
func (w *Writer) Start() error {
	if w.state != stateIdle {
		return errors.NewMarkup("start", "", "writer already started")
	}
	w.state = stateOpen
	if w.opts.WriteBOM {
		w.write("\uFEFF")
	}
	if w.opts.Doctype == XML && !w.opts.OmitProlog {
		w.write(`<?xml version="1.0" encoding="utf-8"?>`)
		w.newline()
	}
	return nil
}

// SetSection marks the current document section (see ReadableHeader).
func (w *Writer) SetSection(s Section) { w.section = s }

// Depth returns the number of currently open tags.
func (w *Writer) Depth() int { return len(w.stack) }

// Open emits <tag> (or <tag attr="val">) and pushes tag on the open stack.
func (w *Writer) Open(tag string, attrs ...Attr) error {
	if err := w.requireOpenState("open", tag); err != nil {
		return err
	}
	if err := w.checkTag(tag); err != nil {
		return err
	}
	rendered, err := w.renderAttrs(attrs)
	if err != nil {
		return err
	}
	w.indent()
	w.write("<" + tag + rendered + ">")
	w.stack = append(w.stack, tag)
	if !w.suppressNewline(tag) {
		w.newline()
	}
	return nil
}

// OpenText is Open immediately followed by text content on the same logical
// line; the tag stays open and must still be closed by the caller.
func (w *Writer) OpenText(tag, text string, attrs ...Attr) error {
	if err := w.requireOpenState("open", tag); err != nil {
		return err
	}
	if err := w.checkTag(tag); err != nil {
		return err
	}
	if err := w.checkText(text); err != nil {
		return err
	}
	rendered, err := w.renderAttrs(attrs)
	if err != nil {
		return err
	}
	w.indent()
	w.write("<" + tag + rendered + ">" + text)
	w.stack = append(w.stack, tag)
	return nil
}

// OpenClose writes a complete <tag>text</tag> on one line and returns the
// number of characters written, so callers can track output positions.
func (w *Writer) OpenClose(tag, text string, attrs ...Attr) (int, error) {
	if err := w.requireOpenState("open", tag); err != nil {
		return 0, err
	}
	if err := w.checkTag(tag); err != nil {
		return 0, err
	}
	if err := w.checkText(text); err != nil {
		return 0, err
	}
	rendered, err := w.renderAttrs(attrs)
	if err != nil {
		return 0, err
	}
	w.indent()
	chunk := "<" + tag + rendered + ">" + text + "</" + tag + ">"
	w.write(chunk)
	if !w.suppressNewline(tag) {
		w.newline()
	}
	return len(chunk), nil
}

// SelfClose emits <tag/> (or <tag />).
func (w *Writer) SelfClose(tag string, attrs ...Attr) error {
	if err := w.requireOpenState("open", tag); err != nil {
		return err
	}
	if err := w.checkTag(tag); err != nil {
		return err
	}
	rendered, err := w.renderAttrs(attrs)
	if err != nil {
		return err
	}
	w.indent()
	if w.opts.SpaceBeforeSelfClose {
		w.write("<" + tag + rendered + " />")
	} else {
		w.write("<" + tag + rendered + "/>")
	}
	if !w.suppressNewline(tag) {
		w.newline()
	}
	return nil
}

// Text emits raw text content after checking it for unescaped specials.
func (w *Writer) Text(text string) error {
	if err := w.requireOpenState("text", ""); err != nil {
		return err
	}
	if err := w.checkText(text); err != nil {
		return err
	}
	w.write(text)
	return nil
}

// TextUnchecked emits text without any validation, for callers that have
// already escaped it.
func (w *Writer) TextUnchecked(text string) error {
	if err := w.requireOpenState("text", ""); err != nil {
		return err
	}
	w.write(text)
	return nil
}

// TextWithExtras escapes raw text, writes it, and returns the caller's
// standoff annotation offsets re-based into the escaped form.
func (w *Writer) TextWithExtras(text string, offsets []int) ([]int, error) {
	if err := w.requireOpenState("text", ""); err != nil {
		return nil, err
	}
	escaped, rebased := encoding.EscapeWithOffsets(text, offsets)
	w.write(escaped)
	return rebased, nil
}

// Comment emits <!-- text -->.
func (w *Writer) Comment(text string) error {
	if err := w.requireOpenState("comment", ""); err != nil {
		return err
	}
	if strings.Contains(text, "--") {
		if err := w.violation("comment", "", "comment must not contain --"); err != nil {
			return err
		}
		text = strings.ReplaceAll(text, "--", "- -")
	}
	w.indent()
	w.write("<!-- " + text + " -->")
	w.newline()
	return nil
}

// CloseTag pops the open stack and emits </tag>. A mismatched or surplus
// close is logged, or returned as an error in halt mode.
func (w *Writer) CloseTag(tag string) error {
	if err := w.requireOpenState("close", tag); err != nil {
		return err
	}
	if len(w.stack) == 0 {
		if err := w.violation("close", tag, "no tags open"); err != nil {
			return err
		}
		return nil
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if top != tag {
		if err := w.violation("close", tag, fmt.Sprintf("expected </%s>", top)); err != nil {
			return err
		}
	}
	w.indent()
	w.write("</" + tag + ">")
	if !w.suppressNewline(tag) {
		w.newline()
	}
	return nil
}

// AutoClose closes every remaining open tag in LIFO order, then closes the
// writer normally.
func (w *Writer) AutoClose() error {
	for len(w.stack) > 0 {
		if err := w.CloseTag(w.stack[len(w.stack)-1]); err != nil {
			return err
		}
	}
	return w.Close()
}

// Close finalizes the document. The open stack must be empty; a non-empty
// stack is logged, or returned as an error in halt mode, and the tags are
// abandoned unclosed. Buffered output is always flushed.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return errors.NewMarkup("close", "", "writer already closed")
	}
	var structural error
	if len(w.stack) > 0 {
		structural = w.violation("close", "", fmt.Sprintf("%d tags still open: %s",
			len(w.stack), strings.Join(w.stack, ", ")))
		w.stack = nil
	}
	w.state = stateClosed

	if err := w.out.Flush(); err != nil {
		return errors.NewIO("flush", w.path, err)
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return errors.NewIO("close", w.path, err)
		}
	}
	return structural
}

// Validate re-parses the produced document and reports well-formedness.
// Only file-backed writers can validate; for sink-backed writers this is a
// recoverable warning and an empty valid result.
func (w *Writer) Validate() xml.ValidationResult {
	if w.path == "" {
		logging.Warn("validation skipped: writer has no file to re-read")
		return xml.ValidationResult{Valid: true}
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		logging.Warn("validation skipped: cannot re-read output", "path", w.path, "error", err)
		return xml.ValidationResult{Valid: true}
	}
	return xml.Validate(data)
}

// requireOpenState rejects operations outside the Open lifecycle state.
func (w *Writer) requireOpenState(op, tag string) error {
	switch w.state {
	case stateOpen:
		return nil
	case stateIdle:
		return errors.NewMarkup(op, tag, "writer not started")
	default:
		return errors.NewMarkup(op, tag, "writer already closed")
	}
}

// violation logs a structural problem and, in halt mode, returns it.
func (w *Writer) violation(op, tag, msg string) error {
	logging.Warn("markup structure violation", "op", op, "tag", tag, "detail", msg, "path", w.path)
	if w.opts.HaltOnErrors {
		return errors.NewMarkup(op, tag, msg)
	}
	return nil
}

// checkTag validates a tag name.
func (w *Writer) checkTag(tag string) error {
	if tag == "" {
		return w.violation("tag", tag, "empty tag name")
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.' || c == ':'
		if !ok {
			return w.violation("tag", tag, fmt.Sprintf("invalid character %q in tag name", c))
		}
	}
	return nil
}

// checkText rejects unescaped specials and unrecognizable entities in
// text content. Callers expecting raw specials must escape first.
func (w *Writer) checkText(text string) error {
	if i := strings.IndexAny(text, `<>"`); i >= 0 {
		return w.violation("text", "", fmt.Sprintf("unescaped %q near %q", text[i], snippet(text, i)))
	}
	if bad, ok := w.scanEntities(text); !ok {
		return w.violation("text", "", fmt.Sprintf("unrecognized entity near %q", bad))
	}
	return nil
}

// checkAttribValue rejects unescaped specials in attribute values.
func (w *Writer) checkAttribValue(value string) error {
	if i := strings.IndexAny(value, `<>"`); i >= 0 {
		return w.violation("attribute", "", fmt.Sprintf("unescaped %q near %q", value[i], snippet(value, i)))
	}
	if bad, ok := w.scanEntities(value); !ok {
		return w.violation("attribute", "", fmt.Sprintf("unrecognized entity near %q", bad))
	}
	return nil
}

// renderAttrs stringifies and validates attributes.
func (w *Writer) renderAttrs(attrs []Attr) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, a := range attrs {
		var val string
		switch v := a.Value.(type) {
		case string:
			val = v
		case int:
			val = fmt.Sprintf("%d", v)
		default:
			if err := w.violation("attribute", a.Key, fmt.Sprintf("unsupported value type %T", a.Value)); err != nil {
				return "", err
			}
			val = fmt.Sprintf("%v", a.Value)
		}
		if err := w.checkAttribValue(val); err != nil {
			return "", err
		}
		b.WriteString(" " + a.Key + `="` + val + `"`)
	}
	return b.String(), nil
}

// formatted reports whether indentation applies right now.
func (w *Writer) formatted() bool {
	switch w.opts.Readable {
	case ReadableAll, ReadableNLSpace:
		return true
	case ReadableHeader:
		return w.section != SectionMain
	default:
		return false
	}
}

// indent writes the current indentation when formatting is active and the
// writer sits at the start of a line.
func (w *Writer) indent() {
	if !w.formatted() || w.column != 0 {
		return
	}
	w.write(strings.Repeat(" ", len(w.stack)*w.opts.IndentWidth))
}

// newline ends the current line per the readable mode.
func (w *Writer) newline() {
	if !w.formatted() {
		return
	}
	if w.opts.Readable == ReadableNLSpace {
		w.write(" ")
		return
	}
	w.out.WriteString(w.opts.LineEnding)
	w.column = 0
}

// write sends s to the sink, tracking the column and forcing a newline
// when the configured maximum is reached, regardless of readable mode.
func (w *Writer) write(s string) {
	w.out.WriteString(s)
	w.column += len(s)
	if w.opts.MaxColumns > 0 && w.column >= w.opts.MaxColumns {
		w.out.WriteString(w.opts.LineEnding)
		w.column = 0
	}
}

// suppressNewline reports whether the tag keeps following output on the
// same line (HTML inline and paragraph tags).
func (w *Writer) suppressNewline(tag string) bool {
	return w.opts.Doctype == HTML && htmlNoNewline[tag]
}
