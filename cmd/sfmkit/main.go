// Command sfmkit is the CLI for the SFM toolkit. It scans and groups SFM
// files, resolves ESFM annotations against tag dictionaries, exports records
// to SQLite, and renders grouped books as XML or HTML.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/openscriptures/sfmkit/core/books"
	"github.com/openscriptures/sfmkit/core/encoding"
	"github.com/openscriptures/sfmkit/core/esfm"
	"github.com/openscriptures/sfmkit/core/markup"
	"github.com/openscriptures/sfmkit/core/ref"
	"github.com/openscriptures/sfmkit/core/resources"
	"github.com/openscriptures/sfmkit/core/sfm"
	"github.com/openscriptures/sfmkit/core/sqlite"
	"github.com/openscriptures/sfmkit/core/xml"
	"github.com/openscriptures/sfmkit/internal/logging"
)

const version = "0.2.0"

// CLI defines the command-line interface for sfmkit.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level"`
	LogFormat string `name:"log-format" enum:"text,json" default:"text" help:"Log output format"`

	Parse    ParseCmd    `cmd:"" help:"Scan SFM files and print their fields"`
	Analyze  AnalyzeCmd  `cmd:"" help:"Group an SFM file into records and summarize its structure"`
	Resolve  ResolveCmd  `cmd:"" help:"Resolve ESFM annotations in book files against a dictionary"`
	Export   ExportCmd   `cmd:"" help:"Export grouped records into a SQLite database"`
	Write    WriteCmd    `cmd:"" help:"Render a grouped SFM book as XML or HTML"`
	Validate ValidateCmd `cmd:"" help:"Check an XML file for well-formedness"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

// ParseCmd scans files in flat mode.
type ParseCmd struct {
	Paths    []string `arg:"" help:"SFM files to scan" type:"existingfile"`
	Encoding string   `help:"IANA name of the input encoding (default UTF-8)"`
	Ignore   []string `help:"Markers to drop entirely"`
}

func (c *ParseCmd) Run() error {
	opts := sfm.ScanOptions{Encoding: c.Encoding, IgnoredMarkers: c.Ignore}
	for _, path := range c.Paths {
		lines, err := sfm.ScanFile(path, opts, os.ReadFile)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d fields\n", path, len(lines))
		for _, f := range lines {
			fmt.Printf("  \\%s %s\n", f.Marker, f.Value)
		}
	}
	return nil
}

// AnalyzeCmd groups a file and prints its structural summary.
type AnalyzeCmd struct {
	Path        string   `arg:"" help:"SFM file to analyze" type:"existingfile"`
	Key         string   `help:"Record key marker (default: inferred from the first field)"`
	Encoding    string   `help:"IANA name of the input encoding (default UTF-8)"`
	Ignore      []string `help:"Markers stripped from records"`
	DropEntries []string `name:"drop-entries" help:"Key values whose records are discarded"`
	Remap       []string `help:"Marker renames, from=to"`
}

func (c *AnalyzeCmd) Run() error {
	remaps, err := parseRemaps(c.Remap)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Path, err)
	}
	g, err := sfm.GroupBytes(data,
		sfm.ScanOptions{Path: c.Path, Encoding: c.Encoding},
		sfm.GroupOptions{
			KeyMarker:      c.Key,
			IgnoredMarkers: c.Ignore,
			IgnoredEntries: c.DropEntries,
			RemapMarkers:   remaps,
			Path:           c.Path,
		})
	if err != nil {
		return err
	}

	a := g.Analyze()
	fmt.Printf("%s: %d records keyed by \\%s\n", c.Path, len(g.Records()), g.KeyMarker())
	fmt.Printf("  fields per record: %d..%d\n", a.MinFields, a.MaxFields)
	for _, marker := range a.Markers {
		fmt.Printf("  \\%-8s %d values\n", marker, len(a.Values[marker]))
	}
	return nil
}

func parseRemaps(specs []string) ([]sfm.MarkerRemap, error) {
	var remaps []sfm.MarkerRemap
	for _, s := range specs {
		from, to, ok := strings.Cut(s, "=")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid remap %q, want from=to", s)
		}
		remaps = append(remaps, sfm.MarkerRemap{From: from, To: to})
	}
	return remaps, nil
}

// ResolveCmd resolves ESFM annotations in book files.
type ResolveCmd struct {
	Dict      string   `required:"" help:"Dictionary source (plain, .xz, or .zip file)"`
	Member    string   `help:"Archive member when the dictionary source is a .zip"`
	FetchRoot string   `name:"fetch-root" help:"Root directory dictionary sources are fetched from" type:"existingdir" default:"."`
	Books     []string `arg:"" help:"ESFM book files to resolve" type:"existingfile"`
	Out       string   `help:"Directory for resolved output files" type:"path"`
	Workers   int      `help:"Parallel workers (default: one per CPU)"`
	Ref       string   `help:"Only report occurrences inside this reference (e.g. 'MRK 1:1-20')"`
}

func (c *ResolveCmd) Run() error {
	var filter *ref.Ref
	if c.Ref != "" {
		r, err := ref.Parse(c.Ref)
		if err != nil {
			return err
		}
		filter = r
	}

	dict, err := c.loadDictionary()
	if err != nil {
		return err
	}
	resolver := esfm.NewResolver(dict)

	results := sfm.GroupFiles(c.Books, sfm.ScanOptions{}, sfm.GroupOptions{KeyMarker: "id"}, c.Workers)
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
		for _, rec := range res.Grouper.Records() {
			code := bookCode(rec)
			resolved := resolver.ResolveBook(code, sfm.LineSequence(rec))
			if c.Out != "" {
				if err := writeLines(c.Out, res.Path, resolved); err != nil {
					return err
				}
			}
		}
	}

	for _, line := range dict.Report() {
		fmt.Println(line)
	}
	if filter != nil {
		printFilteredOccurrences(dict, filter)
	}
	return nil
}

// loadDictionary materializes the dictionary source through the resource
// catalog and loads its entries.
func (c *ResolveCmd) loadDictionary() (*esfm.Dict, error) {
	catalog := resources.NewCatalog(resources.FileFetcher(c.FetchRoot), resources.Config{})
	res, err := catalog.Resolve(context.Background(), resources.Request{
		Name:   filepath.Base(strings.TrimSuffix(c.Dict, ".xz")),
		Source: c.Dict,
		Member: c.Member,
	})
	if err != nil {
		return nil, err
	}

	lines, err := sfm.ScanFile(res.Path, sfm.ScanOptions{}, os.ReadFile)
	if err != nil {
		return nil, err
	}
	builder := esfm.NewDictBuilder()
	if err := esfm.LoadDictionary(lines, res.Path, builder); err != nil {
		return nil, err
	}
	return builder.Snapshot(), nil
}

// bookCode extracts the 3-letter code from a record's \id field.
func bookCode(rec sfm.Record) string {
	key := rec.Key()
	code, _, _ := strings.Cut(key.Value, " ")
	code = strings.ToUpper(code)
	if !books.IsValid(code) {
		logging.Warn("unrecognized book code", "code", code)
	}
	return code
}

func writeLines(dir, sourcePath string, lines sfm.LineSequence) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	var sb strings.Builder
	for _, f := range lines {
		sb.WriteString("\\")
		sb.WriteString(f.Marker)
		if f.Value != "" {
			sb.WriteString(" ")
			sb.WriteString(f.Value)
		}
		sb.WriteString("\n")
	}
	out := filepath.Join(dir, filepath.Base(sourcePath))
	if err := os.WriteFile(out, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Resolved: %s\n", out)
	return nil
}

func printFilteredOccurrences(dict *esfm.Dict, filter *ref.Ref) {
	fmt.Printf("Occurrences in %s:\n", filter)
	print := func(kind, tag, content string, occs []esfm.Occurrence) {
		for _, occ := range occs {
			if filter.Contains(occ.Book, occ.Chapter, occ.Verse) {
				fmt.Printf("  %s %s %s at %s %d:%d (%s)\n",
					kind, tag, content, occ.Book, occ.Chapter, occ.Verse, occ.Word)
			}
		}
	}
	dict.EachSemantic(func(tag, content string, occs []esfm.Occurrence) {
		print("sem", tag, content, occs)
	})
	dict.EachStrongs(func(language, number string, occs []esfm.Occurrence) {
		print("str", language, number, occs)
	})
}

// ExportCmd exports grouped records into SQLite.
type ExportCmd struct {
	Path     string `arg:"" help:"SFM file to export" type:"existingfile"`
	Out      string `required:"" help:"SQLite database path" type:"path"`
	Key      string `help:"Record key marker (default: inferred)"`
	Encoding string `help:"IANA name of the input encoding (default UTF-8)"`
}

func (c *ExportCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Path, err)
	}
	g, err := sfm.GroupBytes(data,
		sfm.ScanOptions{Path: c.Path, Encoding: c.Encoding},
		sfm.GroupOptions{KeyMarker: c.Key, Path: c.Path})
	if err != nil {
		return err
	}

	db, err := sqlite.Open(c.Out)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlite.InitSchema(ctx, db); err != nil {
		return err
	}
	if err := sqlite.ExportRecords(ctx, db, filepath.Base(c.Path), g.Records()); err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s (%s driver)\n", len(g.Records()), c.Out, sqlite.DriverType())
	return nil
}

// WriteCmd renders a grouped book as markup.
type WriteCmd struct {
	Path     string `arg:"" help:"SFM book file to render" type:"existingfile"`
	Out      string `required:"" help:"Output file path" type:"path"`
	HTML     bool   `help:"Write HTML instead of XML"`
	Readable string `enum:"all,none,header,nlspace" default:"all" help:"Whitespace mode"`
	Columns  int    `help:"Force a newline at this output column (0 = unlimited)"`
	BOM      bool   `help:"Write a UTF-8 byte order mark"`
	CRLF     bool   `help:"Use CRLF line endings"`
	Strict   bool   `help:"Treat structural violations as errors"`
}

func (c *WriteCmd) Run() error {
	lines, err := sfm.ScanFile(c.Path, sfm.ScanOptions{}, os.ReadFile)
	if err != nil {
		return err
	}

	opts := markup.Options{
		Readable:     readableMode(c.Readable),
		WriteBOM:     c.BOM,
		MaxColumns:   c.Columns,
		HaltOnErrors: c.Strict,
	}
	if c.HTML {
		opts.Doctype = markup.HTML
	}
	if c.CRLF {
		opts.LineEnding = "\r\n"
	}

	w, err := markup.NewFileWriter(c.Out, opts)
	if err != nil {
		return err
	}
	if err := renderBook(w, lines); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if !c.HTML {
		if result := w.Validate(); !result.Valid {
			for _, e := range result.Errors {
				fmt.Fprintf(os.Stderr, "invalid output at byte %d: %s\n", e.Offset, e.Message)
			}
			return fmt.Errorf("output failed well-formedness check")
		}
	}
	fmt.Printf("Wrote: %s\n", c.Out)
	return nil
}

func readableMode(name string) markup.Readable {
	switch name {
	case "none":
		return markup.ReadableNone
	case "header":
		return markup.ReadableHeader
	case "nlspace":
		return markup.ReadableNLSpace
	default:
		return markup.ReadableAll
	}
}

// renderBook streams a scanned book through the markup writer: one root
// element, one element per chapter, verses as text elements, everything
// else as generic field elements.
func renderBook(w *markup.Writer, lines sfm.LineSequence) error {
	if err := w.Start(); err != nil {
		return err
	}

	code := ""
	if len(lines) > 0 && lines[0].Marker == "id" {
		code, _, _ = strings.Cut(lines[0].Value, " ")
	}
	if err := w.Open("book", markup.Attr{Key: "id", Value: code}); err != nil {
		return err
	}
	w.SetSection(markup.SectionHeader)

	inChapter := false
	for _, f := range lines {
		switch f.Marker {
		case "id":
			continue
		case "c":
			w.SetSection(markup.SectionMain)
			if inChapter {
				if err := w.CloseTag("c"); err != nil {
					return err
				}
			}
			n, _, _ := strings.Cut(f.Value, " ")
			if err := w.Open("c", markup.Attr{Key: "n", Value: n}); err != nil {
				return err
			}
			inChapter = true
		case "v":
			n, rest, _ := strings.Cut(f.Value, " ")
			if _, err := w.OpenClose("v", encoding.EscapeChecked(rest, true), markup.Attr{Key: "n", Value: n}); err != nil {
				return err
			}
		default:
			if _, err := w.OpenClose("field", encoding.EscapeChecked(f.Value, true), markup.Attr{Key: "m", Value: f.Marker}); err != nil {
				return err
			}
		}
	}
	if inChapter {
		if err := w.CloseTag("c"); err != nil {
			return err
		}
	}
	return w.CloseTag("book")
}

// ValidateCmd checks an XML file for well-formedness.
type ValidateCmd struct {
	Path  string `arg:"" help:"XML file to check" type:"existingfile"`
	XPath string `help:"Also run this XPath query and print matching elements"`
}

func (c *ValidateCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Path, err)
	}
	result := xml.Validate(data)
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "%s: byte %d: %s\n", c.Path, e.Offset, e.Message)
		}
		return fmt.Errorf("%s is not well-formed", c.Path)
	}
	fmt.Printf("%s: well-formed\n", c.Path)

	if c.XPath != "" {
		doc, err := xml.Parse(data)
		if err != nil {
			return err
		}
		nodes, err := doc.XPath(c.XPath)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			fmt.Printf("  <%s> %s\n", n.Name(), n.InnerText())
		}
		fmt.Printf("%d matches\n", len(nodes))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("sfmkit %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sfmkit"),
		kong.Description("SFM/ESFM parsing and markup toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
