package sfm

import (
	"reflect"
	"testing"
)

func scan(t *testing.T, input string, opts ScanOptions) LineSequence {
	t.Helper()
	seq, err := ScanLines([]byte(input), opts)
	if err != nil {
		t.Fatalf("ScanLines: %v", err)
	}
	return seq
}

func TestSplitMarker(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		marker string
		value  string
	}{
		{"marker with value", `\id GEN EN`, "id", "GEN EN"},
		{"marker alone", `\p`, "p", ""},
		{"marker with trailing space", `\p `, "p", ""},
		{"one separating space dropped", `\s1  double`, "s1", " double"},
		{"marker abutting backslash", `\x\y text`, "x", `\y text`},
		{"value keeps inner markers", `\v 1 \w word\w*`, "v", `1 \w word\w*`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, value := splitMarker(tt.line)
			if marker != tt.marker || value != tt.value {
				t.Errorf("splitMarker(%q) = (%q, %q), want (%q, %q)",
					tt.line, marker, value, tt.marker, tt.value)
			}
		})
	}
}

func TestScanLinesRoundTrip(t *testing.T) {
	// For any `\marker value` line, scanning yields exactly one field and
	// re-synthesizing the line reproduces marker and separating space.
	seq := scan(t, `\mt The Gospel`, ScanOptions{})
	if len(seq) != 1 {
		t.Fatalf("len = %d, want 1", len(seq))
	}
	f := seq[0]
	if f.Marker != "mt" || f.Value != "The Gospel" {
		t.Fatalf("got %+v", f)
	}
	if got := `\` + f.Marker + ` ` + f.Value; got != `\mt The Gospel` {
		t.Errorf("round trip = %q", got)
	}
}

func TestScanLinesContinuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LineSequence
	}{
		{
			name:  "single continuation",
			input: "\\id GEN EN\nmore text\n",
			want:  LineSequence{{Marker: "id", Value: "GEN EN more text"}},
		},
		{
			name:  "two continuations append one space each",
			input: "\\p first\nsecond\nthird\n",
			want:  LineSequence{{Marker: "p", Value: "first second third"}},
		},
		{
			name:  "continuation with no field is discarded",
			input: "orphan line\n\\p text\n",
			want:  LineSequence{{Marker: "p", Value: "text"}},
		},
		{
			name:  "blank lines produce no field",
			input: "\\p one\n\n\n\\q two\n",
			want:  LineSequence{{Marker: "p", Value: "one"}, {Marker: "q", Value: "two"}},
		},
		{
			name:  "comment lines skipped",
			input: "# header comment\n\\p one\n# interior comment\ntwo\n",
			want:  LineSequence{{Marker: "p", Value: "one two"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scan(t, tt.input, ScanOptions{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScanLines = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScanLinesBOM(t *testing.T) {
	got := scan(t, "\uFEFF\\id GEN\n\uFEFFnot stripped here\n", ScanOptions{})
	want := LineSequence{{Marker: "id", Value: "GEN \uFEFFnot stripped here"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLines = %+v, want %+v", got, want)
	}
}

func TestScanLinesCRLF(t *testing.T) {
	got := scan(t, "\\id GEN\r\n\\p text\r\n", ScanOptions{})
	want := LineSequence{{Marker: "id", Value: "GEN"}, {Marker: "p", Value: "text"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLines = %+v, want %+v", got, want)
	}
}

func TestScanLinesIgnoredMarkers(t *testing.T) {
	input := "\\rem internal note\ncontinuation of note\n\\p kept\nkept too\n"
	got := scan(t, input, ScanOptions{IgnoredMarkers: []string{"rem"}})
	want := LineSequence{{Marker: "p", Value: "kept kept too"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLines = %+v, want %+v", got, want)
	}
}

func TestScanLinesDecodeFailureKeepsPartial(t *testing.T) {
	input := append([]byte("\\id GEN\n\\p good line\n"), 0xff, 0xfe, '\n')
	input = append(input, []byte("\\q never reached\n")...)
	got, err := ScanLines(input, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanLines: %v", err)
	}
	want := LineSequence{{Marker: "id", Value: "GEN"}, {Marker: "p", Value: "good line"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("partial results = %+v, want %+v", got, want)
	}
}

func TestScanLinesLatin1(t *testing.T) {
	// 0xE9 is é in ISO-8859-1 and invalid UTF-8.
	input := []byte{'\\', 'p', ' ', 'c', 'a', 'f', 0xe9, '\n'}
	got, err := ScanLines(input, ScanOptions{Encoding: "ISO-8859-1"})
	if err != nil {
		t.Fatalf("ScanLines: %v", err)
	}
	want := LineSequence{{Marker: "p", Value: "café"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLines = %+v, want %+v", got, want)
	}
}

func TestScanLinesUnknownEncoding(t *testing.T) {
	_, err := ScanLines([]byte("\\p x"), ScanOptions{Encoding: "no-such-charset"})
	if err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestScanLinesEmptyMarker(t *testing.T) {
	got := scan(t, "\\\n\\p text\n", ScanOptions{})
	want := LineSequence{{Marker: "p", Value: "text"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLines = %+v, want %+v", got, want)
	}
	for _, f := range got {
		if f.Marker == "" {
			t.Error("LineSequence must never contain an empty marker")
		}
	}
}
