package encoding

import "testing"

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello World", "Hello World"},
		{"all four", "&<>\"", "&amp;&lt;&gt;&quot;"},
		{"ampersand first", "a & b", "a &amp; b"},
		{"quotes", `He said "hello"`, "He said &quot;hello&quot;"},
		{"angle brackets", "<tag>", "&lt;tag&gt;"},
		{"unicode untouched", "日本語 & émoji", "日本語 &amp; émoji"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(tt.input)
			if got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeTwiceIsDetectable(t *testing.T) {
	once := Escape("&<>\"")
	twice := Escape(once)
	if twice == once {
		t.Error("naive double escaping should visibly differ")
	}
	if got := EscapeChecked(once, true); got != once {
		t.Errorf("EscapeChecked with checkFirst should not double-escape: got %q", got)
	}
}

func TestEscapeChecked(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		checkFirst bool
		want       string
	}{
		{"raw without check", "a & b", false, "a &amp; b"},
		{"pre-escaped preserved", "a &amp; b", true, "a &amp; b"},
		{"mixed", "a &amp; b < c & d", true, "a &amp; b &lt; c &amp; d"},
		{"foreign entity still escaped", "&nbsp;", true, "&amp;nbsp;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeChecked(tt.input, tt.checkFirst)
			if got != tt.want {
				t.Errorf("EscapeChecked(%q, %v) = %q, want %q", tt.input, tt.checkFirst, got, tt.want)
			}
		})
	}
}

func TestEscapeWithOffsets(t *testing.T) {
	// "a&b<c" with annotations on 'a', 'b', 'c'
	escaped, offsets := EscapeWithOffsets("a&b<c", []int{0, 2, 4})
	if escaped != "a&amp;b&lt;c" {
		t.Fatalf("escaped = %q", escaped)
	}
	want := []int{0, 6, 11}
	for i, o := range offsets {
		if o != want[i] {
			t.Errorf("offset[%d] = %d, want %d", i, o, want[i])
		}
		if i < 2 {
			continue
		}
	}
	// Each re-based offset must point at the same character.
	chars := []byte{'a', 'b', 'c'}
	for i, o := range offsets {
		if escaped[o] != chars[i] {
			t.Errorf("offset %d points at %q, want %q", o, escaped[o], chars[i])
		}
	}
}

func TestEscapeWithOffsetsPastEnd(t *testing.T) {
	escaped, offsets := EscapeWithOffsets("x&", []int{2})
	if escaped != "x&amp;" {
		t.Fatalf("escaped = %q", escaped)
	}
	if offsets[0] != len(escaped) {
		t.Errorf("end offset = %d, want %d", offsets[0], len(escaped))
	}
}

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quotes preserved", `He said "hello"`, `He said "hello"`},
		{"all three", "<script>&</script>", "&lt;script&gt;&amp;&lt;/script&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLText(tt.input); got != tt.want {
				t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	if got := EscapeXMLAttr(`a "b" <c>`); got != "a &quot;b&quot; &lt;c&gt;" {
		t.Errorf("EscapeXMLAttr = %q", got)
	}
}
