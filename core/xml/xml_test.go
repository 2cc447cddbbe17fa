package xml

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"well formed", `<?xml version="1.0"?><book id="GEN"><c n="1"/></book>`, true},
		{"mismatched close", `<book><c></book>`, false},
		{"unclosed root", `<book><c n="1"/>`, false},
		{"bad attribute", `<book id=GEN></book>`, false},
		{"text outside root ok", `<book/>` + "\n", true},
		{"predefined entity", `<v>Simon &amp; Andrew</v>`, true},
		{"undefined entity", `<v>&nbsp;</v>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate([]byte(tt.input))
			if got.Valid != tt.valid {
				t.Errorf("Validate() valid = %v, want %v (errors: %v)", got.Valid, tt.valid, got.Errors)
			}
			if !got.Valid && len(got.Errors) == 0 {
				t.Error("invalid result carries no errors")
			}
		})
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(`<book id="MRK"><c n="1"><v n="1">Beginning</v><v n="2">As written</v></c></book>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	verses, err := doc.XPath("//v")
	if err != nil {
		t.Fatalf("XPath() error = %v", err)
	}
	if len(verses) != 2 {
		t.Fatalf("XPath(//v) returned %d nodes, want 2", len(verses))
	}
	if verses[0].Attr("n") != "1" {
		t.Errorf("first verse attr n = %q, want 1", verses[0].Attr("n"))
	}
	if !strings.Contains(verses[1].InnerText(), "written") {
		t.Errorf("second verse text = %q", verses[1].InnerText())
	}

	first, err := doc.XPathFirst("//book[@id='MRK']")
	if err != nil {
		t.Fatalf("XPathFirst() error = %v", err)
	}
	if first == nil || first.Name() != "book" {
		t.Errorf("XPathFirst found %v, want book element", first)
	}

	none, err := doc.XPathFirst("//missing")
	if err != nil {
		t.Fatalf("XPathFirst() error = %v", err)
	}
	if none != nil {
		t.Errorf("XPathFirst(//missing) = %v, want nil", none)
	}

	if _, err := doc.XPath("///bad["); err == nil {
		t.Error("XPath with invalid expression did not error")
	}
}
