package esfm

import (
	"reflect"
	"testing"

	"github.com/openscriptures/sfmkit/core/sfm"
)

func scanFor(t *testing.T, input string) sfm.LineSequence {
	t.Helper()
	lines, err := sfm.ScanLines([]byte(input), sfm.ScanOptions{})
	if err != nil {
		t.Fatalf("ScanLines: %v", err)
	}
	return lines
}

func TestLoadDictionarySemantic(t *testing.T) {
	input := "\\rem ESFM v0.6 XXA SEM\n" +
		"\\w P went_down\n" +
		"\\def moved to a lower place\n" +
		"\\w L Jerusalem\n"
	b := NewDictBuilder()
	if err := LoadDictionary(scanFor(t, input), "XXA.esfm", b); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	d := b.Snapshot()
	if !d.HasSemantic("P", "went_down") {
		t.Error("P went_down should be defined")
	}
	if !d.HasSemantic("L", "Jerusalem") {
		t.Error("L Jerusalem should be defined")
	}
	if d.HasSemantic("P", "Jerusalem") {
		t.Error("tags must not share content keys")
	}
}

func TestLoadDictionaryStrongs(t *testing.T) {
	input := "\\rem ESFM v0.6 XXB STR\n" +
		"\\w G 2424\n" +
		"\\w H 430\n" +
		"\\w G not-a-number\n" +
		"\\w X 123\n"
	b := NewDictBuilder()
	if err := LoadDictionary(scanFor(t, input), "XXB.esfm", b); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	d := b.Snapshot()
	if !d.HasStrongs("G", "2424") || !d.HasStrongs("H", "430") {
		t.Error("numeric entries should be defined")
	}
	if d.HasStrongs("G", "not-a-number") {
		t.Error("non-numeric entry should be skipped")
	}
	if d.HasStrongs("X", "123") {
		t.Error("unknown language entry should be skipped")
	}
}

func TestLoadDictionaryMultiWordContent(t *testing.T) {
	input := "\\rem ESFM v0.6 XXA SEM\n\\w L David's city\n"
	b := NewDictBuilder()
	if err := LoadDictionary(scanFor(t, input), "XXA.esfm", b); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if !b.Snapshot().HasSemantic("L", "David's_city") {
		t.Error("spaces in content keys should become underscores")
	}
}

func TestLoadDictionaryMissingSentinel(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain text book", "\\id GEN\n\\c 1\n\\v 1 In the beginning\n"},
		{"remark without sentinel", "\\rem ordinary remark\n\\w P x\n"},
		{"ESFM without kind", "\\rem ESFM v0.6 XXA\n\\w P x\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewDictBuilder()
			if err := LoadDictionary(scanFor(t, tt.input), "x.esfm", b); err == nil {
				t.Fatal("expected sentinel error")
			}
			d := b.Snapshot()
			if len(d.sem) != 0 || len(d.str) != 0 {
				t.Error("dictionary must stay unpopulated")
			}
		})
	}
}

func TestResolveBook(t *testing.T) {
	dictInput := "\\rem ESFM v0.6 XXA SEM\n\\w P went_down\n"
	b := NewDictBuilder()
	if err := LoadDictionary(scanFor(t, dictInput), "XXA.esfm", b); err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	b.DefineStrongs("G", "2424")
	d := b.Snapshot()

	book := scanFor(t, "\\id MRK Mark\n"+
		"\\c 2\n"+
		"\\p\n"+
		"\\v 4 they went_down=Pwent_down with Jesus=SG2424\n"+
		"\\s1 a heading=Zleft alone\n")

	got := NewResolver(d).ResolveBook("MRK", book)
	want := sfm.LineSequence{
		{Marker: "id", Value: "MRK Mark"},
		{Marker: "c", Value: "2"},
		{Marker: "p", Value: ""},
		{Marker: "v", Value: `4 they \sem P went_down\sem* with \str G 2424=Jesus\str*`},
		{Marker: "s1", Value: "a heading=Zleft alone"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveBook =\n%+v\nwant\n%+v", got, want)
	}

	occs := d.SemanticOccurrences("P", "went_down")
	wantOccs := []Occurrence{{Book: "MRK", Chapter: 2, Verse: 4, Word: "went_down"}}
	if !reflect.DeepEqual(occs, wantOccs) {
		t.Errorf("occurrences = %+v, want %+v", occs, wantOccs)
	}
}

func TestResolveBookVerseRange(t *testing.T) {
	b := NewDictBuilder()
	b.DefineSemantic("P", "Simon")
	d := b.Snapshot()

	book := scanFor(t, "\\id JHN\n\\c 1\n\\v 41-42 he found Peter=PSimon first\n")
	got := NewResolver(d).ResolveBook("JHN", book)

	if got[2].Value != `41-42 he found \sem P Simon=Peter\sem* first` {
		t.Errorf("verse range field = %q", got[2].Value)
	}
	occs := d.SemanticOccurrences("P", "Simon")
	if len(occs) != 1 || occs[0].Verse != 41 {
		t.Errorf("occurrences = %+v", occs)
	}
}
