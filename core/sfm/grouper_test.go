package sfm

import (
	"reflect"
	"testing"
)

func fields(pairs ...string) LineSequence {
	seq := make(LineSequence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		seq = append(seq, Field{Marker: pairs[i], Value: pairs[i+1]})
	}
	return seq
}

func TestGroupBasic(t *testing.T) {
	lines := fields(
		"og", "cat",
		"sn", "noun",
		"og", "dog",
		"sn", "noun",
	)
	g := Group(lines, GroupOptions{KeyMarker: "og"})
	recs := g.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if len(rec) == 0 {
			t.Fatal("record must be non-empty")
		}
		if rec.Key().Marker != "og" {
			t.Errorf("record key marker = %q, want og", rec.Key().Marker)
		}
	}
	if recs[0].Key().Value != "cat" || recs[1].Key().Value != "dog" {
		t.Errorf("record identities = %q, %q", recs[0].Key().Value, recs[1].Key().Value)
	}
}

func TestGroupInfersKeyMarker(t *testing.T) {
	lines := fields("lx", "tree", "ge", "plant", "lx", "rock", "ge", "mineral")
	g := Group(lines, GroupOptions{})
	if g.KeyMarker() != "lx" {
		t.Errorf("inferred key = %q, want lx", g.KeyMarker())
	}
	if len(g.Records()) != 2 {
		t.Errorf("records = %d, want 2", len(g.Records()))
	}
}

func TestGroupBadKeyMarkerPanics(t *testing.T) {
	for _, key := range []string{"has space", `has\slash`} {
		t.Run(key, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Group with key %q should panic", key)
				}
			}()
			Group(nil, GroupOptions{KeyMarker: key})
		})
	}
}

func TestGroupIgnoredEntries(t *testing.T) {
	lines := fields("og", "cat", "sn", "noun", "og", "dog", "sn", "noun")
	g := Group(lines, GroupOptions{KeyMarker: "og", IgnoredEntries: []string{"cat"}})
	recs := g.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	for _, rec := range recs {
		if rec.Key().Value == "cat" {
			t.Error("ignored entry must not appear in the record set")
		}
	}
}

func TestGroupIgnoredMarkersStripped(t *testing.T) {
	lines := fields(
		"og", "cat",
		"rem", "editor note",
		"sn", "noun",
		"og", "dog",
		"rem", "only field left would be the key",
	)
	g := Group(lines, GroupOptions{KeyMarker: "og", IgnoredMarkers: []string{"rem"}})
	recs := g.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	want := Record{{Marker: "og", Value: "cat"}, {Marker: "sn", Value: "noun"}}
	if !reflect.DeepEqual(recs[0], want) {
		t.Errorf("record = %+v, want %+v", recs[0], want)
	}
}

func TestGroupStrippedEmptyRecordDropped(t *testing.T) {
	lines := fields("og", "cat", "og", "dog", "sn", "noun")
	g := Group(lines, GroupOptions{KeyMarker: "og", IgnoredMarkers: []string{"og"}})
	// Stripping the key marker empties the first record entirely.
	recs := g.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0][0].Marker != "sn" {
		t.Errorf("surviving field = %+v", recs[0][0])
	}
}

func TestGroupRemapAppliedBeforeKeyMatch(t *testing.T) {
	lines := fields("lex", "cat", "sn", "noun", "lex", "dog", "sn", "noun")
	g := Group(lines, GroupOptions{
		KeyMarker:    "og",
		RemapMarkers: []MarkerRemap{{From: "lex", To: "og"}},
	})
	recs := g.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].Key().Marker != "og" {
		t.Errorf("remapped key marker = %q, want og", recs[0].Key().Marker)
	}
}

func TestGroupFinalBufferFlushed(t *testing.T) {
	lines := fields("og", "cat", "sn", "noun")
	g := Group(lines, GroupOptions{KeyMarker: "og"})
	if len(g.Records()) != 1 {
		t.Fatalf("final in-progress record was not flushed")
	}
}

func TestGroupEmptyInput(t *testing.T) {
	g := Group(nil, GroupOptions{KeyMarker: "og"})
	if len(g.Records()) != 0 {
		t.Errorf("records = %d, want 0", len(g.Records()))
	}
}

func TestAnalyze(t *testing.T) {
	lines := fields(
		"og", "cat",
		"sn", "noun",
		"ge", "animal",
		"og", "dog",
		"sn", "noun",
	)
	a := Group(lines, GroupOptions{KeyMarker: "og"}).Analyze()

	if a.MinFields != 2 || a.MaxFields != 3 {
		t.Errorf("min/max = %d/%d, want 2/3", a.MinFields, a.MaxFields)
	}
	wantMarkers := []string{"og", "sn", "ge"}
	if !reflect.DeepEqual(a.Markers, wantMarkers) {
		t.Errorf("markers = %v, want %v", a.Markers, wantMarkers)
	}
	if !reflect.DeepEqual(a.Values["og"], []string{"cat", "dog"}) {
		t.Errorf("og values = %v", a.Values["og"])
	}
	if !reflect.DeepEqual(a.Values["sn"], []string{"noun"}) {
		t.Errorf("sn values should be de-duplicated: %v", a.Values["sn"])
	}
}

func TestToDict(t *testing.T) {
	lines := fields("og", "cat", "sn", "noun", "og", "dog", "sn", "noun")
	got := Group(lines, GroupOptions{KeyMarker: "og"}).ToDict()
	want := map[string]map[string]string{
		"cat": {"sn": "noun"},
		"dog": {"sn": "noun"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToDict = %v, want %v", got, want)
	}
}

func TestToDictDuplicateMarkerOverwrites(t *testing.T) {
	lines := fields("og", "cat", "sn", "noun", "sn", "verb")
	got := Group(lines, GroupOptions{KeyMarker: "og"}).ToDict()
	if got["cat"]["sn"] != "verb" {
		t.Errorf("duplicate marker should overwrite: %v", got)
	}
}

func TestToList(t *testing.T) {
	lines := fields("og", "cat", "sn", "noun", "sn", "verb")
	got := Group(lines, GroupOptions{KeyMarker: "og"}).ToList()
	want := map[string][]Field{
		"cat": {{Marker: "sn", Value: "noun"}, {Marker: "sn", Value: "verb"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToList = %v, want %v", got, want)
	}
}

func TestGroupBytes(t *testing.T) {
	input := "\\og cat\n\\sn noun\ncontinued\n\\og dog\n\\sn noun\n"
	g, err := GroupBytes([]byte(input), ScanOptions{}, GroupOptions{KeyMarker: "og"})
	if err != nil {
		t.Fatalf("GroupBytes: %v", err)
	}
	recs := g.Records()
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0][1].Value != "noun continued" {
		t.Errorf("continuation not merged before grouping: %+v", recs[0][1])
	}
}
