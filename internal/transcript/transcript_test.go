package transcript

import "testing"

func TestMergeOrdersAndRenumbers(t *testing.T) {
	// chunk results arrive in arbitrary completion order but carry global
	// timestamps
	lists := [][]Segment{
		{{ID: 0, Start: 600, End: 610, Text: "middle"}},
		{{ID: 0, Start: 0, End: 10, Text: "first"}, {ID: 1, Start: 12, End: 20, Text: "second"}},
		{{ID: 0, Start: 1200, End: 1210, Text: "last"}},
	}
	texts := []string{"first second", "middle", "last"}

	segments, text := Merge(lists, texts)

	if len(segments) != 4 {
		t.Fatalf("got %d segments", len(segments))
	}
	wantOrder := []string{"first", "second", "middle", "last"}
	for i, segment := range segments {
		if segment.ID != i {
			t.Errorf("segment %d has id %d", i, segment.ID)
		}
		if segment.Text != wantOrder[i] {
			t.Errorf("segment %d text = %q, want %q", i, segment.Text, wantOrder[i])
		}
	}
	if text != "first second middle last" {
		t.Errorf("unexpected merged text %q", text)
	}
}

func TestMergeStableOnEqualStarts(t *testing.T) {
	lists := [][]Segment{
		{{Start: 5, Text: "a"}},
		{{Start: 5, Text: "b"}},
	}
	segments, _ := Merge(lists, nil)
	if segments[0].Text != "a" || segments[1].Text != "b" {
		t.Errorf("equal starts must keep input order, got %q then %q", segments[0].Text, segments[1].Text)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	segments, text := Merge(nil, nil)
	if len(segments) != 0 || text != "" {
		t.Errorf("empty merge produced %v %q", segments, text)
	}

	segments, text = Merge([][]Segment{{}, {}}, []string{"", "  "})
	if len(segments) != 0 || text != "" {
		t.Errorf("blank merge produced %v %q", segments, text)
	}
}

func TestJoinTextCollapsesWhitespace(t *testing.T) {
	got := JoinText([]string{" good  morning ", "", "the\tcommittee\nwill come to order"})
	want := "good morning the committee will come to order"
	if got != want {
		t.Errorf("JoinText = %q, want %q", got, want)
	}
}
