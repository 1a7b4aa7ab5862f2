package entities

import (
	"testing"
	"time"
)

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected bool
	}{
		{"identical", Span{100, 110}, Span{100, 110}, true},
		{"partial overlap", Span{100, 110}, Span{105, 120}, true},
		{"subsuming", Span{100, 120}, Span{105, 110}, true},
		{"touching ends", Span{100, 110}, Span{110, 120}, true},
		{"disjoint", Span{100, 110}, Span{111, 120}, false},
		{"point inside", Span{100, 110}, Span{105, 105}, true},
		{"point outside", Span{100, 110}, Span{111, 111}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("(%v).Overlaps(%v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.expected {
				t.Errorf("(%v).Overlaps(%v) = %v, expected %v", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

func TestSpanUnion(t *testing.T) {
	u := Span{100, 110}.Union(Span{105, 120})
	if u.Start != 100 || u.End != 120 {
		t.Errorf("expected [100,120], got %v", u)
	}
}

func TestSpanContains(t *testing.T) {
	if !(Span{100, 120}).Contains(Span{105, 110}) {
		t.Error("expected [100,120] to contain [105,110]")
	}
	if (Span{100, 120}).Contains(Span{105, 125}) {
		t.Error("expected [100,120] not to contain [105,125]")
	}
}

func TestSpanString(t *testing.T) {
	if s := (Span{64, 64}).String(); s != "64" {
		t.Errorf("expected '64', got %q", s)
	}
	if s := (Span{64, 70}).String(); s != "64-70" {
		t.Errorf("expected '64-70', got %q", s)
	}
}

func TestNewSpanNormalizesBounds(t *testing.T) {
	s := NewSpan(70, 64)
	if s.Start != 64 || s.End != 70 {
		t.Errorf("expected [64,70], got %v", s)
	}
}

func TestTimeMarkLater(t *testing.T) {
	earlier := TimeMark{At: time.Date(2025, 1, 6, 15, 10, 0, 0, time.UTC)}
	later := TimeMark{At: time.Date(2025, 1, 6, 15, 13, 0, 0, time.UTC)}

	t.Run("takes the later timestamp", func(t *testing.T) {
		got := earlier.Later(later)
		if !got.At.Equal(later.At) {
			t.Errorf("expected %v, got %v", later.At, got.At)
		}
	})

	t.Run("differing timestamps become approximate", func(t *testing.T) {
		if !earlier.Later(later).Approximate {
			t.Error("expected approximate mark for differing timestamps")
		}
	})

	t.Run("equal exact timestamps stay exact", func(t *testing.T) {
		if earlier.Later(earlier).Approximate {
			t.Error("expected exact mark for equal timestamps")
		}
	})

	t.Run("zero marks are ignored", func(t *testing.T) {
		got := (TimeMark{}).Later(later)
		if !got.At.Equal(later.At) || got.Approximate {
			t.Errorf("unexpected mark %+v", got)
		}
		got = later.Later(TimeMark{})
		if !got.At.Equal(later.At) || got.Approximate {
			t.Errorf("unexpected mark %+v", got)
		}
	})
}

func TestClippingTypeStrings(t *testing.T) {
	c := Clipping{Types: []ClipType{TypeNote, TypeHighlight}}
	if got := c.TypeString(); got != "note+highlight" {
		t.Errorf("expected source-order 'note+highlight', got %q", got)
	}
	if got := c.NormalizedType(); got != "highlight+note" {
		t.Errorf("expected normalized 'highlight+note', got %q", got)
	}
}

func TestClippingPosition(t *testing.T) {
	tests := []struct {
		name     string
		clipping Clipping
		expected string
	}{
		{"page and location", Clipping{Page: Point(8), Location: &Span{64, 70}}, "Page 8, Location 64-70"},
		{"page range", Clipping{Page: &Span{8, 9}}, "Pages 8-9"},
		{"location only", Clipping{Location: Point(307)}, "Location 307"},
		{"neither", Clipping{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clipping.Position(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSortClippings(t *testing.T) {
	cs := []Clipping{
		{Types: []ClipType{TypeHighlight}, Location: &Span{300, 310}},
		{Types: []ClipType{TypeBookmark}, Page: Point(2)},
		{Types: []ClipType{TypeHighlight}, Location: &Span{100, 120}, Page: Point(12)},
		{Types: []ClipType{TypeNote}, Location: Point(100), Page: Point(11)},
	}
	SortClippings(cs)

	if cs[0].Page == nil || cs[0].Page.Start != 2 {
		t.Errorf("expected page-only bookmark first, got %+v", cs[0])
	}
	// Equal location lower bounds order by page.
	if cs[1].Page.Start != 11 || cs[2].Page.Start != 12 {
		t.Errorf("expected page tie-break, got %+v then %+v", cs[1], cs[2])
	}
	if cs[3].Location.Start != 300 {
		t.Errorf("expected location 300 last, got %+v", cs[3])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := Clipping{
		Types:     []ClipType{TypeHighlight},
		Location:  &Span{100, 110},
		Fragments: []Fragment{{Type: TypeHighlight, Text: "text"}},
		Records:   1,
	}

	clone := original.Clone()
	clone.Types[0] = TypeNote
	clone.Location.Start = 0
	clone.Fragments[0].Text = "changed"

	if original.Types[0] != TypeHighlight {
		t.Error("clone shares the type slice")
	}
	if original.Location.Start != 100 {
		t.Error("clone shares the location span")
	}
	if original.Fragments[0].Text != "text" {
		t.Error("clone shares the fragment slice")
	}
}

func TestDocumentLabel(t *testing.T) {
	doc := Document{Title: "Dune", Author: "Frank Herbert", Clippings: make([]Clipping, 3)}
	if got := doc.Label(); got != `"Dune" by Frank Herbert (3 clippings)` {
		t.Errorf("unexpected label %q", got)
	}

	single := Document{Title: "Dune", Clippings: make([]Clipping, 1)}
	if got := single.Label(); got != `"Dune" by (no author) (1 clipping)` {
		t.Errorf("unexpected label %q", got)
	}
}

func TestDocumentTypeStrings(t *testing.T) {
	doc := Document{Clippings: []Clipping{
		{Types: []ClipType{TypeNote}},
		{Types: []ClipType{TypeHighlight}},
		{Types: []ClipType{TypeNote, TypeHighlight}},
		{Types: []ClipType{TypeHighlight}},
	}}

	got := doc.TypeStrings()
	expected := []string{"highlight", "highlight+note", "note"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestSortDocuments(t *testing.T) {
	docs := []*Document{
		{Title: "Zen Mind", Author: "Shunryu Suzuki"},
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Dune", Author: "Brian Herbert"},
	}
	SortDocuments(docs)

	if docs[0].Author != "Brian Herbert" || docs[1].Author != "Frank Herbert" || docs[2].Title != "Zen Mind" {
		t.Errorf("unexpected order: %v, %v, %v", docs[0], docs[1], docs[2])
	}
}
