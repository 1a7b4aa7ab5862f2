package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ClipType classifies a single annotation event.
type ClipType string

const (
	TypeHighlight ClipType = "highlight"
	TypeNote      ClipType = "note"
	TypeBookmark  ClipType = "bookmark"
)

// Span is an inclusive [Start, End] range of locations or pages.
// A point is represented as Start == End.
type Span struct {
	Start int
	End   int
}

// Point returns a span covering a single position.
func Point(at int) *Span {
	return &Span{Start: at, End: at}
}

// NewSpan returns a span covering [start, end], normalizing reversed bounds.
func NewSpan(start, end int) *Span {
	if end < start {
		start, end = end, start
	}
	return &Span{Start: start, End: end}
}

func (s Span) IsPoint() bool {
	return s.Start == s.End
}

// Width is the extent of the span; a point has width 0.
func (s Span) Width() int {
	return s.End - s.Start
}

func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Union returns the smallest span covering both s and o.
func (s Span) Union(o Span) Span {
	u := s
	if o.Start < u.Start {
		u.Start = o.Start
	}
	if o.End > u.End {
		u.End = o.End
	}
	return u
}

func (s Span) String() string {
	if s.IsPoint() {
		return fmt.Sprintf("%d", s.Start)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// TimeMark is a timestamp with its provenance: "Added on" entries are
// exact, "Added around" entries are approximate. Merged clippings whose
// constituents carry different timestamps also become approximate.
type TimeMark struct {
	At          time.Time
	Approximate bool
}

func (t TimeMark) IsZero() bool {
	return t.At.IsZero()
}

// Later returns the later of the two marks. The result turns approximate
// when the two timestamps differ, since the merged wording can no longer
// claim an exact moment.
func (t TimeMark) Later(o TimeMark) TimeMark {
	if t.IsZero() {
		return o
	}
	if o.IsZero() {
		return t
	}
	later := t
	if o.At.After(t.At) {
		later = o
	}
	if !t.At.Equal(o.At) {
		later.Approximate = true
	} else {
		later.Approximate = t.Approximate || o.Approximate
	}
	return later
}

// Fragment is one constituent of a composite clipping, e.g. the note
// half of a highlight+note.
type Fragment struct {
	Type  ClipType
	Text  string
	Added TimeMark
}

// Clipping is one logical annotation event tied to a document and a
// position. After merging it may be a composite carrying the content of
// several raw records.
type Clipping struct {
	// Types lists the constituent types in source-log order
	// (first-seen-first). A single element for plain clippings.
	Types []ClipType

	Page     *Span
	Location *Span
	Added    TimeMark

	// Text holds the content of a single-type clipping. Composite
	// content lives in Fragments instead; exactly one of the two is
	// populated (bookmarks may have neither).
	Text      string
	Fragments []Fragment

	// Records counts the raw log records folded into this clipping.
	Records int
}

func (c *Clipping) IsComposite() bool {
	return len(c.Types) > 1
}

// Is reports whether the clipping is a plain, single-type clipping of t.
func (c *Clipping) Is(t ClipType) bool {
	return len(c.Types) == 1 && c.Types[0] == t
}

// HasType reports whether t is one of the clipping's constituent types.
func (c *Clipping) HasType(t ClipType) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// TypeString joins the constituent types in source-log order, e.g.
// "highlight+note".
func (c *Clipping) TypeString() string {
	parts := make([]string, len(c.Types))
	for i, t := range c.Types {
		parts[i] = string(t)
	}
	return strings.Join(parts, "+")
}

// NormalizedType is the canonical, order-independent form of the type
// string: constituents sorted alphabetically. Used for grouping and for
// type filters, so that note+highlight and highlight+note compare equal.
func (c *Clipping) NormalizedType() string {
	parts := make([]string, len(c.Types))
	for i, t := range c.Types {
		parts[i] = string(t)
	}
	sort.Strings(parts)
	return strings.Join(parts, "+")
}

// Position renders the human-readable position, e.g.
// "Page 8, Location 64-70". Either part may be absent.
func (c *Clipping) Position() string {
	var parts []string
	if c.Page != nil {
		label := "Page"
		if !c.Page.IsPoint() {
			label = "Pages"
		}
		parts = append(parts, fmt.Sprintf("%s %s", label, c.Page))
	}
	if c.Location != nil {
		parts = append(parts, fmt.Sprintf("Location %s", c.Location))
	}
	return strings.Join(parts, ", ")
}

// Clone returns a deep copy; merge and filter stages replace clippings
// rather than mutating them in place.
func (c *Clipping) Clone() Clipping {
	out := *c
	out.Types = append([]ClipType(nil), c.Types...)
	if c.Page != nil {
		p := *c.Page
		out.Page = &p
	}
	if c.Location != nil {
		l := *c.Location
		out.Location = &l
	}
	if c.Fragments != nil {
		out.Fragments = append([]Fragment(nil), c.Fragments...)
	}
	return out
}

// sortKey orders clippings by location lower bound, falling back to the
// page for clippings without a location, then by page lower bound.
func (c *Clipping) sortKey() (int, int) {
	primary := 0
	switch {
	case c.Location != nil:
		primary = c.Location.Start
	case c.Page != nil:
		primary = c.Page.Start
	}
	secondary := 0
	if c.Page != nil {
		secondary = c.Page.Start
	}
	return primary, secondary
}

// SortClippings orders clippings by location lower bound, then page.
// The sort is stable so records at identical positions keep file order.
func SortClippings(cs []Clipping) {
	sort.SliceStable(cs, func(i, j int) bool {
		pi, si := cs[i].sortKey()
		pj, sj := cs[j].sortKey()
		if pi != pj {
			return pi < pj
		}
		return si < sj
	})
}

// Document owns the clippings taken from one source document. Identity
// is the (title, author) pair; an unknown author is the empty string,
// never a null, so string filters still apply to it.
type Document struct {
	Title     string
	Author    string
	Clippings []Clipping
}

// Key returns the grouping identity for the document.
func (d *Document) Key() string {
	return strings.ToLower(d.Title) + "|" + strings.ToLower(d.Author)
}

// Label renders the one-line listing form used by --list and verbose
// output.
func (d *Document) Label() string {
	author := d.Author
	if author == "" {
		author = "(no author)"
	}
	unit := "clippings"
	if len(d.Clippings) == 1 {
		unit = "clipping"
	}
	return fmt.Sprintf("%q by %s (%d %s)", d.Title, author, len(d.Clippings), unit)
}

// TypeStrings returns the sorted set of normalized type strings present
// in the document.
func (d *Document) TypeStrings() []string {
	seen := make(map[string]bool)
	var types []string
	for i := range d.Clippings {
		t := d.Clippings[i].NormalizedType()
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// SortDocuments orders documents by title, then author.
func SortDocuments(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Title != docs[j].Title {
			return docs[i].Title < docs[j].Title
		}
		return docs[i].Author < docs[j].Author
	})
}

// ParseStats summarizes one parse run for diagnostics. Skipped holds a
// human-readable reason per malformed entry; malformed entries are never
// fatal.
type ParseStats struct {
	Documents  int
	Highlights int
	Notes      int
	Bookmarks  int
	Skipped    []string
}

// Count records one parsed clipping of the given type.
func (s *ParseStats) Count(t ClipType) {
	switch t {
	case TypeHighlight:
		s.Highlights++
	case TypeNote:
		s.Notes++
	case TypeBookmark:
		s.Bookmarks++
	}
}

// Skip records one skipped entry with the reason it was rejected.
func (s *ParseStats) Skip(entry int, reason string) {
	s.Skipped = append(s.Skipped, fmt.Sprintf("entry %d: %s", entry, reason))
}
