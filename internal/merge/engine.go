// Package merge collapses a document's raw clippings into a canonical,
// deduplicated set. Edited highlights are logged by the eReader as new
// entries next to the old ones, and notes on a highlighted passage are
// logged separately; this package folds both back together.
package merge

import (
	"github.com/mrlokans/chokitto/internal/entities"
)

// DefaultNoteTolerance is how many locations past a highlight's end a
// note may sit and still be associated with it. Notes on a highlighted
// passage are usually anchored at, or just after, the highlight's end.
const DefaultNoteTolerance = 2

// Engine is a pure batch transform: no state survives between runs, the
// input is never mutated, and it never fails. Records it cannot place
// pass through unchanged, favoring data preservation over aggressive
// merging.
type Engine struct {
	NoteTolerance int
}

func NewEngine(noteTolerance int) *Engine {
	if noteTolerance < 0 {
		noteTolerance = 0
	}
	return &Engine{NoteTolerance: noteTolerance}
}

// record pairs a clipping with the file position of its earliest raw
// log entry. Deduplication regroups records by type and page, so log
// order has to travel with them; composite constituent order depends
// on it.
type record struct {
	clip entities.Clipping
	seq  int
}

// MergeAll merges every document, returning a new slice.
func (e *Engine) MergeAll(docs []*entities.Document) []*entities.Document {
	out := make([]*entities.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, e.MergeDocument(doc))
	}
	return out
}

// MergeDocument returns a copy of the document with its clippings
// replaced by the canonical set.
func (e *Engine) MergeDocument(doc *entities.Document) *entities.Document {
	return &entities.Document{
		Title:     doc.Title,
		Author:    doc.Author,
		Clippings: e.Merge(doc.Clippings),
	}
}

// Merge reduces one document's raw clippings (in file order) to the
// canonical set: revision duplicates collapsed, notes attached to their
// highlights, everything sorted by position. Idempotent.
func (e *Engine) Merge(in []entities.Clipping) []entities.Clipping {
	out := e.associateNotes(deduplicate(in))
	entities.SortClippings(out)
	return out
}

// deduplicate collapses revision duplicates. Records group by
// (normalized type, page); within a group, overlapping or identical
// location ranges are revisions of the same annotation.
func deduplicate(in []entities.Clipping) []record {
	groups := make(map[string][]record)
	var order []string

	for i := range in {
		rec := record{clip: in[i].Clone(), seq: i}
		key := groupKey(&rec.clip)
		items, seen := groups[key]
		if !seen {
			order = append(order, key)
		}

		// Fold every overlapping revision into the incoming record.
		// Group members are pairwise disjoint, so one pass suffices.
		remaining := items[:0]
		for _, prev := range items {
			if sameAnnotation(&prev.clip, &rec.clip) {
				rec = revise(prev, rec)
			} else {
				remaining = append(remaining, prev)
			}
		}
		groups[key] = append(remaining, rec)
	}

	var out []record
	for _, key := range order {
		out = append(out, groups[key]...)
	}
	return out
}

func groupKey(c *entities.Clipping) string {
	key := c.NormalizedType()
	if c.Page != nil {
		key += "|" + c.Page.String()
	}
	return key
}

// sameAnnotation reports whether two records of the same (type, page)
// group are revisions of one annotation. With locations, overlap
// decides; without, the shared page already pins the position.
func sameAnnotation(a, b *entities.Clipping) bool {
	if a.Location != nil && b.Location != nil {
		return a.Location.Overlaps(*b.Location)
	}
	return a.Location == nil && b.Location == nil
}

// revise collapses two revisions of one annotation. The record with the
// widest location range wins (the eReader appends a new entry when a
// highlight's span is edited); on equal ranges the later record in file
// order wins, as the most recent edit. The kept record's range widens to
// the union of the two, and its file position stays the annotation's
// first appearance in the log.
func revise(prev, next record) record {
	winner, loser := next.clip, prev.clip
	if prev.clip.Location != nil && next.clip.Location != nil && prev.clip.Location.Width() > next.clip.Location.Width() {
		winner, loser = prev.clip, next.clip
	}

	out := winner.Clone()
	if winner.Location != nil && loser.Location != nil {
		u := winner.Location.Union(*loser.Location)
		out.Location = &u
	}
	if out.Page == nil {
		out.Page = loser.Page
	}
	out.Records = prev.clip.Records + next.clip.Records
	return record{clip: out, seq: prev.seq}
}

// associateNotes attaches each standalone note to its highlight when
// exactly one highlight matches. Zero or multiple candidates leave the
// note standalone: ambiguity is never resolved by guessing. Notes are
// anchored by location; a note logged without one falls back to its
// page, matched against page-only highlights.
func (e *Engine) associateNotes(in []record) []entities.Clipping {
	out := make([]record, len(in))
	copy(out, in)
	consumed := make([]bool, len(in))

	for i := range in {
		note := &in[i]
		if !note.clip.Is(entities.TypeNote) {
			continue
		}
		noteSpan, byPage := anchorSpan(&note.clip)
		if noteSpan == nil {
			continue
		}

		// Candidates are anything carrying a highlight, composites
		// included, so that re-running the engine on its own output
		// sees the same candidate count and stays idempotent.
		candidate := -1
		for j := range in {
			h := &in[j]
			if j == i || !h.clip.HasType(entities.TypeHighlight) {
				continue
			}
			hSpan := h.clip.Location
			if byPage {
				// Page positions only compare with page positions.
				if hSpan != nil {
					continue
				}
				hSpan = h.clip.Page
			}
			if hSpan == nil {
				continue
			}
			if e.anchors(hSpan, noteSpan) {
				if candidate >= 0 {
					candidate = -1
					break
				}
				candidate = j
			}
		}
		if candidate < 0 {
			continue
		}

		// The raw log positions decide constituent order, not the
		// positions in the regrouped slice.
		highlightFirst := out[candidate].seq < note.seq
		out[candidate].clip = combine(out[candidate].clip, note.clip, highlightFirst)
		consumed[i] = true
	}

	kept := make([]entities.Clipping, 0, len(out))
	for i := range out {
		if !consumed[i] {
			kept = append(kept, out[i].clip)
		}
	}
	return kept
}

// anchorSpan is the position a note is matched by: its location when
// present, its page otherwise.
func anchorSpan(c *entities.Clipping) (span *entities.Span, byPage bool) {
	if c.Location != nil {
		return c.Location, false
	}
	return c.Page, true
}

// anchors reports whether a note at n belongs to a highlight spanning h:
// the note overlaps the highlight, or starts within NoteTolerance
// positions past its end.
func (e *Engine) anchors(h, n *entities.Span) bool {
	if h.Overlaps(*n) {
		return true
	}
	return n.Start > h.End && n.Start <= h.End+e.NoteTolerance
}

// combine folds a note into its anchor highlight (or an existing
// composite), keeping the highlight's location range as the anchor.
// highlightFirst tells which of the two appeared first in the log, which
// fixes the constituent order.
func combine(anchor, note entities.Clipping, highlightFirst bool) entities.Clipping {
	out := anchor.Clone()
	if out.Fragments == nil {
		out.Fragments = []entities.Fragment{{Type: anchor.Types[0], Text: anchor.Text, Added: anchor.Added}}
		out.Text = ""
	}

	frag := entities.Fragment{Type: entities.TypeNote, Text: note.Text, Added: note.Added}
	if highlightFirst {
		out.Types = appendType(out.Types, entities.TypeNote)
		out.Fragments = append(out.Fragments, frag)
	} else {
		out.Types = prependType(out.Types, entities.TypeNote)
		out.Fragments = append([]entities.Fragment{frag}, out.Fragments...)
	}

	out.Added = anchor.Added.Later(note.Added)
	if out.Page == nil {
		out.Page = note.Page
	}
	out.Records = anchor.Records + note.Records
	return out
}

// appendType adds t to the constituent list unless already present; the
// type list is an ordered set.
func appendType(types []entities.ClipType, t entities.ClipType) []entities.ClipType {
	for _, existing := range types {
		if existing == t {
			return types
		}
	}
	return append(types, t)
}

func prependType(types []entities.ClipType, t entities.ClipType) []entities.ClipType {
	for _, existing := range types {
		if existing == t {
			return types
		}
	}
	return append([]entities.ClipType{t}, types...)
}
