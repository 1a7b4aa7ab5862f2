// Package filters applies user-specified predicates to the
// document/clipping tree. Predicates compose with AND semantics and are
// order-independent; applying them produces a filtered copy, never a
// mutation of the input.
package filters

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/chokitto/internal/entities"
)

// Level tells which part of the tree a predicate inspects.
type Level int

const (
	LevelDocument Level = iota
	LevelClipping
)

// Filter is one named predicate. Document-level filters receive a nil
// clipping.
type Filter interface {
	Level() Level
	Matches(doc *entities.Document, clip *entities.Clipping) bool
	String() string
}

// MatchMode selects how string filters compare.
type MatchMode string

const (
	ModeExact MatchMode = "exact"
	ModeRegex MatchMode = "regex"
)

type stringMatcher struct {
	match string
	mode  MatchMode
	re    *regexp.Regexp
}

func newStringMatcher(match, mode string) (stringMatcher, error) {
	m := stringMatcher{match: match, mode: MatchMode(strings.ToLower(mode))}
	switch m.mode {
	case ModeExact:
	case ModeRegex:
		re, err := regexp.Compile(match)
		if err != nil {
			return stringMatcher{}, fmt.Errorf("invalid pattern %q: %w", match, err)
		}
		m.re = re
	default:
		return stringMatcher{}, fmt.Errorf("unsupported match mode %q (use exact or regex)", mode)
	}
	return m, nil
}

func (m stringMatcher) matches(s string) bool {
	if m.mode == ModeRegex {
		return m.re.MatchString(s)
	}
	return s == m.match
}

// TitleFilter matches documents by title.
type TitleFilter struct{ stringMatcher }

func (f TitleFilter) Level() Level { return LevelDocument }

func (f TitleFilter) Matches(doc *entities.Document, _ *entities.Clipping) bool {
	return f.matches(doc.Title)
}

func (f TitleFilter) String() string {
	return fmt.Sprintf("title(%q, %s mode)", f.match, f.mode)
}

// AuthorFilter matches documents by author. The empty string matches
// documents without an author.
type AuthorFilter struct{ stringMatcher }

func (f AuthorFilter) Level() Level { return LevelDocument }

func (f AuthorFilter) Matches(doc *entities.Document, _ *entities.Clipping) bool {
	return f.matches(doc.Author)
}

func (f AuthorFilter) String() string {
	return fmt.Sprintf("author(%q, %s mode)", f.match, f.mode)
}

// TypeFilter matches clippings by type string. Constituent order is
// normalized, so 'note+highlight' and 'highlight+note' compare equal.
// A bare 'highlight' matches standalone highlights only, never the
// highlight half of a composite.
type TypeFilter struct{ stringMatcher }

func (f TypeFilter) Level() Level { return LevelClipping }

func (f TypeFilter) Matches(_ *entities.Document, clip *entities.Clipping) bool {
	return f.matches(clip.NormalizedType())
}

func (f TypeFilter) String() string {
	return fmt.Sprintf("type(%q, %s mode)", f.match, f.mode)
}

// normalizeTypeMatch sorts the '+'-separated constituents of a type
// expression into canonical order.
func normalizeTypeMatch(match string) string {
	parts := strings.Split(strings.ToLower(match), "+")
	sort.Strings(parts)
	return strings.Join(parts, "+")
}

// BeforeFilter matches clippings added strictly before a reference time.
// Clippings without a timestamp never match.
type BeforeFilter struct{ at time.Time }

func (f BeforeFilter) Level() Level { return LevelClipping }

func (f BeforeFilter) Matches(_ *entities.Document, clip *entities.Clipping) bool {
	return !clip.Added.IsZero() && clip.Added.At.Before(f.at)
}

func (f BeforeFilter) String() string {
	return fmt.Sprintf("before(%s)", f.at.Format(referenceTimeLayout))
}

// AfterFilter matches clippings added strictly after a reference time.
// Clippings without a timestamp never match.
type AfterFilter struct{ at time.Time }

func (f AfterFilter) Level() Level { return LevelClipping }

func (f AfterFilter) Matches(_ *entities.Document, clip *entities.Clipping) bool {
	return !clip.Added.IsZero() && clip.Added.At.After(f.at)
}

func (f AfterFilter) String() string {
	return fmt.Sprintf("after(%s)", f.at.Format(referenceTimeLayout))
}

const referenceTimeLayout = "2006-01-02 15:04:05"

var referenceTimeLayouts = []string{referenceTimeLayout, "2006-01-02"}

func parseReferenceTime(s string) (time.Time, error) {
	for _, layout := range referenceTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q (use '2006-01-02 15:04:05' or '2006-01-02')", s)
}

// Apply runs the filter pipeline over the documents, returning a
// filtered copy. Document predicates drop whole documents, clipping
// predicates drop clippings, and documents left with no clippings are
// dropped. The input is untouched.
func Apply(docs []*entities.Document, fs []Filter) []*entities.Document {
	if len(fs) == 0 {
		return docs
	}

	var docFilters, clipFilters []Filter
	for _, f := range fs {
		if f.Level() == LevelDocument {
			docFilters = append(docFilters, f)
		} else {
			clipFilters = append(clipFilters, f)
		}
	}

	var out []*entities.Document
	for _, doc := range docs {
		if !allMatch(docFilters, doc, nil) {
			continue
		}

		kept := make([]entities.Clipping, 0, len(doc.Clippings))
		for i := range doc.Clippings {
			clip := &doc.Clippings[i]
			if allMatch(clipFilters, doc, clip) {
				kept = append(kept, clip.Clone())
			}
		}
		if len(kept) == 0 {
			continue
		}

		out = append(out, &entities.Document{
			Title:     doc.Title,
			Author:    doc.Author,
			Clippings: kept,
		})
	}
	return out
}

func allMatch(fs []Filter, doc *entities.Document, clip *entities.Clipping) bool {
	for _, f := range fs {
		if !f.Matches(doc, clip) {
			return false
		}
	}
	return true
}
