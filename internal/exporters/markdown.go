package exporters

import (
	"fmt"
	"strings"

	"github.com/mrlokans/chokitto/internal/entities"
)

// Markdown renders documents as a heading hierarchy: document, then
// clipping-type group, then one heading per clipping with blockquoted
// content. With more than one document every heading is demoted one
// level under a shared preamble.
type Markdown struct {
	// DateFormat is a Go time layout; empty suppresses the
	// "Added on/around" lines entirely.
	DateFormat string
}

func (m *Markdown) Name() string {
	return "markdown"
}

func (m *Markdown) Render(docs []*entities.Document) (string, error) {
	sorted := sortedCopy(docs)

	var b strings.Builder
	level := ""
	if len(sorted) > 1 {
		level = "#"
		fmt.Fprintf(&b, "# Clippings for %d Documents\n\n", len(sorted))
	}

	for _, doc := range sorted {
		m.renderDocument(&b, doc, level)
	}

	return b.String(), nil
}

func (m *Markdown) renderDocument(b *strings.Builder, doc *entities.Document, level string) {
	fmt.Fprintf(b, "%s# %s\n\n", level, doc.Title)
	if doc.Author != "" {
		fmt.Fprintf(b, "%s\n\n", doc.Author)
	}

	clippings := append([]entities.Clipping(nil), doc.Clippings...)
	entities.SortClippings(clippings)

	for _, typ := range doc.TypeStrings() {
		fmt.Fprintf(b, "%s## %s\n\n", level, typeHeading(typ))
		for i := range clippings {
			if clippings[i].NormalizedType() == typ {
				m.renderClipping(b, &clippings[i], level)
			}
		}
	}
}

func (m *Markdown) renderClipping(b *strings.Builder, clip *entities.Clipping, level string) {
	fmt.Fprintf(b, "%s### %s\n\n", level, clip.Position())

	switch {
	case clip.IsComposite():
		for _, frag := range clip.Fragments {
			fmt.Fprintf(b, "> [%s] %s\n\n", capitalize(string(frag.Type)), blockquote(frag.Text))
		}
	case clip.Text != "":
		fmt.Fprintf(b, "> %s\n\n", blockquote(clip.Text))
	}

	if m.DateFormat != "" && !clip.Added.IsZero() {
		word := "on"
		if clip.Added.Approximate {
			word = "around"
		}
		fmt.Fprintf(b, "Added %s %s.\n\n", word, clip.Added.At.Format(m.DateFormat))
	}
}

// blockquote keeps multi-line content inside the quote block.
func blockquote(text string) string {
	return strings.ReplaceAll(text, "\n", "\n> ")
}

// typeHeading renders a group heading for a normalized type string:
// "highlight+note" becomes "Highlights + Notes".
func typeHeading(typ string) string {
	parts := strings.Split(typ, "+")
	for i, part := range parts {
		parts[i] = capitalize(part) + "s"
	}
	return strings.Join(parts, " + ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedCopy(docs []*entities.Document) []*entities.Document {
	sorted := append([]*entities.Document(nil), docs...)
	entities.SortDocuments(sorted)
	return sorted
}
