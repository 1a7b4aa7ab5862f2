package exporters

import (
	"encoding/json"
	"fmt"

	"github.com/mrlokans/chokitto/internal/entities"
)

// JSON renders documents as an array of document objects. A single
// document is rendered as a bare object, not a one-element array.
type JSON struct {
	// DateFormat is a Go time layout; empty drops the datetime field
	// entirely.
	DateFormat string
}

func (j *JSON) Name() string {
	return "json"
}

// DocumentJSON is the wire form of a document. The types below
// round-trip: decoding exported output reconstructs the same type,
// page, location and content values.
type DocumentJSON struct {
	Title     string         `json:"title"`
	Author    string         `json:"author"`
	Clippings []ClippingJSON `json:"clippings"`
}

type ClippingJSON struct {
	Type     string      `json:"type"`
	Page     *SpanJSON   `json:"page"`
	Location *SpanJSON   `json:"location"`
	Datetime string      `json:"datetime,omitempty"`
	Content  ContentJSON `json:"content"`
}

// SpanJSON encodes a point as a bare integer and a range as a
// two-element [start, end] array.
type SpanJSON entities.Span

func (s SpanJSON) MarshalJSON() ([]byte, error) {
	if s.Start == s.End {
		return json.Marshal(s.Start)
	}
	return json.Marshal([2]int{s.Start, s.End})
}

func (s *SpanJSON) UnmarshalJSON(data []byte) error {
	var point int
	if err := json.Unmarshal(data, &point); err == nil {
		s.Start, s.End = point, point
		return nil
	}
	var bounds [2]int
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("span must be an integer or [start, end]: %w", err)
	}
	s.Start, s.End = bounds[0], bounds[1]
	return nil
}

// ContentJSON encodes single-type content as a plain string and
// composite content as a list of [subtype, text] pairs.
type ContentJSON struct {
	Text      string
	Fragments [][2]string
}

func (c ContentJSON) MarshalJSON() ([]byte, error) {
	if c.Fragments != nil {
		return json.Marshal(c.Fragments)
	}
	return json.Marshal(c.Text)
}

func (c *ContentJSON) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Fragments = nil
		return nil
	}
	var pairs [][2]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("content must be a string or a list of [subtype, text] pairs: %w", err)
	}
	c.Text = ""
	c.Fragments = pairs
	return nil
}

func (j *JSON) Render(docs []*entities.Document) (string, error) {
	sorted := sortedCopy(docs)

	payload := make([]DocumentJSON, 0, len(sorted))
	for _, doc := range sorted {
		payload = append(payload, j.document(doc))
	}

	var v any = payload
	if len(payload) == 1 {
		v = payload[0]
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func (j *JSON) document(doc *entities.Document) DocumentJSON {
	clippings := append([]entities.Clipping(nil), doc.Clippings...)
	entities.SortClippings(clippings)

	out := DocumentJSON{
		Title:     doc.Title,
		Author:    doc.Author,
		Clippings: make([]ClippingJSON, 0, len(clippings)),
	}
	for i := range clippings {
		out.Clippings = append(out.Clippings, j.clipping(&clippings[i]))
	}
	return out
}

func (j *JSON) clipping(c *entities.Clipping) ClippingJSON {
	out := ClippingJSON{
		Type:     c.TypeString(),
		Page:     (*SpanJSON)(c.Page),
		Location: (*SpanJSON)(c.Location),
	}
	if j.DateFormat != "" && !c.Added.IsZero() {
		out.Datetime = c.Added.At.Format(j.DateFormat)
	}
	if c.IsComposite() {
		pairs := make([][2]string, 0, len(c.Fragments))
		for _, frag := range c.Fragments {
			pairs = append(pairs, [2]string{string(frag.Type), frag.Text})
		}
		out.Content = ContentJSON{Fragments: pairs}
	} else {
		out.Content = ContentJSON{Text: c.Text}
	}
	return out
}
