// Package exporters renders the canonical document/clipping structure
// as Markdown or JSON. Exporters only read; they know nothing about how
// composites were produced.
package exporters

import (
	"fmt"

	"github.com/mrlokans/chokitto/internal/entities"
	"github.com/mrlokans/chokitto/internal/expr"
)

// Exporter renders documents to a single output string.
type Exporter interface {
	Name() string
	Render(docs []*entities.Document) (string, error)
}

// Parse resolves an exporter expression like "markdown",
// "json('2006-01-02')" or "markdown('')". The single optional argument
// is a Go date layout; an empty string suppresses datetimes entirely,
// and no argument uses the configured default. Errors are fatal at
// startup.
func Parse(input, defaultDateFormat string) (Exporter, error) {
	name, args, err := expr.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("bad exporter: %w", err)
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("exporter %q takes at most one date-format argument", name)
	}

	dateFormat := defaultDateFormat
	if len(args) == 1 {
		dateFormat = args[0]
	}

	switch name {
	case "markdown":
		return &Markdown{DateFormat: dateFormat}, nil
	case "json":
		return &JSON{DateFormat: dateFormat}, nil
	default:
		return nil, fmt.Errorf("unknown exporter %q (available: json, markdown)", name)
	}
}
