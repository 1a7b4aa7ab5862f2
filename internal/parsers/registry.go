// Package parsers defines the parser capability set and the static
// registry mapping clippings-format names to implementations.
//
// Adding a new format:
//  1. Create a package implementing Parser (see internal/kindle)
//  2. Register its constructor in the registry below
package parsers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mrlokans/chokitto/internal/entities"
	"github.com/mrlokans/chokitto/internal/kindle"
)

// Parser turns a raw clippings log into documents. Implementations skip
// malformed entries and report them via the stats instead of failing.
type Parser interface {
	Name() string
	Parse(r io.Reader) ([]*entities.Document, *entities.ParseStats, error)
}

var registry = map[string]func() Parser{
	"kindle": func() Parser { return kindle.NewParser() },
}

// Get resolves a parser by name.
func Get(name string) (Parser, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered parser names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
