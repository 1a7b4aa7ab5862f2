package filters

import (
	"fmt"

	"github.com/mrlokans/chokitto/internal/expr"
)

// Parse turns filter expressions like "author('Eckhart Tolle')" or
// "type('highlight', 'regex')" into predicates. Any syntax error,
// unknown name, or bad arity is an error: filter problems are fatal at
// startup, before any processing.
func Parse(exprs []string) ([]Filter, error) {
	filters := make([]Filter, 0, len(exprs))
	for _, e := range exprs {
		f, err := parseOne(e)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseOne(input string) (Filter, error) {
	name, args, err := expr.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("bad filter: %w", err)
	}

	switch name {
	case "title":
		m, err := matcherArgs(name, args)
		if err != nil {
			return nil, err
		}
		return TitleFilter{m}, nil

	case "author":
		m, err := matcherArgs(name, args)
		if err != nil {
			return nil, err
		}
		return AuthorFilter{m}, nil

	case "type":
		m, err := matcherArgs(name, args)
		if err != nil {
			return nil, err
		}
		if m.mode == ModeExact {
			m.match = normalizeTypeMatch(m.match)
		}
		return TypeFilter{m}, nil

	case "before", "after":
		if len(args) != 1 {
			return nil, fmt.Errorf("filter %q takes exactly one datetime argument", name)
		}
		at, err := parseReferenceTime(args[0])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		if name == "before" {
			return BeforeFilter{at}, nil
		}
		return AfterFilter{at}, nil

	default:
		return nil, fmt.Errorf("unknown filter %q (available: title, author, type, before, after)", name)
	}
}

// matcherArgs handles the (match[, mode]) signature shared by the string
// filters.
func matcherArgs(name string, args []string) (stringMatcher, error) {
	if len(args) < 1 || len(args) > 2 {
		return stringMatcher{}, fmt.Errorf("filter %q takes a match argument and an optional mode", name)
	}
	mode := string(ModeExact)
	if len(args) == 2 {
		mode = args[1]
	}
	m, err := newStringMatcher(args[0], mode)
	if err != nil {
		return stringMatcher{}, fmt.Errorf("filter %q: %w", name, err)
	}
	return m, nil
}
