// Package expr parses the small expression language shared by filter
// and exporter arguments:
//
//	name
//	name()
//	name('arg')
//	name('arg', 'arg')
//
// The name is alphanumeric (plus '_' and '-'); arguments are
// single-quoted strings without escapes. Parsed with an explicit
// scanner; splitting quoted arguments with a regex would need lookahead,
// which RE2 does not have.
package expr

import (
	"fmt"
	"strings"
)

// Parse splits an expression into its name and argument list. A missing
// argument list yields nil args; empty parentheses yield an empty,
// non-nil list.
func Parse(input string) (name string, args []string, err error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", nil, fmt.Errorf("empty expression")
	}

	i := 0
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	name = s[:i]
	if name == "" {
		return "", nil, fmt.Errorf("invalid expression %q: expected a name", input)
	}
	if i == len(s) {
		return name, nil, nil
	}

	if s[i] != '(' || s[len(s)-1] != ')' {
		return "", nil, fmt.Errorf("invalid expression %q: expected %s(...)", input, name)
	}
	args, err = parseArgs(s[i+1 : len(s)-1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid expression %q: %w", input, err)
	}
	return name, args, nil
}

func parseArgs(s string) ([]string, error) {
	args := []string{}
	i := skipSpaces(s, 0)
	if i == len(s) {
		return args, nil
	}

	for {
		if s[i] != '\'' {
			return nil, fmt.Errorf("expected quoted argument at position %d", i)
		}
		end := strings.IndexByte(s[i+1:], '\'')
		if end < 0 {
			return nil, fmt.Errorf("unterminated argument at position %d", i)
		}
		args = append(args, s[i+1:i+1+end])
		i = skipSpaces(s, i+end+2)

		if i == len(s) {
			return args, nil
		}
		if s[i] != ',' {
			return nil, fmt.Errorf("expected ',' at position %d", i)
		}
		i = skipSpaces(s, i+1)
		if i == len(s) {
			return nil, fmt.Errorf("trailing ',' in argument list")
		}
	}
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
