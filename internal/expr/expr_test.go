package expr

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		name  string
		args  []string
	}{
		{"markdown", "markdown", nil},
		{"json()", "json", []string{}},
		{"title('Dune')", "title", []string{"Dune"}},
		{"type('highlight', 'regex')", "type", []string{"highlight", "regex"}},
		{"type('highlight','regex')", "type", []string{"highlight", "regex"}},
		{"  markdown  ", "markdown", nil},
		{"json('')", "json", []string{""}},
		{"before('2025-01-01 00:00:00')", "before", []string{"2025-01-01 00:00:00"}},
		{"author('G. K. Chesterton')", "author", []string{"G. K. Chesterton"}},
		{"some_name-2()", "some_name-2", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, args, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, name)
			}
			if (args == nil) != (tt.args == nil) {
				t.Fatalf("expected args %#v, got %#v", tt.args, args)
			}
			if len(args) != len(tt.args) {
				t.Fatalf("expected args %#v, got %#v", tt.args, args)
			}
			for i := range args {
				if args[i] != tt.args[i] {
					t.Fatalf("expected args %#v, got %#v", tt.args, args)
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"('Dune')",
		"title('Dune'",
		"title 'Dune')",
		"title(Dune)",
		"title('Dune' 'exact')",
		"title('Dune',)",
		"title('Dune)",
		"title()'Dune'",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, _, err := Parse(input); err == nil {
				t.Errorf("expected an error for %q", input)
			}
		})
	}
}
