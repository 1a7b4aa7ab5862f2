package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/chokitto/internal/config"
	"github.com/mrlokans/chokitto/internal/entities"
	"github.com/mrlokans/chokitto/internal/exporters"
	"github.com/mrlokans/chokitto/internal/filters"
	"github.com/mrlokans/chokitto/internal/merge"
	"github.com/mrlokans/chokitto/internal/parsers"
)

// Execute runs the root command. Called by main.main(); exits non-zero
// on any fatal error.
func Execute(version, commit string) {
	cmd := NewRootCommand(config.NewConfig())
	cmd.Version = fmt.Sprintf("%s (%s)", version, commit)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	output       string
	parserName   string
	exporterExpr string
	filterExprs  []string
	dateFormat   string
	tolerance    int
	merge        bool
	list         bool
	verbose      bool
}

// NewRootCommand builds the command with defaults taken from cfg. Flags
// are bound per instance so tests can run commands independently.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := options{dateFormat: cfg.Export.DateFormat}

	cmd := &cobra.Command{
		Use:   "chokitto <clippings-file>",
		Short: "Extract, merge and export eReader clippings",
		Long: `Chokitto reads an eReader's "My Clippings.txt" log, optionally
deduplicates edited highlights and attaches notes to the passages they
annotate, filters the result, and renders it as Markdown or JSON.

Examples:
  chokitto "My Clippings.txt"
  chokitto -m -f "author('Eckhart Tolle')" "My Clippings.txt"
  chokitto -m -e "json('2006-01-02')" -o clippings.json "My Clippings.txt"
  chokitto --list "My Clippings.txt"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "path to output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.parserName, "parser", "p", cfg.Pipeline.Parser, "parser for the clippings file")
	cmd.Flags().StringVarP(&opts.exporterExpr, "exporter", "e", cfg.Pipeline.Exporter, "exporter expression, e.g. markdown or json('2006-01-02')")
	cmd.Flags().StringArrayVarP(&opts.filterExprs, "filters", "f", nil, "filter expressions, e.g. \"title('Dune')\" (repeatable)")
	cmd.Flags().IntVarP(&opts.tolerance, "tolerance", "t", cfg.Merge.NoteTolerance, "locations past a highlight's end a note may sit and still merge")
	cmd.Flags().BoolVarP(&opts.merge, "merge", "m", false, "deduplicate clippings and merge notes into their highlights")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list documents in the clippings file and exit")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print parse statistics and listings to stderr")

	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	parser, err := parsers.Get(opts.parserName)
	if err != nil {
		return err
	}

	// Expression errors are fatal before any processing starts.
	filterSet, err := filters.Parse(opts.filterExprs)
	if err != nil {
		return err
	}
	exporter, err := exporters.Parse(opts.exporterExpr, opts.dateFormat)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer f.Close()

	docs, stats, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse clippings: %w", err)
	}
	if opts.verbose {
		printStats(stderr, path, stats)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no parseable clippings found in %s", path)
	}

	if opts.merge {
		engine := merge.NewEngine(opts.tolerance)
		docs = engine.MergeAll(docs)
	}

	if len(filterSet) > 0 {
		if opts.verbose {
			fmt.Fprintf(stderr, "Filters (%d total):\n", len(filterSet))
			for _, filter := range filterSet {
				fmt.Fprintf(stderr, "  %s\n", filter)
			}
		}
		docs = filters.Apply(docs, filterSet)
	}

	entities.SortDocuments(docs)

	if opts.list {
		for _, doc := range docs {
			fmt.Fprintln(stdout, doc.Label())
		}
		return nil
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "Documents (%d total):\n", len(docs))
		for _, doc := range docs {
			fmt.Fprintf(stderr, "  %s\n", doc.Label())
		}
	}

	rendered, err := exporter.Render(docs)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if opts.verbose {
			fmt.Fprintf(stderr, "Output saved to %s using the %s exporter.\n", opts.output, exporter.Name())
		}
		return nil
	}

	fmt.Fprint(stdout, rendered)
	return nil
}

func printStats(w io.Writer, path string, stats *entities.ParseStats) {
	fmt.Fprintf(w, "Statistics (%s):\n", path)
	fmt.Fprintf(w, "  %d %s\n", stats.Documents, plural(stats.Documents, "document"))
	fmt.Fprintf(w, "  %d %s\n", stats.Highlights, plural(stats.Highlights, "highlight"))
	fmt.Fprintf(w, "  %d %s\n", stats.Notes, plural(stats.Notes, "note"))
	fmt.Fprintf(w, "  %d %s\n", stats.Bookmarks, plural(stats.Bookmarks, "bookmark"))
	if len(stats.Skipped) > 0 {
		fmt.Fprintf(w, "  %d %s skipped:\n", len(stats.Skipped), plural(len(stats.Skipped), "entry"))
		for _, reason := range stats.Skipped {
			fmt.Fprintf(w, "    %s\n", reason)
		}
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	if unit == "entry" {
		return "entries"
	}
	return unit + "s"
}
