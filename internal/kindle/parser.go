package kindle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/chokitto/internal/entities"
)

// Parser parses the Kindle "My Clippings.txt" format.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

const entrySeparator = "=========="

// Regex patterns for parsing metadata lines
var (
	// Matches: "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM"
	// or: "- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM"
	// or: "- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26"
	// or: "- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21"
	metadataPattern = regexp.MustCompile(`^- Your (Highlight|Note|Bookmark)\b`)

	// Page patterns: "on page 8" or "on page 207-207"
	pagePattern = regexp.MustCompile(`(?i)(?:on )?page (\d+)(?:-(\d+))?`)

	// Location patterns: "Location 64-64" or "location 1406-1407" or "at location 784-785"
	locationPattern = regexp.MustCompile(`(?i)(?:at )?location (\d+)(?:-(\d+))?`)

	// Date patterns - multiple formats observed in the wild
	// "Added on Tuesday, April 15, 2025 10:16:21 PM"
	// "Added on Saturday, 26 March 2016 14:59:39"
	datePatterns = []string{
		"Added on Monday, January 2, 2006 3:04:05 PM",
		"Added on Monday, January 2, 2006 15:04:05",
		"Added on Monday, 2 January 2006 3:04:05 PM",
		"Added on Monday, 2 January 2006 15:04:05",
	}

	// Title with author: "Book Title (Author Name)"
	// Some books don't have author in parentheses
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)
)

func (p *Parser) Name() string {
	return "kindle"
}

// Parse reads a clippings file and returns the documents it mentions, in
// first-seen order, each with its clippings in file order. Malformed
// entries are skipped and reported through the stats, never fatal.
func (p *Parser) Parse(r io.Reader) ([]*entities.Document, *entities.ParseStats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	stats := &entities.ParseStats{}
	docMap := make(map[string]*entities.Document)
	var docOrder []string

	add := func(lines []string, entryNo int) {
		title, author, clipping, err := p.parseEntry(lines)
		if err != nil {
			stats.Skip(entryNo, err.Error())
			return
		}

		key := strings.ToLower(title) + "|" + strings.ToLower(author)
		doc, exists := docMap[key]
		if !exists {
			doc = &entities.Document{Title: title, Author: author}
			docMap[key] = doc
			docOrder = append(docOrder, key)
		}
		doc.Clippings = append(doc.Clippings, *clipping)
		stats.Count(clipping.Types[0])
	}

	var currentLines []string
	entryNo := 0

	for scanner.Scan() {
		line := strings.ReplaceAll(scanner.Text(), "\ufeff", "")

		if strings.TrimSpace(line) == entrySeparator {
			if len(currentLines) > 0 {
				entryNo++
				add(currentLines, entryNo)
				currentLines = nil
			}
			continue
		}

		currentLines = append(currentLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading clippings: %w", err)
	}

	// Handle last entry if file doesn't end with separator
	if len(currentLines) > 0 {
		entryNo++
		add(currentLines, entryNo)
	}

	docs := make([]*entities.Document, 0, len(docOrder))
	for _, key := range docOrder {
		docs = append(docs, docMap[key])
	}
	stats.Documents = len(docs)

	return docs, stats, nil
}

func (p *Parser) parseEntry(lines []string) (title, author string, clipping *entities.Clipping, err error) {
	if len(lines) < 2 {
		return "", "", nil, fmt.Errorf("entry too short")
	}

	// First line: Title (Author) or just Title
	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return "", "", nil, fmt.Errorf("empty title line")
	}

	title, author = parseTitleAuthor(titleLine)

	// Second line: Metadata (type, page, location, date)
	metadataLine := strings.TrimSpace(lines[1])
	if !metadataPattern.MatchString(metadataLine) {
		return "", "", nil, fmt.Errorf("unrecognized metadata line")
	}

	clipType := parseClipType(metadataLine)
	page := parseSpan(pagePattern, metadataLine)
	location := parseSpan(locationPattern, metadataLine)
	added := parseDate(metadataLine)

	// Remaining lines (after blank line): Text content
	// Format is: title, metadata, blank line, content
	var textLines []string
	startContent := false
	for i := 2; i < len(lines); i++ {
		line := lines[i]
		if !startContent && strings.TrimSpace(line) == "" {
			startContent = true
			continue
		}
		if startContent || strings.TrimSpace(line) != "" {
			startContent = true
			textLines = append(textLines, line)
		}
	}

	text := strings.TrimSpace(strings.Join(textLines, "\n"))

	// Bookmarks legitimately have no content; highlights and notes
	// without text carry no information and are skipped.
	if text == "" && clipType != entities.TypeBookmark {
		return "", "", nil, fmt.Errorf("empty content")
	}

	return title, author, &entities.Clipping{
		Types:    []entities.ClipType{clipType},
		Page:     page,
		Location: location,
		Added:    added,
		Text:     text,
		Records:  1,
	}, nil
}

func parseTitleAuthor(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	// No author in parentheses, use whole line as title
	return strings.TrimSpace(line), ""
}

func parseClipType(line string) entities.ClipType {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "your note"):
		return entities.TypeNote
	case strings.Contains(lower, "your bookmark"):
		return entities.TypeBookmark
	default:
		return entities.TypeHighlight
	}
}

func parseSpan(pattern *regexp.Regexp, line string) *entities.Span {
	matches := pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return nil
	}
	start, _ := strconv.Atoi(matches[1])
	end := start
	if len(matches) >= 3 && matches[2] != "" {
		end, _ = strconv.Atoi(matches[2])
	}
	return entities.NewSpan(start, end)
}

func parseDate(line string) entities.TimeMark {
	lower := strings.ToLower(line)

	// "Added around" entries carry an approximate timestamp; normalize
	// the prefix so the same layouts apply.
	approximate := false
	idx := strings.Index(lower, "added on")
	prefixLen := len("added on")
	if idx == -1 {
		idx = strings.Index(lower, "added around")
		prefixLen = len("added around")
		approximate = true
	}
	if idx == -1 {
		return entities.TimeMark{}
	}

	dateStr := strings.TrimSpace("Added on" + line[idx+prefixLen:])

	for _, pattern := range datePatterns {
		t, err := time.Parse(pattern, dateStr)
		if err == nil {
			return entities.TimeMark{At: t, Approximate: approximate}
		}
	}

	return entities.TimeMark{}
}
