package subtitle

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// column positions taken from the [Events] Format line
type assColumns struct {
	count int
	start int
	end   int
	text  int
}

func parseASS(r io.Reader) (*Subtitle, error) {
	scanner := newLineScanner(r)
	inEventsSection := false
	var cols *assColumns
	var entries []Entry
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		trimmedLine := strings.TrimSpace(line)

		if strings.HasPrefix(trimmedLine, "[") &&
			strings.HasSuffix(trimmedLine, "]") {
			sectionName := strings.ToLower(
				strings.TrimSuffix(strings.TrimPrefix(trimmedLine, "["), "]"),
			)
			inEventsSection = sectionName == "events"
			continue
		}

		if !inEventsSection {
			continue
		}

		if strings.HasPrefix(trimmedLine, "Format:") {
			parsed, err := parseASSFormat(strings.TrimPrefix(trimmedLine, "Format:"))
			if err != nil {
				return nil, fmt.Errorf("invalid Format line at line %d: %w", lineNum, err)
			}
			cols = parsed
			continue
		}

		if !strings.HasPrefix(line, assDialoguePrefix) {
			continue
		}
		if cols == nil {
			return nil, fmt.Errorf("Dialogue before Format line at line %d", lineNum)
		}

		entry, err := cols.parseDialogue(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Dialogue at line %d: %w", lineNum, err)
		}
		entry.Index = len(entries) + 1
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}
	if cols == nil {
		return nil, errors.New("ASS file missing Format line in [Events] section")
	}

	return &Subtitle{Entries: entries, Format: FormatASS}, nil
}

func parseASSFormat(formatPart string) (*assColumns, error) {
	columns := strings.Split(formatPart, ",")
	cols := &assColumns{count: len(columns), start: -1, end: -1, text: -1}
	for i, col := range columns {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "start":
			cols.start = i
		case "end":
			cols.end = i
		case "text":
			cols.text = i
		}
	}
	if cols.start < 0 || cols.end < 0 || cols.text < 0 {
		return nil, errors.New("Start, End and Text columns are required")
	}
	return cols, nil
}

func (c *assColumns) parseDialogue(line string) (Entry, error) {
	content := strings.TrimSpace(strings.TrimPrefix(line, assDialoguePrefix))
	parts := splitASSFields(content, c.count)
	if len(parts) < c.count {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", c.count, len(parts))
	}

	start, err := ParseTimestamp(parts[c.start])
	if err != nil {
		return Entry{}, err
	}
	end, err := ParseTimestamp(parts[c.end])
	if err != nil {
		return Entry{}, err
	}

	text := strings.ReplaceAll(parts[c.text], "\\N", "\n")
	text = strings.ReplaceAll(text, "\\n", "\n")

	return Entry{StartTime: start, EndTime: end, Text: text}, nil
}

// the last field takes the remainder, so commas inside the text survive
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			return parts
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	return append(parts, remaining)
}
