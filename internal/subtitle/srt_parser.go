package subtitle

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

func parseSRT(r io.Reader) (*Subtitle, error) {
	var entries []Entry
	scanner := newLineScanner(r)

	var current *Entry
	timed := false
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && timed && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			entries = append(entries, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				current = &Entry{Index: index}
				continue
			}
			// cue without a numeric identifier
			current = &Entry{Index: len(entries) + 1}
		}

		if !timed {
			before, after, found := strings.Cut(line, srtArrow)
			if !found {
				return nil, fmt.Errorf("missing timing line at line %d", lineNum)
			}
			start, end, err := parseSRTTiming(before, after)
			if err != nil {
				return nil, fmt.Errorf("invalid timing at line %d: %w", lineNum, err)
			}
			current.StartTime = start
			current.EndTime = end
			timed = true
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return &Subtitle{Entries: entries, Format: FormatSRT}, nil
}
