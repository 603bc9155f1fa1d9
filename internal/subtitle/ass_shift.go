package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const assDialoguePrefix = "Dialogue:"

// ShiftASS copies an ASS/SSA script from r to w, re-basing every Dialogue
// line on offset. Dialogue lines starting before offset are dropped; all other
// lines pass through untouched. Fields 1 and 2 of a Dialogue line are its start
// and end; the remaining fields, text commas included, are kept verbatim.
func ShiftASS(r io.Reader, w io.Writer, offset time.Duration) (Stats, error) {
	var stats Stats
	out := bufio.NewWriter(w)
	scanner := newLineScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		if !strings.HasPrefix(line, assDialoguePrefix) {
			if err := writeLine(out, line); err != nil {
				return stats, err
			}
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			stats.Malformed++
			continue
		}
		start, err := ParseTimestamp(fields[1])
		if err != nil {
			stats.Malformed++
			continue
		}
		end, err := ParseTimestamp(fields[2])
		if err != nil {
			stats.Malformed++
			continue
		}

		if start < offset {
			stats.Dropped++
			continue
		}

		fields[1] = FormatASSTime(start - offset)
		fields[2] = FormatASSTime(end - offset)
		if err := writeLine(out, strings.Join(fields, ",")); err != nil {
			return stats, err
		}
		stats.Kept++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("error reading ASS file: %w", err)
	}
	if err := out.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write ASS file: %w", err)
	}
	return stats, nil
}
