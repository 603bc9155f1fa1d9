package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const srtArrow = "-->"

// ShiftSRT copies a SubRip file from r to w, re-basing every cue on offset.
// Cues starting before offset are dropped together with their text. Kept cues
// are renumbered from 1 in output order and each is followed by one blank line.
func ShiftSRT(r io.Reader, w io.Writer, offset time.Duration) (Stats, error) {
	var stats Stats
	out := bufio.NewWriter(w)
	scanner := newLineScanner(r)
	index := 1

	for scanner.Scan() {
		before, after, found := strings.Cut(scanner.Text(), srtArrow)
		if !found {
			continue
		}

		start, end, err := parseSRTTiming(before, after)
		keep := err == nil && start >= offset
		switch {
		case err != nil:
			stats.Malformed++
		case !keep:
			stats.Dropped++
		}

		if keep {
			if err := writeLine(out, strconv.Itoa(index)); err != nil {
				return stats, err
			}
			timing := FormatSRTTime(start-offset) + " " + srtArrow + " " + FormatSRTTime(end-offset)
			if err := writeLine(out, timing); err != nil {
				return stats, err
			}
		}

		// text block runs to the next blank line
		for scanner.Scan() {
			text := scanner.Text()
			if strings.TrimSpace(text) == "" {
				break
			}
			if keep {
				if err := writeLine(out, text); err != nil {
					return stats, err
				}
			}
		}

		if keep {
			if err := writeLine(out, ""); err != nil {
				return stats, err
			}
			stats.Kept++
			index++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("error reading SRT file: %w", err)
	}
	if err := out.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write SRT file: %w", err)
	}
	return stats, nil
}

// the end side may carry position hints after the timestamp (X1:... Y2:...)
func parseSRTTiming(before, after string) (time.Duration, time.Duration, error) {
	start, err := ParseTimestamp(before)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("%w: missing end time", errBadTimestamp)
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
