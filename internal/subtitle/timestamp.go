package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var errBadTimestamp = errors.New("malformed timestamp")

// largest whole number of seconds a time.Duration can hold
const maxSeconds = math.MaxInt64 / int64(time.Second)

// ParseTimestamp parses H:MM:SS.CC (ASS) and HH:MM:SS,mmm (SRT) timestamps.
// The fraction is read as a decimal fraction of a second, so ".5", ".50" and
// ",500" are the same instant.
func ParseTimestamp(ts string) (time.Duration, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
	}

	secPart, fracPart, hasFrac := strings.Cut(
		strings.ReplaceAll(parts[2], ",", "."),
		".",
	)
	seconds, err := strconv.Atoi(secPart)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
	}

	total := float64(hours)*3600 + float64(minutes)*60 + float64(seconds)
	if total >= float64(maxSeconds) {
		return 0, fmt.Errorf("%w: out of range %q", errBadTimestamp, ts)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second

	if hasFrac {
		frac, err := parseFraction(fracPart)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errBadTimestamp, ts)
		}
		d += frac
	}

	return d, nil
}

// decimal digits after the separator -> duration, nanosecond resolution
func parseFraction(digits string) (time.Duration, error) {
	if digits == "" {
		return 0, errBadTimestamp
	}
	if len(digits) > 9 {
		digits = digits[:9]
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, errBadTimestamp
		}
	}
	n, err := strconv.Atoi(digits + strings.Repeat("0", 9-len(digits)))
	if err != nil {
		return 0, err
	}
	return time.Duration(n), nil
}

// OffsetDuration converts a seek offset in seconds to a duration. Callers
// must keep seconds within MaxOffsetSeconds.
func OffsetDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// MaxOffsetSeconds is the largest seek offset OffsetDuration can represent.
const MaxOffsetSeconds = float64(maxSeconds)

// FormatASSTime renders H:MM:SS.CC, rounded to the nearest centisecond.
func FormatASSTime(d time.Duration) string {
	h, m, s, frac := splitClock(d, 10*time.Millisecond)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, frac)
}

// FormatSRTTime renders HH:MM:SS,mmm, rounded to the nearest millisecond.
func FormatSRTTime(d time.Duration) string {
	h, m, s, frac := splitClock(d, time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac)
}

// rounding happens before the split so that carries reach the larger fields
func splitClock(d, unit time.Duration) (hours, minutes, seconds, frac int64) {
	if d < 0 {
		d = 0
	}
	d = d.Round(unit)

	hours = int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes = int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds = int64(d / time.Second)
	d -= time.Duration(seconds) * time.Second
	frac = int64(d / unit)
	return hours, minutes, seconds, frac
}
