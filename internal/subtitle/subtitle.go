package subtitle

import (
	"path/filepath"
	"strings"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries []Entry
	Format  Format
}

// represents subtitle formats the shifter understands
type Format string

const (
	FormatUnknown Format = ""
	FormatSRT     Format = "srt"
	FormatASS     Format = "ass"
)

// Supported reports whether the format has a shifting strategy.
func (f Format) Supported() bool {
	return f == FormatSRT || f == FormatASS
}

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}

// ParseFormat maps a user or metadata supplied format name to a Format.
// Unrecognized names map to FormatUnknown.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "srt", "subrip":
		return FormatSRT
	case "ass", "ssa":
		return FormatASS
	default:
		return FormatUnknown
	}
}

// subtitle format based on file extension
func FormatFromExtension(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}
