package subtitle

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mgpai22/subseek/internal/charset"
)

var (
	ErrNoSubtitle    = errors.New("subtitle file is required")
	ErrInvalidOffset = errors.New("seek offset must be a finite, non-negative number of seconds")
)

// Request describes one time-shift of an external subtitle file.
type Request struct {
	Path       string
	Format     Format
	Detected   string // auto-detected charset, may be blank
	Forced     string // configured codepage override, may be blank
	IsUTF8     bool   // input already known to be UTF-8
	Offset     float64
	ScratchDir string // defaults to os.TempDir()
}

// Stats counts what happened to the timed entries of the input.
type Stats struct {
	Kept      int
	Dropped   int
	Malformed int
}

// Result of Shift. Path is empty when the format is not supported and
// nothing was written.
type Result struct {
	Path    string
	Charset string
	Source  charset.Source
	Stats
}

// Produced reports whether a shifted file was written.
func (r Result) Produced() bool {
	return r.Path != ""
}

type shiftFunc func(io.Reader, io.Writer, time.Duration) (Stats, error)

func strategyFor(format Format) shiftFunc {
	switch format {
	case FormatASS:
		return ShiftASS
	case FormatSRT:
		return ShiftSRT
	default:
		return nil
	}
}

// Shift decodes the subtitle file, drops entries that start before the seek
// offset, re-bases the rest and writes the result as UTF-8 to a new file in the
// scratch directory. The input file is only read.
//
// On a read or write failure the partially written output may be left behind.
func Shift(req Request) (Result, error) {
	if strings.TrimSpace(req.Path) == "" {
		return Result{}, ErrNoSubtitle
	}
	if math.IsNaN(req.Offset) || math.IsInf(req.Offset, 0) || req.Offset < 0 ||
		req.Offset > MaxOffsetSeconds {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidOffset, req.Offset)
	}

	shift := strategyFor(req.Format)
	if shift == nil {
		return Result{}, nil
	}

	dec := charset.Select(req.Forced, req.Detected, req.IsUTF8)

	in, err := os.Open(req.Path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := createOutput(req.ScratchDir, req.Path)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Path:    out.Name(),
		Charset: dec.Name,
		Source:  dec.Source,
	}

	stats, err := shift(dec.NewReader(in), out, OffsetDuration(req.Offset))
	result.Stats = stats
	if err != nil {
		_ = out.Close()
		return result, err
	}
	if err := out.Close(); err != nil {
		return result, fmt.Errorf("failed to close shifted subtitle file: %w", err)
	}

	return result, nil
}
