package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("media duration unavailable")

// media file information
type Info struct {
	Path       string
	Duration   time.Duration
	FormatName string
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Probe runs ffprobe against a media file and returns its container duration.
func Probe(ctx context.Context, ffprobePath, filePath string) (*Info, error) {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("stat media file: %w", err)
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}

	cmd := commandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	) //nolint:gosec

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(filePath, out.Bytes())
}

func parseProbe(filePath string, data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	duration, err := parseProbeDuration(probe.Format.Duration)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:       filePath,
		Duration:   duration,
		FormatName: probe.Format.FormatName,
	}, nil
}

func parseProbeDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, ErrNoDuration
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", value, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("%w: negative duration %q", ErrNoDuration, value)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// CheckOffset rejects a seek offset that lies past the end of the media.
func (i *Info) CheckOffset(offset float64) error {
	if i == nil || i.Duration <= 0 {
		return nil
	}
	if offset > i.Duration.Seconds() {
		return fmt.Errorf(
			"seek offset %.3fs is past the end of %s (%s)",
			offset,
			i.Path,
			i.Duration,
		)
	}
	return nil
}
