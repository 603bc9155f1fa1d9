package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subseek/internal/session"
)

var commandContext = exec.CommandContext

// ErrNoPlan is returned when argument construction gets no subtitle plan.
var ErrNoPlan = errors.New("subtitle plan is required")

// FormatOffset renders a seek offset the way ffmpeg and mencoder accept it.
func FormatOffset(offset float64) string {
	return strconv.FormatFloat(offset, 'f', -1, 64)
}

// MencoderArgs returns the subtitle and seek options for a mencoder command
// line. The codepage option is omitted when nothing is known about the
// subtitle's encoding.
func MencoderArgs(plan *session.Plan) []string {
	if plan == nil {
		return nil
	}
	args := []string{"-sub", plan.SubtitlePath}
	if cp, ok := plan.SubtitleCodepage(); ok {
		args = append(args, "-subcp", cp)
	}
	if plan.Offset > 0 {
		args = append(args, "-ss", FormatOffset(plan.Offset))
	}
	return args
}

// FFmpegStream builds an ffmpeg invocation that seeks into input and burns
// the planned subtitle into the video.
//
// A shifted subtitle starts at zero, so the input is seeked directly. An
// unshifted one still carries the original timeline, so the seek is applied
// after decoding instead.
func FFmpegStream(input, output string, plan *session.Plan) (*ffmpeg.Stream, error) {
	if plan == nil {
		return nil, ErrNoPlan
	}
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return nil, errors.New("input and output paths are required")
	}

	inputArgs := ffmpeg.KwArgs{}
	outputArgs := ffmpeg.KwArgs{
		"c:v": "libx264",
		"c:a": "copy",
	}
	if plan.Offset > 0 {
		if plan.Shifted {
			inputArgs["ss"] = FormatOffset(plan.Offset)
		} else {
			outputArgs["ss"] = FormatOffset(plan.Offset)
		}
	}

	filterArgs := ffmpeg.KwArgs{}
	if plan.Charset != "" {
		filterArgs["charenc"] = plan.Charset
	}

	in := ffmpeg.Input(input, inputArgs)
	video := in.Video().Filter("subtitles", ffmpeg.Args{plan.SubtitlePath}, filterArgs)

	return ffmpeg.Output(
		[]*ffmpeg.Stream{video, in.Audio()},
		output,
		outputArgs,
	).OverWriteOutput(), nil
}

// Run executes a compiled stream with the located ffmpeg binary.
func Run(ctx context.Context, ffmpegPath string, stream *ffmpeg.Stream) error {
	if stream == nil {
		return errors.New("ffmpeg stream is required")
	}
	cmd := commandContext(ctx, ffmpegPath, stream.GetArgs()...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
