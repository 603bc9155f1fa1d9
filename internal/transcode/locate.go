package transcode

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/mgpai22/subseek/internal/config"
)

// ErrBinaryNotFound is returned when a transcoder binary cannot be located.
var ErrBinaryNotFound = errors.New("transcoder binary not found")

var lookPath = exec.LookPath

type BinaryPaths struct {
	FFmpeg   string
	FFprobe  string
	Mencoder string
}

// Locator resolves transcoder binaries once per process. Each binary comes
// from the config, then a SUBSEEK_<NAME>_PATH environment variable, then PATH.
type Locator struct {
	cfg config.Transcoder

	once  sync.Once
	paths BinaryPaths
}

func NewLocator(cfg config.Transcoder) *Locator {
	return &Locator{cfg: cfg}
}

func (l *Locator) resolve() BinaryPaths {
	l.once.Do(func() {
		l.paths = BinaryPaths{
			FFmpeg:   locate(l.cfg.FFmpegPath, "SUBSEEK_FFMPEG_PATH", "ffmpeg"),
			FFprobe:  locate(l.cfg.FFprobePath, "SUBSEEK_FFPROBE_PATH", "ffprobe"),
			Mencoder: locate(l.cfg.MencoderPath, "SUBSEEK_MENCODER_PATH", "mencoder"),
		}
	})
	return l.paths
}

func (l *Locator) FFmpegPath() (string, error) {
	return found(l.resolve().FFmpeg, "ffmpeg")
}

func (l *Locator) FFprobePath() (string, error) {
	return found(l.resolve().FFprobe, "ffprobe")
}

func (l *Locator) MencoderPath() (string, error) {
	return found(l.resolve().Mencoder, "mencoder")
}

func locate(configured, envKey, name string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if fromEnv := strings.TrimSpace(os.Getenv(envKey)); fromEnv != "" {
		return fromEnv
	}
	if path, err := lookPath(name); err == nil {
		return path
	}
	return ""
}

func found(path, name string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
	}
	return path, nil
}
