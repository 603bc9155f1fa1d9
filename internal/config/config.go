package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultStaleAfterMinutes = 24 * 60
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
)

// Subtitles contains settings for external subtitle preparation.
type Subtitles struct {
	// ForcedCodepage overrides the detected charset of non-UTF-8 subtitle files.
	ForcedCodepage string `toml:"forced_codepage"`
	// ScratchDir receives shifted subtitle files. Default: <tmp>/subseek
	ScratchDir        string `toml:"scratch_dir"`
	StaleAfterMinutes int    `toml:"stale_after_minutes"`
}

// Transcoder contains binary locations; blank entries are looked up on PATH.
type Transcoder struct {
	FFmpegPath   string `toml:"ffmpeg_path"`
	FFprobePath  string `toml:"ffprobe_path"`
	MencoderPath string `toml:"mencoder_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for subseek.
type Config struct {
	Subtitles  Subtitles  `toml:"subtitles"`
	Transcoder Transcoder `toml:"transcoder"`
	Logging    Logging    `toml:"logging"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Subtitles: Subtitles{
			StaleAfterMinutes: defaultStaleAfterMinutes,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subseek/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults are used. The resolved path and whether it existed
// are returned alongside the config.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subseek.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Subtitles.ForcedCodepage = strings.TrimSpace(c.Subtitles.ForcedCodepage)

	if strings.TrimSpace(c.Subtitles.ScratchDir) == "" {
		c.Subtitles.ScratchDir = filepath.Join(os.TempDir(), "subseek")
	}
	var err error
	if c.Subtitles.ScratchDir, err = expandPath(c.Subtitles.ScratchDir); err != nil {
		return fmt.Errorf("subtitles.scratch_dir: %w", err)
	}

	for name, p := range map[string]*string{
		"transcoder.ffmpeg_path":   &c.Transcoder.FFmpegPath,
		"transcoder.ffprobe_path":  &c.Transcoder.FFprobePath,
		"transcoder.mencoder_path": &c.Transcoder.MencoderPath,
	} {
		if strings.TrimSpace(*p) == "" {
			*p = ""
			continue
		}
		if *p, err = expandPath(strings.TrimSpace(*p)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Subtitles.StaleAfterMinutes < 0 {
		return errors.New("subtitles.stale_after_minutes must be zero or positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// StaleAfter is the age past which Sweep removes scratch artifacts.
// Zero disables sweeping.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Subtitles.StaleAfterMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
