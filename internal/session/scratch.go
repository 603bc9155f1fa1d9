package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/mgpai22/subseek/internal/subtitle"
)

const lockName = ".subseek.lock"

// ErrSweepBusy is returned when another process holds the scratch lock.
var ErrSweepBusy = errors.New("scratch directory is being swept by another process")

// Scratch owns the directory that receives shifted subtitle files.
type Scratch struct {
	dir string

	mu        sync.Mutex
	artifacts []string
}

func NewScratch(dir string) *Scratch {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "subseek")
	}
	return &Scratch{dir: dir}
}

func (s *Scratch) Dir() string {
	return s.dir
}

// Ensure creates the scratch directory if needed.
func (s *Scratch) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	return nil
}

// Track records an artifact for removal by Cleanup.
func (s *Scratch) Track(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	s.artifacts = append(s.artifacts, path)
	s.mu.Unlock()
}

// Artifacts returns the paths recorded so far.
func (s *Scratch) Artifacts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.artifacts...)
}

// Cleanup removes every tracked artifact. Files already gone are ignored.
func (s *Scratch) Cleanup() error {
	s.mu.Lock()
	artifacts := s.artifacts
	s.artifacts = nil
	s.mu.Unlock()

	var errs []error
	for _, path := range artifacts {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Sweep removes shifted subtitle files older than maxAge that earlier
// sessions left behind. Only names produced by subtitle.OutputName are
// considered. A non-positive maxAge disables sweeping.
func (s *Scratch) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if err := s.Ensure(); err != nil {
		return 0, err
	}

	lock := flock.New(filepath.Join(s.dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("acquire scratch lock: %w", err)
	}
	if !ok {
		return 0, ErrSweepBusy
	}
	defer func() {
		_ = lock.Unlock()
	}()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read scratch dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !subtitle.IsOutputName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
