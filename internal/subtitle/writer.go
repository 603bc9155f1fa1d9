package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// OutputSuffix is the extension of every shifted artifact.
const OutputSuffix = ".tmp"

// ASS files with embedded fonts or drawings can carry very long lines.
const maxLineSize = 1024 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// line scanner over decoded text with a leading BOM removed
func newLineScanner(r io.Reader) *bufio.Scanner {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// OutputName derives <base>_<uuid>.tmp from the input file name.
func OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_" + uuid.NewString() + OutputSuffix
}

// IsOutputName reports whether a file name has the <base>_<uuid>.tmp shape
// that OutputName produces.
func IsOutputName(name string) bool {
	stem, ok := strings.CutSuffix(name, OutputSuffix)
	if !ok {
		return false
	}
	idx := strings.LastIndexByte(stem, '_')
	if idx < 0 {
		return false
	}
	_, err := uuid.Parse(stem[idx+1:])
	return err == nil
}

// creates a fresh output file in dir; never truncates an existing file
func createOutput(dir, inputPath string) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	path := filepath.Join(dir, OutputName(inputPath))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create shifted subtitle file: %w", err)
	}
	return file, nil
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return fmt.Errorf("failed to write subtitle line: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write subtitle line: %w", err)
	}
	return nil
}
