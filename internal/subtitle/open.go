package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/subseek/internal/charset"
)

// Open parses a subtitle file into entries. An unknown format is taken from
// the file extension; a blank charset means UTF-8.
func Open(path string, format Format, charsetName string) (*Subtitle, error) {
	if format == FormatUnknown {
		format = FormatFromExtension(path)
	}
	if !format.Supported() {
		return nil, fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	dec := charset.Select("", charsetName, false)
	return Read(dec.NewReader(file), format)
}

// Read parses UTF-8 subtitle text of the given format.
func Read(r io.Reader, format Format) (*Subtitle, error) {
	switch format {
	case FormatSRT:
		return parseSRT(r)
	case FormatASS:
		return parseASS(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}
