package charset

import (
	"fmt"
	"io"
	"os"
	"strings"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultName is the charset used when neither a forced nor a detected
// charset can be decoded. It is also the encoding of every file we write.
const DefaultName = "UTF-8"

// sniffSize matches the prefix html/charset inspects.
const sniffSize = 1024

// where the decoding charset came from
type Source string

const (
	SourceForced   Source = "forced"
	SourceDetected Source = "detected"
	SourceDefault  Source = "default"
)

// detector names that neither the IANA registry nor the WHATWG labels know
var aliases = map[string]string{
	"maccyrillic":   "x-mac-cyrillic",
	"x-maccyrillic": "x-mac-cyrillic",
}

// Decoding is the charset chosen to read an input file.
type Decoding struct {
	Name   string
	Source Source
	enc    encoding.Encoding
}

// NewReader wraps r so that it yields UTF-8 text.
func (d Decoding) NewReader(r io.Reader) io.Reader {
	if d.enc == nil {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	return transform.NewReader(r, d.enc.NewDecoder())
}

// Lookup finds a decoder for a charset name. IANA names are tried first, then
// WHATWG labels. The WHATWG "replacement" decoder is not a usable decoder and
// is reported as unsupported.
func Lookup(name string) (encoding.Encoding, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if alias, ok := aliases[strings.ToLower(name)]; ok {
		name = alias
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, true
	}
	if enc, _ := htmlcharset.Lookup(name); enc != nil && enc != encoding.Replacement {
		return enc, true
	}
	return nil, false
}

// Supported reports whether Lookup can decode name.
func Supported(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Select applies the decoding precedence for subtitle input:
//  1. the forced charset, unless the file is already UTF-8
//  2. the detected charset
//  3. UTF-8
//
// A rule whose charset cannot be decoded is skipped.
func Select(forced, detected string, isUTF8 bool) Decoding {
	if !isUTF8 {
		if enc, ok := Lookup(forced); ok {
			return Decoding{Name: strings.TrimSpace(forced), Source: SourceForced, enc: enc}
		}
	}
	if enc, ok := Lookup(detected); ok {
		return Decoding{Name: strings.TrimSpace(detected), Source: SourceDetected, enc: enc}
	}
	return Decoding{Name: DefaultName, Source: SourceDefault}
}

// IsUTF8 reports whether the leading bytes of a text file look like UTF-8
// (byte-order mark, or valid multi-byte sequences). Pure ASCII reports false.
func IsUTF8(head []byte) bool {
	if len(head) > sniffSize {
		head = head[:sniffSize]
	}
	_, name, _ := htmlcharset.DetermineEncoding(head, "text/plain")
	return name == "utf-8"
}

// FileIsUTF8 runs IsUTF8 on the beginning of the file at path.
func FileIsUTF8(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return IsUTF8(head[:n]), nil
}
