package charset

import (
	"sort"
	"strings"
)

// detected charset name -> value for the transcoder's subtitle codepage option
// (mencoder -subcp). Never written after init.
var subcpByCharset = map[string]string{
	// Cyrillic / Russian
	"IBM855":       "enca:ru:cp1251",
	"ISO-8859-5":   "enca:ru:cp1251",
	"KOI8-R":       "enca:ru:cp1251",
	"MacCyrillic":  "enca:ru:cp1251",
	"Windows-1251": "enca:ru:cp1251",
	"IBM866":       "enca:ru:cp1251",
	// Greek
	"Windows-1253": "cp1253",
	"ISO-8859-7":   "ISO-8859-7",
	// Western Europe
	"Windows-1252": "cp1252",
	// Hebrew
	"Windows-1255": "cp1255",
	"ISO-8859-8":   "ISO-8859-8",
	// Chinese
	"ISO-2022-CN": "ISO-2022-CN",
	"Big5":        "enca:zh:big5",
	"GB18030":     "enca:zh:big5",
	"EUC-TW":      "enca:zh:big5",
	"HZ-GB-2312":  "enca:zh:big5",
	// Korean
	"ISO-2022-KR": "cp949",
	"EUC-KR":      "euc-kr",
	// Japanese
	"ISO-2022-JP": "ISO-2022-JP",
	"EUC-JP":      "euc-jp",
	"Shift_JIS":   "shift-jis",
}

// Codepage pairs a detected charset with its transcoder token.
type Codepage struct {
	Charset string
	Token   string
}

// Resolve returns the transcoder codepage token for a detected charset.
// ok is false when the charset is blank or has no known token; callers should
// omit the codepage option in that case.
func Resolve(detected string) (token string, ok bool) {
	if strings.TrimSpace(detected) == "" {
		return "", false
	}
	token, ok = subcpByCharset[detected]
	return token, ok
}

// Codepages lists the full table sorted by charset name.
func Codepages() []Codepage {
	out := make([]Codepage, 0, len(subcpByCharset))
	for cs, token := range subcpByCharset {
		out = append(out, Codepage{Charset: cs, Token: token})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Charset < out[j].Charset
	})
	return out
}
