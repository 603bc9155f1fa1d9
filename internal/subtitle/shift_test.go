package subtitle

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/mgpai22/subseek/internal/charset"
)

const srtFixture = `1
00:00:01,000 --> 00:00:03,000
Early line

2
00:00:10,000 --> 00:00:12,500
Late line
Second line
`

const assFixture = `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Too early
Dialogue: 0,0:00:05.00,0:00:08.00,Default,,0,0,0,,Exactly at offset
Dialogue: 0,0:01:02.35,0:01:04.50,Italic,,0,0,0,,{\pos(100,200)}Hello, world!
Comment: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,note
`

func writeFixture(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return string(out)
}

func TestShiftSRTEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	scratch := filepath.Join(tmpDir, "scratch")
	input := writeFixture(t, tmpDir, "movie.srt", []byte(srtFixture))

	result, err := Shift(Request{
		Path:       input,
		Format:     FormatSRT,
		Offset:     5,
		ScratchDir: scratch,
	})
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	if !result.Produced() {
		t.Fatal("expected an output file")
	}
	if filepath.Dir(result.Path) != scratch {
		t.Errorf("expected output in %s, got %s", scratch, result.Path)
	}

	want := "1\n00:00:05,000 --> 00:00:07,500\nLate line\nSecond line\n\n"
	if got := readOutput(t, result.Path); got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
	if result.Kept != 1 || result.Dropped != 1 || result.Malformed != 0 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}

	if got := readOutput(t, input); got != srtFixture {
		t.Error("input file was modified")
	}
}

func TestShiftSRTRenumbersKeptEntries(t *testing.T) {
	input := `1
00:00:01,000 --> 00:00:02,000
dropped one

2
00:00:20,000 --> 00:00:22,000
kept one

3
00:00:03,000 --> 00:00:04,000
dropped two
still dropped

4
00:00:30,000 --> 00:00:31,000 X1:100 X2:200 Y1:10 Y2:20
kept two
`
	var out bytes.Buffer
	stats, err := ShiftSRT(strings.NewReader(input), &out, 10*time.Second)
	if err != nil {
		t.Fatalf("ShiftSRT failed: %v", err)
	}

	want := "1\n00:00:10,000 --> 00:00:12,000\nkept one\n\n" +
		"2\n00:00:20,000 --> 00:00:21,000\nkept two\n\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	if strings.Contains(out.String(), "dropped") {
		t.Error("text of dropped entries leaked into output")
	}
	if stats.Kept != 2 || stats.Dropped != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestShiftSRTCRLFAndBOM(t *testing.T) {
	input := "\ufeff1\r\n00:00:06,000 --> 00:00:07,000\r\nline\r\n\r\n"
	var out bytes.Buffer
	if _, err := ShiftSRT(strings.NewReader(input), &out, 5*time.Second); err != nil {
		t.Fatalf("ShiftSRT failed: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:02,000\nline\n\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestShiftSRTMalformedTimingSkipped(t *testing.T) {
	input := `1
00:00:xx,000 --> 00:00:12,000
broken cue

2
00:00:20,000 -->
no end time

3
00:00:30,000 --> 00:00:31,000
fine
`
	var out bytes.Buffer
	stats, err := ShiftSRT(strings.NewReader(input), &out, 0)
	if err != nil {
		t.Fatalf("ShiftSRT failed: %v", err)
	}
	want := "1\n00:00:30,000 --> 00:00:31,000\nfine\n\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	if stats.Malformed != 2 || stats.Kept != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestShiftSRTOutOfRangeTimingSkipped(t *testing.T) {
	input := `1
9999999:00:00,000 --> 9999999:00:01,000
far future

2
00:00:30,000 --> 00:00:31,000
fine
`
	var out bytes.Buffer
	stats, err := ShiftSRT(strings.NewReader(input), &out, 10*time.Second)
	if err != nil {
		t.Fatalf("ShiftSRT failed: %v", err)
	}
	want := "1\n00:00:20,000 --> 00:00:21,000\nfine\n\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	if stats.Malformed != 1 || stats.Kept != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestShiftASS(t *testing.T) {
	var out bytes.Buffer
	stats, err := ShiftASS(strings.NewReader(assFixture), &out, 5*time.Second)
	if err != nil {
		t.Fatalf("ShiftASS failed: %v", err)
	}

	want := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:00.00,0:00:03.00,Default,,0,0,0,,Exactly at offset
Dialogue: 0,0:00:57.35,0:00:59.50,Italic,,0,0,0,,{\pos(100,200)}Hello, world!
Comment: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,note
`
	if out.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
	if strings.Contains(out.String(), "Too early") {
		t.Error("entry before offset was not dropped")
	}
	if stats.Kept != 2 || stats.Dropped != 1 || stats.Malformed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestShiftASSMalformedDialogueSkipped(t *testing.T) {
	input := "[Events]\n" +
		"Dialogue: 0,bogus,0:00:02.00,Default,,0,0,0,,bad start\n" +
		"Dialogue: broken\n" +
		"Dialogue: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,good\n"

	var out bytes.Buffer
	stats, err := ShiftASS(strings.NewReader(input), &out, time.Second)
	if err != nil {
		t.Fatalf("ShiftASS failed: %v", err)
	}
	want := "[Events]\nDialogue: 0,0:00:02.00,0:00:03.00,Default,,0,0,0,,good\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	if stats.Malformed != 2 || stats.Kept != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestShiftZeroOffsetKeepsEverything(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		content string
	}{
		{"srt", FormatSRT, srtFixture},
		{"ass", FormatASS, assFixture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			input := writeFixture(t, tmpDir, "movie."+tt.name, []byte(tt.content))

			result, err := Shift(Request{
				Path:       input,
				Format:     tt.format,
				ScratchDir: tmpDir,
			})
			if err != nil {
				t.Fatalf("Shift failed: %v", err)
			}
			if result.Dropped != 0 || result.Malformed != 0 {
				t.Errorf("expected nothing dropped, got %+v", result.Stats)
			}

			before, err := Read(strings.NewReader(tt.content), tt.format)
			if err != nil {
				t.Fatalf("failed to parse input: %v", err)
			}
			after, err := Open(result.Path, tt.format, "")
			if err != nil {
				t.Fatalf("failed to parse output: %v", err)
			}

			if len(after.Entries) != len(before.Entries) {
				t.Fatalf(
					"expected %d entries, got %d",
					len(before.Entries),
					len(after.Entries),
				)
			}
			for i := range before.Entries {
				b, a := before.Entries[i], after.Entries[i]
				if a.StartTime != b.StartTime || a.EndTime != b.EndTime {
					t.Errorf(
						"entry %d: expected %v-%v, got %v-%v",
						i,
						b.StartTime,
						b.EndTime,
						a.StartTime,
						a.EndTime,
					)
				}
				if a.Text != b.Text {
					t.Errorf("entry %d: expected text %q, got %q", i, b.Text, a.Text)
				}
			}
		})
	}
}

func TestShiftUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	scratch := filepath.Join(tmpDir, "scratch")
	input := writeFixture(t, tmpDir, "movie.vtt", []byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhi\n"))

	result, err := Shift(Request{
		Path:       input,
		Format:     FormatFromExtension(input),
		Offset:     1,
		ScratchDir: scratch,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Produced() {
		t.Errorf("expected no output, got %s", result.Path)
	}
	if _, err := os.Stat(scratch); !errors.Is(err, fs.ErrNotExist) {
		t.Error("scratch directory should not have been touched")
	}
}

func TestShiftDecodesToUTF8(t *testing.T) {
	source := "1\n00:00:08,000 --> 00:00:09,000\nПривет, мир\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(source)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	tests := []struct {
		name       string
		forced     string
		detected   string
		wantSource charset.Source
	}{
		{"forced", "windows-1251", "", charset.SourceForced},
		{"detected", "", "Windows-1251", charset.SourceDetected},
		{"unsupported forced", "no-such-charset", "Windows-1251", charset.SourceDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			input := writeFixture(t, tmpDir, "russian.srt", []byte(encoded))

			result, err := Shift(Request{
				Path:       input,
				Format:     FormatSRT,
				Forced:     tt.forced,
				Detected:   tt.detected,
				Offset:     3,
				ScratchDir: tmpDir,
			})
			if err != nil {
				t.Fatalf("Shift failed: %v", err)
			}
			if result.Source != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, result.Source)
			}

			want := "1\n00:00:05,000 --> 00:00:06,000\nПривет, мир\n\n"
			if got := readOutput(t, result.Path); got != want {
				t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
			}
		})
	}
}

func TestShiftMissingInput(t *testing.T) {
	tmpDir := t.TempDir()
	scratch := filepath.Join(tmpDir, "scratch")

	_, err := Shift(Request{
		Path:       filepath.Join(tmpDir, "missing.srt"),
		Format:     FormatSRT,
		Offset:     1,
		ScratchDir: scratch,
	})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := os.Stat(scratch); !errors.Is(err, fs.ErrNotExist) {
		t.Error("no output should be created when the input cannot be opened")
	}
}

func TestShiftInvalidArguments(t *testing.T) {
	if _, err := Shift(Request{Format: FormatSRT}); !errors.Is(err, ErrNoSubtitle) {
		t.Errorf("expected ErrNoSubtitle, got %v", err)
	}

	tmpDir := t.TempDir()
	input := writeFixture(t, tmpDir, "movie.srt", []byte(srtFixture))
	scratch := filepath.Join(tmpDir, "scratch")

	tests := []struct {
		name   string
		offset float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
		{"infinite", math.Inf(1)},
		{"beyond duration range", 1e10},
		{"just past bound", MaxOffsetSeconds * 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Shift(Request{
				Path:       input,
				Format:     FormatSRT,
				Offset:     tt.offset,
				ScratchDir: scratch,
			})
			if !errors.Is(err, ErrInvalidOffset) {
				t.Fatalf("expected ErrInvalidOffset, got %v", err)
			}
			if result.Path != "" {
				t.Errorf("expected no output path, got %s", result.Path)
			}
		})
	}
	if _, err := os.Stat(scratch); !errors.Is(err, fs.ErrNotExist) {
		t.Error("no output should be created for an invalid offset")
	}
}

func TestOutputName(t *testing.T) {
	name := OutputName("/media/Some Movie (2010).en.srt")
	if !strings.HasPrefix(name, "Some Movie (2010).en_") {
		t.Errorf("unexpected prefix: %s", name)
	}
	if !strings.HasSuffix(name, OutputSuffix) {
		t.Errorf("unexpected suffix: %s", name)
	}
	if name == OutputName("/media/Some Movie (2010).en.srt") {
		t.Error("expected unique names for repeated calls")
	}
	if !IsOutputName(name) {
		t.Errorf("expected %s to be recognised as an output name", name)
	}
}

func TestIsOutputName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"movie_3f2b8c1e-6d4a-4b7e-9a1c-2e5f7d8b9c0a.tmp", true},
		{"my_movie.en_3f2b8c1e-6d4a-4b7e-9a1c-2e5f7d8b9c0a.tmp", true},
		{"_3f2b8c1e-6d4a-4b7e-9a1c-2e5f7d8b9c0a.tmp", true},
		{"movie_3f2b8c1e-6d4a-4b7e-9a1c-2e5f7d8b9c0a.srt", false},
		{"3f2b8c1e-6d4a-4b7e-9a1c-2e5f7d8b9c0a.tmp", false},
		{"movie_1.tmp", false},
		{"someone-elses-download.tmp", false},
		{"movie_not-a-uuid-at-all.tmp", false},
		{".subseek.lock", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOutputName(tt.name); got != tt.want {
				t.Errorf("IsOutputName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
