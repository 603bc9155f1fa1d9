package session

import (
	"errors"
	"strings"

	"github.com/mgpai22/subseek/internal/charset"
	"github.com/mgpai22/subseek/internal/logging"
	"github.com/mgpai22/subseek/internal/subtitle"
)

// ErrMissingSubtitle is returned when a session has no external subtitle file.
var ErrMissingSubtitle = errors.New("external subtitle track is required")

// Track is an external subtitle file attached to a media item.
type Track struct {
	Path    string
	Format  subtitle.Format // FormatUnknown means derive from the extension
	Charset string          // auto-detected charset, may be blank
	IsUTF8  bool
}

// Plan is what the transcoder needs to know about the subtitle for a session.
type Plan struct {
	Codepage     string // transcoder codepage token
	HasCodepage  bool
	SubtitlePath string // shifted file, or the original when not shifted
	Shifted      bool
	Offset       float64
	Charset      string // charset of the file at SubtitlePath, blank if unknown
	Stats        subtitle.Stats
}

// SubtitleCodepage returns the codepage to hand the transcoder for the file
// at SubtitlePath. A shifted file is always UTF-8.
func (p *Plan) SubtitleCodepage() (string, bool) {
	if p.Shifted {
		return "utf-8", true
	}
	return p.Codepage, p.HasCodepage
}

// ResolveCodepage maps the track's detected charset to a transcoder codepage.
// ok is false when the charset is blank or unknown.
func ResolveCodepage(track *Track) (token string, ok bool, err error) {
	if track == nil {
		return "", false, ErrMissingSubtitle
	}
	token, ok = charset.Resolve(track.Charset)
	return token, ok, nil
}

// Preparer turns a subtitle track and a seek offset into a Plan.
type Preparer struct {
	forced  string
	scratch *Scratch
	logger  *logging.Logger
}

// NewPreparer builds a Preparer. forced is the process-wide codepage
// override; blank means none.
func NewPreparer(forced string, scratch *Scratch, logger *logging.Logger) *Preparer {
	if logger == nil {
		logger = logging.Nop()
	}
	if scratch == nil {
		scratch = NewScratch("")
	}
	return &Preparer{
		forced:  strings.TrimSpace(forced),
		scratch: scratch,
		logger:  logger,
	}
}

// Prepare resolves the codepage and, for a positive offset, writes a shifted
// copy of the subtitle file. A failed shift is logged and the plan falls back
// to the original file.
func (p *Preparer) Prepare(track *Track, offset float64) (*Plan, error) {
	if track == nil || strings.TrimSpace(track.Path) == "" {
		return nil, ErrMissingSubtitle
	}

	plan := &Plan{
		SubtitlePath: track.Path,
		Offset:       offset,
		Charset:      track.Charset,
	}
	var err error
	plan.Codepage, plan.HasCodepage, err = ResolveCodepage(track)
	if err != nil {
		return nil, err
	}
	if track.IsUTF8 {
		plan.Charset = charset.DefaultName
	}

	if offset == 0 {
		p.logger.Debugw("No seek offset, using original subtitle file",
			"path", track.Path,
			"codepage", plan.Codepage,
		)
		return plan, nil
	}

	format := track.Format
	if format == subtitle.FormatUnknown {
		format = subtitle.FormatFromExtension(track.Path)
	}

	result, err := subtitle.Shift(subtitle.Request{
		Path:       track.Path,
		Format:     format,
		Detected:   track.Charset,
		Forced:     p.forced,
		IsUTF8:     track.IsUTF8,
		Offset:     offset,
		ScratchDir: p.scratch.Dir(),
	})
	if result.Path != "" {
		p.scratch.Track(result.Path)
	}
	if errors.Is(err, subtitle.ErrInvalidOffset) {
		return nil, err
	}
	if err != nil {
		p.logger.Warnw("Failed to shift subtitle file, using original",
			"path", track.Path,
			"offset", offset,
			"error", err,
		)
		return plan, nil
	}
	if !result.Produced() {
		p.logger.Infow("Subtitle format cannot be shifted, using original",
			"path", track.Path,
			"format", format.String(),
		)
		return plan, nil
	}

	plan.SubtitlePath = result.Path
	plan.Shifted = true
	plan.Charset = charset.DefaultName
	plan.Stats = result.Stats

	p.logger.Infow("Shifted subtitle file",
		"path", track.Path,
		"output", result.Path,
		"offset", offset,
		"charset", result.Charset,
		"charset_source", string(result.Source),
		"kept", result.Kept,
		"dropped", result.Dropped,
		"malformed", result.Malformed,
	)
	return plan, nil
}
