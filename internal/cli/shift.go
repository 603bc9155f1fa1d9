package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subseek/internal/charset"
	"github.com/mgpai22/subseek/internal/subtitle"
)

func newShiftCommand(ctx *commandContext) *cobra.Command {
	var (
		offset    float64
		format    string
		detected  string
		forced    string
		assumeUTF bool
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "shift [subtitle_file]",
		Short: "Rewrite a subtitle file to start at a seek offset",
		Long: `Rewrite an SRT or ASS subtitle file so its timeline starts at the seek
offset. Entries that start before the offset are dropped, the rest are moved
back by the offset. The result is written as UTF-8 to the scratch directory
and its path is printed.

Examples:
  subseek shift movie.srt --offset 125.5
  subseek shift movie.ass -s 60 --charset KOI8-R
  subseek shift movie.srt -s 30 --forced windows-1251 --out-dir /tmp/subs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := args[0]

			subFormat := subtitle.FormatFromExtension(path)
			if strings.TrimSpace(format) != "" {
				subFormat = subtitle.ParseFormat(format)
			}
			if !cmd.Flags().Changed("forced") {
				forced = cfg.Subtitles.ForcedCodepage
			}
			if outDir == "" {
				outDir = cfg.Subtitles.ScratchDir
			}

			isUTF8 := assumeUTF
			if !isUTF8 {
				isUTF8, err = charset.FileIsUTF8(path)
				if err != nil {
					return err
				}
			}

			result, err := subtitle.Shift(subtitle.Request{
				Path:       path,
				Format:     subFormat,
				Detected:   detected,
				Forced:     forced,
				IsUTF8:     isUTF8,
				Offset:     offset,
				ScratchDir: outDir,
			})
			if err != nil {
				return fmt.Errorf("shift failed: %w", err)
			}
			if !result.Produced() {
				ctx.logger.Warnw("Subtitle format cannot be shifted",
					"path", path,
					"format", subFormat.String(),
				)
				return nil
			}

			ctx.logger.Infow("Shifted subtitle file",
				"path", path,
				"output", result.Path,
				"charset", result.Charset,
				"charset_source", string(result.Source),
				"kept", result.Kept,
				"dropped", result.Dropped,
				"malformed", result.Malformed,
			)
			fmt.Fprintln(cmd.OutOrStdout(), result.Path)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&offset, "offset", "s", 0, "Seek offset in seconds")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Subtitle format (srt, ass); default from extension")
	cmd.Flags().StringVar(&detected, "charset", "", "Detected charset of the subtitle file")
	cmd.Flags().StringVar(&forced, "forced", "", "Forced charset, overrides subtitles.forced_codepage")
	cmd.Flags().BoolVar(&assumeUTF, "utf8", false, "Treat the file as UTF-8 without sniffing")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Output directory, overrides subtitles.scratch_dir")

	return cmd
}
