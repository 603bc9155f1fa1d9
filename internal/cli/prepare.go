package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subseek/internal/charset"
	"github.com/mgpai22/subseek/internal/media"
	"github.com/mgpai22/subseek/internal/session"
	"github.com/mgpai22/subseek/internal/subtitle"
	"github.com/mgpai22/subseek/internal/transcode"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var (
		subPath    string
		offset     float64
		detected   string
		output     string
		run        bool
		skipProbe  bool
		forcedFlag string
		subFormat  string
	)

	cmd := &cobra.Command{
		Use:   "prepare [media_file]",
		Short: "Plan the subtitle options for a seeking transcode",
		Long: `Prepare an external subtitle file for a transcode of a media file that
starts at the seek offset, then print the transcoder options.

With --run the ffmpeg command is executed and the shifted subtitle file is
removed afterwards.

Examples:
  subseek prepare movie.mkv --sub movie.srt --offset 600
  subseek prepare movie.mkv --sub movie.ass -s 95.5 --charset KOI8-R
  subseek prepare movie.mkv --sub movie.srt -s 600 -o clip.mp4 --run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mediaPath := args[0]
			logger := ctx.logger

			if strings.TrimSpace(subPath) == "" {
				return session.ErrMissingSubtitle
			}
			forced := cfg.Subtitles.ForcedCodepage
			if cmd.Flags().Changed("forced") {
				forced = forcedFlag
			}

			locator := transcode.NewLocator(cfg.Transcoder)

			if offset > 0 && !skipProbe {
				if ffprobePath, err := locator.FFprobePath(); err != nil {
					logger.Debugw("Skipping media probe", "error", err)
				} else {
					info, err := media.Probe(cmd.Context(), ffprobePath, mediaPath)
					if err != nil {
						logger.Warnw("Failed to probe media, seek offset not checked",
							"media", mediaPath,
							"error", err,
						)
					} else if err := info.CheckOffset(offset); err != nil {
						return err
					}
				}
			}

			isUTF8, err := charset.FileIsUTF8(subPath)
			if err != nil {
				logger.Debugw("Could not sniff subtitle encoding", "path", subPath, "error", err)
			}

			scratch := session.NewScratch(cfg.Subtitles.ScratchDir)
			preparer := session.NewPreparer(forced, scratch, logger)
			plan, err := preparer.Prepare(&session.Track{
				Path:    subPath,
				Format:  subtitle.ParseFormat(subFormat),
				Charset: detected,
				IsUTF8:  isUTF8,
			}, offset)
			if err != nil {
				return err
			}

			if output == "" {
				base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
				output = filepath.Join(filepath.Dir(mediaPath), base+"_subbed.mp4")
			}
			stream, err := transcode.FFmpegStream(mediaPath, output, plan)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subtitle: %s\n", plan.SubtitlePath)
			fmt.Fprintf(out, "Shifted:  %t\n", plan.Shifted)
			if cp, ok := plan.SubtitleCodepage(); ok {
				fmt.Fprintf(out, "Codepage: %s\n", cp)
			} else {
				fmt.Fprintln(out, "Codepage: -")
			}
			if plan.Shifted {
				fmt.Fprintf(out, "Entries:  %d kept, %d dropped, %d malformed\n",
					plan.Stats.Kept, plan.Stats.Dropped, plan.Stats.Malformed)
			}
			mencoder, err := locator.MencoderPath()
			if err != nil {
				mencoder = "mencoder"
			}
			fmt.Fprintf(out, "mencoder: %s %s\n", mencoder, strings.Join(transcode.MencoderArgs(plan), " "))
			fmt.Fprintf(out, "ffmpeg:   %s\n", strings.Join(stream.GetArgs(), " "))

			if !run {
				return nil
			}

			defer func() {
				if err := scratch.Cleanup(); err != nil {
					logger.Warnw("Failed to remove shifted subtitle files", "error", err)
				}
			}()

			ffmpegPath, err := locator.FFmpegPath()
			if err != nil {
				return err
			}
			logger.Infow("Running ffmpeg",
				"media", mediaPath,
				"output", output,
				"offset", offset,
			)
			if err := transcode.Run(cmd.Context(), ffmpegPath, stream); err != nil {
				return err
			}
			logger.Infow("Transcode complete", "output", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&subPath, "sub", "", "External subtitle file (required)")
	cmd.Flags().Float64VarP(&offset, "offset", "s", 0, "Seek offset in seconds")
	cmd.Flags().StringVar(&detected, "charset", "", "Detected charset of the subtitle file")
	cmd.Flags().StringVar(&forcedFlag, "forced", "", "Forced charset, overrides subtitles.forced_codepage")
	cmd.Flags().StringVarP(&subFormat, "format", "f", "", "Subtitle format (srt, ass); default from extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Transcode output path for --run")
	cmd.Flags().BoolVar(&run, "run", false, "Run ffmpeg after preparing the subtitle")
	cmd.Flags().BoolVar(&skipProbe, "no-probe", false, "Do not check the seek offset against the media duration")

	return cmd
}
