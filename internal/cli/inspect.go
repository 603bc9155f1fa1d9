package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subseek/internal/charset"
	"github.com/mgpai22/subseek/internal/subtitle"
)

const inspectTextWidth = 48

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		format      string
		charsetName string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "inspect [subtitle_file]",
		Short: "List the cues of a subtitle file",
		Long: `Parse an SRT or ASS subtitle file and list its cues.

Useful for checking the output of "subseek shift".

Examples:
  subseek inspect movie.srt
  subseek inspect movie.ass --charset Shift_JIS --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if charsetName == "" {
				isUTF8, err := charset.FileIsUTF8(path)
				if err != nil {
					return err
				}
				if !isUTF8 {
					ctx.logger.Warnw("Subtitle file is not UTF-8 and no charset was given",
						"path", path,
					)
				}
			}

			sub, err := subtitle.Open(path, subtitle.ParseFormat(format), charsetName)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(sub.Entries))
			for i, entry := range sub.Entries {
				if limit > 0 && i >= limit {
					break
				}
				rows = append(rows, []string{
					strconv.Itoa(entry.Index),
					subtitle.FormatSRTTime(entry.StartTime),
					subtitle.FormatSRTTime(entry.EndTime),
					summarize(entry.Text),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d cues (%s)\n", path, len(sub.Entries), sub.Format)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Subtitle format (srt, ass); default from extension")
	cmd.Flags().StringVar(&charsetName, "charset", "", "Charset of the subtitle file; default UTF-8")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many cues (0 for all)")

	return cmd
}

func summarize(text string) string {
	text = strings.ReplaceAll(text, "\n", " / ")
	runes := []rune(text)
	if len(runes) > inspectTextWidth {
		return string(runes[:inspectTextWidth-1]) + "…"
	}
	return text
}
