package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subseek/internal/charset"
)

func newCodepageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codepage [charset...]",
		Short: "Show transcoder codepages for detected charsets",
		Long: `Show the transcoder subtitle codepage for detected charset names.

Without arguments the whole mapping is listed. Lookups are exact and
case-sensitive, matching the names charset detectors report.

Examples:
  subseek codepage
  subseek codepage KOI8-R Shift_JIS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			if len(args) == 0 {
				for _, cp := range charset.Codepages() {
					rows = append(rows, []string{cp.Charset, cp.Token, decodable(cp.Charset)})
				}
			} else {
				for _, name := range args {
					token, ok := charset.Resolve(name)
					if !ok {
						token = "-"
					}
					rows = append(rows, []string{name, token, decodable(name)})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Charset", "Codepage", "Decodable"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func decodable(name string) string {
	if charset.Supported(name) {
		return "yes"
	}
	return "no"
}
