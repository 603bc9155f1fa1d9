package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subseek/internal/session"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove stale shifted subtitle files from the scratch directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			maxAge := cfg.StaleAfter()
			if cmd.Flags().Changed("older-than") {
				maxAge = olderThan
			}

			scratch := session.NewScratch(cfg.Subtitles.ScratchDir)
			removed, err := scratch.Sweep(maxAge, time.Now())
			if err != nil {
				return err
			}
			ctx.logger.Debugw("Swept scratch directory",
				"dir", scratch.Dir(),
				"max_age", maxAge.String(),
				"removed", removed,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale file(s) from %s\n", removed, scratch.Dir())
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age threshold, overrides subtitles.stale_after_minutes")

	return cmd
}
