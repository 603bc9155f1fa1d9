package cli

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mgpai22/subseek/internal/config"
	"github.com/mgpai22/subseek/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *logging.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		logger:     logging.Nop(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) initLogger(cmd *cobra.Command, cfg *config.Config) error {
	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if c.verbose != nil && *c.verbose {
		opts.Level = "debug"
	}
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		opts.Output = zapcore.AddSync(w)
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "subseek",
		Short: "Prepare external subtitles for seeking transcodes",
		Long: `Subseek prepares external subtitle files for a transcode that starts
part-way into a media file.

It maps detected subtitle charsets to transcoder codepages and rewrites
SRT and ASS files so their timeline starts at the seek position.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.initLogger(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newCodepageCommand())
	rootCmd.AddCommand(newShiftCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newPrepareCommand(ctx))
	rootCmd.AddCommand(newSweepCommand(ctx))

	return rootCmd
}

func Execute() error {
	rootCmd := newRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}
