package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"addsubs/internal/services"
)

func newRootCommand(stdin io.Reader) *cobra.Command {
	flags := &batchFlags{}
	ctx := newCommandContext(flags, stdin)

	rootCmd := &cobra.Command{
		Use:   "addsubs <directory> <primaryToken> <secondaryToken> <languageCode>",
		Short: "Mux subtitle files into matching media files",
		Long: `addsubs pairs the files in <directory> whose names contain <primaryToken>
with those whose names contain <secondaryToken>, sorted by name, and runs the
mux tool once per pair to embed the subtitle track tagged with <languageCode>.
Muxed files are written to <directory>/output.`,
		Example:       "  addsubs ~/shows/season1 mkv srt jpn",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 4 {
				fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
				return services.Wrap(services.ErrUsage, "cli", "parse arguments",
					fmt.Sprintf("expected 4 arguments, got %d", len(args)), nil)
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return services.Wrap(services.ErrUsage, "cli", "parse flags", "", err)
	})

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	persistent.StringVar(&flags.logFormat, "log-format", "", "Log format (console, json)")

	local := rootCmd.Flags()
	local.IntVarP(&flags.jobs, "jobs", "j", 0, "Jobs to run at once (default: config or CPU count)")
	local.BoolVarP(&flags.yes, "yes", "y", false, "Accept the pairs without asking")
	local.BoolVar(&flags.sync, "sync", false, "Sync subtitle timing with the sync tool before muxing")
	local.StringVar(&flags.tool, "tool", "", "Mux tool to run (default: mkvmerge)")
	local.BoolVar(&flags.noHistory, "no-history", false, "Do not record this batch in the history database")

	rootCmd.AddCommand(newLanguagesCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
