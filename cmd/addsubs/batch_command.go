package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"addsubs/internal/batch"
	"addsubs/internal/confirm"
	"addsubs/internal/history"
	"addsubs/internal/mux"
)

func runBatch(cmd *cobra.Command, ctx *commandContext, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, logFile, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	table, err := ctx.languageTable()
	if err != nil {
		return err
	}

	var confirmer confirm.Confirmer = confirm.NewPrompt(ctx.stdin, cmd.OutOrStdout())
	if ctx.flags.yes {
		confirmer = confirm.AutoAccept{}
	}

	dispatcher := mux.NewDispatcher(
		mux.Builder{
			Tool:      cfg.Mux.Tool,
			Sync:      cfg.Sync.Enabled,
			SyncTool:  cfg.Sync.Tool,
			MaxLength: cfg.Mux.MaxCommandLength,
		},
		mux.WithConcurrency(cfg.Workers()),
		mux.WithLogger(logger),
	)

	opts := []batch.Option{
		batch.WithLogger(logger),
		batch.WithOutputDirName(cfg.Mux.OutputDirName),
		batch.WithTool(cfg.Mux.Tool),
	}
	if logFile != nil {
		defer logFile.Close()
		opts = append(opts, batch.WithCommitHook(logFile.Open))
	}
	if cfg.History.Enabled {
		recorder := history.NewLazyRecorder(cfg.History.Path)
		defer recorder.Close()
		opts = append(opts, batch.WithRecorder(recorder))
	}

	runner := batch.NewRunner(table, confirmer, dispatcher, opts...)
	report, err := runner.Run(cmd.Context(), batch.Request{
		Dir:            args[0],
		PrimaryToken:   args[1],
		SecondaryToken: args[2],
		LanguageCode:   args[3],
	})
	if report.BatchID != "" {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report, shouldColorize(cmd.OutOrStdout())))
	}
	return err
}
