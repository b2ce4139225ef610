package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"addsubs/internal/history"
	"addsubs/internal/services"
	"addsubs/internal/termui"
)

var errNoHistory = errors.New("history is disabled in the configuration")

type historyBatchJSON struct {
	ID           string           `json:"id"`
	Directory    string           `json:"directory"`
	LanguageCode string           `json:"language_code"`
	LanguageName string           `json:"language_name"`
	Tool         string           `json:"tool"`
	Status       string           `json:"status"`
	Total        int              `json:"total"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	Pending      int              `json:"pending"`
	Error        string           `json:"error,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	Jobs         []historyJobJSON `json:"jobs,omitempty"`
}

type historyJobJSON struct {
	Index      int    `json:"index"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	State      string `json:"state"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "Show recently finished batches, or the jobs of one batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return services.Wrap(services.ErrConfiguration, "history", "open", "", errNoHistory)
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				b, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, toHistoryJSON(b))
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderHistoryBatch(b))
				return nil
			}

			batches, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				out := make([]historyBatchJSON, 0, len(batches))
				for _, b := range batches {
					out = append(out, toHistoryJSON(b))
				}
				return writeJSON(cmd, out)
			}
			if len(batches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryList(batches))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of batches to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func renderHistoryList(batches []history.Batch) string {
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			shortID(b.ID),
			b.FinishedAt.Local().Format("2006-01-02 15:04"),
			b.Directory,
			b.LanguageCode,
			fmt.Sprintf("%d/%d", b.Succeeded, b.Total),
			b.Status,
		})
	}
	return termui.RenderTable(
		[]string{"Batch", "Finished", "Directory", "Lang", "OK", "Status"},
		rows,
		[]termui.Alignment{termui.AlignLeft, termui.AlignLeft, termui.AlignLeft, termui.AlignLeft, termui.AlignRight},
	)
}

func renderHistoryBatch(b history.Batch) string {
	header := fmt.Sprintf("Batch %s\nDirectory: %s\nLanguage:  %s (%s)\nTool:      %s\nStatus:    %s\nFinished:  %s",
		b.ID, b.Directory, b.LanguageName, b.LanguageCode, b.Tool, b.Status, b.FinishedAt.Local().Format(time.DateTime))
	if b.ErrorMessage != "" {
		header += "\nError:     " + b.ErrorMessage
	}
	rows := make([][]string, 0, len(b.Jobs))
	for _, j := range b.Jobs {
		rows = append(rows, []string{
			strconv.Itoa(j.Index + 1),
			j.Primary,
			j.Secondary,
			j.State,
			strconv.Itoa(j.ExitCode),
			j.ErrorMessage,
		})
	}
	return header + "\n" + termui.RenderTable(
		[]string{"#", "Media", "Subtitle", "State", "Exit", "Error"},
		rows,
		[]termui.Alignment{termui.AlignRight, termui.AlignLeft, termui.AlignLeft, termui.AlignLeft, termui.AlignRight},
	)
}

func toHistoryJSON(b history.Batch) historyBatchJSON {
	out := historyBatchJSON{
		ID:           b.ID,
		Directory:    b.Directory,
		LanguageCode: b.LanguageCode,
		LanguageName: b.LanguageName,
		Tool:         b.Tool,
		Status:       b.Status,
		Total:        b.Total,
		Succeeded:    b.Succeeded,
		Failed:       b.Failed,
		Pending:      b.Pending,
		Error:        b.ErrorMessage,
		StartedAt:    b.StartedAt,
		FinishedAt:   b.FinishedAt,
	}
	for _, j := range b.Jobs {
		out.Jobs = append(out.Jobs, historyJobJSON{
			Index:      j.Index,
			Primary:    j.Primary,
			Secondary:  j.Secondary,
			State:      j.State,
			ExitCode:   j.ExitCode,
			Error:      j.ErrorMessage,
			DurationMS: j.Duration.Milliseconds(),
		})
	}
	return out
}
