package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"addsubs/internal/batch"
	"addsubs/internal/mux"
	"addsubs/internal/termui"
)

func shouldColorize(w io.Writer) bool {
	return termui.ShouldColorize(w)
}

func renderSummary(report batch.Report, colorize bool) string {
	rows := make([][]string, 0, len(report.Result.Results))
	for _, r := range report.Result.Results {
		exit := ""
		if r.State == mux.StateFailed {
			exit = strconv.Itoa(r.ExitCode)
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Index + 1),
			r.Pair.Primary,
			r.Pair.Secondary,
			r.State.String(),
			exit,
			formatDuration(r.Duration),
		})
	}

	var b strings.Builder
	b.WriteString(termui.RenderTable(
		[]string{"#", "Media", "Subtitle", "Status", "Exit", "Time"},
		rows,
		[]termui.Alignment{termui.AlignRight, termui.AlignLeft, termui.AlignLeft, termui.AlignLeft, termui.AlignRight, termui.AlignRight},
	))
	b.WriteByte('\n')

	for _, f := range report.Result.Failures() {
		if f.State == mux.StatePending {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", termui.Paint(fmt.Sprintf("%s failed: %v", f.Pair.Primary, f.Err), termui.KindError, colorize))
		for _, line := range f.Output {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	succeeded, failed, pending := report.Result.Counts()
	total := len(report.Result.Results)
	line := fmt.Sprintf("%d/%d muxed into %s (%s, batch %s)", succeeded, total, report.OutputDir, report.LanguageName, shortID(report.BatchID))
	kind := termui.KindOK
	if failed > 0 || pending > 0 {
		kind = termui.KindError
		line += fmt.Sprintf("; %d failed", failed)
		if pending > 0 {
			line += fmt.Sprintf(", %d not started", pending)
		}
	}
	b.WriteByte('\n')
	b.WriteString(termui.Paint(line, kind, colorize))
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
