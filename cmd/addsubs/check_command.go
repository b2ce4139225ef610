package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"addsubs/internal/deps"
	"addsubs/internal/preflight"
	"addsubs/internal/termui"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [directory]",
		Short: "Check that the mux tool and configured paths are usable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			writeSection(out, "Tools", colorize)
			for _, s := range statuses {
				fmt.Fprintln(out, renderDependency(s, colorize))
			}

			results := preflight.RunAll(cfg, dir)
			failed := len(deps.MissingRequired(statuses))
			if len(results) > 0 {
				writeSection(out, "Paths", colorize)
				for _, r := range results {
					kind := termui.KindOK
					if !r.Passed {
						kind = termui.KindError
						failed++
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}

			if failed > 0 {
				return fmt.Errorf("check: %d problem(s) found", failed)
			}
			return nil
		},
	}
}

func renderDependency(s deps.Status, colorize bool) string {
	label := s.Name
	if s.Command != "" {
		label = fmt.Sprintf("%s (%s)", s.Name, s.Command)
	}
	switch {
	case s.Available:
		detail := s.Path
		if s.Version != "" {
			detail = s.Version
		}
		return renderStatusLine(label, termui.KindOK, detail, colorize)
	case s.Optional:
		return renderStatusLine(label, termui.KindWarn, s.Detail+" (optional)", colorize)
	default:
		return renderStatusLine(label, termui.KindError, s.Detail, colorize)
	}
}

func renderStatusLine(label string, kind termui.Kind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusKindLabel(kind), message)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return termui.Paint(base, kind, colorize)
}

func statusKindLabel(kind termui.Kind) string {
	switch kind {
	case termui.KindOK:
		return "OK"
	case termui.KindWarn:
		return "WARN"
	case termui.KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func writeSection(w io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	fmt.Fprintln(w, termui.Paint(line, termui.KindInfo, colorize))
}
