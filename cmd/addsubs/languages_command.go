package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"addsubs/internal/termui"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the language codes addsubs accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := ctx.languageTable()
			if err != nil {
				return err
			}
			codes := table.Codes()
			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				name, _ := table.Resolve(code)
				rows = append(rows, []string{code, name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), termui.RenderTable([]string{"Code", "Track name"}, rows, nil))
			return nil
		},
	}
}
