package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/propscan/propscan-cli/internal/estimator"
)

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Short: "Print the configured price-bracket sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		brackets, err := estimator.GenerateBrackets(cfg.Brackets.Min, cfg.Brackets.Max, cfg.Brackets.Step)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "From", "To"})
		for i, b := range brackets {
			t.AppendRow(table.Row{i + 1, fmt.Sprintf("$%d", b.Lo), fmt.Sprintf("$%d", b.Hi)})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bracketsCmd)
}
