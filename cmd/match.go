package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/propscan/propscan-cli/internal/address"
)

var matchJSON bool

var matchCmd = &cobra.Command{
	Use:   "match <address>",
	Short: "Resolve a single address against the valuation roll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		querier, err := initQuerier(nil)
		if err != nil {
			return err
		}
		resolver := initResolver(querier)
		tables := address.DefaultTables()

		parsed := address.Parse(args[0])
		if parsed.Number == "" || parsed.Street == "" {
			fmt.Fprintf(os.Stderr, "Could not parse a street number and name from %q.\n", args[0])
			return nil
		}

		match, err := resolver.Resolve(ctx, parsed.Number, parsed.Street, tables.GuessTAs(parsed.Suburb))
		if err != nil {
			return err
		}
		if match == nil {
			fmt.Println("No match found.")
			return nil
		}

		if matchJSON {
			return json.NewEncoder(os.Stdout).Encode(match)
		}

		fmt.Printf("Matched %s %s (TA %d) via %s tier, confidence %.3f\n",
			match.Record.SituationNumber, match.Record.SituationName, match.TACode, match.Tier, match.Confidence)
		if match.Record.CapitalValue != nil {
			fmt.Printf("  Capital value:      $%d\n", *match.Record.CapitalValue)
		}
		if match.Record.LandValue != nil {
			fmt.Printf("  Land value:         $%d\n", *match.Record.LandValue)
		}
		if match.Record.ImprovementsVal != nil {
			fmt.Printf("  Improvements value: $%d\n", *match.Record.ImprovementsVal)
		}
		if m2 := match.Record.LandAreaM2(); m2 != nil {
			fmt.Printf("  Land area:          %.0f m²\n", *m2)
		}
		if match.Record.Bedrooms != nil {
			fmt.Printf("  Bedrooms:           %d\n", *match.Record.Bedrooms)
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "print the match as JSON")
	rootCmd.AddCommand(matchCmd)
}
