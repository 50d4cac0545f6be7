package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/propscan/propscan-cli/internal/address"
	"github.com/propscan/propscan-cli/internal/estimator"
	"github.com/propscan/propscan-cli/internal/export"
	"github.com/propscan/propscan-cli/internal/pipeline"
	"github.com/propscan/propscan-cli/internal/scorer"
	"github.com/propscan/propscan-cli/internal/store"
)

var (
	enrichInput       string
	enrichAppearances string
	enrichOutput      string
	enrichTop         int
	enrichNoStore     bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a listing CSV with valuations, estimates, and scores",
	Long:  "Reads scraped listings, resolves each against the LINZ valuation roll, estimates hidden prices from bracket appearances, scores every listing, and writes the ranked report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		in, err := os.Open(enrichInput)
		if err != nil {
			return eris.Wrap(err, "open input")
		}
		defer in.Close()

		listings, err := export.ReadListings(in)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			zap.L().Warn("no listings in input", zap.String("path", enrichInput))
		}

		mapper := estimator.NewMapper()
		if enrichAppearances != "" {
			f, err := os.Open(enrichAppearances)
			if err != nil {
				return eris.Wrap(err, "open appearances")
			}
			apps, err := export.ReadAppearances(f)
			f.Close()
			if err != nil {
				return err
			}
			for _, a := range apps {
				mapper.RecordAppearance(a.ListingID, a.Lo, a.Hi)
			}
			zap.L().Info("bracket appearances loaded", zap.Int("rows", len(apps)))
		}

		var st store.Store
		var runLog pipeline.RunLog
		if !enrichNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			runLog = st
		}

		querier, err := initQuerier(st)
		if err != nil {
			return err
		}

		e := pipeline.NewEnricher(
			initResolver(querier),
			mapper,
			scorer.DefaultKeywords(),
			address.DefaultTables(),
			runLog,
			cfg.Matcher.ListingDelay(),
		)

		summary, err := e.Run(ctx, enrichInput, listings)
		if err != nil {
			return err
		}

		pipeline.Rank(listings)

		out, err := os.Create(enrichOutput)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		defer out.Close()
		if err := export.WriteRanked(out, listings); err != nil {
			return err
		}

		export.RenderTop(os.Stdout, listings, enrichTop)
		zap.L().Info("report written",
			zap.String("path", enrichOutput),
			zap.Int("total", summary.Total),
			zap.Int("matched", summary.Matched),
			zap.Float64("match_rate", summary.MatchRate),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichInput, "input", "i", "listings.csv", "scraped listings CSV")
	enrichCmd.Flags().StringVar(&enrichAppearances, "appearances", "", "bracket-appearance CSV for price estimation")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "opportunities.csv", "ranked report CSV")
	enrichCmd.Flags().IntVar(&enrichTop, "top", 10, "rows to print to the console")
	enrichCmd.Flags().BoolVar(&enrichNoStore, "no-store", false, "skip run-log persistence")
	rootCmd.AddCommand(enrichCmd)
}
