package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/propscan/propscan-cli/internal/address"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status and on-demand match API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		querier, err := initQuerier(st)
		if err != nil {
			return err
		}
		resolver := initResolver(querier)
		tables := address.DefaultTables()

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), 20)
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Post("/match", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Address string `json:"address"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Address == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
				return
			}

			parsed := address.Parse(body.Address)
			if parsed.Number == "" || parsed.Street == "" {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "address has no street number and name"})
				return
			}

			match, err := resolver.Resolve(req.Context(), parsed.Number, parsed.Street, tables.GuessTAs(parsed.Suburb))
			if err != nil {
				zap.L().Error("match failed", zap.String("address", body.Address), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "match failed"})
				return
			}
			if match == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no match"})
				return
			}
			writeJSON(w, http.StatusOK, match)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
