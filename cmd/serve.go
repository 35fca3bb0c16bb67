package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reva-ai/extract-cli/internal/checkpoint"
	"github.com/reva-ai/extract-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve read-only extraction progress over HTTP",
	Long: `Exposes checkpoint progress for dashboards while a long run is in
flight. Every request reads the durable checkpoint artifact, never the
running pipeline's in-memory state, so it only observes flushed progress.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		router := newServeRouter(func() (checkpoint.Store, error) {
			return newStore(cfg.Checkpoint)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
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

// newServeRouter builds the progress API. The store opener is injected so
// tests can serve from a seeded in-memory checkpoint.
func newServeRouter(open func() (checkpoint.Store, error)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/progress", func(w http.ResponseWriter, _ *http.Request) {
		store, err := open()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		defer store.Close() //nolint:errcheck

		writeJSON(w, http.StatusOK, model.ComputeStats(store.Load().Results))
	})

	r.Get("/results/{id}", func(w http.ResponseWriter, req *http.Request) {
		store, err := open()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		defer store.Close() //nolint:errcheck

		id := chi.URLParam(req, "id")
		result, ok := store.Load().Results[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not processed"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
