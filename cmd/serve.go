package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtthwcarey/catalogger/internal/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local batch upload page",
		Long: `Starts a local web page for processing batch files.

Pick a .txt file with one description per line and press "Process Batch File".
The page reports success or failure in a dialog once the whole file has been
processed. Only one batch runs at a time.`,
		Example: `  # Start server on default port 8888
  catalogger serve

  # Start server on custom port
  catalogger serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := a.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			handler := handlers.New(runner, filepath.Join(filepath.Dir(a.cfg.CatalogFile), "uploads"))

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/runs", handler.HandleRuns)
			mux.HandleFunc("/api/runs/", handler.HandleRunDetail)
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := "localhost:" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Catalogger interface available", "addr", addr, "url", "http://"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
