package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nesventory/identifier/internal/config"
	"github.com/nesventory/identifier/internal/handlers"
	"github.com/nesventory/identifier/internal/review"
	"github.com/nesventory/identifier/internal/setup"
	"github.com/nesventory/identifier/internal/storage"
	"github.com/nesventory/identifier/internal/submission"
)

func newServeCmd(getConfig func() *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identification API server",
		Long: `Starts the identification HTTP API and serves the front end from the
configured static directory.

Uploaded photographs become review sessions. Accepted and corrected items are
sent to the inventory service and every decision is sent to the training
service; either may be left unconfigured.`,
		Example: `  # Start server on the configured port
  identifier serve

  # Start server on custom port with OpenAI
  IDENTIFY_PROVIDER=openai identifier serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if port != "" {
				cfg.Server.Port = port
			}

			geminiKeys := setup.GeminiKeys(cfg)
			svc, err := setup.Service(cfg, geminiKeys)
			if err != nil {
				return err
			}

			store := storage.New()
			submitter := submission.NewClient(
				cfg.Submission.InventoryURL,
				cfg.Submission.TrainingURL,
				cfg.Submission.Source,
				cfg.Submission.Timeout,
			)
			if cfg.Submission.InventoryURL == "" {
				slog.Warn("Inventory endpoint not configured, accepted items will not be stored")
			}

			handler := handlers.New(handlers.Options{
				Store:          store,
				Reviewer:       review.NewReviewer(store, svc, submitter, cfg.Review.Timeout),
				Lookups:        svc,
				GeminiKeys:     geminiKeys,
				FoundingYear:   cfg.Review.FoundingYear,
				StaticDir:      cfg.Server.StaticDir,
				Version:        cmd.Root().Version,
				Timeout:        cfg.Review.Timeout,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			})

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Identifier API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

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

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides server.port)")

	return cmd
}
