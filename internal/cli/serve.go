package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/youruser/galentine/internal/api"
	"github.com/youruser/galentine/internal/config"
	imagepkg "github.com/youruser/galentine/internal/image"
	"github.com/youruser/galentine/internal/reasons"
	"github.com/youruser/galentine/internal/session"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Start on PORT (default 8080)
  galentine serve

  # Start on a custom port
  galentine serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = cfg.Port
			}
			tuning, err := cfg.Tuning()
			if err != nil {
				return err
			}
			// Load reasons at startup (best-effort)
			deck, err := reasons.Load(cfg.ReasonsFile)
			if err != nil {
				slog.Warn("failed to load reasons, using defaults", "file", cfg.ReasonsFile, "err", err)
				deck = reasons.Defaults
			}

			store := session.NewStore()
			go store.Expire(cmd.Context(), cfg.SessionTTL, sweepInterval(cfg.SessionTTL), slog.Default())

			gin.SetMode(cfg.GinMode)
			h := api.NewHandler(api.Options{
				Store:          store,
				Compositor:     imagepkg.NewCompositor(tuning),
				Reasons:        deck,
				MaxUploadBytes: cfg.MaxUploadBytes,
				QRText:         cfg.QRText,
				Logger:         slog.Default(),
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewEngine(h),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("starting server", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("server shutdown failed", "err", err)
					return err
				}
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	return cmd
}

// sweepInterval checks often enough that a session outlives its TTL by at most
// a tenth of it.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/10, time.Second)
}
