package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wpmigrate/internal/api"
	"github.com/dgallion1/wpmigrate/internal/migrate"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Long: `Serve POST /api/convert and GET /health. When the WordPress and Payload
settings are complete, POST /api/migrate/{post|page} is served as well.
Set SERVER_API_KEY to require a bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runner *migrate.Runner
			if err := a.cfg.ValidateMigrate(); err != nil {
				a.log.Info("migration endpoint disabled", "reason", err.Error())
			} else {
				r, closeClients := a.newRunner()
				defer closeClients()
				runner = r
			}

			srv := api.NewServer(a.conv, runner, a.log, a.cfg)
			httpServer := &http.Server{
				Addr:         ":" + a.cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				a.log.Info("shutting down...")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			a.log.Info("starting wpmigrate", "port", a.cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
}
