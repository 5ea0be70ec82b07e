package command

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/router"
)

// NewServeCmd creates the recurring import server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Import on a timer and serve the status page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			sugar := a.logger

			runImport := func() {
				if _, err := a.importer.Run(ctx, importer.RunOptions{Export: true}); err != nil {
					sugar.Errorw("scheduled import failed", "error", err)
				}
			}

			srv := &http.Server{
				Addr: a.cfg.StatusAddr,
				Handler: router.RegisterRoutes(sugar, router.Options{
					Status:    a.importer,
					Trigger:   runImport,
					JWTSecret: []byte(a.cfg.JWTSecret),
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serveErr <- err
				}
			}()
			sugar.Infow("status server and import loop started", "addr", a.cfg.StatusAddr, "interval", a.cfg.ImportInterval)

			ticker := time.NewTicker(a.cfg.ImportInterval)
			defer ticker.Stop()
			go runImport()

		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case err := <-serveErr:
					return err
				case <-ticker.C:
					go runImport()
				}
			}

			sugar.Info("shutting down")
			doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(doneCtx); err != nil {
				sugar.Warnf("http server shutdown failed: %v", err)
			}
			for a.importer.Running() && doneCtx.Err() == nil {
				time.Sleep(100 * time.Millisecond)
			}
			sugar.Info("goodbye")
			return nil
		},
	}
}
