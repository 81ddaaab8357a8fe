package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizlens/bizcalc/internal/api"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, repo, settings, err := a.openService(ctx, a.engine(domain.DefaultDecisionThresholds()))
			if err != nil {
				return err
			}
			defer repo.Close()
			if addr == "" {
				addr = settings.Addr
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(svc, settings.TenantID, a.logger).Handler(os.Stdout),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", zap.String("addr", addr), zap.String("store", settings.Store))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			svc.Wait()
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $BIZCALC_ADDR or :8080)")
	return cmd
}
