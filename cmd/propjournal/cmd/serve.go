package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/propjournal/internal/cron"
	"github.com/rustyeddy/propjournal/report"
	"github.com/rustyeddy/propjournal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	Long: `Start the HTTP API and, when cron.enabled is set, the scheduled sync.

Routes:
  GET  /health
  GET  /accounts
  GET  /trades?account_id=&date=
  GET  /dashboard?account_id=
  GET  /calendar?year=&month=&account_id=
  POST /sync`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	h := &server.Handler{
		Reports: report.NewService(a.ledger),
		Logger:  logger,
	}
	if r, err := a.reconciler(); err != nil {
		logger.Warn("sync disabled", zap.Error(err))
	} else {
		h.Syncer = r
	}

	if a.cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    a.cfg.Server.HTTPAddr,
		Handler: server.NewEngine(h),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Cron.Enabled && h.Syncer != nil {
		runner := cron.New(logger, ctx)
		_, err := runner.Add(a.cfg.Cron.Sync, func(ctx context.Context) {
			if _, err := h.Syncer.Run(ctx); err != nil {
				logger.Warn("cron sync failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule sync: %w", err)
		}
		runner.Start()
		defer runner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
