package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/api"
	"github.com/jengzang/reallocation-screener/internal/metrics"
)

var warmup bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireJWTSecret(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return err
		}

		if warmup {
			// a failed warm-up is retried on the first request
			if _, err := a.screening.Reload(ctx); err != nil {
				logger.Warn("initial load failed", zap.Error(err))
			}
		}

		if !cfg.Logging.Development {
			gin.SetMode(gin.ReleaseMode)
		}

		// 初始化路由
		router := api.SetupRouter(cfg, api.Services{
			Screening:   a.screening,
			Integration: a.integration,
			Gatherer:    prometheus.DefaultGatherer,
		}, logger.Named("http"))

		srv := &http.Server{
			Addr:              cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			// 启动服务器
			logger.Info("server starting", zap.String("addr", cfg.Port))
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

		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&warmup, "warmup", true, "load the warehouse tables before accepting requests")
}
