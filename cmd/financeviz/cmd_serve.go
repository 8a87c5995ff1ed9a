package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"financeviz/internal/cache"
	"financeviz/internal/cli"
	"financeviz/internal/explore"
	apphttp "financeviz/internal/http"
	"financeviz/internal/log"
	"financeviz/internal/middleware/ratelimit"
	"financeviz/internal/worker"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the finance details API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Starting financeviz server", log.FieldOperation, log.OpStartup, "port", appConfig.Port, "backend", appConfig.DataBackend)

	result, err := cli.OpenBackend(cmd.Context(), logger, appConfig)
	if err != nil {
		return err
	}

	trees := cache.NewTrees(appConfig.TreeCacheSize, appConfig.TreeCacheTTL)
	explorer, err := cli.NewExplorer(logger, appConfig, result.Backend, trees)
	if err != nil {
		_ = result.Cleanup()
		return err
	}

	opts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(ratelimit.Config{
			RequestsPerSecond: appConfig.RateLimitRPS,
			Burst:             appConfig.RateLimitBurst,
		}),
	}
	if p, ok := result.Backend.(interface{ Ping(context.Context) error }); ok {
		opts = append(opts, apphttp.WithReadinessCheck("storage", p.Ping))
	}
	if result.Publisher != nil {
		opts = append(opts, apphttp.WithReadinessCheck("amqp", func(context.Context) error {
			return result.Publisher.Ping()
		}))
	}
	srv := apphttp.NewServer(":"+appConfig.Port, explorer, opts...)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if result.Publisher != nil {
		invalidation := worker.NewInvalidationWorker(trees, logger)
		go func() {
			err := result.Publisher.ConsumeWithRetry(ctx, invalidation.HandleDocumentUpdated)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Document update consumer stopped", log.FieldError, err)
			}
		}()
		logger.Info("Tree cache invalidation enabled", "queue", appConfig.AMQPQueue)
	}

	if appConfig.ExploreConfigPath != "" {
		go func() {
			err := explore.Watch(ctx, appConfig.ExploreConfigPath, 0, explorer.SetPresentation)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Explore config watcher stopped", log.FieldError, err)
			}
		}()
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", appConfig.Port)
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
