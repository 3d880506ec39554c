package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/core"
	"github.com/formsink/formsink/internal/core/store"
	errwrap "github.com/formsink/formsink/internal/errors"
	"github.com/formsink/formsink/internal/notify"
	"github.com/formsink/formsink/internal/observability"
	"github.com/formsink/formsink/internal/server"
	"github.com/formsink/formsink/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (rate limits and log level need a restart)

On shutdown the HTTP server drains, the store closes, and logs flush.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "invalid configuration")
		}

		observability.InitServerLogger("formsink", cfg.Logging.Level)
		logger := observability.ServerLogger

		logger.Info("initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("store_driver", cfg.Store.Driver),
			zap.Int("rate_limit_max_points", cfg.RateLimit.MaxPoints),
			zap.Duration("rate_limit_window", cfg.RateLimit.Window))

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			logger.Error("failed to open store", zap.Error(err))
			return errwrap.WrapDatabaseError(cmd.Context(), err, "store initialization failed")
		}
		if err := st.Migrate(cmd.Context()); err != nil {
			_ = st.Close()
			return errwrap.WrapDatabaseError(cmd.Context(), err, "store migration failed")
		}

		var notifier core.Notifier
		if cfg.Notify.SMTP.Host != "" {
			notifier = notify.NewSMTPDispatcher(cfg.Notify, logger)
		} else {
			logger.Info("no SMTP relay configured, submission alerts go to the log")
			notifier = notify.NewLogDispatcher(logger)
		}

		limiter := core.NewRateLimiter(cfg.RateLimit.MaxPoints, cfg.RateLimit.Window)
		pipeline := core.NewPipeline(limiter, st, st, notifier, logger)
		stats := core.NewStatsEngine(st)

		health := handlers.NewHealthManager(versionInfo.Version)
		health.RegisterChecker("store", st)

		if cfg.AdminToken == "" {
			logger.Warn("admin_token not set, form registry endpoints are disabled")
		}

		h := handlers.New(pipeline, st, stats, cfg.AdminToken)
		srv := server.New(cfg.Server, h, health)

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: server drains first, then the store
		// closes, then logs flush.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("flushing logs")
			_ = logger.Sync()
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("closing store")
			return st.Close()
		})

		signals.OnShutdown(func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					logger.Info("no config file found, using defaults and environment variables")
					return nil
				}
				logger.Error("failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			logger.Info("configuration reloaded",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
