package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashkit/flash"
	"flashkit/internal/config"
	"flashkit/internal/logging"
	"flashkit/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "flashkit",
	Short: "flashkit - session-backed flash messages",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Validate()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		mw, err := newMiddleware(logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(mw, logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Error("Shutdown failed", zap.Error(err))
				return err
			}
		}

		logger.Info("Goodbye!")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the flash middleware configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		mw, err := newMiddleware(logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "implementation=%s session_key=%s attribute_key=%s\n",
			mw.Implementation(), mw.SessionKey(), mw.AttributeKey())
		return nil
	},
}

func newLogger() (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, cfg.Development)
}

func newMiddleware(logger *zap.Logger) (*flash.Middleware, error) {
	mw, err := flash.NewMiddleware(
		flash.WithImplementation(cfg.Implementation, flash.NewRegistry()),
		flash.WithSessionKey(cfg.SessionKey),
		flash.WithAttributeKey(cfg.AttributeKey),
		flash.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Invalid flash configuration", zap.Error(err))
		return nil, err
	}
	return mw, nil
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.SessionKey, "session-key", cfg.SessionKey, "Session slot for queued flash messages")
	flags.StringVar(&cfg.AttributeKey, "attribute-key", cfg.AttributeKey, "Request attribute exposing flash messages")
	flags.StringVar(&cfg.Implementation, "implementation", cfg.Implementation, "Registered flash messages implementation")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.Development, "dev", cfg.Development, "Human readable development logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
