package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/horockey/settingsapp"
	"github.com/horockey/settingsapp/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringP("config", "c", "config.yaml", "Path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(os.Stdout, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	app, err := settingsapp.NewApp(appOpts(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Send()
		}
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := config.Watch(ctx, path, logger, func(c *config.Config) {
			lvl, err := zerolog.ParseLevel(c.Log.Level)
			if err != nil {
				logger.Error().Err(fmt.Errorf("parsing log level: %w", err)).Send()
				return
			}
			zerolog.SetGlobalLevel(lvl)
		}); err != nil {
			logger.Warn().Err(fmt.Errorf("watching config: %w", err)).Send()
		}
	}()

	if cfg.Service.MetricsPort > 0 {
		reg := prometheus.NewRegistry()
		reg.MustRegister(app.Metrics()...)
		go serveMetrics(ctx, cfg.Service.MetricsPort, reg, logger)
	}

	logger.Info().
		Int("port", cfg.Service.Port).
		Str("storage", cfg.Storage.Backend).
		Str("views", cfg.Views.Source).
		Msg("starting")

	if err := app.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("running app: %w", err)
	}

	return nil
}

func appOpts(cfg *config.Config, logger zerolog.Logger) []settingsapp.Option {
	opts := []settingsapp.Option{
		settingsapp.WithLogger(logger),
		settingsapp.WithServicePort(cfg.Service.Port),
		settingsapp.WithAPIKey(cfg.Service.EffectiveAPIKey()),
	}

	switch cfg.Storage.Backend {
	case config.StorageInmemory:
		opts = append(opts, settingsapp.WithInmemoryStorage())
	default:
		opts = append(opts, settingsapp.WithBadgerDir(cfg.Storage.BadgerDir))
	}

	if cfg.Views.Source == config.ViewsHTTP {
		opts = append(opts, settingsapp.WithHTTPViews(cfg.Views.BaseURL, cfg.Views.Timeout))
	}

	return opts
}

func serveMetrics(ctx context.Context, port int, reg *prometheus.Registry, logger zerolog.Logger) {
	serv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second, //nolint: mnd
	}

	go func() {
		<-ctx.Done()
		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = serv.Shutdown(sdCtx)
	}()

	if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(fmt.Errorf("serving metrics: %w", err)).Send()
	}
}
