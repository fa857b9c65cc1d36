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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockForecaster/internal/collector"
	"StockForecaster/internal/forecast"
	"StockForecaster/internal/notifier"
	"StockForecaster/internal/scheduler"
)

func serveCmd() *cobra.Command {
	var runOnStart, mock bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the scheduled watch-list forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(runOnStart || os.Getenv("RUN_ON_START") == "true", mock)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Forecast the watch-list immediately (also RUN_ON_START=true)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use generated prices instead of a data source")
	return cmd
}

func serve(runOnStart, mock bool) error {
	cfg, err := setup("forecaster")
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	// Fail fast on bad forecast settings instead of at the first scheduled run.
	if _, err := forecast.NewPipeline(cfg.Forecast); err != nil {
		return err
	}
	log.Info().Str("version", version).Msg("forecaster starting")

	fetcher := newFetcher(cfg, mock)
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, cfg.DataSource.SymbolSuffix)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	rec := openRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, col, tn, rec, cfg.Forecast, cfg.Watchlist, cfg.DataSource.LookbackDays)
	if err := sched.RegisterAll(cfg.Schedule.ForecastCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
		}
	}()
	log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if runOnStart {
		log.Info().Msg("run on start enabled, forecasting watch-list now")
		sched.RunNow()
	}

	log.Info().Msg("forecaster is running, press Ctrl+C to stop")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
	return nil
}
