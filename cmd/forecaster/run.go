package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"StockForecaster/internal/collector"
	"StockForecaster/internal/forecast"
	"StockForecaster/internal/model"
	"StockForecaster/internal/scheduler"
)

type runOptions struct {
	start    string
	end      string
	mock     bool
	record   bool
	settings model.ForecastSettings
}

func runCmd() *cobra.Command {
	return newRunCmd(&runOptions{settings: model.DefaultForecastSettings()})
}

func newRunCmd(o *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run SYMBOL",
		Short: "Train a model for SYMBOL and print the forecast report",
		Example: `  forecaster run BBCA --days 10
  forecaster run AAPL --start 2022-01-01 --mode custom --window 40 --epochs 5 --optimizer RMSprop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	s := &o.settings
	f.StringVar(&o.start, "start", "2023-01-01", "First date of history (YYYY-MM-DD)")
	f.StringVar(&o.end, "end", "", "End of history, exclusive (YYYY-MM-DD, default today)")
	f.BoolVar(&o.mock, "mock", false, "Use generated prices instead of a data source")
	f.BoolVar(&o.record, "record", false, "Store the run in the sqlite database")

	f.IntVarP(&s.Days, "days", "d", s.Days, fmt.Sprintf("Business days to forecast (1-%d)", scheduler.MaxDays))
	f.StringVar((*string)(&s.Mode), "mode", string(s.Mode), "quick or custom; model flags switch to custom")
	f.IntVarP(&s.Window, "window", "w", s.Window, fmt.Sprintf("Lookback window, presets %v", model.WindowPresets))
	f.Float64Var(&s.TrainFraction, "train-fraction", s.TrainFraction, "Share of rows used for training, in (0, 1]")
	f.StringVar(&s.Scaler, "scaler", s.Scaler, "StandardScaler, MinMaxScaler, RobustScaler or Normalizer")
	f.StringVar(&s.FitScalerOn, "fit-scaler-on", s.FitScalerOn, "fullSeries or trainOnly")
	f.StringVar(&s.Optimizer, "optimizer", s.Optimizer, "Adam, SGD, RMSprop, Adagrad or Adadelta")
	f.Float64Var(&s.LearningRate, "learning-rate", s.LearningRate, "Optimizer learning rate")
	f.StringVar(&s.Loss, "loss", s.Loss, "meanSquaredError, meanAbsoluteError, huberLoss or meanAbsolutePercentageError")
	f.IntVar(&s.Epochs, "epochs", s.Epochs, "Training epochs")
	f.IntVar(&s.BatchSize, "batch-size", s.BatchSize, "Mini-batch size")
	f.StringVar(&s.DenseActivation, "activation", s.DenseActivation, "Hidden dense activation: linear, relu, sigmoid or tanh")
	f.Int64Var(&s.Seed, "seed", s.Seed, "Random seed for initialisation and shuffling")
	return cmd
}

// resolveSettings layers config values under explicitly set flags.
func resolveSettings(flags *pflag.FlagSet, cfg, fromFlags model.ForecastSettings) model.ForecastSettings {
	s := cfg
	custom := false
	flags.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "days":
			s.Days = fromFlags.Days
		case "seed":
			s.Seed = fromFlags.Seed
		case "mode":
			s.Mode = fromFlags.Mode
		case "window":
			s.Window, custom = fromFlags.Window, true
		case "train-fraction":
			s.TrainFraction, custom = fromFlags.TrainFraction, true
		case "scaler":
			s.Scaler, custom = fromFlags.Scaler, true
		case "fit-scaler-on":
			s.FitScalerOn, custom = fromFlags.FitScalerOn, true
		case "optimizer":
			s.Optimizer, custom = fromFlags.Optimizer, true
		case "learning-rate":
			s.LearningRate, custom = fromFlags.LearningRate, true
		case "loss":
			s.Loss, custom = fromFlags.Loss, true
		case "epochs":
			s.Epochs, custom = fromFlags.Epochs, true
		case "batch-size":
			s.BatchSize, custom = fromFlags.BatchSize, true
		case "activation":
			s.DenseActivation, custom = fromFlags.DenseActivation, true
		}
	})
	if custom && !flags.Changed("mode") {
		s.Mode = model.ModeCustom
	}
	return s
}

func parseDate(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, &model.ConfigError{Field: name, Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", v)}
	}
	return t, nil
}

func runForecast(cmd *cobra.Command, symbol string, o *runOptions) error {
	cfg, err := setup("forecaster-run")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	settings := resolveSettings(cmd.Flags(), cfg.Forecast, o.settings)
	if settings.Days < 1 || settings.Days > scheduler.MaxDays {
		return &model.ConfigError{Field: "days", Reason: fmt.Sprintf("must be from 1 to %d, got %d", scheduler.MaxDays, settings.Days)}
	}
	start, err := parseDate("start", o.start)
	if err != nil {
		return err
	}
	end, err := parseDate("end", o.end)
	if err != nil {
		return err
	}

	p, err := forecast.NewPipeline(settings)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	col := collector.NewCollector(newFetcher(cfg, o.mock), cfg.DataSource.SymbolSuffix)
	series, err := col.History(ctx, symbol, start, end)
	if err != nil {
		return err
	}
	log.Info().
		Str("symbol", series.Symbol).
		Int("rows", series.Len()).
		Str("mode", string(p.Settings().Mode)).
		Msg("history loaded, training")

	job := p.Start(ctx, series)
	tick := time.NewTicker(15 * time.Second)
	defer tick.Stop()
	began := time.Now()
wait:
	for {
		select {
		case <-job.Done():
			break wait
		case <-tick.C:
			log.Info().Dur("elapsed", time.Since(began).Round(time.Second)).Msg("still training")
		}
	}
	res, err := job.Wait()
	if err != nil {
		return err
	}

	if o.record {
		rec := openRecorder(cfg.Database.SQLitePath)
		defer rec.Close()
		if err := rec.RecordRun(res); err != nil {
			log.Error().Err(err).Msg("record run")
		}
	}
	return printReport(cmd.OutOrStdout(), res)
}
