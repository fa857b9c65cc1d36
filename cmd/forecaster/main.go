// forecaster trains a recurrent price model per ticker and forecasts the next business days.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockForecaster/internal/collector"
	"StockForecaster/internal/config"
	"StockForecaster/internal/logger"
	"StockForecaster/internal/recorder"
)

var (
	version  = "0.1.0"
	cfgPath  string
	logLevel string
	console  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forecaster",
		Short: "LSTM stock price forecaster",
		Long: `forecaster downloads daily closes for a ticker, trains a stacked LSTM
on sliding windows of scaled prices, reports test-period accuracy and
forecasts the next business days.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath(), "Path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (defaults to config / LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&console, "console", true, "Human-readable logs on stderr")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("forecaster version %s\n", version)
		},
	}
}

// setup loads the config and initialises logging.
func setup(service string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger.Init(service, level)
	if console {
		logger.Console()
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config, mock bool) collector.Fetcher {
	switch {
	case mock:
		return &collector.MockFetcher{Price: 100}
	case cfg.DataSource.BaseURL != "":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

// openRecorder falls back to a no-op recorder when sqlite cannot be opened.
func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
