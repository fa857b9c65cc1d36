package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockForecaster/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		SymbolSuffix string `yaml:"symbol_suffix"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		ForecastCron string `yaml:"forecast_cron"`
	} `yaml:"schedule"`
	Forecast model.ForecastSettings `yaml:"forecast"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
	Proxy       string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults. Missing files are not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_FORECAST"); v != "" {
		c.Schedule.ForecastCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}

	// Overriding a model knob implies custom mode; quick mode would discard it.
	for _, o := range []struct {
		env    string
		target *int
		custom bool
	}{
		{"FORECAST_EPOCHS", &c.Forecast.Epochs, true},
		{"FORECAST_WINDOW", &c.Forecast.Window, true},
		{"FORECAST_DAYS", &c.Forecast.Days, false},
	} {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", o.env, err)
		}
		*o.target = n
		if o.custom {
			c.Forecast.Mode = model.ModeCustom
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := model.DefaultForecastSettings()
	f := &c.Forecast
	if f.Mode == "" {
		f.Mode = d.Mode
	}
	if f.Window == 0 {
		f.Window = d.Window
	}
	if f.TrainFraction == 0 {
		f.TrainFraction = d.TrainFraction
	}
	if f.Scaler == "" {
		f.Scaler = d.Scaler
	}
	if f.FitScalerOn == "" {
		f.FitScalerOn = d.FitScalerOn
	}
	if f.Optimizer == "" {
		f.Optimizer = d.Optimizer
	}
	if f.LearningRate == 0 {
		f.LearningRate = d.LearningRate
	}
	if f.Loss == "" {
		f.Loss = d.Loss
	}
	if f.Epochs == 0 {
		f.Epochs = d.Epochs
	}
	if f.BatchSize == 0 {
		f.BatchSize = d.BatchSize
	}
	if f.DenseActivation == "" {
		f.DenseActivation = d.DenseActivation
	}
	if f.Days == 0 {
		f.Days = d.Days
	}
	if f.Seed == 0 {
		f.Seed = d.Seed
	}

	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 730
	}
	if c.Schedule.ForecastCron == "" {
		c.Schedule.ForecastCron = "0 30 17 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_forecaster.db"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
}

// Validate checks the settings every command depends on. Forecast settings
// are resolved and checked by forecast.NewPipeline.
func (c *Config) Validate() error {
	if c.DataSource.LookbackDays <= 0 {
		return fmt.Errorf("data_source.lookback_days must be positive")
	}
	if c.DataSource.APIKey != "" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required when api_key is set")
	}
	return nil
}

// ValidateServe additionally checks what the bot and scheduler need.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Schedule.ForecastCron == "" {
		return fmt.Errorf("schedule.forecast_cron is required")
	}
	return nil
}
