package config

import (
	"os"
	"path/filepath"
	"testing"

	"StockForecaster/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast != model.DefaultForecastSettings() {
		t.Errorf("expected default forecast settings, got %+v", cfg.Forecast)
	}
	if cfg.DataSource.LookbackDays != 730 {
		t.Errorf("expected lookback 730, got %d", cfg.DataSource.LookbackDays)
	}
	if cfg.Schedule.ForecastCron == "" || cfg.Database.SQLitePath == "" || cfg.MetricsAddr == "" {
		t.Errorf("expected defaults to be filled, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_YAMLAndPartialForecast(t *testing.T) {
	path := writeConfig(t, `
data_source:
  symbol_suffix: ".JK"
watchlist: [BBCA, TLKM]
forecast:
  mode: custom
  window: 20
  optimizer: RMSprop
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataSource.SymbolSuffix != ".JK" || len(cfg.Watchlist) != 2 {
		t.Errorf("unexpected data source/watchlist: %+v %v", cfg.DataSource, cfg.Watchlist)
	}
	f := cfg.Forecast
	if f.Mode != model.ModeCustom || f.Window != 20 || f.Optimizer != "RMSprop" {
		t.Errorf("expected yaml values to be kept, got %+v", f)
	}
	if f.TrainFraction != 0.8 || f.Loss != "meanSquaredError" || f.Days != 5 {
		t.Errorf("expected unset fields to take defaults, got %+v", f)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  bot_token: from-file\n")
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("FORECAST_EPOCHS", "7")
	t.Setenv("FORECAST_DAYS", "10")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.BotToken != "from-env" || cfg.Telegram.ChatID != "42" {
		t.Errorf("expected telegram env overrides, got %+v", cfg.Telegram)
	}
	if cfg.Database.SQLitePath != "/tmp/x.db" {
		t.Errorf("expected sqlite override, got %s", cfg.Database.SQLitePath)
	}
	if cfg.Forecast.Epochs != 7 || cfg.Forecast.Days != 10 {
		t.Errorf("expected epochs 7 days 10, got %d/%d", cfg.Forecast.Epochs, cfg.Forecast.Days)
	}
	if cfg.Forecast.Mode != model.ModeCustom {
		t.Errorf("expected epochs override to switch to custom mode, got %s", cfg.Forecast.Mode)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("FORECAST_WINDOW", "sixty")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "forecast: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateServe_RequiresTelegram(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected missing bot token error")
	}
	cfg.Telegram.BotToken = "t"
	cfg.Telegram.ChatID = "c"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("expected valid serve config, got %v", err)
	}
}
