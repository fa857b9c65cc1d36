package notifier

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"StockForecaster/internal/model"
)

// MaxPredictionRows caps the test table in chat reports.
const MaxPredictionRows = 10

// Num formats v with four decimals, or "n/a" when undefined.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// FormatForecastReport formats a finished run into a Telegram message.
func FormatForecastReport(res *model.ForecastResult) string {
	var b strings.Builder
	s := res.Settings

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %d-day forecast\n", html.EscapeString(res.Symbol), len(res.Forecast)))
	b.WriteString(fmt.Sprintf("Data to %s, %d rows (%d train / %d test)\n",
		res.DataEnd.Format("2006-01-02"), res.Rows, res.TrainLen, res.Rows-res.TrainLen))
	b.WriteString(fmt.Sprintf("Mode %s: window %d, %s, %s lr %g, %d epoch(s), batch %d\n\n",
		s.Mode, s.Window, s.Scaler, s.Optimizer, s.LearningRate, s.Epochs, s.BatchSize))

	b.WriteString("🔮 <b>Forecast:</b>\n<pre>")
	for _, p := range res.Forecast {
		b.WriteString(fmt.Sprintf("%s  %12s\n", p.Date.Format("2006-01-02 Mon"), Num(p.Price)))
	}
	b.WriteString("</pre>\n")

	m := res.Metrics
	b.WriteString("🎯 <b>Test accuracy:</b>\n")
	b.WriteString(fmt.Sprintf("  RMSE %s | MAE %s\n", Num(m.RMSE), Num(m.MAE)))
	b.WriteString(fmt.Sprintf("  MSE %s | R² %s\n", Num(m.MSE), Num(m.R2)))
	b.WriteString(fmt.Sprintf("  MAPE %s (%s%%)\n", Num(m.MAPE), Num(m.MAPE*100)))

	if n := len(res.Predictions); n > 0 {
		shown := res.Predictions
		if n > MaxPredictionRows {
			shown = shown[n-MaxPredictionRows:]
		}
		b.WriteString(fmt.Sprintf("\n📋 <b>Test predictions</b> (last %d of %d):\n<pre>", len(shown), n))
		b.WriteString(fmt.Sprintf("%-10s  %12s  %12s\n", "date", "actual", "predicted"))
		for _, p := range shown {
			b.WriteString(fmt.Sprintf("%-10s  %12s  %12s\n", p.Date.Format("2006-01-02"), Num(p.Actual), Num(p.Predicted)))
		}
		b.WriteString("</pre>\n")
	}

	if k := len(res.EpochLoss); k > 0 {
		b.WriteString(fmt.Sprintf("\nFinal loss %s, trained in %s\n", Num(res.EpochLoss[k-1]), res.TrainingTime.Round(time.Millisecond)))
	}
	return b.String()
}

// FormatFailure explains why a run for symbol produced no forecast.
func FormatFailure(symbol string, err error) string {
	kind := "Forecast failed"
	switch {
	case errors.Is(err, model.ErrConfiguration):
		kind = "Invalid settings"
	case errors.Is(err, model.ErrData):
		kind = "Not enough usable data"
	}
	return fmt.Sprintf("⚠️ <b>%s</b>: %s\n%s", html.EscapeString(symbol), kind, html.EscapeString(err.Error()))
}

// FormatHelp lists the bot commands.
func FormatHelp(maxDays int) string {
	return fmt.Sprintf("<b>Commands</b>\n"+
		"/forecast SYMBOL [days] - train and forecast, days 1-%d\n"+
		"/watchlist - forecast every watched symbol now\n"+
		"/help - this message", maxDays)
}
