package collector

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"StockForecaster/internal/calculator"
	"StockForecaster/internal/metrics"
	"StockForecaster/internal/model"
)

// MockFetcher returns deterministic business-day bars for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	if m.DailyData != nil {
		out := make([]model.OHLCV, len(m.DailyData))
		copy(out, m.DailyData)
		return out, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.OHLCV
	i := 0
	for d := tradingDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if !calculator.IsBusinessDay(d) {
			continue
		}
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/15) + 0.0005*float64(i))
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

// ResolveSymbol upper-cases symbol and appends suffix unless the symbol is
// already exchange-qualified ("BBRI.JK") or an index ("^JKSE").
func ResolveSymbol(symbol, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || suffix == "" || strings.ContainsAny(s, ".^") {
		return s
	}
	return s + suffix
}

// Collector turns fetcher output into validated price series.
type Collector struct {
	Fetcher Fetcher
	Suffix  string
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, suffix string) *Collector {
	return &Collector{Fetcher: fetcher, Suffix: suffix, now: time.Now}
}

// History returns the daily bars of symbol from start (inclusive) to end
// (exclusive). A zero end means up to and including today.
func (c *Collector) History(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	ticker := ResolveSymbol(symbol, c.Suffix)
	if ticker == "" {
		return nil, &model.ConfigError{Field: "symbol", Reason: "symbol is empty"}
	}
	start = tradingDay(start)
	if end.IsZero() {
		end = tradingDay(c.now()).AddDate(0, 0, 1)
	} else {
		end = tradingDay(end)
	}
	if !start.Before(end) {
		return nil, &model.ConfigError{
			Field:  "start",
			Reason: fmt.Sprintf("start %s is not before end %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		}
	}

	fetchStart := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker, start, end)
	metrics.FetchDuration.WithLabelValues(c.Fetcher.Name()).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", ticker, c.Fetcher.Name(), err)
	}
	bars = normalizeBars(bars, start, end)
	if len(bars) == 0 {
		return nil, &model.DataError{Reason: fmt.Sprintf("no price data for %s between %s and %s",
			ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))}
	}

	series := &model.PriceSeries{
		Symbol:    ticker,
		Bars:      bars,
		Start:     start,
		End:       end,
		Source:    c.Fetcher.Name(),
		FetchedAt: c.now(),
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("symbol", ticker).
		Str("source", series.Source).
		Int("bars", len(bars)).
		Time("first", bars[0].Time).
		Time("last", bars[len(bars)-1].Time).
		Msg("history fetched")
	return series, nil
}
