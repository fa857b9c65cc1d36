package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockForecaster/internal/model"
)

// Fetcher defines the interface for fetching historical daily bars.
// start is inclusive and end exclusive; bars come back oldest first.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// tradingDay drops the time of day, keeping the calendar date in UTC.
func tradingDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeBars sorts bars by date, keeps the last bar of any duplicated day
// and trims them to [start, end).
func normalizeBars(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if b.Time.Before(start) || !b.Time.Before(end) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
