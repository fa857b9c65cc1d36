package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the historical price table for one ticker, oldest bar first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	Start     time.Time
	End       time.Time
	Source    string
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Dates returns the bar dates in order.
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Validate rejects empty series and dates that are not strictly increasing.
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return &DataError{Reason: "price series is empty"}
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			return &DataError{Reason: "dates must be strictly increasing, row " +
				s.Bars[i].Time.Format("2006-01-02") + " does not follow " + s.Bars[i-1].Time.Format("2006-01-02")}
		}
	}
	return nil
}
