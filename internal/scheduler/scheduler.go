package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockForecaster/internal/collector"
	"StockForecaster/internal/forecast"
	"StockForecaster/internal/model"
	"StockForecaster/internal/notifier"
	"StockForecaster/internal/recorder"
)

// MaxDays bounds the horizon users may request from the bot.
const MaxDays = 30

// Scheduler runs watch-list forecasts on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Settings  model.ForecastSettings
	Watchlist []string
	Lookback  time.Duration
	Ctx       context.Context

	opts    []forecast.Option
	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewScheduler creates a new Scheduler. lookbackDays sets how much history each run trains on.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder,
	settings model.ForecastSettings, watchlist []string, lookbackDays int, opts ...forecast.Option) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Settings:  settings,
		Watchlist: watchlist,
		Lookback:  time.Duration(lookbackDays) * 24 * time.Hour,
		Ctx:       ctx,
		opts:      opts,
		running:   make(map[string]bool),
		now:       time.Now,
	}
}

// RegisterAll registers the watch-list forecast task.
func (s *Scheduler) RegisterAll(forecastCron string) error {
	if _, err := s.Cron.AddFunc(forecastCron, s.forecastWatchlist); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("watchlist", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running forecasts to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Info().Msg("scheduler stopped")
}

// Wait blocks until every background forecast has finished.
func (s *Scheduler) Wait() { s.wg.Wait() }

// RunNow starts a watch-list forecast in the background (manual trigger / RUN_ON_START).
// Stop and Wait block until it has finished.
func (s *Scheduler) RunNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.forecastWatchlist()
	}()
}

func (s *Scheduler) forecastWatchlist() {
	log.Info().Strs("symbols", s.Watchlist).Msg("watchlist forecast started")
	for _, symbol := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		s.forecastAndReport(symbol, s.Settings)
	}
}

// claim marks symbol as running; it reports false when a run is already in flight.
func (s *Scheduler) claim(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[symbol] {
		return false
	}
	s.running[symbol] = true
	return true
}

func (s *Scheduler) release(symbol string) {
	s.mu.Lock()
	delete(s.running, symbol)
	s.mu.Unlock()
}

func (s *Scheduler) forecastAndReport(symbol string, settings model.ForecastSettings) {
	ticker := collector.ResolveSymbol(symbol, s.Collector.Suffix)
	if !s.claim(ticker) {
		log.Warn().Str("symbol", ticker).Msg("forecast already running, skipped")
		return
	}
	defer s.release(ticker)
	s.report(ticker, settings)
}

// report runs one forecast for an already claimed ticker and sends the outcome.
func (s *Scheduler) report(ticker string, settings model.ForecastSettings) {
	res, err := s.forecast(ticker, settings)
	if err != nil {
		log.Error().Err(err).Str("symbol", ticker).Msg("forecast failed")
		if rerr := s.Recorder.RecordFailure(&recorder.Failure{
			Symbol: ticker, Settings: settings, Err: err, At: s.now(),
		}); rerr != nil {
			log.Error().Err(rerr).Msg("record failure")
		}
		s.trySend(notifier.FormatFailure(ticker, err))
		return
	}
	if err := s.Recorder.RecordRun(res); err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("record run")
	}
	s.trySend(notifier.FormatForecastReport(res))
}

func (s *Scheduler) forecast(symbol string, settings model.ForecastSettings) (*model.ForecastResult, error) {
	p, err := forecast.NewPipeline(settings, s.opts...)
	if err != nil {
		return nil, err
	}
	now := s.now()
	series, err := s.Collector.History(s.Ctx, symbol, now.Add(-s.Lookback), now.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return p.Run(s.Ctx, series)
}

// HandleCommand processes a user command and returns a reply. Forecasts run
// in the background; their report is sent when training completes.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp(MaxDays)
	}
	switch strings.ToLower(fields[0]) {
	case "/forecast":
		if len(fields) < 2 || len(fields) > 3 {
			return "Usage: /forecast SYMBOL [days]"
		}
		settings := s.Settings
		if len(fields) == 3 {
			days, err := strconv.Atoi(fields[2])
			if err != nil || days < 1 || days > MaxDays {
				return fmt.Sprintf("days must be a whole number from 1 to %d", MaxDays)
			}
			settings.Days = days
		}
		symbol := collector.ResolveSymbol(fields[1], s.Collector.Suffix)
		if !s.claim(symbol) {
			return fmt.Sprintf("⏳ %s is already being forecast", symbol)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(symbol)
			s.report(symbol, settings)
		}()
		return fmt.Sprintf("⏳ Training model for %s (%d-day forecast), the report follows when done", symbol, settings.Days)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "The watchlist is empty"
		}
		s.RunNow()
		return fmt.Sprintf("⏳ Forecasting %d watched symbols", len(s.Watchlist))
	default:
		return notifier.FormatHelp(MaxDays)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
