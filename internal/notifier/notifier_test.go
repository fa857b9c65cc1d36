package notifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockForecaster/internal/model"
)

func sampleResult(predictions int) *model.ForecastResult {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res := &model.ForecastResult{
		Symbol:    "BBCA.JK",
		Settings:  model.DefaultForecastSettings(),
		Rows:      300,
		TrainLen:  240,
		EpochLoss: []float64{0.0123},
		Metrics:   model.AccuracyMetrics{RMSE: 1.23456, MAE: 1, MSE: 1.5, R2: math.NaN(), MAPE: 0.0125},
		Forecast: []model.ForecastPoint{
			{Date: d.AddDate(0, 0, 3), Price: 9125.5},
			{Date: d.AddDate(0, 0, 4), Price: 9130.25},
		},
		DataEnd: d,
	}
	for i := 0; i < predictions; i++ {
		res.Predictions = append(res.Predictions, model.PredictionPoint{
			Date: d.AddDate(0, 0, -predictions+i+1), Actual: 9000 + float64(i), Predicted: 9001 + float64(i),
		})
	}
	return res
}

func TestFormatForecastReport(t *testing.T) {
	msg := FormatForecastReport(sampleResult(60))
	for _, want := range []string{
		"BBCA.JK", "2-day forecast", "2024-03-04 Mon", "9125.5000",
		"RMSE 1.2346", "R² n/a", "MAPE 0.0125 (1.2500%)", "last 10 of 60", "240 train / 60 test",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, msg)
		}
	}
	if strings.Count(msg, "\n2024-") > 12 {
		t.Errorf("expected at most 12 dated rows, got report:\n%s", msg)
	}
}

func TestFormatForecastReport_NoTestRows(t *testing.T) {
	msg := FormatForecastReport(sampleResult(0))
	if strings.Contains(msg, "Test predictions") {
		t.Errorf("expected no prediction table, got:\n%s", msg)
	}
}

func TestFormatFailure_ClassifiesErrors(t *testing.T) {
	msg := FormatFailure("X<1>", &model.DataError{Reason: "price series is empty"})
	if !strings.Contains(msg, "Not enough usable data") || !strings.Contains(msg, "X&lt;1&gt;") {
		t.Errorf("unexpected failure message: %s", msg)
	}
	msg = FormatFailure("X", &model.ConfigError{Field: "window", Reason: "too big"})
	if !strings.Contains(msg, "Invalid settings") {
		t.Errorf("unexpected failure message: %s", msg)
	}
}

type fakeTelegram struct {
	mu       sync.Mutex
	fails    int
	messages []string
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/bottoken/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fails > 0 {
			f.fails--
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["chat_id"] != "chat" || payload["parse_mode"] != "HTML" {
			t.Errorf("unexpected payload %v", payload)
		}
		f.messages = append(f.messages, payload["text"])
	})
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL
	if err := tn.Send("hello"); err != nil {
		t.Fatal(err)
	}
	if len(fake.messages) != 1 || fake.messages[0] != "hello" {
		t.Errorf("expected one message, got %v", fake.messages)
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	fake := &fakeTelegram{fails: 1}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL
	if err := tn.SendWithRetry(context.Background(), "retry me", 2); err != nil {
		t.Fatal(err)
	}
	if len(fake.messages) != 1 {
		t.Errorf("expected message after retry, got %v", fake.messages)
	}
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	fake := &fakeTelegram{fails: 10}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tn.SendWithRetry(ctx, "never", 3); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var replies []string
	served := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served {
				cancel()
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			served = true
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /help "}}]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			replies = append(replies, payload["text"])
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "chat", "")
	tn.APIBase = srv.URL
	var got []string
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string {
			got = append(got, cmd)
			return "ok:" + cmd
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	if len(got) != 1 || got[0] != "/help" {
		t.Errorf("expected [/help], got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 || replies[0] != "ok:/help" {
		t.Errorf("expected one reply, got %v", replies)
	}
}
