package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	bar := Bar{}
	if bar.Symbol != "" {
		t.Error("expected empty Symbol for zero-value Bar")
	}
	if !bar.Timestamp.IsZero() {
		t.Error("expected zero Timestamp for zero-value Bar")
	}
	if bar.Open != 0 || bar.High != 0 || bar.Low != 0 || bar.Close != 0 {
		t.Error("expected zero OHLC values for zero-value Bar")
	}

	if TimeframeHour != "1h" || TimeframeDay != "1d" {
		t.Error("Timeframe constants have unexpected values")
	}
}

func TestCloses(t *testing.T) {
	bars := []Bar{{Close: 1}, {Close: 2.5}, {Close: 3}}
	got := Closes(bars)
	want := []float64{1, 2.5, 3}
	if len(got) != len(want) {
		t.Fatalf("Closes returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Closes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	in := time.Date(2024, 7, 30, 16, 30, 0, 0, ny)
	got := Normalize(in)
	want := time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Normalize(%v) = %v, want %v", in, got, want)
	}
}

func TestDailyCloses(t *testing.T) {
	ts := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)
	got := DailyCloses([]Bar{{Timestamp: ts, Close: 185.5}})
	if len(got) != 1 {
		t.Fatalf("DailyCloses returned %d rows, want 1", len(got))
	}
	if !got[0].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want 2024-01-02", got[0].Date)
	}
	if got[0].Close != 185.5 {
		t.Errorf("Close = %v, want 185.5", got[0].Close)
	}
}

func TestErrorKindsWrap(t *testing.T) {
	err := fmt.Errorf("ticker AAPL: %w", ErrDataUnavailable)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Error("wrapped ErrDataUnavailable not matched by errors.Is")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("ErrDataUnavailable should not match ErrInvalidInput")
	}
}
