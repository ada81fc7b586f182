package util

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testCalendar() *TradingCalendar {
	// Thu 2024-02-01 .. Wed 2024-02-07, weekend removed, shuffled with a dup.
	return NewTradingCalendar([]time.Time{
		day("2024-02-06"), day("2024-02-01"), day("2024-02-05"),
		day("2024-02-02"), day("2024-02-07"), day("2024-02-05").Add(15 * time.Hour),
	})
}

func TestTradingCalendarDedup(t *testing.T) {
	if got := testCalendar().Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
}

func TestTradingCalendarKeepsLocalDate(t *testing.T) {
	// 2024-02-05 23:00 in New York is already 2024-02-06 in UTC; the calendar
	// keys on the date as given.
	ny := time.FixedZone("EST", -5*3600)
	cal := NewTradingCalendar([]time.Time{time.Date(2024, 2, 5, 23, 0, 0, 0, ny)})
	if !cal.Contains(day("2024-02-05")) {
		t.Error("Contains(2024-02-05) = false, want true")
	}
	if cal.Contains(day("2024-02-06")) {
		t.Error("Contains(2024-02-06) = true, want false")
	}
}

func TestTradingCalendarPrevNext(t *testing.T) {
	cal := testCalendar()

	tests := []struct {
		name   string
		fn     func(time.Time) (time.Time, bool)
		in     string
		want   string
		wantOK bool
	}{
		{"prev over weekend", cal.Prev, "2024-02-05", "2024-02-02", true},
		{"prev from saturday", cal.Prev, "2024-02-03", "2024-02-02", true},
		{"prev before first", cal.Prev, "2024-02-01", "", false},
		{"next over weekend", cal.Next, "2024-02-02", "2024-02-05", true},
		{"next from sunday", cal.Next, "2024-02-04", "2024-02-05", true},
		{"next after last", cal.Next, "2024-02-07", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(day(tt.in))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(day(tt.want)) {
				t.Errorf("got %s, want %s", got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestTradingCalendarContainsAndBetween(t *testing.T) {
	cal := testCalendar()
	if !cal.Contains(day("2024-02-05").Add(20 * time.Hour)) {
		t.Error("Contains(Mon evening) = false, want true")
	}
	if cal.Contains(day("2024-02-03")) {
		t.Error("Contains(Saturday) = true, want false")
	}
	if got := len(cal.Between(day("2024-02-02"), day("2024-02-06"))); got != 3 {
		t.Errorf("len(Between) = %d, want 3", got)
	}
	if got := cal.Between(day("2024-02-03"), day("2024-02-04")); got != nil {
		t.Errorf("Between(weekend) = %v, want nil", got)
	}
}

func TestNearestFridayOnOrAfter(t *testing.T) {
	tests := map[string]string{
		"2024-02-02": "2024-02-02", // Friday
		"2024-02-03": "2024-02-09", // Saturday
		"2024-02-05": "2024-02-09", // Monday
		"2024-02-08": "2024-02-09", // Thursday
	}
	for in, want := range tests {
		if got := NearestFridayOnOrAfter(day(in)); !got.Equal(day(want)) {
			t.Errorf("NearestFridayOnOrAfter(%s) = %s, want %s", in, got.Format("2006-01-02"), want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(day("2024-02-02"), day("2024-02-09")); got != 7 {
		t.Errorf("DaysBetween = %d, want 7", got)
	}
	if got := DaysBetween(day("2024-02-09"), day("2024-02-02")); got != -7 {
		t.Errorf("DaysBetween reversed = %d, want -7", got)
	}
}
