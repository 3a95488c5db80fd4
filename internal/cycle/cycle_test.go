package cycle

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence_ClampsToShortMonth(t *testing.T) {
	tests := []struct {
		name        string
		from        time.Time
		day         int
		monthsAhead int
		want        time.Time
	}{
		{"day 31 into 30-day month", date(2024, time.March, 15), 31, 1, date(2024, time.April, 30)},
		{"day 31 into february", date(2025, time.January, 10), 31, 1, date(2025, time.February, 28)},
		{"day 31 into leap february", date(2024, time.January, 10), 31, 1, date(2024, time.February, 29)},
		{"day 30 into 31-day month", date(2024, time.April, 1), 30, 1, date(2024, time.May, 30)},
		{"day within every month", date(2024, time.January, 5), 15, 1, date(2024, time.February, 15)},
		{"zero months ahead", date(2024, time.June, 2), 28, 0, date(2024, time.June, 28)},
	}
	for _, tt := range tests {
		got := NextOccurrence(tt.from, tt.day, tt.monthsAhead)
		if !got.Equal(tt.want) {
			t.Errorf("%s: got %s, want %s", tt.name, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestNextOccurrence_RollsYear(t *testing.T) {
	got := NextOccurrence(date(2024, time.December, 10), 31, 1)
	want := date(2025, time.January, 31)
	if !got.Equal(want) {
		t.Errorf("december roll: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	got = NextOccurrence(date(2024, time.June, 1), 15, 13)
	want = date(2025, time.July, 15)
	if !got.Equal(want) {
		t.Errorf("13 months ahead: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	got = NextOccurrence(date(2024, time.November, 30), 1, 14)
	want = date(2026, time.January, 1)
	if !got.Equal(want) {
		t.Errorf("14 months ahead: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestMatchesTrigger(t *testing.T) {
	if !MatchesTrigger(date(2024, time.May, 15), 15) {
		t.Error("expected day 15 to match configured day 15")
	}
	if MatchesTrigger(date(2024, time.May, 16), 15) {
		t.Error("expected day 16 not to match configured day 15")
	}
	// A clamped occurrence no longer matches its configured day.
	clamped := NextOccurrence(date(2025, time.January, 10), 31, 1)
	if MatchesTrigger(clamped, 31) {
		t.Error("expected clamped february date not to match day 31")
	}
}

func TestValidateDay(t *testing.T) {
	for _, day := range []int{1, 15, 31} {
		if err := ValidateDay(day); err != nil {
			t.Errorf("day %d: unexpected error %v", day, err)
		}
	}
	for _, day := range []int{0, -1, 32} {
		if err := ValidateDay(day); err == nil {
			t.Errorf("day %d: expected error", day)
		}
	}
}
