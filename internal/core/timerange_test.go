package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	for in, want := range map[string]TimeRange{"": RangeAll, "ALL": RangeAll, "today": RangeToday, " Week ": RangeWeek, "month": RangeMonth} {
		got, err := ParseTimeRange(in)
		if err != nil || got != want {
			t.Fatalf("ParseTimeRange(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseTimeRange("year"); !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestTimeRangeContains(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		r    TimeRange
		ts   time.Time
		want bool
	}{
		{"all matches anything", RangeAll, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"today at midnight", RangeToday, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"yesterday excluded", RangeToday, time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), false},
		{"future excluded", RangeToday, now.Add(time.Minute), false},
		{"six days ago in week", RangeWeek, now.Add(-6 * 24 * time.Hour), true},
		{"eight days ago outside week", RangeWeek, now.Add(-8 * 24 * time.Hour), false},
		{"start of previous month", RangeMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"before previous month", RangeMonth, time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := tc.r.Contains(tc.ts, now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMonthStartCrossesYear(t *testing.T) {
	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	want := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	if got := RangeMonth.Start(now); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
