package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	RangeAll   TimeRange = "all"
	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// TimeRange is the transaction list's period selector.
type TimeRange string

func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeToday, RangeWeek, RangeMonth:
		return r, nil
	}
	return "", fmt.Errorf("%w: range %q is not one of all, today, week, month", ErrUnknownFilter, s)
}

// Start returns the inclusive lower bound of the range relative to now.
// The zero time is returned for RangeAll.
func (r TimeRange) Start(now time.Time) time.Time {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour)
	case RangeMonth:
		y, m, _ := now.Date()
		return time.Date(y, m-1, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

// Contains reports whether ts falls in [Start(now), now].
func (r TimeRange) Contains(ts, now time.Time) bool {
	if r == RangeAll || r == "" {
		return true
	}
	return !ts.Before(r.Start(now)) && !ts.After(now)
}
