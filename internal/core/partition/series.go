package partition

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUnsupportedType is returned by GenerateSeries for partition types it
// cannot step. Unlike alignment checking, series generation fails closed.
var ErrUnsupportedType = errors.New("unsupported partition type")

// GenerateSeries produces the complete ordered sequence of canonical
// boundary keys for a partition spec, ascending (oldest first).
//
// Calendar series are capped at "now": future boundaries are never
// materialized, and a start date in the future yields an empty series.
// Open-ended counters have no canonical upper bound of their own, so the
// caller passes observedMax, the largest boundary key actually recorded
// (nil when no entries exist).
func GenerateSeries(spec *Spec, now time.Time, observedMax *int64) ([]string, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrUnsupportedType)
	}
	if spec.Type == TypeCustomCounter {
		if spec.Counter == nil {
			return nil, fmt.Errorf("%w: counter spec missing range", ErrUnsupportedType)
		}
		return counterSeries(spec.Counter, observedMax), nil
	}
	if spec.Dates == nil {
		return nil, fmt.Errorf("%w: calendar spec missing date range", ErrUnsupportedType)
	}
	return dateSeries(spec.Dates.Start, spec.Dates.End, spec.Type, now)
}

func counterSeries(r *CounterRange, observedMax *int64) []string {
	end := r.Start
	switch {
	case r.End != nil:
		end = *r.End
	case observedMax != nil:
		end = *observedMax
	}

	var keys []string
	for i := r.Start; i <= end; i++ {
		keys = append(keys, strconv.FormatInt(i, 10))
	}
	return keys
}

func dateSeries(start, end time.Time, typ Type, now time.Time) ([]string, error) {
	step := func(t time.Time) time.Time { return t }
	switch typ {
	case TypeDaily:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case TypeWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case TypeBiWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 14) }
	case TypeMonthly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}

	// Cap at end of today so future boundaries never appear ahead of time.
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	if start.After(today) {
		return nil, nil
	}
	effectiveEnd := end
	if effectiveEnd.After(today) {
		effectiveEnd = today
	}

	var keys []string
	for current := start; !current.After(effectiveEnd); current = step(current) {
		keys = append(keys, current.Format(DateKeyLayout))
	}
	return keys, nil
}
