package partition

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyBoundary is returned when an entry submission carries no boundary value.
var ErrEmptyBoundary = errors.New("invalid or missing entry boundary value")

// DateKeyLayout is the canonical string form of a calendar boundary key.
const DateKeyLayout = "2006-01-02"

// NormalizeBoundary converts a raw boundary identifier into its canonical
// string key. Keys are opaque: no reformatting happens here, and comparison
// dispatches on the partition type elsewhere (Compare).
func NormalizeBoundary(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyBoundary
	}
	return raw, nil
}

// IsAligned reports whether a boundary key lies exactly on the grid implied
// by the partition type and its anchor. Used to silently drop stale entries
// after a goal's partition type changes.
//
// Unknown types and unparseable calendar keys fail open (aligned): hiding
// legitimate but oddly-formatted legacy data is worse than rendering it.
// Monthly deliberately matches on raw day-of-month, so an anchor on the
// 29th-31st never aligns inside shorter months.
func IsAligned(key string, typ Type, anchor string) bool {
	switch typ {
	case TypeCustomCounter:
		_, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		return err == nil
	case TypeDaily:
		return true
	case TypeWeekly:
		return daysSinceAnchorDivisible(key, anchor, 7)
	case TypeBiWeekly:
		return daysSinceAnchorDivisible(key, anchor, 14)
	case TypeMonthly:
		keyDate, err := ParseAnchorTime(key)
		if err != nil {
			return true
		}
		anchorDate, err := ParseAnchorTime(anchor)
		if err != nil {
			return true
		}
		return keyDate.Day() == anchorDate.Day()
	default:
		return true
	}
}

func daysSinceAnchorDivisible(key, anchor string, period int) bool {
	keyDate, err := ParseAnchorTime(key)
	if err != nil {
		return true
	}
	anchorDate, err := ParseAnchorTime(anchor)
	if err != nil {
		return true
	}
	days := int(truncateToDay(keyDate).Sub(truncateToDay(anchorDate)).Hours() / 24)
	return days%period == 0
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Compare orders two boundary keys under the given partition type: numeric
// for counters, chronological for calendar types. Keys that fail to parse
// sort by their raw string form, keeping the order deterministic.
func Compare(a, b string, typ Type) int {
	if typ == TypeCustomCounter {
		ai, aerr := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		bi, berr := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
		if aerr == nil && berr == nil {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
		return strings.Compare(a, b)
	}

	at, aerr := ParseAnchorTime(a)
	bt, berr := ParseAnchorTime(b)
	if aerr == nil && berr == nil {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
