// Package goal classifies recorded entry values against goal targets.
//
// Classification is a display concern, not a validation gate: malformed
// values and missing targets degrade to "unmet" instead of raising, so one
// bad entry can never break a history response.
package goal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the comparison rule a goal applies to its raw entry values.
const (
	KindCount     = "count"
	KindAbove     = "above"
	KindBelow     = "below"
	KindThreshold = "threshold"
	KindRatio     = "ratio"
	KindRange     = "range"
	KindBetween   = "between"
	KindBoolean   = "boolean"
	KindAchieved  = "achieved"
	KindTime      = "time"
)

// Status is the tri-state completion status of one boundary.
type Status string

const (
	StatusMet   Status = "met"
	StatusUnmet Status = "unmet"
	StatusBlank Status = "blank"
)

// KnownKind reports whether kind is one of the recognized comparison rules.
// Used at goal creation; Classify itself tolerates unknown kinds.
func KnownKind(kind string) bool {
	switch kind {
	case KindCount, KindAbove, KindBelow, KindThreshold, KindRatio,
		KindRange, KindBetween, KindBoolean, KindAchieved, KindTime:
		return true
	}
	return false
}

// truthyValues are the raw forms accepted as "done" for boolean-style goals.
var truthyValues = map[string]bool{"true": true, "1": true, "yes": true}

// Classify computes the completion status of a raw entry value under a
// goal's kind and target(s). Targets are carried as raw strings straight
// from storage; numeric comparison is exact decimal arithmetic.
func Classify(kind string, target, targetMax, raw *string) Status {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return StatusBlank
	}
	value := strings.TrimSpace(*raw)

	switch kind {
	case KindCount, KindAbove, KindThreshold, KindRatio:
		v, t, ok := parsePair(value, target)
		if !ok {
			return StatusUnmet
		}
		return statusOf(v.GreaterThanOrEqual(t))

	case KindBelow:
		v, t, ok := parsePair(value, target)
		if !ok {
			return StatusUnmet
		}
		return statusOf(v.LessThanOrEqual(t))

	case KindRange, KindBetween:
		v, lo, ok := parsePair(value, target)
		if !ok {
			return StatusUnmet
		}
		hi, ok := parseTarget(targetMax)
		if !ok {
			return StatusUnmet
		}
		return statusOf(v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi))

	case KindBoolean, KindAchieved:
		return statusOf(truthyValues[strings.ToLower(value)])

	case KindTime:
		// Presence alone satisfies the goal; blanks were handled above.
		return StatusMet
	}

	return StatusUnmet
}

func parsePair(value string, target *string) (v, t decimal.Decimal, ok bool) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	t, ok = parseTarget(target)
	return v, t, ok
}

func parseTarget(target *string) (decimal.Decimal, bool) {
	if target == nil || strings.TrimSpace(*target) == "" {
		return decimal.Zero, false
	}
	t, err := decimal.NewFromString(strings.TrimSpace(*target))
	if err != nil {
		return decimal.Zero, false
	}
	return t, true
}

func statusOf(met bool) Status {
	if met {
		return StatusMet
	}
	return StatusUnmet
}
