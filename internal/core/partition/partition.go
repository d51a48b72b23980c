package partition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type is the cadence rule governing how boundaries are spaced.
// The set is closed: membership checks dispatch on the constant, never on
// runtime string lists.
type Type string

const (
	TypeMinute        Type = "Minute"
	TypeHourly        Type = "Hourly"
	TypeDaily         Type = "Daily"
	TypeWeekly        Type = "Weekly"
	TypeBiWeekly      Type = "BiWeekly"
	TypeMonthly       Type = "Monthly"
	TypeCustomCounter Type = "CustomCounter"
)

// Validation errors surfaced verbatim to callers (HTTP 400 at the edge).
var (
	ErrInvalidType            = errors.New("invalid partition type")
	ErrMissingLabel           = errors.New("CustomCounter partition requires a partition_label")
	ErrNonIntegerCounterBound = errors.New("CustomCounter start/end values must be integers")
	ErrInvalidCounterRange    = errors.New("start value must be less than end value")
	ErrMissingDateBounds      = errors.New("missing required group fields (start_date, end_date)")
	ErrInvalidDateFormat      = errors.New("invalid date/datetime format, use ISO 8601")
	ErrNonChronologicalRange  = errors.New("start date/time must be before end date/time")
)

// ParseType validates a raw partition type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeMinute, TypeHourly, TypeDaily, TypeWeekly, TypeBiWeekly, TypeMonthly, TypeCustomCounter:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// IsTimeBased reports whether boundaries of this type are calendar dates
// rather than counter ticks.
func (t Type) IsTimeBased() bool {
	switch t {
	case TypeMinute, TypeHourly, TypeDaily, TypeWeekly, TypeBiWeekly, TypeMonthly:
		return true
	}
	return false
}

// DateRange is the anchor range of a time-based partition.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CounterRange is the anchor range of a CustomCounter partition.
// End is nil for open-ended counters.
type CounterRange struct {
	Start int64
	End   *int64
}

// Spec is a validated partition configuration. Exactly one of Dates or
// Counter is populated, selected by Type.
type Spec struct {
	Type    Type
	Label   string // counter partitions only
	Dates   *DateRange
	Counter *CounterRange
}

// Config is the raw, untrusted partition configuration supplied at
// goal-group creation time. All fields are optional strings; which ones
// are required depends on the partition type.
type Config struct {
	Label      string
	StartDate  string
	EndDate    string
	StartValue string
	EndValue   string
}

// ValidateConfig parses and validates a partition configuration.
// Pure: the caller persists the resulting Spec.
func ValidateConfig(rawType string, cfg Config) (*Spec, error) {
	typ, err := ParseType(rawType)
	if err != nil {
		return nil, err
	}
	if typ == TypeCustomCounter {
		return validateCounterConfig(typ, cfg)
	}
	return validateDateConfig(typ, cfg)
}

func validateCounterConfig(typ Type, cfg Config) (*Spec, error) {
	if strings.TrimSpace(cfg.Label) == "" {
		return nil, ErrMissingLabel
	}

	// start_value defaults to 0 when absent.
	var start int64
	if strings.TrimSpace(cfg.StartValue) != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(cfg.StartValue), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: start_value %q", ErrNonIntegerCounterBound, cfg.StartValue)
		}
		start = v
	}

	var end *int64
	if strings.TrimSpace(cfg.EndValue) != "" {
		v, err := strconv.ParseInt(strings.TrimSpace(cfg.EndValue), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: end_value %q", ErrNonIntegerCounterBound, cfg.EndValue)
		}
		if start >= v {
			return nil, ErrInvalidCounterRange
		}
		end = &v
	}

	return &Spec{
		Type:    typ,
		Label:   cfg.Label,
		Counter: &CounterRange{Start: start, End: end},
	}, nil
}

func validateDateConfig(typ Type, cfg Config) (*Spec, error) {
	if cfg.StartDate == "" || cfg.EndDate == "" {
		return nil, ErrMissingDateBounds
	}

	start, err := ParseAnchorTime(cfg.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseAnchorTime(cfg.EndDate)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, ErrNonChronologicalRange
	}

	return &Spec{
		Type:  typ,
		Dates: &DateRange{Start: start, End: end},
	}, nil
}

// anchorLayouts are the accepted ISO-8601 shapes for date anchors, tried in
// order. A trailing Z parses as UTC offset +00:00 via RFC 3339.
var anchorLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseAnchorTime parses an ISO-8601 date or datetime string.
func ParseAnchorTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range anchorLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}
