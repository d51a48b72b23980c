package partition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeBoundary(t *testing.T) {
	got, err := NormalizeBoundary("2024-01-01")
	require.NoError(t, err)
	require.Equal(t, "2024-01-01", got)

	// Keys are opaque: no reformatting.
	got, err = NormalizeBoundary("42")
	require.NoError(t, err)
	require.Equal(t, "42", got)

	_, err = NormalizeBoundary("")
	require.ErrorIs(t, err, ErrEmptyBoundary)
	_, err = NormalizeBoundary("   ")
	require.ErrorIs(t, err, ErrEmptyBoundary)
}

func TestIsAligned(t *testing.T) {
	anchor := "2024-10-01"

	tests := []struct {
		name   string
		key    string
		typ    Type
		anchor string
		want   bool
	}{
		{name: "daily always aligned", key: "2024-10-13", typ: TypeDaily, anchor: anchor, want: true},
		{name: "weekly on anchor", key: "2024-10-01", typ: TypeWeekly, anchor: anchor, want: true},
		{name: "weekly one week out", key: "2024-10-08", typ: TypeWeekly, anchor: anchor, want: true},
		{name: "weekly off grid", key: "2024-10-03", typ: TypeWeekly, anchor: anchor, want: false},
		{name: "biweekly on anchor", key: "2024-10-01", typ: TypeBiWeekly, anchor: anchor, want: true},
		{name: "biweekly fourteen days out", key: "2024-10-15", typ: TypeBiWeekly, anchor: anchor, want: true},
		{name: "biweekly seven days out rejected", key: "2024-10-08", typ: TypeBiWeekly, anchor: anchor, want: false},
		{name: "monthly day-of-month match", key: "2024-11-01", typ: TypeMonthly, anchor: anchor, want: true},
		{name: "monthly day mismatch", key: "2024-11-15", typ: TypeMonthly, anchor: anchor, want: false},
		// Day-of-month is matched literally: a day-31 anchor never aligns in November.
		{name: "monthly short month never aligns", key: "2024-11-30", typ: TypeMonthly, anchor: "2024-10-31", want: false},
		{name: "counter integer key", key: "7", typ: TypeCustomCounter, anchor: "1", want: true},
		{name: "counter ignores range bounds", key: "-3", typ: TypeCustomCounter, anchor: "1", want: true},
		{name: "counter non-integer key", key: "2024-10-01", typ: TypeCustomCounter, anchor: "1", want: false},
		// Fail-open cases: unknown types and unparseable calendar keys stay visible.
		{name: "unknown type fails open", key: "2024-10-03", typ: Type("Quarterly"), anchor: anchor, want: true},
		{name: "unparseable key fails open", key: "garbage", typ: TypeWeekly, anchor: anchor, want: true},
		{name: "unparseable anchor fails open", key: "2024-10-03", typ: TypeWeekly, anchor: "garbage", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsAligned(tc.key, tc.typ, tc.anchor))
		})
	}
}

func TestCompare(t *testing.T) {
	// Counter keys compare numerically, not lexically.
	require.Equal(t, -1, Compare("9", "10", TypeCustomCounter))
	require.Equal(t, 1, Compare("10", "9", TypeCustomCounter))
	require.Equal(t, 0, Compare("7", "7", TypeCustomCounter))

	// Calendar keys compare chronologically.
	require.Equal(t, -1, Compare("2024-09-30", "2024-10-01", TypeDaily))
	require.Equal(t, 1, Compare("2024-10-02", "2024-10-01", TypeWeekly))
	require.Equal(t, 0, Compare("2024-10-01", "2024-10-01", TypeMonthly))

	// Unparseable keys fall back to deterministic string order.
	require.Equal(t, -1, Compare("a", "b", TypeDaily))
	require.Equal(t, 1, Compare("x", "42", TypeCustomCounter))
}
