package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/goal"
	"github.com/squagol/squadgoals/internal/core/partition"
)

var assembleNow = time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

func dailySpec(start, end string) *partition.Spec {
	s, _ := partition.ParseAnchorTime(start)
	e, _ := partition.ParseAnchorTime(end)
	return &partition.Spec{Type: partition.TypeDaily, Dates: &partition.DateRange{Start: s, End: e}}
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func entry(goalID, boundary, value string) *v1.Entry {
	return &v1.Entry{UserID: 1, SquadID: "squad-1", GoalID: goalID, Boundary: boundary, Value: strPtr(value)}
}

func TestAssemble_FillsBlanksAndClassifies(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindCount, Target: strPtr("10000")}
	spec := dailySpec("2024-10-06", "2024-10-10")

	entries := []*v1.Entry{
		entry("goal-1", "2024-10-06", "12000"),
		entry("goal-1", "2024-10-08", "8000"),
	}
	entries[0].ID = 11
	entries[1].ID = 12

	h, err := Assemble(g, spec, "2024-10-06", entries, assembleNow, 0, 7)
	require.NoError(t, err)

	require.Equal(t, "goal-1", h.GoalID)
	require.Equal(t, "Steps", h.GoalName)
	require.Equal(t, 1, h.TotalPages)
	require.Len(t, h.Records, 5)

	// Chronological within the page.
	require.Equal(t, "2024-10-06", h.Records[0].Boundary)
	require.Equal(t, "2024-10-10", h.Records[4].Boundary)

	byBoundary := map[string]BoundaryRecord{}
	for _, r := range h.Records {
		byBoundary[r.Boundary] = r
	}
	require.Equal(t, goal.StatusMet, byBoundary["2024-10-06"].Status)
	require.Equal(t, goal.StatusUnmet, byBoundary["2024-10-08"].Status)
	require.Equal(t, goal.StatusBlank, byBoundary["2024-10-07"].Status)
	require.Nil(t, byBoundary["2024-10-07"].Value)

	// Recorded rows point back at their entry; blanks carry no id.
	require.NotNil(t, byBoundary["2024-10-06"].EntryID)
	require.Equal(t, int64(11), *byBoundary["2024-10-06"].EntryID)
	require.NotNil(t, byBoundary["2024-10-08"].EntryID)
	require.Equal(t, int64(12), *byBoundary["2024-10-08"].EntryID)
	require.Nil(t, byBoundary["2024-10-07"].EntryID)
}

func TestAssemble_DropsMisalignedEntries(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Weigh-in", Type: goal.KindTime}
	start, _ := partition.ParseAnchorTime("2024-09-02")
	end, _ := partition.ParseAnchorTime("2024-09-30")
	spec := &partition.Spec{Type: partition.TypeWeekly, Dates: &partition.DateRange{Start: start, End: end}}

	entries := []*v1.Entry{
		entry("goal-1", "2024-09-02", "80.5"), // on the weekly grid
		entry("goal-1", "2024-09-04", "80.1"), // stale daily entry, off grid
		entry("goal-1", "2024-09-09", "79.8"),
	}

	h, err := Assemble(g, spec, "2024-09-02", entries, assembleNow, 0, 10)
	require.NoError(t, err)

	// 5 weekly boundaries Sep 2..30; the off-grid entry is gone entirely.
	require.Len(t, h.Records, 5)
	for _, r := range h.Records {
		require.NotEqual(t, "2024-09-04", r.Boundary)
	}
}

func TestAssemble_KeepsAlignedEntriesOutsideSeries(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindCount, Target: strPtr("1")}
	spec := dailySpec("2024-10-08", "2024-10-10")

	// Recorded before the configured window starts. Daily alignment always
	// holds, so the record survives alongside the generated series.
	entries := []*v1.Entry{entry("goal-1", "2024-10-01", "5")}

	h, err := Assemble(g, spec, "2024-10-08", entries, assembleNow, 0, 10)
	require.NoError(t, err)
	require.Len(t, h.Records, 4)
	require.Equal(t, "2024-10-01", h.Records[0].Boundary)
	require.Equal(t, goal.StatusMet, h.Records[0].Status)
}

func TestAssemble_OpenEndedCounterExtendsToObservedMax(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Chapters read", Type: goal.KindBoolean}
	spec := &partition.Spec{
		Type:    partition.TypeCustomCounter,
		Label:   "Chapter",
		Counter: &partition.CounterRange{Start: 1},
	}

	entries := []*v1.Entry{
		entry("goal-1", "1", "true"),
		entry("goal-1", "4", "yes"),
	}

	h, err := Assemble(g, spec, "1", entries, assembleNow, 0, 10)
	require.NoError(t, err)

	// Series runs 1..4 because 4 is the highest recorded tick.
	require.Len(t, h.Records, 4)
	require.Equal(t, "1", h.Records[0].Boundary)
	require.Equal(t, goal.StatusMet, h.Records[0].Status)
	require.Equal(t, goal.StatusBlank, h.Records[1].Status) // tick 2
	require.Equal(t, goal.StatusBlank, h.Records[2].Status) // tick 3
	require.Equal(t, goal.StatusMet, h.Records[3].Status)   // tick 4
}

func TestAssemble_BoundedCounterIgnoresObservations(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Sessions", Type: goal.KindTime}
	spec := &partition.Spec{
		Type:    partition.TypeCustomCounter,
		Label:   "Session",
		Counter: &partition.CounterRange{Start: 1, End: int64Ptr(3)},
	}

	h, err := Assemble(g, spec, "1", []*v1.Entry{entry("goal-1", "2", "x")}, assembleNow, 0, 10)
	require.NoError(t, err)
	require.Len(t, h.Records, 3)
	require.Equal(t, "1", h.Records[0].Boundary)
	require.Equal(t, "3", h.Records[2].Boundary)
}

func TestAssemble_CounterSortsNumerically(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Chapters", Type: goal.KindTime}
	spec := &partition.Spec{
		Type:    partition.TypeCustomCounter,
		Label:   "Chapter",
		Counter: &partition.CounterRange{Start: 8},
	}

	entries := []*v1.Entry{entry("goal-1", "10", "x")}

	h, err := Assemble(g, spec, "8", entries, assembleNow, 0, 10)
	require.NoError(t, err)

	// Lexicographic order would put "10" before "8".
	require.Equal(t, []string{"8", "9", "10"}, []string{
		h.Records[0].Boundary, h.Records[1].Boundary, h.Records[2].Boundary,
	})
}

func TestAssemble_PaginatesNewestWindowFirst(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindTime}
	spec := dailySpec("2024-10-01", "2024-10-10")

	// Page 0 holds the most recent boundaries, in chronological order.
	h, err := Assemble(g, spec, "2024-10-01", nil, assembleNow, 0, 7)
	require.NoError(t, err)
	require.Equal(t, 2, h.TotalPages)
	require.Len(t, h.Records, 7)
	require.Equal(t, "2024-10-04", h.Records[0].Boundary)
	require.Equal(t, "2024-10-10", h.Records[6].Boundary)

	page1, err := Assemble(g, spec, "2024-10-01", nil, assembleNow, 1, 7)
	require.NoError(t, err)
	require.Len(t, page1.Records, 3)
	require.Equal(t, "2024-10-01", page1.Records[0].Boundary)
	require.Equal(t, "2024-10-03", page1.Records[2].Boundary)
}

func TestAssemble_PageBeyondEndIsEmpty(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindTime}
	spec := dailySpec("2024-10-09", "2024-10-10")

	h, err := Assemble(g, spec, "2024-10-09", nil, assembleNow, 5, 7)
	require.NoError(t, err)
	require.Empty(t, h.Records)
	require.Equal(t, 1, h.TotalPages)
	require.Equal(t, 5, h.Page)
}

func TestAssemble_SeriesCappedAtNow(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindTime}
	spec := dailySpec("2024-10-08", "2024-10-20") // window runs past "now"

	h, err := Assemble(g, spec, "2024-10-08", nil, assembleNow, 0, 20)
	require.NoError(t, err)
	require.Len(t, h.Records, 3) // Oct 8, 9, 10 only
	require.Equal(t, "2024-10-10", h.Records[2].Boundary)
}

func TestAssemble_UnsupportedTypeFailsClosed(t *testing.T) {
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindTime}
	start, _ := partition.ParseAnchorTime("2024-10-01")
	end, _ := partition.ParseAnchorTime("2024-10-10")
	spec := &partition.Spec{Type: partition.TypeMinute, Dates: &partition.DateRange{Start: start, End: end}}

	_, err := Assemble(g, spec, "2024-10-01", nil, assembleNow, 0, 7)
	require.ErrorIs(t, err, partition.ErrUnsupportedType)
}

func TestAssemble_RoundTrip(t *testing.T) {
	// Every boundary appears on exactly one page. Pages walk backwards
	// through time while each page itself stays chronological.
	g := &v1.Goal{ID: "goal-1", Name: "Steps", Type: goal.KindTime}
	spec := dailySpec("2024-09-15", "2024-10-10")

	seen := make(map[string]bool)
	prevOldest := ""
	total := 0
	for page := 0; ; page++ {
		h, err := Assemble(g, spec, "2024-09-15", nil, assembleNow, page, 7)
		require.NoError(t, err)
		if len(h.Records) == 0 {
			require.Equal(t, h.TotalPages, page)
			break
		}

		for i, r := range h.Records {
			require.False(t, seen[r.Boundary])
			seen[r.Boundary] = true
			if i > 0 {
				require.Positive(t, partition.Compare(r.Boundary, h.Records[i-1].Boundary, partition.TypeDaily))
			}
		}

		newest := h.Records[len(h.Records)-1].Boundary
		if prevOldest != "" {
			require.Negative(t, partition.Compare(newest, prevOldest, partition.TypeDaily))
		}
		prevOldest = h.Records[0].Boundary
		total += len(h.Records)
	}

	require.Equal(t, 26, total)
}
