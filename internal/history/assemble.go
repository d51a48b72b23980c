package history

import (
	"sort"
	"strconv"
	"strings"
	"time"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/goal"
	"github.com/squagol/squadgoals/internal/core/partition"
)

// Assemble builds the full paginated history for one goal out of its
// partition spec and the user's recorded entries.
//
// Entries misaligned with the partition grid (typically left over from a
// partition type change) are dropped silently. Every boundary the partition
// has produced so far appears in the result: boundaries without an entry
// become blank records. Pagination slices newest first, so page 0 is always
// the most recent window, but each returned page reads oldest to newest.
func Assemble(g *v1.Goal, spec *partition.Spec, anchor string, entries []*v1.Entry, now time.Time, page, pageSize int) (*GoalHistory, error) {
	aligned := make(map[string]*v1.Entry)
	for _, e := range entries {
		if partition.IsAligned(e.Boundary, spec.Type, anchor) {
			aligned[e.Boundary] = e
		}
	}

	series, err := partition.GenerateSeries(spec, now, observedMaxOf(spec, aligned))
	if err != nil {
		return nil, err
	}

	records := make([]BoundaryRecord, 0, len(series)+len(aligned))
	for key, e := range aligned {
		records = append(records, BoundaryRecord{
			Boundary: key,
			EntryID:  &e.ID,
			Value:    e.Value,
			Note:     e.Note,
			Status:   goal.Classify(g.Type, g.Target, g.TargetMax, e.Value),
		})
	}
	for _, key := range series {
		if _, ok := aligned[key]; ok {
			continue
		}
		records = append(records, BoundaryRecord{Boundary: key, Status: goal.StatusBlank})
	}

	sort.Slice(records, func(i, j int) bool {
		// Descending: newest boundary first.
		return partition.Compare(records[i].Boundary, records[j].Boundary, spec.Type) > 0
	})

	paged, totalPages := paginate(records, page, pageSize)

	// The page was sliced off a newest-first ordering; flip it back so the
	// returned records run chronologically.
	for i, j := 0, len(paged)-1; i < j; i, j = i+1, j-1 {
		paged[i], paged[j] = paged[j], paged[i]
	}

	return &GoalHistory{
		GoalID:     g.ID,
		GoalName:   g.Name,
		Records:    paged,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// observedMaxOf returns the largest recorded counter boundary, or nil when
// the partition is calendar-based or no entries exist. Open-ended counters
// extend their series up to this value.
func observedMaxOf(spec *partition.Spec, aligned map[string]*v1.Entry) *int64 {
	if spec.Type != partition.TypeCustomCounter {
		return nil
	}
	var max *int64
	for key := range aligned {
		v, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		if max == nil || v > *max {
			max = &v
		}
	}
	return max
}

func paginate(records []BoundaryRecord, page, pageSize int) ([]BoundaryRecord, int) {
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	start := page * pageSize
	if start >= total {
		return []BoundaryRecord{}, totalPages
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return records[start:end], totalPages
}
