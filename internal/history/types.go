package history

import (
	"github.com/squagol/squadgoals/internal/core/goal"
)

// BoundaryRecord is one boundary's row in a goal history: the recorded value
// (nil when the boundary was never submitted) and its completion status.
// EntryID points back at the stored entry; blank boundaries carry null.
type BoundaryRecord struct {
	Boundary string      `json:"date"`
	EntryID  *int64      `json:"entry_id"`
	Value    *string     `json:"value"`
	Note     *string     `json:"note,omitempty"`
	Status   goal.Status `json:"status"`
}

// GoalHistory is the paginated per-goal view returned by the history API.
// Page 0 holds the most recent boundaries; records within a page run oldest
// to newest.
type GoalHistory struct {
	GoalID     string           `json:"goal_id"`
	GoalName   string           `json:"goal_name"`
	Records    []BoundaryRecord `json:"history"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
