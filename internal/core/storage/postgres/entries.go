package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/partition"
)

// timeBasedPartitionTypes limits the squad day view to calendar groups.
var timeBasedPartitionTypes = []string{
	string(partition.TypeMinute),
	string(partition.TypeHourly),
	string(partition.TypeDaily),
	string(partition.TypeWeekly),
	string(partition.TypeBiWeekly),
	string(partition.TypeMonthly),
}

// UpsertEntry implements storage.EntryStore.
func (a *Adapter) UpsertEntry(ctx context.Context, entry *v1.Entry) (*v1.Entry, error) {
	row := a.stmtUpsertEntry.QueryRowContext(ctx,
		entry.UserID,
		entry.SquadID,
		entry.GoalID,
		entry.Boundary,
		nullString(entry.Value),
		nullString(entry.Note),
	)

	stored := *entry
	if err := row.Scan(&stored.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert entry: %w", err)
	}
	return &stored, nil
}

// EntriesForBoundary implements storage.EntryStore.
func (a *Adapter) EntriesForBoundary(ctx context.Context, userID int64, squadID, boundary, goalID string) ([]*v1.Entry, error) {
	var (
		query = queryEntriesForBoundary
		args  = []interface{}{userID, squadID, boundary}
	)
	if goalID != "" {
		query = queryEntriesForBoundaryAndGoal
		args = append(args, goalID)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for boundary: %w", err)
	}
	return scanEntries(rows)
}

// EntriesForUser implements storage.EntryStore.
func (a *Adapter) EntriesForUser(ctx context.Context, userID int64, squadID, groupID string) ([]*v1.Entry, error) {
	var (
		query = queryEntriesForUser
		args  = []interface{}{userID, squadID}
	)
	if groupID != "" {
		query = queryEntriesForUserInGroup
		args = append(args, groupID)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for user: %w", err)
	}
	return scanEntries(rows)
}

// SquadEntriesBetween implements storage.EntryStore.
func (a *Adapter) SquadEntriesBetween(ctx context.Context, squadID, startKey, endKey string) ([]*v1.Entry, error) {
	rows, err := a.db.QueryContext(ctx, querySquadEntriesBetween,
		squadID, startKey, endKey, pq.Array(timeBasedPartitionTypes))
	if err != nil {
		return nil, fmt.Errorf("failed to query squad entries: %w", err)
	}
	return scanEntries(rows)
}
