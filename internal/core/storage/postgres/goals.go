package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// GroupsForSquad implements storage.GoalStore.
func (a *Adapter) GroupsForSquad(ctx context.Context, squadID string) ([]*v1.GoalGroup, error) {
	rows, err := a.db.QueryContext(ctx, queryGroupsForSquad, squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal groups: %w", err)
	}
	defer rows.Close()

	var groups []*v1.GoalGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroup implements storage.GoalStore.
func (a *Adapter) GetGroup(ctx context.Context, squadID, groupID string) (*v1.GoalGroup, error) {
	rows, err := a.db.QueryContext(ctx, queryGetGroup, squadID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal group: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanGroup(rows)
}

// SaveGroup implements storage.GoalStore.
func (a *Adapter) SaveGroup(ctx context.Context, group *v1.GoalGroup) error {
	_, err := a.db.ExecContext(ctx, querySaveGroup,
		group.ID,
		group.SquadID,
		group.Name,
		group.PartitionType,
		nullString(group.PartitionLabel),
		nullInt64(group.StartValue),
		nullInt64(group.EndValue),
		nullTime(group.StartDate),
		nullTime(group.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to save goal group: %w", err)
	}
	return nil
}

// DeleteGroup implements storage.GoalStore.
func (a *Adapter) DeleteGroup(ctx context.Context, squadID, groupID string) error {
	res, err := a.db.ExecContext(ctx, queryDeleteGroup, squadID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete goal group: %w", err)
	}
	return notFoundOnZeroRows(res)
}

// GoalsForSquad implements storage.GoalStore.
func (a *Adapter) GoalsForSquad(ctx context.Context, squadID string) ([]*v1.Goal, error) {
	rows, err := a.db.QueryContext(ctx, queryGoalsForSquad, squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []*v1.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetGoal implements storage.GoalStore.
func (a *Adapter) GetGoal(ctx context.Context, squadID, goalID string) (*v1.Goal, error) {
	rows, err := a.db.QueryContext(ctx, queryGetGoal, squadID, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}
	return scanGoal(rows)
}

// SaveGoal implements storage.GoalStore.
func (a *Adapter) SaveGoal(ctx context.Context, goal *v1.Goal) error {
	_, err := a.db.ExecContext(ctx, querySaveGoal,
		goal.ID,
		goal.SquadID,
		goal.GroupID,
		goal.Name,
		goal.Type,
		nullString(goal.Target),
		nullString(goal.TargetMax),
		goal.IsPrivate,
		goal.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// DeleteGoal implements storage.GoalStore.
func (a *Adapter) DeleteGoal(ctx context.Context, squadID, goalID string) error {
	res, err := a.db.ExecContext(ctx, queryDeleteGoal, squadID, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return notFoundOnZeroRows(res)
}

func scanGroup(rows *sql.Rows) (*v1.GoalGroup, error) {
	var (
		g                  v1.GoalGroup
		label              sql.NullString
		startVal, endVal   sql.NullInt64
		startDate, endDate sql.NullTime
	)
	err := rows.Scan(&g.ID, &g.SquadID, &g.Name, &g.PartitionType,
		&label, &startVal, &endVal, &startDate, &endDate)
	if err != nil {
		return nil, err
	}
	g.PartitionLabel = stringPtr(label)
	g.StartValue = int64Ptr(startVal)
	g.EndValue = int64Ptr(endVal)
	g.StartDate = timePtr(startDate)
	g.EndDate = timePtr(endDate)
	return &g, nil
}

func scanGoal(rows *sql.Rows) (*v1.Goal, error) {
	var (
		g                 v1.Goal
		target, targetMax sql.NullString
	)
	err := rows.Scan(&g.ID, &g.SquadID, &g.GroupID, &g.Name, &g.Type,
		&target, &targetMax, &g.IsPrivate, &g.IsActive)
	if err != nil {
		return nil, err
	}
	g.Target = stringPtr(target)
	g.TargetMax = stringPtr(targetMax)
	return &g, nil
}

func notFoundOnZeroRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isNoRows normalizes the driver's sentinel for single-row lookups.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
