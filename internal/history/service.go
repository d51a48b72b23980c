package history

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// assembleConcurrency bounds how many goals are assembled in parallel per
// request.
const assembleConcurrency = 4

type Service struct {
	entries         storage.EntryStore
	goals           storage.GoalStore
	defaultPageSize int
	now             func() time.Time
}

func NewService(entries storage.EntryStore, goals storage.GoalStore, defaultPageSize int) *Service {
	if entries == nil {
		panic("history: entry store must not be nil")
	}
	if goals == nil {
		panic("history: goal store must not be nil")
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 7
	}
	return &Service{
		entries:         entries,
		goals:           goals,
		defaultPageSize: defaultPageSize,
		now:             time.Now,
	}
}

// History assembles the paginated history of every goal visible in the
// request scope: all groups of the squad, or a single group when groupID is
// non-empty. Goals whose stored partition metadata can no longer produce a
// series are skipped with a warning rather than failing the response.
func (s *Service) History(ctx context.Context, userID int64, squadID, groupID string, page, pageSize int) ([]*GoalHistory, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}

	groups, err := s.groupsInScope(ctx, squadID, groupID)
	if err != nil {
		return nil, err
	}
	groupByID := make(map[string]*v1.GoalGroup, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}

	allGoals, err := s.goals.GoalsForSquad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	var scoped []*v1.Goal
	for _, g := range allGoals {
		if _, ok := groupByID[g.GroupID]; ok {
			scoped = append(scoped, g)
		}
	}

	rows, err := s.entries.EntriesForUser(ctx, userID, squadID, groupID)
	if err != nil {
		return nil, err
	}
	entriesByGoal := make(map[string][]*v1.Entry)
	for _, e := range rows {
		entriesByGoal[e.GoalID] = append(entriesByGoal[e.GoalID], e)
	}

	now := s.now()
	results := make([]*GoalHistory, len(scoped))

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(assembleConcurrency)
	for i, g := range scoped {
		eg.Go(func() error {
			group := groupByID[g.GroupID]
			spec, err := group.PartitionSpec()
			if err != nil {
				slog.Warn("Skipping goal with invalid partition metadata",
					"goal_id", g.ID, "group_id", group.ID, "error", err)
				return nil
			}

			h, err := Assemble(g, spec, group.AnchorKey(), entriesByGoal[g.ID], now, page, pageSize)
			if err != nil {
				slog.Warn("Skipping goal whose partition cannot generate a series",
					"goal_id", g.ID, "partition_type", group.PartitionType, "error", err)
				return nil
			}
			results[i] = h
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	histories := make([]*GoalHistory, 0, len(results))
	for _, h := range results {
		if h != nil {
			histories = append(histories, h)
		}
	}
	return histories, nil
}

func (s *Service) groupsInScope(ctx context.Context, squadID, groupID string) ([]*v1.GoalGroup, error) {
	if groupID != "" {
		group, err := s.goals.GetGroup(ctx, squadID, groupID)
		if err != nil {
			return nil, err
		}
		return []*v1.GoalGroup{group}, nil
	}
	return s.goals.GroupsForSquad(ctx, squadID)
}
