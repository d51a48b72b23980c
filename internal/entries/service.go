package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/partition"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// ErrNoKnownGoals is returned when every goal id in a submission is unknown
// to the squad.
var ErrNoKnownGoals = errors.New("no known goals in submission")

// ErrInvalidDayRange is returned when a day-view date parameter is not a
// YYYY-MM-DD value.
var ErrInvalidDayRange = errors.New("invalid date format, expected YYYY-MM-DD")

type Service struct {
	entries          storage.EntryStore
	goals            storage.GoalStore
	maxBodySizeBytes int
}

func NewService(entries storage.EntryStore, goals storage.GoalStore, maxBodySizeMB int) *Service {
	if entries == nil {
		panic("entries: entry store must not be nil")
	}
	if goals == nil {
		panic("entries: goal store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		entries:          entries,
		goals:            goals,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the entry recording and retrieval routes. The
// supplied middleware chain (identity, squad membership) guards every route.
func (s *Service) RegisterRoutes(r gin.IRouter, guards ...gin.HandlerFunc) {
	g := r.Group("/v1/squads/:squad_id/goals", guards...)
	g.POST("/entry", s.SubmitHandler)
	g.GET("/entry", s.GetEntriesHandler)
	g.GET("/entries/day", s.DayViewHandler)
}

// SubmissionResult reports what a submission actually recorded. Goal ids not
// belonging to the squad are skipped rather than failing the whole batch.
type SubmissionResult struct {
	Boundary string      `json:"boundary"`
	Entries  []*v1.Entry `json:"entries"`
	Skipped  []string    `json:"skipped,omitempty"`
}

// Submit records one user's entries against a single boundary. Each entry is
// upserted: first submission inserts, resubmission overwrites value and note.
func (s *Service) Submit(ctx context.Context, userID int64, squadID string, sub *v1.EntrySubmission) (*SubmissionResult, error) {
	boundary, err := sub.Validate()
	if err != nil {
		return nil, err
	}

	known, err := s.goals.GoalsForSquad(ctx, squadID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*v1.Goal, len(known))
	for _, g := range known {
		byID[g.ID] = g
	}

	result := &SubmissionResult{Boundary: boundary}
	for goalID, input := range sub.Entries {
		if _, ok := byID[goalID]; !ok {
			slog.Warn("Skipping entry for unknown goal", "squad_id", squadID, "goal_id", goalID)
			result.Skipped = append(result.Skipped, goalID)
			continue
		}

		stored, err := s.entries.UpsertEntry(ctx, &v1.Entry{
			UserID:   userID,
			SquadID:  squadID,
			GoalID:   goalID,
			Boundary: boundary,
			Value:    input.Value,
			Note:     input.Note,
		})
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, stored)
	}

	if len(result.Entries) == 0 {
		return nil, ErrNoKnownGoals
	}
	return result, nil
}

// Get fetches one user's entries for a boundary, optionally filtered to a
// single goal.
func (s *Service) Get(ctx context.Context, userID int64, squadID, rawBoundary, goalID string) ([]*v1.Entry, error) {
	boundary, err := partition.NormalizeBoundary(rawBoundary)
	if err != nil {
		return nil, err
	}
	return s.entries.EntriesForBoundary(ctx, userID, squadID, boundary, goalID)
}

// DayView fetches every member's entries for one calendar day or an
// inclusive date range, grouped by user. Only time-based partition groups
// participate; counter entries are excluded at the query level.
func (s *Service) DayView(ctx context.Context, squadID, date, startDate, endDate string) (map[int64][]*v1.Entry, error) {
	from, to, err := resolveDayRange(date, startDate, endDate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.SquadEntriesBetween(ctx, squadID, from, to)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64][]*v1.Entry)
	for _, e := range rows {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	return byUser, nil
}

// resolveDayRange applies the day-view parameter rules: an explicit
// start/end pair wins, a single date collapses to itself, and no input at
// all means today.
func resolveDayRange(date, startDate, endDate string, today time.Time) (string, string, error) {
	switch {
	case startDate != "" && endDate != "":
		from, err := parseDayKey(startDate)
		if err != nil {
			return "", "", err
		}
		to, err := parseDayKey(endDate)
		if err != nil {
			return "", "", err
		}
		return from, to, nil
	case date != "":
		key, err := parseDayKey(date)
		if err != nil {
			return "", "", err
		}
		return key, key, nil
	default:
		key := today.Format(partition.DateKeyLayout)
		return key, key, nil
	}
}

func parseDayKey(raw string) (string, error) {
	t, err := time.Parse(partition.DateKeyLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayRange, raw)
	}
	return t.Format(partition.DateKeyLayout), nil
}
