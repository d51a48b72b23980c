package entries

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/partition"
	"github.com/squagol/squadgoals/internal/core/storage"
	"github.com/squagol/squadgoals/internal/server"
)

// fakeEntryStore is a simple in-memory entry store for handler tests.
type fakeEntryStore struct {
	upserted  []*v1.Entry
	rows      []*v1.Entry
	rangeFrom string
	rangeTo   string
	err       error
}

func (f *fakeEntryStore) UpsertEntry(ctx context.Context, entry *v1.Entry) (*v1.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored := *entry
	stored.ID = int64(len(f.upserted) + 1)
	f.upserted = append(f.upserted, &stored)
	return &stored, nil
}

func (f *fakeEntryStore) EntriesForBoundary(ctx context.Context, userID int64, squadID, boundary, goalID string) ([]*v1.Entry, error) {
	return f.rows, f.err
}

func (f *fakeEntryStore) EntriesForUser(ctx context.Context, userID int64, squadID, groupID string) ([]*v1.Entry, error) {
	return f.rows, f.err
}

func (f *fakeEntryStore) SquadEntriesBetween(ctx context.Context, squadID, startKey, endKey string) ([]*v1.Entry, error) {
	f.rangeFrom, f.rangeTo = startKey, endKey
	return f.rows, f.err
}

type fakeGoalStore struct {
	goals []*v1.Goal
	err   error
}

func (f *fakeGoalStore) GroupsForSquad(ctx context.Context, squadID string) ([]*v1.GoalGroup, error) {
	return nil, nil
}
func (f *fakeGoalStore) GetGroup(ctx context.Context, squadID, groupID string) (*v1.GoalGroup, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeGoalStore) SaveGroup(ctx context.Context, group *v1.GoalGroup) error { return nil }
func (f *fakeGoalStore) DeleteGroup(ctx context.Context, squadID, groupID string) error {
	return nil
}
func (f *fakeGoalStore) GoalsForSquad(ctx context.Context, squadID string) ([]*v1.Goal, error) {
	return f.goals, f.err
}
func (f *fakeGoalStore) GetGoal(ctx context.Context, squadID, goalID string) (*v1.Goal, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeGoalStore) SaveGoal(ctx context.Context, goal *v1.Goal) error          { return nil }
func (f *fakeGoalStore) DeleteGoal(ctx context.Context, squadID, goalID string) error { return nil }

type fakeResolver struct{}

func (fakeResolver) GetUser(ctx context.Context, userID int64) (*v1.User, error) {
	return &v1.User{ID: userID, Username: "tester"}, nil
}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r, server.Identity(fakeResolver{}))
	return r
}

func strPtr(s string) *string { return &s }

func TestSubmitHandler_Success(t *testing.T) {
	entryStore := &fakeEntryStore{}
	goalStore := &fakeGoalStore{goals: []*v1.Goal{
		{ID: "goal-1", SquadID: "squad-1"},
		{ID: "goal-2", SquadID: "squad-1"},
	}}
	svc := NewService(entryStore, goalStore, 1)
	r := newTestRouter(svc)

	body, _ := json.Marshal(v1.EntrySubmission{
		Boundary: "2024-10-05",
		Entries: map[string]v1.EntryInput{
			"goal-1":  {Value: strPtr("12000")},
			"goal-2":  {Value: strPtr("true"), Note: strPtr("felt great")},
			"unknown": {Value: strPtr("1")},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var result SubmissionResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "2024-10-05", result.Boundary)
	require.Len(t, result.Entries, 2)
	require.Equal(t, []string{"unknown"}, result.Skipped)
	require.Len(t, entryStore.upserted, 2)
	require.Equal(t, int64(42), entryStore.upserted[0].UserID)
}

func TestSubmitHandler_EmptyBoundary(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	body, _ := json.Marshal(v1.EntrySubmission{
		Boundary: "   ",
		Entries:  map[string]v1.EntryInput{"goal-1": {Value: strPtr("1")}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidBoundary, errResp.ErrorType)
}

func TestSubmitHandler_AllGoalsUnknown(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	body, _ := json.Marshal(v1.EntrySubmission{
		Boundary: "2024-10-05",
		Entries:  map[string]v1.EntryInput{"nope": {Value: strPtr("1")}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSubmitHandler_InvalidJSON(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestSubmitHandler_BodySizeLimit(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	svc.maxBodySizeBytes = 10
	r := newTestRouter(svc)

	body, _ := json.Marshal(v1.EntrySubmission{
		Boundary: "2024-10-05",
		Entries:  map[string]v1.EntryInput{"goal-1": {Note: strPtr("well over ten bytes of note text")}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestSubmitHandler_MissingIdentity(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/squads/squad-1/goals/entry", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetEntriesHandler_Success(t *testing.T) {
	entryStore := &fakeEntryStore{rows: []*v1.Entry{
		{ID: 1, UserID: 42, SquadID: "squad-1", GoalID: "goal-1", Boundary: "2024-10-05", Value: strPtr("12000")},
	}}
	svc := NewService(entryStore, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entry?date=2024-10-05", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		Entries []*v1.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Len(t, result.Entries, 1)
	require.Equal(t, "goal-1", result.Entries[0].GoalID)
}

func TestGetEntriesHandler_MissingDate(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entry", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDayViewHandler_GroupsByUser(t *testing.T) {
	entryStore := &fakeEntryStore{rows: []*v1.Entry{
		{ID: 1, UserID: 42, SquadID: "squad-1", GoalID: "goal-1", Boundary: "2024-10-05"},
		{ID: 2, UserID: 42, SquadID: "squad-1", GoalID: "goal-2", Boundary: "2024-10-05"},
		{ID: 3, UserID: 7, SquadID: "squad-1", GoalID: "goal-1", Boundary: "2024-10-05"},
	}}
	svc := NewService(entryStore, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entries/day?date=2024-10-05", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		ByUser map[string][]*v1.Entry `json:"entries_by_user"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Len(t, result.ByUser["42"], 2)
	require.Len(t, result.ByUser["7"], 1)
}

func TestDayViewHandler_DefaultsToToday(t *testing.T) {
	entryStore := &fakeEntryStore{}
	svc := NewService(entryStore, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	today := time.Now().UTC().Format(partition.DateKeyLayout)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entries/day", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, today, entryStore.rangeFrom)
	require.Equal(t, today, entryStore.rangeTo)
}

func TestDayViewHandler_DateRange(t *testing.T) {
	entryStore := &fakeEntryStore{}
	svc := NewService(entryStore, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/squads/squad-1/goals/entries/day?start_date=2024-10-01&end_date=2024-10-05", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "2024-10-01", entryStore.rangeFrom)
	require.Equal(t, "2024-10-05", entryStore.rangeTo)
}

func TestDayViewHandler_BadDate(t *testing.T) {
	svc := NewService(&fakeEntryStore{}, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entries/day?date=not-a-date", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidBoundary, errResp.ErrorType)
}

func TestDayViewHandler_StoreError(t *testing.T) {
	entryStore := &fakeEntryStore{err: errors.New("db down")}
	svc := NewService(entryStore, &fakeGoalStore{}, 1)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/squads/squad-1/goals/entries/day?date=2024-10-05", nil)
	req.Header.Set("X-User-ID", "42")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
}
