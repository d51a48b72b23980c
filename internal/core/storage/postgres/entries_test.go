package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPrepare(regexp.QuoteMeta(queryUpsertEntry))
	stmt, err := db.Prepare(queryUpsertEntry)
	require.NoError(t, err)

	return &Adapter{db: db, stmtUpsertEntry: stmt}, mock
}

func TestAdapter_UpsertEntry(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	value := "30"
	note := "morning run"
	entry := &v1.Entry{
		UserID:   7,
		SquadID:  "squad-1",
		GoalID:   "goal-1",
		Boundary: "2024-10-01",
		Value:    &value,
		Note:     &note,
	}

	mock.ExpectQuery(regexp.QuoteMeta(queryUpsertEntry)).
		WithArgs(entry.UserID, entry.SquadID, entry.GoalID, entry.Boundary,
			sql.NullString{String: value, Valid: true},
			sql.NullString{String: note, Valid: true}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	stored, err := adapter.UpsertEntry(context.Background(), entry)
	require.NoError(t, err)
	require.Equal(t, int64(42), stored.ID)
	require.Equal(t, "2024-10-01", stored.Boundary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_UpsertEntry_NilValueAndNote(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	entry := &v1.Entry{UserID: 7, SquadID: "squad-1", GoalID: "goal-1", Boundary: "3"}

	mock.ExpectQuery(regexp.QuoteMeta(queryUpsertEntry)).
		WithArgs(entry.UserID, entry.SquadID, entry.GoalID, entry.Boundary,
			sql.NullString{}, sql.NullString{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	stored, err := adapter.UpsertEntry(context.Background(), entry)
	require.NoError(t, err)
	require.Nil(t, stored.Value)
	require.Nil(t, stored.Note)
	require.NoError(t, mock.ExpectationsWereMet())
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "squad_id", "goal_id", "boundary_value", "value", "note"})
}

func TestAdapter_EntriesForBoundary(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryEntriesForBoundary)).
		WithArgs(int64(7), "squad-1", "2024-10-01").
		WillReturnRows(entryRows().
			AddRow(int64(1), int64(7), "squad-1", "goal-1", "2024-10-01", "30", "ok").
			AddRow(int64(2), int64(7), "squad-1", "goal-2", "2024-10-01", nil, nil))

	entries, err := adapter.EntriesForBoundary(context.Background(), 7, "squad-1", "2024-10-01", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "30", *entries[0].Value)
	require.Nil(t, entries[1].Value)
	require.Nil(t, entries[1].Note)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_EntriesForBoundary_GoalFilter(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryEntriesForBoundaryAndGoal)).
		WithArgs(int64(7), "squad-1", "5", "goal-1").
		WillReturnRows(entryRows().AddRow(int64(3), int64(7), "squad-1", "goal-1", "5", "1", nil))

	entries, err := adapter.EntriesForBoundary(context.Background(), 7, "squad-1", "5", "goal-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "5", entries[0].Boundary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_EntriesForUser_GroupFilter(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryEntriesForUserInGroup)).
		WithArgs(int64(7), "squad-1", "group-1").
		WillReturnRows(entryRows().AddRow(int64(1), int64(7), "squad-1", "goal-1", "2024-10-01", "30", nil))

	entries, err := adapter.EntriesForUser(context.Background(), 7, "squad-1", "group-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SquadEntriesBetween(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(querySquadEntriesBetween)).
		WithArgs("squad-1", "2024-10-01", "2024-10-07", sqlmock.AnyArg()).
		WillReturnRows(entryRows().
			AddRow(int64(1), int64(7), "squad-1", "goal-1", "2024-10-01", "30", nil).
			AddRow(int64(2), int64(8), "squad-1", "goal-1", "2024-10-02", "25", nil))

	entries, err := adapter.SquadEntriesBetween(context.Background(), "squad-1", "2024-10-01", "2024-10-07")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, int64(8), entries[1].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}
