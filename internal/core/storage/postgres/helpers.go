package postgres

import (
	"database/sql"
	"time"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
)

// Nullable column adapters. The wire types carry optional fields as
// pointers; database/sql wants its Null* wrappers.

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func intPtr(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int32)
	return &v
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func float64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

// scanEntries drains an entry result set.
func scanEntries(rows *sql.Rows) ([]*v1.Entry, error) {
	defer rows.Close()

	var entries []*v1.Entry
	for rows.Next() {
		var (
			e           v1.Entry
			value, note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SquadID, &e.GoalID, &e.Boundary, &value, &note); err != nil {
			return nil, err
		}
		e.Value = stringPtr(value)
		e.Note = stringPtr(note)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// scanInvite reads one row of the shared invite projection.
func scanInvite(row interface{ Scan(...interface{}) error }) (*v1.Invite, error) {
	var inv v1.Invite
	err := row.Scan(&inv.ID, &inv.SquadID, &inv.SquadName, &inv.InvitedUserID,
		&inv.InvitedUsername, &inv.InvitedBy, &inv.Status)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
