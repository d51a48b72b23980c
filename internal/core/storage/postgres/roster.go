package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// GetUser implements storage.RosterStore.
func (a *Adapter) GetUser(ctx context.Context, userID int64) (*v1.User, error) {
	var u v1.User
	err := a.db.QueryRowContext(ctx, queryGetUser, userID).Scan(&u.ID, &u.Username)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername implements storage.RosterStore.
func (a *Adapter) GetUserByUsername(ctx context.Context, username string) (*v1.User, error) {
	var u v1.User
	err := a.db.QueryRowContext(ctx, queryGetUserByUsername, username).Scan(&u.ID, &u.Username)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	return &u, nil
}

// CreateSquad implements storage.RosterStore.
func (a *Adapter) CreateSquad(ctx context.Context, squad *v1.Squad) error {
	_, err := a.db.ExecContext(ctx, queryCreateSquad, squad.ID, squad.Name, squad.AdminID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to create squad: %w", err)
	}
	return nil
}

// GetSquad implements storage.RosterStore.
func (a *Adapter) GetSquad(ctx context.Context, squadID string) (*v1.Squad, error) {
	var s v1.Squad
	err := a.db.QueryRowContext(ctx, queryGetSquad, squadID).Scan(&s.ID, &s.Name, &s.AdminID)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query squad: %w", err)
	}
	return &s, nil
}

// GetSquadByName implements storage.RosterStore.
func (a *Adapter) GetSquadByName(ctx context.Context, name string) (*v1.Squad, error) {
	var s v1.Squad
	err := a.db.QueryRowContext(ctx, queryGetSquadByName, name).Scan(&s.ID, &s.Name, &s.AdminID)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query squad by name: %w", err)
	}
	return &s, nil
}

// DeleteSquad implements storage.RosterStore.
func (a *Adapter) DeleteSquad(ctx context.Context, squadID string) error {
	res, err := a.db.ExecContext(ctx, queryDeleteSquad, squadID)
	if err != nil {
		return fmt.Errorf("failed to delete squad: %w", err)
	}
	return notFoundOnZeroRows(res)
}

// SquadsForUser implements storage.RosterStore.
func (a *Adapter) SquadsForUser(ctx context.Context, userID int64) ([]*v1.Squad, error) {
	rows, err := a.db.QueryContext(ctx, querySquadsForUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squads for user: %w", err)
	}
	defer rows.Close()

	var squads []*v1.Squad
	for rows.Next() {
		var s v1.Squad
		if err := rows.Scan(&s.ID, &s.Name, &s.AdminID, &s.Admin, &s.Members); err != nil {
			return nil, err
		}
		squads = append(squads, &s)
	}
	return squads, rows.Err()
}

// MembersOf implements storage.RosterStore.
func (a *Adapter) MembersOf(ctx context.Context, squadID string) ([]*v1.User, error) {
	rows, err := a.db.QueryContext(ctx, queryMembersOf, squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squad members: %w", err)
	}
	defer rows.Close()

	var users []*v1.User
	for rows.Next() {
		var u v1.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// IsMember implements storage.RosterStore.
func (a *Adapter) IsMember(ctx context.Context, squadID string, userID int64) (bool, error) {
	var member bool
	err := a.db.QueryRowContext(ctx, queryIsMember, squadID, userID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

// AddMember implements storage.RosterStore.
func (a *Adapter) AddMember(ctx context.Context, squadID string, userID int64) error {
	if _, err := a.db.ExecContext(ctx, queryAddMember, squadID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember implements storage.RosterStore.
func (a *Adapter) RemoveMember(ctx context.Context, squadID string, userID int64) error {
	res, err := a.db.ExecContext(ctx, queryRemoveMember, squadID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return notFoundOnZeroRows(res)
}

// CreateInvite implements storage.RosterStore.
func (a *Adapter) CreateInvite(ctx context.Context, invite *v1.Invite) error {
	_, err := a.db.ExecContext(ctx, queryCreateInvite,
		invite.ID, invite.SquadID, invite.InvitedUserID, invite.Status)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetInvite implements storage.RosterStore.
func (a *Adapter) GetInvite(ctx context.Context, inviteID string) (*v1.Invite, error) {
	inv, err := scanInvite(a.db.QueryRowContext(ctx, queryGetInvite, inviteID))
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query invite: %w", err)
	}
	return inv, nil
}

// PendingInviteFor implements storage.RosterStore.
func (a *Adapter) PendingInviteFor(ctx context.Context, squadID string, userID int64) (*v1.Invite, error) {
	inv, err := scanInvite(a.db.QueryRowContext(ctx, queryPendingInviteFor, squadID, userID))
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending invite: %w", err)
	}
	return inv, nil
}

// InvitesForUser implements storage.RosterStore.
func (a *Adapter) InvitesForUser(ctx context.Context, userID int64) ([]*v1.Invite, error) {
	return a.queryInvites(ctx, queryInvitesForUser, userID)
}

// InvitesForSquad implements storage.RosterStore.
func (a *Adapter) InvitesForSquad(ctx context.Context, squadID string) ([]*v1.Invite, error) {
	return a.queryInvites(ctx, queryInvitesForSquad, squadID)
}

func (a *Adapter) queryInvites(ctx context.Context, query string, arg interface{}) ([]*v1.Invite, error) {
	rows, err := a.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites: %w", err)
	}
	defer rows.Close()

	var invites []*v1.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// SetInviteStatus implements storage.RosterStore.
func (a *Adapter) SetInviteStatus(ctx context.Context, inviteID, status string) error {
	res, err := a.db.ExecContext(ctx, querySetInviteStatus, inviteID, status)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}
	return notFoundOnZeroRows(res)
}

// DeleteInvite implements storage.RosterStore.
func (a *Adapter) DeleteInvite(ctx context.Context, inviteID string) error {
	res, err := a.db.ExecContext(ctx, queryDeleteInvite, inviteID)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return notFoundOnZeroRows(res)
}

// DeletePendingInvites implements storage.RosterStore.
func (a *Adapter) DeletePendingInvites(ctx context.Context, squadID string, userID int64) error {
	if _, err := a.db.ExecContext(ctx, queryDeletePendingInvites, squadID, userID); err != nil {
		return fmt.Errorf("failed to delete pending invites: %w", err)
	}
	return nil
}

// PurgeResolvedInvites implements storage.RosterStore.
func (a *Adapter) PurgeResolvedInvites(ctx context.Context) (int64, error) {
	res, err := a.db.ExecContext(ctx, queryPurgeResolvedInvites)
	if err != nil {
		return 0, fmt.Errorf("failed to purge resolved invites: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged invites: %w", err)
	}
	return n, nil
}
