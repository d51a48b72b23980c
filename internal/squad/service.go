package squad

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/storage"
)

var (
	// ErrAdminCannotLeave is returned when the squad admin tries to leave
	// their own squad. Admins delete the squad instead.
	ErrAdminCannotLeave = errors.New("squad admin cannot leave; delete the squad instead")

	// ErrAlreadyMember is returned when inviting a user who already belongs
	// to the squad.
	ErrAlreadyMember = errors.New("user is already a member of this squad")

	// ErrInviteNotPending is returned when acting on an invite that was
	// already accepted or declined.
	ErrInviteNotPending = errors.New("invite is no longer pending")

	// ErrNotInvitee is returned when someone other than the invited user
	// tries to accept or decline an invite.
	ErrNotInvitee = errors.New("invite belongs to a different user")

	// ErrNotAdmin is returned when a non-admin tries to revoke an invite.
	ErrNotAdmin = errors.New("only the squad admin can revoke invites")
)

type Service struct {
	roster storage.RosterStore
}

func NewService(roster storage.RosterStore) *Service {
	if roster == nil {
		panic("squad: roster store must not be nil")
	}
	return &Service{roster: roster}
}

// Roster exposes the underlying store for identity resolution wiring.
func (s *Service) Roster() storage.RosterStore {
	return s.roster
}

// CreateSquad creates a squad with the caller as admin and sole member.
// Squad names are globally unique.
func (s *Service) CreateSquad(ctx context.Context, adminID int64, name string) (*v1.Squad, error) {
	sq := &v1.Squad{
		ID:      uuid.NewString(),
		Name:    name,
		AdminID: adminID,
		IsAdmin: true,
		Members: 1,
	}
	if err := s.roster.CreateSquad(ctx, sq); err != nil {
		return nil, err
	}
	if err := s.roster.AddMember(ctx, sq.ID, adminID); err != nil {
		return nil, fmt.Errorf("adding admin as member: %w", err)
	}
	return sq, nil
}

// Leave removes the caller from the squad. The admin cannot leave.
func (s *Service) Leave(ctx context.Context, squadID string, userID int64) error {
	sq, err := s.roster.GetSquad(ctx, squadID)
	if err != nil {
		return err
	}
	if sq.AdminID == userID {
		return ErrAdminCannotLeave
	}
	return s.roster.RemoveMember(ctx, squadID, userID)
}

// RemoveMember lets the admin remove another member. Removing the admin
// themselves is rejected the same way as leaving.
func (s *Service) RemoveMember(ctx context.Context, squadID string, targetID int64) error {
	sq, err := s.roster.GetSquad(ctx, squadID)
	if err != nil {
		return err
	}
	if sq.AdminID == targetID {
		return ErrAdminCannotLeave
	}
	return s.roster.RemoveMember(ctx, squadID, targetID)
}

// Invite creates a pending invite for the named user. Duplicate pending
// invites and existing members are rejected.
func (s *Service) Invite(ctx context.Context, squadID, username string) (*v1.Invite, error) {
	target, err := s.roster.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	member, err := s.roster.IsMember(ctx, squadID, target.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, ErrAlreadyMember
	}

	if _, err := s.roster.PendingInviteFor(ctx, squadID, target.ID); err == nil {
		return nil, storage.ErrDuplicate
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	invite := &v1.Invite{
		ID:            uuid.NewString(),
		SquadID:       squadID,
		InvitedUserID: target.ID,
		Status:        v1.InviteStatusPending,
	}
	if err := s.roster.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// Respond accepts or declines a pending invite on behalf of the invited
// user. Accepting joins the squad atomically with the status flip from the
// caller's perspective: membership is added first, so a failed status update
// leaves a joined user with a stale invite rather than the reverse.
func (s *Service) Respond(ctx context.Context, inviteID string, userID int64, accept bool) (*v1.Invite, error) {
	invite, err := s.roster.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.InvitedUserID != userID {
		return nil, ErrNotInvitee
	}
	if invite.Status != v1.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	status := v1.InviteStatusDeclined
	if accept {
		if err := s.roster.AddMember(ctx, invite.SquadID, userID); err != nil {
			return nil, err
		}
		status = v1.InviteStatusAccepted
	}
	if err := s.roster.SetInviteStatus(ctx, inviteID, status); err != nil {
		return nil, err
	}
	invite.Status = status
	return invite, nil
}

// Revoke deletes a pending invite. Only the admin of the inviting squad may
// revoke; the invite route has no squad in its path, so the check lives here.
func (s *Service) Revoke(ctx context.Context, inviteID string, callerID int64) error {
	invite, err := s.roster.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	sq, err := s.roster.GetSquad(ctx, invite.SquadID)
	if err != nil {
		return err
	}
	if sq.AdminID != callerID {
		return ErrNotAdmin
	}
	if invite.Status != v1.InviteStatusPending {
		return ErrInviteNotPending
	}
	return s.roster.DeleteInvite(ctx, inviteID)
}
