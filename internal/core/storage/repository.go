package storage

import (
	"context"
	"errors"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint would be violated.
var ErrDuplicate = errors.New("already exists")

// EntryStore persists recorded goal entries. Upsert is atomic per
// (user, squad, goal, boundary): concurrent resubmission for the same
// boundary must collapse into a single row.
type EntryStore interface {
	// UpsertEntry creates the entry on first submission for a boundary and
	// overwrites value/note on resubmission. Returns the stored row.
	UpsertEntry(ctx context.Context, entry *v1.Entry) (*v1.Entry, error)

	// EntriesForBoundary fetches one user's entries for a single boundary,
	// optionally filtered to one goal (goalID == "" means all goals).
	EntriesForBoundary(ctx context.Context, userID int64, squadID, boundary, goalID string) ([]*v1.Entry, error)

	// EntriesForUser fetches all of one user's entries in a squad,
	// optionally filtered to goals of one group (groupID == "" means all).
	EntriesForUser(ctx context.Context, userID int64, squadID, groupID string) ([]*v1.Entry, error)

	// SquadEntriesBetween fetches all members' entries whose boundary falls
	// in [startKey, endKey], restricted to time-based partition groups.
	SquadEntriesBetween(ctx context.Context, squadID, startKey, endKey string) ([]*v1.Entry, error)
}

// GoalStore persists goal groups and goals.
type GoalStore interface {
	GroupsForSquad(ctx context.Context, squadID string) ([]*v1.GoalGroup, error)
	GetGroup(ctx context.Context, squadID, groupID string) (*v1.GoalGroup, error)
	SaveGroup(ctx context.Context, group *v1.GoalGroup) error
	// DeleteGroup cascades to the group's goals and their entries.
	DeleteGroup(ctx context.Context, squadID, groupID string) error

	GoalsForSquad(ctx context.Context, squadID string) ([]*v1.Goal, error)
	GetGoal(ctx context.Context, squadID, goalID string) (*v1.Goal, error)
	SaveGoal(ctx context.Context, goal *v1.Goal) error
	DeleteGoal(ctx context.Context, squadID, goalID string) error
}

// RosterStore persists users, squads, memberships and invites.
type RosterStore interface {
	GetUser(ctx context.Context, userID int64) (*v1.User, error)
	GetUserByUsername(ctx context.Context, username string) (*v1.User, error)

	CreateSquad(ctx context.Context, squad *v1.Squad) error
	GetSquad(ctx context.Context, squadID string) (*v1.Squad, error)
	GetSquadByName(ctx context.Context, name string) (*v1.Squad, error)
	// DeleteSquad cascades to memberships, invites, groups, goals, entries.
	DeleteSquad(ctx context.Context, squadID string) error
	SquadsForUser(ctx context.Context, userID int64) ([]*v1.Squad, error)

	MembersOf(ctx context.Context, squadID string) ([]*v1.User, error)
	IsMember(ctx context.Context, squadID string, userID int64) (bool, error)
	AddMember(ctx context.Context, squadID string, userID int64) error
	RemoveMember(ctx context.Context, squadID string, userID int64) error

	CreateInvite(ctx context.Context, invite *v1.Invite) error
	GetInvite(ctx context.Context, inviteID string) (*v1.Invite, error)
	PendingInviteFor(ctx context.Context, squadID string, userID int64) (*v1.Invite, error)
	InvitesForUser(ctx context.Context, userID int64) ([]*v1.Invite, error)
	InvitesForSquad(ctx context.Context, squadID string) ([]*v1.Invite, error)
	SetInviteStatus(ctx context.Context, inviteID, status string) error
	DeleteInvite(ctx context.Context, inviteID string) error
	DeletePendingInvites(ctx context.Context, squadID string, userID int64) error
	// PurgeResolvedInvites deletes accepted and declined invites across all
	// squads and reports how many rows went away.
	PurgeResolvedInvites(ctx context.Context) (int64, error)
}

// ProfileStore persists per-user profiles.
type ProfileStore interface {
	// GetProfile returns ErrNotFound when the user has no profile yet.
	GetProfile(ctx context.Context, userID int64) (*v1.Profile, error)
	SaveProfile(ctx context.Context, userID int64, profile *v1.Profile) error
}
