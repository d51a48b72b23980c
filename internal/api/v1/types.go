// Package v1 holds the wire-level entities of the squadgoals API.
package v1

import (
	"fmt"
	"strconv"
	"time"

	"github.com/squagol/squadgoals/internal/core/partition"
)

// User is an account known to the system. Authentication happens upstream;
// the backend only resolves identity to a user row.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Profile is the per-user profile blob.
type Profile struct {
	Name         *string  `json:"name"`
	Gender       *string  `json:"gender"`
	Age          *int     `json:"age"`
	HeightCM     *float64 `json:"height_cm"`
	WeightKG     *float64 `json:"weight_kg"`
	GoalWeightKG *float64 `json:"goal_weight_kg"`
}

// Squad is a group of users sharing goals.
type Squad struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AdminID int64  `json:"-"`
	Admin   string `json:"admin,omitempty"`
	IsAdmin bool   `json:"is_admin"`
	Members int    `json:"members,omitempty"`
}

// Invite is a pending squad membership invitation.
type Invite struct {
	ID              string `json:"id"`
	SquadID         string `json:"squad_id"`
	SquadName       string `json:"squad,omitempty"`
	InvitedUserID   int64  `json:"-"`
	InvitedUsername string `json:"invited_username,omitempty"`
	InvitedBy       string `json:"invited_by,omitempty"`
	Status          string `json:"status"`
}

// Invite statuses.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// GoalGroup owns the partition configuration that all its goals share.
// Exactly one anchor flavor is populated, selected by PartitionType:
// dates for calendar cadences, values for CustomCounter.
type GoalGroup struct {
	ID             string     `json:"id"`
	SquadID        string     `json:"squad_id"`
	Name           string     `json:"group_name"`
	PartitionType  string     `json:"partition_type"`
	PartitionLabel *string    `json:"partition_label,omitempty"`
	StartValue     *int64     `json:"start_value,omitempty"`
	EndValue       *int64     `json:"end_value,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
}

// PartitionSpec reconstructs the validated partition spec from the stored
// group record.
func (g *GoalGroup) PartitionSpec() (*partition.Spec, error) {
	typ, err := partition.ParseType(g.PartitionType)
	if err != nil {
		return nil, err
	}

	if typ == partition.TypeCustomCounter {
		r := &partition.CounterRange{End: g.EndValue}
		if g.StartValue != nil {
			r.Start = *g.StartValue
		}
		label := ""
		if g.PartitionLabel != nil {
			label = *g.PartitionLabel
		}
		return &partition.Spec{Type: typ, Label: label, Counter: r}, nil
	}

	if g.StartDate == nil || g.EndDate == nil {
		return nil, partition.ErrMissingDateBounds
	}
	return &partition.Spec{
		Type:  typ,
		Dates: &partition.DateRange{Start: *g.StartDate, End: *g.EndDate},
	}, nil
}

// AnchorKey is the reference start value all boundary alignment for this
// group is computed against: the counter start for counter groups, the
// start date (canonical key form) for calendar groups.
func (g *GoalGroup) AnchorKey() string {
	typ, err := partition.ParseType(g.PartitionType)
	if err == nil && typ == partition.TypeCustomCounter {
		if g.StartValue != nil {
			return strconv.FormatInt(*g.StartValue, 10)
		}
		return "0"
	}
	if g.StartDate != nil {
		return g.StartDate.Format(partition.DateKeyLayout)
	}
	return ""
}

// Goal is one recurring goal inside a group.
type Goal struct {
	ID        string  `json:"id"`
	SquadID   string  `json:"squad_id"`
	GroupID   string  `json:"group_id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Target    *string `json:"target,omitempty"`
	TargetMax *string `json:"target_max,omitempty"`
	IsPrivate bool    `json:"is_private"`
	IsActive  bool    `json:"is_active"`
}

// Entry is one recorded value for (user, goal, boundary). At most one entry
// exists per key; resubmission overwrites value and note.
type Entry struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	SquadID  string  `json:"squad_id"`
	GoalID   string  `json:"goal_id"`
	Boundary string  `json:"boundary"`
	Value    *string `json:"value"`
	Note     *string `json:"note"`
}

// EntryInput is the per-goal payload inside a submission.
type EntryInput struct {
	Value *string `json:"value"`
	Note  *string `json:"note"`
}

// EntrySubmission is the request body for recording entries against one
// boundary. The boundary field is named "date" on the wire for historical
// reasons; counter ticks travel through it too.
type EntrySubmission struct {
	Boundary string                `json:"date"`
	Entries  map[string]EntryInput `json:"entries"`
}

// Validate checks the submission envelope and returns the canonical
// boundary key.
func (s *EntrySubmission) Validate() (string, error) {
	key, err := partition.NormalizeBoundary(s.Boundary)
	if err != nil {
		return "", err
	}
	if len(s.Entries) == 0 {
		return "", fmt.Errorf("entries must not be empty")
	}
	return key, nil
}
