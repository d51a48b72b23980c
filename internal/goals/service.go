package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/goal"
	"github.com/squagol/squadgoals/internal/core/partition"
	"github.com/squagol/squadgoals/internal/core/storage"
)

var (
	// ErrGroupImmutable is returned when an update tries to move a goal to a
	// different group. Entries are keyed by the group's partition, so moving
	// would orphan them.
	ErrGroupImmutable = errors.New("goals cannot move between groups")

	// ErrUnknownKind is returned for goal types Classify does not recognize.
	ErrUnknownKind = errors.New("unknown goal type")

	// ErrMissingName is returned when a group or goal name is empty.
	ErrMissingName = errors.New("name must not be empty")
)

type Service struct {
	store     storage.GoalStore
	templates *FileSystemTemplateRepository
}

func NewService(store storage.GoalStore, templates *FileSystemTemplateRepository) *Service {
	if store == nil {
		panic("goals: store must not be nil")
	}
	return &Service{store: store, templates: templates}
}

// GroupRequest is the create/update payload for a goal group. Partition
// fields travel as raw strings and are validated as a unit.
type GroupRequest struct {
	ID             string `json:"id"`
	Name           string `json:"group_name"`
	PartitionType  string `json:"partition_type"`
	PartitionLabel string `json:"partition_label"`
	StartValue     string `json:"start_value"`
	EndValue       string `json:"end_value"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

func (s *Service) ListGroups(ctx context.Context, squadID string) ([]*v1.GoalGroup, error) {
	return s.store.GroupsForSquad(ctx, squadID)
}

// SaveGroup validates the partition configuration and upserts the group.
// An empty ID creates a new group; a non-empty ID must reference an existing
// group of the squad.
func (s *Service) SaveGroup(ctx context.Context, squadID string, req *GroupRequest) (*v1.GoalGroup, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}

	spec, err := partition.ValidateConfig(req.PartitionType, partition.Config{
		Label:      req.PartitionLabel,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartValue: req.StartValue,
		EndValue:   req.EndValue,
	})
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := s.store.GetGroup(ctx, squadID, id); err != nil {
		return nil, err
	}

	group := groupFromSpec(id, squadID, req.Name, spec)
	if err := s.store.SaveGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) DeleteGroup(ctx context.Context, squadID, groupID string) error {
	return s.store.DeleteGroup(ctx, squadID, groupID)
}

func groupFromSpec(id, squadID, name string, spec *partition.Spec) *v1.GoalGroup {
	group := &v1.GoalGroup{
		ID:            id,
		SquadID:       squadID,
		Name:          name,
		PartitionType: string(spec.Type),
	}
	if spec.Type == partition.TypeCustomCounter {
		label := spec.Label
		start := spec.Counter.Start
		group.PartitionLabel = &label
		group.StartValue = &start
		group.EndValue = spec.Counter.End
		return group
	}
	startDate := spec.Dates.Start
	endDate := spec.Dates.End
	group.StartDate = &startDate
	group.EndDate = &endDate
	return group
}

// GoalRequest is the create/update payload for a single goal.
type GoalRequest struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Target    *string `json:"target"`
	TargetMax *string `json:"target_max"`
	IsPrivate *bool   `json:"is_private"`
	IsActive  *bool   `json:"is_active"`
}

func (s *Service) ListGoals(ctx context.Context, squadID string) ([]*v1.Goal, error) {
	return s.store.GoalsForSquad(ctx, squadID)
}

// SaveGoal upserts a goal. The goal's group must exist, and on update the
// group binding is immutable.
func (s *Service) SaveGoal(ctx context.Context, squadID string, req *GoalRequest) (*v1.Goal, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if !goal.KnownKind(req.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Type)
	}
	if _, err := s.store.GetGroup(ctx, squadID, req.GroupID); err != nil {
		return nil, err
	}

	// Privacy and activity default to on for new goals.
	isPrivate, isActive := true, true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else {
		existing, err := s.store.GetGoal(ctx, squadID, id)
		if err != nil {
			return nil, err
		}
		if existing.GroupID != req.GroupID {
			return nil, ErrGroupImmutable
		}
	}

	g := &v1.Goal{
		ID:        id,
		SquadID:   squadID,
		GroupID:   req.GroupID,
		Name:      req.Name,
		Type:      req.Type,
		Target:    req.Target,
		TargetMax: req.TargetMax,
		IsPrivate: isPrivate,
		IsActive:  isActive,
	}
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGoal(ctx context.Context, squadID, goalID string) error {
	return s.store.DeleteGoal(ctx, squadID, goalID)
}

// TemplateApplyRequest instantiates a named template as a new goal group.
// The caller supplies only the anchor values; cadence and goals come from
// the template.
type TemplateApplyRequest struct {
	Template   string `json:"template"`
	GroupName  string `json:"group_name"`
	StartValue string `json:"start_value"`
	EndValue   string `json:"end_value"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// ApplyTemplate creates a goal group and its goals from a loaded template.
func (s *Service) ApplyTemplate(ctx context.Context, squadID string, req *TemplateApplyRequest) (*v1.GoalGroup, []*v1.Goal, error) {
	if s.templates == nil {
		return nil, nil, fmt.Errorf("goal templates are not configured")
	}
	tmpl, err := s.templates.Get(req.Template)
	if err != nil {
		return nil, nil, err
	}

	name := req.GroupName
	if name == "" {
		name = tmpl.Name
	}

	group, err := s.SaveGroup(ctx, squadID, &GroupRequest{
		Name:           name,
		PartitionType:  tmpl.PartitionType,
		PartitionLabel: tmpl.PartitionLabel,
		StartValue:     req.StartValue,
		EndValue:       req.EndValue,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		return nil, nil, err
	}

	created := make([]*v1.Goal, 0, len(tmpl.Goals))
	for _, tg := range tmpl.Goals {
		isPrivate := tg.IsPrivate
		g, err := s.SaveGoal(ctx, squadID, &GoalRequest{
			GroupID:   group.ID,
			Name:      tg.Name,
			Type:      tg.Type,
			Target:    tg.Target,
			TargetMax: tg.TargetMax,
			IsPrivate: &isPrivate,
		})
		if err != nil {
			return nil, nil, err
		}
		created = append(created, g)
	}
	return group, created, nil
}

// Templates lists the available goal templates.
func (s *Service) Templates() []GoalTemplate {
	if s.templates == nil {
		return nil
	}
	return s.templates.List()
}
