package postgres

import (
	"context"
	"database/sql"
	"fmt"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// GetProfile implements storage.ProfileStore.
func (a *Adapter) GetProfile(ctx context.Context, userID int64) (*v1.Profile, error) {
	var (
		p            v1.Profile
		name, gender sql.NullString
		age          sql.NullInt32
		height       sql.NullFloat64
		weight       sql.NullFloat64
		goalWeight   sql.NullFloat64
	)
	err := a.db.QueryRowContext(ctx, queryGetProfile, userID).
		Scan(&name, &gender, &age, &height, &weight, &goalWeight)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	p.Name = stringPtr(name)
	p.Gender = stringPtr(gender)
	p.Age = intPtr(age)
	p.HeightCM = float64Ptr(height)
	p.WeightKG = float64Ptr(weight)
	p.GoalWeightKG = float64Ptr(goalWeight)
	return &p, nil
}

// SaveProfile implements storage.ProfileStore.
func (a *Adapter) SaveProfile(ctx context.Context, userID int64, profile *v1.Profile) error {
	_, err := a.db.ExecContext(ctx, querySaveProfile,
		userID,
		nullString(profile.Name),
		nullString(profile.Gender),
		nullInt32(profile.Age),
		nullFloat64(profile.HeightCM),
		nullFloat64(profile.WeightKG),
		nullFloat64(profile.GoalWeightKG),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
