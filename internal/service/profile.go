package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cidbot/backend/internal/models"
)

var (
	// ErrProfileNotFound is returned when a user has no profile yet
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get retrieves a user's profile
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// Upsert writes a complete profile, superseding the existing row if one
// exists. Idempotent: retrying after a downstream failure never produces a
// duplicate row.
func (s *ProfileService) Upsert(ctx context.Context, profile *models.UserProfile) error {
	var existing models.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", profile.UserID).First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up profile: %w", err)
	}
}

// UpdateCurrentWeight persists only the current weight, leaving every other
// profile field untouched. Used by the quick weight-update flow.
func (s *ProfileService) UpdateCurrentWeight(ctx context.Context, userID uuid.UUID, weightKg float64) error {
	result := s.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("current_weight_kg", weightKg)
	if result.Error != nil {
		return fmt.Errorf("failed to update weight: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
