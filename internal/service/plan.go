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
	// ErrNoActivePlan is returned when a user has no active nutrition plan
	ErrNoActivePlan = errors.New("no active nutrition plan")
	// ErrPlanNotFound is returned when a plan id does not exist
	ErrPlanNotFound = errors.New("plan not found")
)

// PlanService handles nutrition plan persistence and enforces the
// single-active-plan invariant.
type PlanService struct {
	db *gorm.DB
}

// Ensure PlanService implements IPlanService
var _ IPlanService = (*PlanService)(nil)

// NewPlanService creates a new PlanService instance
func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// GetActive retrieves the user's currently active plan
func (s *PlanService) GetActive(ctx context.Context, userID uuid.UUID) (*models.NutritionPlan, error) {
	var plan models.NutritionPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, fmt.Errorf("failed to load active plan: %w", err)
	}
	return &plan, nil
}

// CreateActive inserts a new active plan and deactivates all prior plans
// for the user in the same transaction, so there is never a window with
// zero or two active plans. Old plans are superseded, not deleted.
func (s *PlanService) CreateActive(ctx context.Context, plan *models.NutritionPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	plan.IsActive = true

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.NutritionPlan{}).
			Where("user_id = ? AND is_active = ?", plan.UserID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// Adjust rewrites the calorie and macro numbers and the explanation of an
// existing plan. The row is kept: adjustment is not supersession.
func (s *PlanService) Adjust(ctx context.Context, planID uuid.UUID, targetCalories int, proteinG, fatsG, carbsG float64, explanation string) error {
	result := s.db.WithContext(ctx).
		Model(&models.NutritionPlan{}).
		Where("id = ?", planID).
		Updates(map[string]interface{}{
			"target_calories":         targetCalories,
			"protein_g":               proteinG,
			"fats_g":                  fatsG,
			"carbs_g":                 carbsG,
			"methodology_explanation": explanation,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to adjust plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
