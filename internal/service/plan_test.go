package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidbot/backend/internal/models"
)

func TestPlanCreateActiveSupersedesPrevious(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)
	ctx := context.Background()
	userID := uuid.New()

	first := &models.NutritionPlan{UserID: userID, TargetCalories: 2200, ProteinG: 190, FatsG: 60, CarbsG: 220}
	require.NoError(t, svc.CreateActive(ctx, first))

	second := &models.NutritionPlan{UserID: userID, TargetCalories: 2400, ProteinG: 200, FatsG: 65, CarbsG: 240}
	require.NoError(t, svc.CreateActive(ctx, second))

	active, err := svc.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, 2400, active.TargetCalories)

	// Exactly one active plan; the old one is kept but deactivated.
	var activeCount, total int64
	require.NoError(t, db.Model(&models.NutritionPlan{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&activeCount).Error)
	require.NoError(t, db.Model(&models.NutritionPlan{}).Where("user_id = ?", userID).Count(&total).Error)
	assert.Equal(t, int64(1), activeCount)
	assert.Equal(t, int64(2), total)
}

func TestPlanCreateActiveDoesNotTouchOtherUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, svc.CreateActive(ctx, &models.NutritionPlan{UserID: alice, TargetCalories: 2000}))
	require.NoError(t, svc.CreateActive(ctx, &models.NutritionPlan{UserID: bob, TargetCalories: 1800}))

	got, err := svc.GetActive(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2000, got.TargetCalories)
}

func TestPlanGetActiveWithoutPlan(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)

	_, err := svc.GetActive(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoActivePlan)
}

func TestPlanAdjustUpdatesSameRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)
	ctx := context.Background()
	userID := uuid.New()

	plan := &models.NutritionPlan{UserID: userID, TargetCalories: 2200, ProteinG: 190, FatsG: 60, CarbsG: 220, BMR: 1780, TDEE: 2759}
	require.NoError(t, svc.CreateActive(ctx, plan))

	require.NoError(t, svc.Adjust(ctx, plan.ID, 2400, 200, 65, 240, "raised by 200"))

	got, err := svc.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID, "adjustment does not create a new plan")
	assert.Equal(t, 2400, got.TargetCalories)
	assert.Equal(t, "raised by 200", got.MethodologyExplanation)
	assert.Equal(t, 1780.0, got.BMR, "metabolic baselines are untouched")
}

func TestPlanAdjustUnknownID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlanService(db)

	err := svc.Adjust(context.Background(), uuid.New(), 2400, 200, 65, 240, "x")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
