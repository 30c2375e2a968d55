package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cidbot/backend/internal/models"
)

// FoodLogService handles food log persistence and daily aggregation
type FoodLogService struct {
	db *gorm.DB
}

// Ensure FoodLogService implements IFoodLogService
var _ IFoodLogService = (*FoodLogService)(nil)

// NewFoodLogService creates a new FoodLogService instance
func NewFoodLogService(db *gorm.DB) *FoodLogService {
	return &FoodLogService{db: db}
}

// Create persists a confirmed food log entry. Entries are never updated
// afterwards.
func (s *FoodLogService) Create(ctx context.Context, entry *models.FoodLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create food log: %w", err)
	}
	return nil
}

// ListByDate returns the user's entries for one calendar day, oldest first.
func (s *FoodLogService) ListByDate(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.FoodLog, error) {
	start, end := dayBounds(day)

	var logs []models.FoodLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Order("logged_at asc").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list food logs: %w", err)
	}
	return logs, nil
}

// Summarize aggregates one calendar day of entries. An empty day yields
// all-zero totals with count 0. Entries with failed analysis contribute
// only to the count.
func (s *FoodLogService) Summarize(ctx context.Context, userID uuid.UUID, day time.Time) (*DailySummary, error) {
	logs, err := s.ListByDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{Count: len(logs)}
	for i := range logs {
		if logs[i].Calories != nil {
			summary.Calories += *logs[i].Calories
		}
		if logs[i].Protein != nil {
			summary.Protein += *logs[i].Protein
		}
		if logs[i].Fats != nil {
			summary.Fats += *logs[i].Fats
		}
		if logs[i].Carbs != nil {
			summary.Carbs += *logs[i].Carbs
		}
	}
	return summary, nil
}

// dayBounds returns midnight-to-midnight in the day's location. AddDate
// tracks the calendar day, so DST-transition days keep their real length.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
