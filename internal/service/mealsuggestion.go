package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cidbot/backend/internal/models"
)

// MealSuggestionService records AI meal recommendations
type MealSuggestionService struct {
	db *gorm.DB
}

var _ IMealSuggestionService = (*MealSuggestionService)(nil)

// NewMealSuggestionService creates a new MealSuggestionService instance
func NewMealSuggestionService(db *gorm.DB) *MealSuggestionService {
	return &MealSuggestionService{db: db}
}

// Create persists a meal suggestion shown to the user
func (s *MealSuggestionService) Create(ctx context.Context, suggestion *models.MealSuggestion) error {
	if suggestion.ID == uuid.Nil {
		suggestion.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(suggestion).Error; err != nil {
		return fmt.Errorf("failed to create meal suggestion: %w", err)
	}
	return nil
}
