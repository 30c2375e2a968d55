package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cidbot/backend/internal/models"
)

// RunMigrations brings the schema up to date. The assistant owns its whole
// schema, so GORM auto-migration is used for every dialect.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.NutritionPlan{},
		&models.FoodLog{},
		&models.MealSuggestion{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
