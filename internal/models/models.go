package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record for one chat-platform identity. ChatKey is the
// opaque identifier the transport attaches to every incoming event.
type User struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	ChatKey   string    `gorm:"size:64;not null;uniqueIndex" json:"chat_key"`
	Username  string    `gorm:"size:255" json:"username"`
	FirstName string    `gorm:"size:255" json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile holds the physical parameters a nutrition plan is derived
// from. One row per user; edits supersede the row in place.
type UserProfile struct {
	ID                uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID            uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Age               int       `gorm:"not null" json:"age"`
	Gender            string    `gorm:"size:10;not null" json:"gender"`
	HeightCm          float64   `gorm:"not null" json:"height_cm"`
	CurrentWeightKg   float64   `gorm:"not null" json:"current_weight_kg"`
	TargetWeightKg    float64   `gorm:"not null" json:"target_weight_kg"`
	ActivityLevel     string    `gorm:"size:20;not null" json:"activity_level"`
	Goal              string    `gorm:"size:10;not null" json:"goal"`
	CalculationMethod string    `gorm:"size:10;not null" json:"calculation_method"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NutritionPlan is derived from a UserProfile. At most one plan per user is
// active at a time; creating a new plan deactivates the previous ones
// instead of deleting them, so history is preserved.
type NutritionPlan struct {
	ID                     uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID                 uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	BMR                    float64   `gorm:"not null" json:"bmr"`
	TDEE                   float64   `gorm:"not null" json:"tdee"`
	TargetCalories         int       `gorm:"not null" json:"target_calories"`
	ProteinG               float64   `gorm:"not null" json:"protein_g"`
	FatsG                  float64   `gorm:"not null" json:"fats_g"`
	CarbsG                 float64   `gorm:"not null" json:"carbs_g"`
	MethodologyExplanation string    `gorm:"type:text" json:"methodology_explanation"`
	IsActive               bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// FoodLog is one confirmed meal entry. Entries are immutable once created;
// corrections happen through new entries. The macro columns are nullable
// because analysis may fail while the description is still worth keeping.
type FoodLog struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Calories    *float64  `json:"calories"`
	Protein     *float64  `json:"protein"`
	Fats        *float64  `json:"fats"`
	Carbs       *float64  `json:"carbs"`
	LoggedAt    time.Time `gorm:"not null;index" json:"logged_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MealSuggestion records an AI meal recommendation that was shown to the
// user, for later reference.
type MealSuggestion struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Ingredients  string    `gorm:"type:text" json:"ingredients"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	Fats         float64   `json:"fats"`
	Carbs        float64   `json:"carbs"`
	FitsPlan     bool      `json:"fits_plan"`
	CreatedAt    time.Time `json:"created_at"`
}
