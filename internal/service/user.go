package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cidbot/backend/internal/models"
)

// UserService resolves chat-platform identities to account records
type UserService struct {
	db *gorm.DB
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetOrCreate returns the account for a chat key, creating it on the first
// event from that identity.
func (s *UserService) GetOrCreate(ctx context.Context, chatKey, username, firstName string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("chat_key = ?", chatKey).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = models.User{
		ID:        uuid.New(),
		ChatKey:   chatKey,
		Username:  username,
		FirstName: firstName,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}
