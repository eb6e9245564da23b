package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"gicare/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram finds or creates a user based on TelegramID and updates basic profile info.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
			"username":   username,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramID:    telegramID,
			FirstName:     firstName,
			LastName:      lastName,
			Username:      username,
			Notifications: model.NotificationDefault,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// SetNotifications stores the user's reminder opt-in state.
func (r *UserRepository) SetNotifications(ctx context.Context, user *model.User, state model.NotificationState) error {
	user.Notifications = state
	if err := r.db.WithContext(ctx).Model(user).Update("notifications", state).Error; err != nil {
		return fmt.Errorf("set notifications: %w", err)
	}
	return nil
}

// ListByNotifications returns every user currently in the given state.
func (r *UserRepository) ListByNotifications(ctx context.Context, state model.NotificationState) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("notifications = ?", state).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
