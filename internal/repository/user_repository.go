package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
)

// UserRepository stores Telegram accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram registers the account on first contact and refreshes the
// profile fields on every later one.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	profile := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"username":   username,
	}
	err := r.db.WithContext(ctx).
		Where(model.User{TelegramID: telegramID}).
		Assign(profile).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", telegramID, err)
	}
	return &user, nil
}

// ListAll returns every known user, oldest first. The report job walks it.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
