package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/juaneliascabrera/task-manager/internal/model"
)

// AddUser persists a new user and returns its storage-assigned id. The
// unique index on usernames backs up the pre-check.
func (s *SQLite) AddUser(ctx context.Context, username string) (uint, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return 0, &model.UsernameAlreadyExistsError{Username: username}
	}

	user := model.User{Username: username}
	if err := db.Create(&user).Error; err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return user.ID, nil
}

func (s *SQLite) ContainsUser(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *SQLite) ContainsUserByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (s *SQLite) UsersCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *SQLite) GetUsernameByID(ctx context.Context, userID uint) (string, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	switch {
	case err == nil:
		return user.Username, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", &model.UserIDNotFoundError{UserID: userID}
	default:
		return "", fmt.Errorf("find user: %w", err)
	}
}

func (s *SQLite) GetUserIDByUsername(ctx context.Context, username string) (uint, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		return user.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, &model.UsernameNotFoundError{Username: username}
	default:
		return 0, fmt.Errorf("find user: %w", err)
	}
}
