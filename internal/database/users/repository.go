// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByID(ctx, id)
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("username or email already registered")
	ErrNoFields      = errors.New("no fields to update")
	ErrInvalidColumn = errors.New("column is not updatable")
)

// UpdatableColumns lists the user columns a partial update may touch.
var UpdatableColumns = map[string]struct{}{
	"name":     {},
	"lastname": {},
	"username": {},
	"email":    {},
	"password": {},
	"role":     {},
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user whose password is already hashed.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	if user.Role == "" {
		user.Role = entities.UserRoleUser
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by ID.
func (r *Repository) List(ctx context.Context) ([]entities.User, error) {
	users := make([]entities.User, 0)
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// GetByLogin retrieves a user by username or email.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether another user already holds the
// username or email. excludeID skips the user being updated; pass 0 on create.
func (r *Repository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	if username == "" && email == "" {
		return false, nil
	}

	query := r.db.WithContext(ctx).Model(&entities.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies a partial update. Only keys present in UpdatableColumns are
// accepted; the password value must already be hashed.
func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	for column := range fields {
		if _, ok := UpdatableColumns[column]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidColumn, column)
		}
	}

	result := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Updates(fields)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
