// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername("alice")
package users

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/entities"
)

var ErrUsernameTaken = errors.New("username already taken")

const maxUsernameLength = 64

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser stores a user with an already hashed password.
func (r *Repository) CreateUser(username, passwordHash string) (*entities.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		Lang:         entities.LangEN,
		Theme:        entities.ThemeLight,
	}
	if err := r.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%q: %w", username, ErrUsernameTaken)
		}
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.NotFound(entities.KindUser, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q %w", username, entities.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

// UpdateUsername renames a user.
func (r *Repository) UpdateUsername(id uint, username string) (*entities.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("username", username)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return nil, fmt.Errorf("%q: %w", username, ErrUsernameTaken)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, entities.NotFound(entities.KindUser, id)
	}
	return r.GetUserByID(id)
}

// UpdatePreferences changes the interface language and/or theme of a user.
// An empty value leaves that preference unchanged.
func (r *Repository) UpdatePreferences(id uint, lang entities.Lang, theme entities.Theme) (*entities.User, error) {
	updates := map[string]any{}
	if lang != "" {
		if !lang.Valid() {
			return nil, fmt.Errorf("%w: lang must be %s or %s", entities.ErrInvalidInput, entities.LangEN, entities.LangRU)
		}
		updates["lang"] = lang
	}
	if theme != "" {
		if !theme.Valid() {
			return nil, fmt.Errorf("%w: theme must be %s or %s", entities.ErrInvalidInput, entities.ThemeLight, entities.ThemeDark)
		}
		updates["theme"] = theme
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", entities.ErrInvalidInput)
	}

	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, entities.NotFound(entities.KindUser, id)
	}
	return r.GetUserByID(id)
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength {
		return "", fmt.Errorf("%w: username must be 1-%d characters", entities.ErrInvalidInput, maxUsernameLength)
	}
	return username, nil
}
