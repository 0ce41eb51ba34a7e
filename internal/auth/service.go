package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mrlokans/soundwave/internal/config"
	"github.com/mrlokans/soundwave/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,20}$`)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameInvalid    = fmt.Errorf("%w: username must be 3-20 characters of letters, digits, dot, underscore or hyphen", entities.ErrInvalidInput)
)

// UserStore is the slice of the users repository auth depends on.
type UserStore interface {
	CreateUser(username, passwordHash string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	UpdateUsername(id uint, username string) (*entities.User, error)
	UpdatePreferences(id uint, lang entities.Lang, theme entities.Theme) (*entities.User, error)
}

// Service handles registration, credential checks and access tokens.
type Service struct {
	users      UserStore
	tokens     *TokenManager
	bcryptCost int
	admins     map[uint]struct{}
}

// NewService creates a new authentication service.
func NewService(users UserStore, tokens *TokenManager, cfg config.Auth) *Service {
	admins := make(map[uint]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: cfg.BcryptCost,
		admins:     admins,
	}
}

// Register creates a user and returns it with a fresh access token.
func (s *Service) Register(username, password string) (*entities.User, string, error) {
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.CreateUser(username, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate validates credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// IssueToken signs an access token for the user.
func (s *Service) IssueToken(userID uint) (string, error) {
	return s.tokens.Issue(userID)
}

// ValidateToken checks a bearer token and returns the user it belongs to.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(userID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}

func (s *Service) UpdateUsername(userID uint, username string) (*entities.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	return s.users.UpdateUsername(userID, username)
}

// ChangeLang switches the user's interface language.
func (s *Service) ChangeLang(userID uint, lang entities.Lang) (*entities.User, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: lang must be %s or %s", entities.ErrInvalidInput, entities.LangEN, entities.LangRU)
	}
	return s.users.UpdatePreferences(userID, lang, "")
}

// ChangeTheme switches the user's colour scheme.
func (s *Service) ChangeTheme(userID uint, theme entities.Theme) (*entities.User, error) {
	if !theme.Valid() {
		return nil, fmt.Errorf("%w: theme must be %s or %s", entities.ErrInvalidInput, entities.ThemeLight, entities.ThemeDark)
	}
	return s.users.UpdatePreferences(userID, "", theme)
}

// IsAdmin reports whether the user may run maintenance operations.
// Admins are configured by id so that nobody can claim the role by
// registering or renaming to a particular username.
func (s *Service) IsAdmin(userID uint) bool {
	_, ok := s.admins[userID]
	return userID != 0 && ok
}
