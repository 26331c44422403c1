package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/entities"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// UserRepository defines the user data access the service needs.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByLogin(ctx context.Context, login string) (*entities.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
}

var _ UserRepository = (*users.Repository)(nil)

// LockedError reports a login lockout and when it ends.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("login locked for %s", e.RetryAfter.Round(time.Second))
}

func (e *LockedError) Unwrap() error {
	return ErrTooManyAttempts
}

// Service handles registration and login.
type Service struct {
	users   UserRepository
	tokens  *TokenIssuer
	limiter *LoginLimiter
	config  config.Auth
}

func NewService(userRepo UserRepository, tokens *TokenIssuer, limiter *LoginLimiter, cfg config.Auth) *Service {
	return &Service{
		users:   userRepo,
		tokens:  tokens,
		limiter: limiter,
		config:  cfg,
	}
}

// Register hashes the plaintext password and stores the user.
func (s *Service) Register(ctx context.Context, user *entities.User, password string) error {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, 0)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// HashPassword hashes with the configured bcrypt cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.config.BcryptCost)
}

// Login verifies credentials (login is a username or email) and issues a token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, ip, login, password string) (string, *entities.User, error) {
	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(ip, login); !allowed {
			return "", nil, &LockedError{RetryAfter: retryAfter}
		}
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || CheckPassword(password, user.Password) != nil {
		if s.limiter != nil {
			s.limiter.RecordFailure(ip, login)
		}
		return "", nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(ip, login)
	}
	s.upgradeHash(ctx, user, password)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// upgradeHash re-hashes the password after a successful login when the
// configured bcrypt cost was raised. Failures only cost the upgrade.
func (s *Service) upgradeHash(ctx context.Context, user *entities.User, password string) {
	if !NeedsRehash(user.Password, s.config.BcryptCost) {
		return
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		log.Printf("Failed to rehash password for user %d: %v", user.ID, err)
		return
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"password": hash}); err != nil {
		log.Printf("Failed to store rehashed password for user %d: %v", user.ID, err)
		return
	}
	user.Password = hash
}
