package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/entities"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	return NewService(
		users.NewRepository(db),
		newTestIssuer(t),
		NewLoginLimiter(3, time.Minute, time.Minute),
		config.Auth{BcryptCost: bcrypt.MinCost},
	)
}

func registerUser(t *testing.T, svc *Service, username, email, password string) *entities.User {
	t.Helper()
	user := &entities.User{Name: "Ana", Lastname: "García", Username: username, Email: email, Role: entities.UserRoleUser}
	require.NoError(t, svc.Register(context.Background(), user, password))
	return user
}

func TestService_Register(t *testing.T) {
	svc := setupService(t)

	user := registerUser(t, svc, "ana", "ana@example.com", "x")

	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "x", user.Password)
	assert.NoError(t, CheckPassword("x", user.Password))

	t.Run("duplicate username", func(t *testing.T) {
		dup := &entities.User{Name: "A", Lastname: "B", Username: "ana", Email: "new@example.com"}
		assert.ErrorIs(t, svc.Register(context.Background(), dup, "x"), ErrUserExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &entities.User{Name: "A", Lastname: "B", Username: "new", Email: "ana@example.com"}
		assert.ErrorIs(t, svc.Register(context.Background(), dup, "x"), ErrUserExists)
	})

	t.Run("empty password", func(t *testing.T) {
		u := &entities.User{Name: "A", Lastname: "B", Username: "other", Email: "other@example.com"}
		assert.ErrorIs(t, svc.Register(context.Background(), u, ""), ErrPasswordRequired)
	})
}

func TestService_Login(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	registered := registerUser(t, svc, "ana", "ana@example.com", "secret")

	t.Run("by username", func(t *testing.T) {
		token, user, err := svc.Login(ctx, "127.0.0.1", "ana", "secret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		claims, err := svc.tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
	})

	t.Run("by email", func(t *testing.T) {
		_, user, err := svc.Login(ctx, "127.0.0.1", "ana@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password and unknown user look alike", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "10.0.0.1", "ana", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = svc.Login(ctx, "10.0.0.1", "ghost", "secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Login_UpgradesHashCost(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	repo := users.NewRepository(db)
	ctx := context.Background()

	weak := NewService(repo, newTestIssuer(t), nil, config.Auth{BcryptCost: bcrypt.MinCost})
	registered := registerUser(t, weak, "ana", "ana@example.com", "secret")

	strong := NewService(repo, newTestIssuer(t), nil, config.Auth{BcryptCost: bcrypt.MinCost + 1})
	_, _, err = strong.Login(ctx, "127.0.0.1", "ana", "secret")
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
	assert.NoError(t, CheckPassword("secret", stored.Password))

	// The old cost keeps working and does not downgrade the hash.
	_, _, err = weak.Login(ctx, "127.0.0.1", "ana", "secret")
	require.NoError(t, err)
	stored, err = repo.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	cost, _ = bcrypt.Cost([]byte(stored.Password))
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestService_Login_Lockout(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	registerUser(t, svc, "ana", "ana@example.com", "secret")

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, "10.0.0.1", "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, _, err := svc.Login(ctx, "10.0.0.1", "ana", "secret")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Positive(t, locked.RetryAfter)

	_, _, err = svc.Login(ctx, "10.0.0.2", "ana", "secret")
	assert.NoError(t, err)
}
