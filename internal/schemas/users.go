// Package schemas defines the request and response shapes of the HTTP API.
//
// Input structs carry gin binding tags that are checked by
// go-playground/validator when a handler calls ShouldBindJSON.
package schemas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/bookshare/internal/entities"
)

var ErrEmptyField = errors.New("field must not be empty")

// requireNonBlank returns ErrEmptyField naming the first column whose value is
// empty once surrounding whitespace is removed.
func requireNonBlank(columns []string, values ...string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyField, columns[i])
		}
	}
	return nil
}

// UserCreate is the registration payload. Every field is required.
type UserCreate struct {
	Name     string            `json:"name" binding:"required,max=100"`
	Lastname string            `json:"lastname" binding:"required,max=100"`
	Username string            `json:"username" binding:"required,max=64"`
	Email    string            `json:"email" binding:"required,email,max=255"`
	Password string            `json:"password" binding:"required,max=72"`
	Role     entities.UserRole `json:"role" binding:"required,oneof=user admin"`
}

// Validate rejects fields that only hold whitespace. The password is taken as is.
func (u UserCreate) Validate() error {
	return requireNonBlank([]string{"name", "lastname", "username", "email"},
		u.Name, u.Lastname, u.Username, u.Email)
}

// ToEntity builds the user to store; the password is set by the caller after hashing.
func (u UserCreate) ToEntity() *entities.User {
	return &entities.User{
		Name:     strings.TrimSpace(u.Name),
		Lastname: strings.TrimSpace(u.Lastname),
		Username: strings.TrimSpace(u.Username),
		Email:    strings.TrimSpace(u.Email),
		Role:     u.Role,
	}
}

// UserUpdate is a partial update. Only these fields can ever reach the
// database; unknown JSON keys are dropped by decoding.
type UserUpdate struct {
	Name     *string            `json:"name" binding:"omitempty,max=100"`
	Lastname *string            `json:"lastname" binding:"omitempty,max=100"`
	Username *string            `json:"username" binding:"omitempty,max=64"`
	Email    *string            `json:"email" binding:"omitempty,email,max=255"`
	Password *string            `json:"password" binding:"omitempty,max=72"`
	Role     *entities.UserRole `json:"role" binding:"omitempty,oneof=user admin"`
}

// Fields returns the provided fields keyed by column name. Provided string
// fields must be non-blank. The password value is the plaintext; callers hash
// it before persisting.
func (u UserUpdate) Fields() (map[string]any, error) {
	fields := make(map[string]any)

	strs := []struct {
		column string
		value  *string
	}{
		{"name", u.Name},
		{"lastname", u.Lastname},
		{"username", u.Username},
		{"email", u.Email},
		{"password", u.Password},
	}
	for _, f := range strs {
		if f.value == nil {
			continue
		}
		v := *f.value
		if f.column != "password" {
			v = strings.TrimSpace(v)
		}
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyField, f.column)
		}
		fields[f.column] = v
	}

	if u.Role != nil {
		fields["role"] = *u.Role
	}
	return fields, nil
}

// Columns lists the provided column names, without values.
func (u UserUpdate) Columns() []string {
	fields, _ := u.Fields()
	columns := make([]string, 0, len(fields))
	for _, c := range []string{"name", "lastname", "username", "email", "password", "role"} {
		if _, ok := fields[c]; ok {
			columns = append(columns, c)
		}
	}
	return columns
}

// Login accepts a username or an email in Username.
type Login struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserPublic is the registration response; username and password are omitted.
type UserPublic struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	Lastname string            `json:"lastname"`
	Email    string            `json:"email"`
	Role     entities.UserRole `json:"role"`
}

func NewUserPublic(u *entities.User) UserPublic {
	return UserPublic{
		ID:       u.ID,
		Name:     u.Name,
		Lastname: u.Lastname,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// LoginResponse carries the issued token and the caller's public profile.
type LoginResponse struct {
	Token string     `json:"token"`
	User  UserPublic `json:"user"`
}
