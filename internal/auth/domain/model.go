package domain

import (
	"errors"
	"time"

	"github.com/ambi360/ambi360-backend/internal/validation"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

// User is a back-office account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterRequest represents data needed to create a new user
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type SetStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func (r LoginRequest) Validate() error          { return asError(validation.ValidateStruct(&r)) }
func (r RegisterRequest) Validate() error       { return asError(validation.ValidateStruct(&r)) }
func (r ChangePasswordRequest) Validate() error { return asError(validation.ValidateStruct(&r)) }
func (r SetStatusRequest) Validate() error      { return asError(validation.ValidateStruct(&r)) }

func asError(verr *validation.RequestValidationError) error {
	if verr == nil {
		return nil
	}
	return verr
}
