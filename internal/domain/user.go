package domain

import (
	"context"
	"time"
)

// Role is the application role of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Department   *string   `json:"department,omitempty"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name string, role Role, department *string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:      email,
		Name:       name,
		Role:       role,
		Department: department,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Principal is the identity carried by a verified access token.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// SwapAchievementCount stores n as the last seen achievement count and returns the previous
	// value, or nil when none was stored yet.
	SwapAchievementCount(ctx context.Context, id string, n int) (*int, error)
}

// SignUpInput holds the fields submitted on account registration.
type SignUpInput struct {
	Email      string
	Password   string
	Name       string
	Role       Role
	Department *string
	AdminCode  string
}

// AuthService defines account registration, login and profile lookup.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}
