package core

import (
	"context"
	"time"
)

// User represents a login account scoped to a company.
type User struct {
	ID           int
	CompanyID    int
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// Session returns the SessionContext for u.
func (u *User) Session() SessionContext {
	return SessionContext{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
	}
}

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (SessionContext, error)
}

// UserService provides user lookup and password verification.
type UserService interface {
	Authenticator

	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)
}
