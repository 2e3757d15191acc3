// Package storage defines persistence for users, sessions, and messages.
package storage

import (
	"context"
	"errors"

	"github.com/destek-ai/destek/internal/models"
)

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials is returned on login with a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionNotFound is returned for operations on an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// Storage defines user, session, and message persistence operations.
type Storage interface {
	// Accounts
	RegisterUser(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// Sessions
	CreateSession(ctx context.Context, userID int64) (*models.Session, error)
	ListSessions(ctx context.Context, userID int64) ([]*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// Messages. SaveMessage titles the session from its first user message.
	SaveMessage(ctx context.Context, sessionID string, role models.Role, content string) (*models.StoredMessage, error)
	GetSessionMessages(ctx context.Context, sessionID string) ([]*models.StoredMessage, error)

	// Stats
	CountUsers(ctx context.Context) (int64, error)
	CountSessions(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)

	Close() error
}
