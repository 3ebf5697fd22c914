package store

import (
	"context"
	"database/sql"
)

// Driver is the database access interface implemented by each backend.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	UpdateChatMessageActions(ctx context.Context, uid string, actions string) error
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	ListChatSessions(ctx context.Context, userID int32) ([]*ChatSession, error)
	DeleteChatMessages(ctx context.Context, delete *DeleteChatMessage) error
}
