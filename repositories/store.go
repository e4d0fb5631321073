package repositories

import (
	"context"
	"errors"
	"time"

	"gemini-chat/models"
)

var (
	// ErrNotFound is returned when a requested user or conversation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when registering a username that is taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserStore persists accounts. Credential hashing happens in the caller.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ConversationStore persists conversations and their append-only messages.
//
// ListConversations returns newest first; ListMessages returns oldest first.
// AppendMessage is atomic: a message is either fully stored or not at all.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID int64, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID int64, role, content string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
}

// SessionStore remembers session token ids that were revoked by logout.
// Entries only need to outlive the token's own expiry.
type SessionStore interface {
	RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthStore is what the auth service needs: accounts plus revoked sessions.
type AuthStore interface {
	UserStore
	SessionStore
}

// Store is the full persistence surface used by the API server.
type Store interface {
	UserStore
	SessionStore
	ConversationStore
	Close() error
}

// now is the clock used for created_at values.
var now = func() time.Time { return time.Now().UTC() }
