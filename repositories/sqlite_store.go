package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gemini-chat/db"
	"gemini-chat/models"
)

// sqliteTimeLayout keeps a fixed width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store on top of modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path, creating the schema if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{Username: username, PasswordHash: passwordHash, CreatedAt: now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var (
		u         models.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) CreateConversation(ctx context.Context, userID int64, title string) (*models.Conversation, error) {
	c := &models.Conversation{UserID: userID, Title: title, CreatedAt: now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (user_id, title, created_at) VALUES (?, ?, ?)`,
		c.UserID, c.Title, formatTime(c.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading conversation id: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	var (
		c         models.Conversation
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		var (
			c         models.Conversation
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID int64, role, content string) (*models.Message, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid message role %q", role)
	}
	m := &models.Message{ConversationID: conversationID, Role: role, Content: content, CreatedAt: now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		m.ConversationID, m.Role, m.Content, formatTime(m.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading message id: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var (
			m         models.Message
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return out, nil
}

// RevokeSession stores tokenID until expiresAt. Expired entries are pruned on the way.
func (s *SQLiteStore) RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM revoked_sessions WHERE expires_at < ?`, formatTime(now()),
	); err != nil {
		return fmt.Errorf("pruning revoked sessions: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_sessions (token_id, expires_at) VALUES (?, ?)`,
		tokenID, formatTime(expiresAt),
	); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_sessions WHERE token_id = ?`, tokenID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying revoked session: %w", err)
	}
	return true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at %q: %w", s, err)
	}
	return t, nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
