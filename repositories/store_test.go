package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-chat/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return newTestSQLiteStore(t) })
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	runStoreSuite(t, func(t *testing.T) Store {
		dbName := fmt.Sprintf("geminichat_test_%d", time.Now().UnixNano())
		s, err := NewMongoStore(context.Background(), uri, dbName)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.users.Database().Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("users are unique by username", func(t *testing.T) {
		s := newStore(t)
		u, err := s.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)

		_, err = s.CreateUser(ctx, "alice", "other")
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		found, err := s.FindUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
		assert.Equal(t, "hash", found.PasswordHash)

		_, err = s.FindUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("conversations listed newest first per user", func(t *testing.T) {
		s := newStore(t)
		alice, err := s.CreateUser(ctx, "alice", "h")
		require.NoError(t, err)
		bob, err := s.CreateUser(ctx, "bob", "h")
		require.NoError(t, err)

		first, err := s.CreateConversation(ctx, alice.ID, "first")
		require.NoError(t, err)
		second, err := s.CreateConversation(ctx, alice.ID, "second")
		require.NoError(t, err)
		_, err = s.CreateConversation(ctx, bob.ID, "bob's")
		require.NoError(t, err)

		list, err := s.ListConversations(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)

		got, err := s.GetConversation(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.UserID)
		assert.Equal(t, "first", got.Title)

		_, err = s.GetConversation(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("messages listed oldest first", func(t *testing.T) {
		s := newStore(t)
		u, err := s.CreateUser(ctx, "carol", "h")
		require.NoError(t, err)
		c, err := s.CreateConversation(ctx, u.ID, "chat")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := s.AppendMessage(ctx, c.ID, models.RoleUser, fmt.Sprintf("q%d", i))
			require.NoError(t, err)
			_, err = s.AppendMessage(ctx, c.ID, models.RoleAssistant, fmt.Sprintf("a%d", i))
			require.NoError(t, err)
		}

		msgs, err := s.ListMessages(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 6)
		for i, m := range msgs {
			wantRole := models.RoleUser
			if i%2 == 1 {
				wantRole = models.RoleAssistant
			}
			assert.Equal(t, wantRole, m.Role)
		}
		assert.Equal(t, "q0", msgs[0].Content)
		assert.Equal(t, "a2", msgs[5].Content)

		empty, err := s.ListMessages(ctx, 424242)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AppendMessage(ctx, 1, "system", "nope")
		assert.Error(t, err)
	})

	t.Run("revoked sessions are remembered", func(t *testing.T) {
		s := newStore(t)
		revoked, err := s.IsSessionRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		expires := time.Now().Add(time.Hour)
		require.NoError(t, s.RevokeSession(ctx, "jti-1", expires))
		require.NoError(t, s.RevokeSession(ctx, "jti-1", expires))

		revoked, err = s.IsSessionRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = s.IsSessionRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("concurrent appends all persist", func(t *testing.T) {
		s := newStore(t)
		u, err := s.CreateUser(ctx, "dave", "h")
		require.NoError(t, err)
		c, err := s.CreateConversation(ctx, u.ID, "busy")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.AppendMessage(ctx, c.ID, models.RoleUser, fmt.Sprintf("m%d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		msgs, err := s.ListMessages(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, msgs, 10)
	})
}

func TestSQLiteTimeLayoutSortsLexically(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)
	b := a.Add(100 * time.Millisecond)
	assert.Less(t, formatTime(a), formatTime(b))

	parsed, err := parseTime(formatTime(b))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(b))
}

func TestSQLiteRevokedSessionsPruned(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.RevokeSession(ctx, "old", time.Now().Add(-time.Minute)))
	require.NoError(t, s.RevokeSession(ctx, "new", time.Now().Add(time.Hour)))

	revoked, err := s.IsSessionRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = s.IsSessionRevoked(ctx, "new")
	require.NoError(t, err)
	assert.True(t, revoked)
}
