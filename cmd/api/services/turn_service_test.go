package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-chat/eventbus"
	"gemini-chat/models"
	"gemini-chat/provider"
	"gemini-chat/repositories"
)

type fakeAdapter struct {
	mu       sync.Mutex
	outcome  provider.Outcome
	calls    int
	history  []provider.Turn
	message  string
	deadline bool
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Respond(ctx context.Context, history []provider.Turn, message string) provider.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.history = append([]provider.Turn(nil), history...)
	f.message = message
	_, f.deadline = ctx.Deadline()
	return f.outcome
}

type recordingPublisher struct {
	mu     sync.Mutex
	topic  string
	events []eventbus.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, evt eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() {}

func newTestStore(t *testing.T) *repositories.SQLiteStore {
	t.Helper()
	store, err := repositories.NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestUser(t *testing.T, store repositories.UserStore, name string) int64 {
	t.Helper()
	u, err := store.CreateUser(context.Background(), name, "hash")
	require.NoError(t, err)
	return u.ID
}

func int64Ptr(v int64) *int64 { return &v }

func TestHandleTurnCreatesConversation(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.Ok("Hi there!")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{Timeout: time.Minute})

	res, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.Nil(t, chatErr)
	assert.Equal(t, "Hi there!", res.Response)
	assert.True(t, res.NewConversation)
	assert.NotZero(t, res.ConversationID)
	assert.True(t, adapter.deadline)

	conversations, err := store.ListConversations(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "Hello", conversations[0].Title)

	messages, err := store.ListMessages(context.Background(), res.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "Hello", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Hi there!", messages[1].Content)
}

func TestHandleTurnContinuesConversation(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.Ok("first")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	first, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.Nil(t, chatErr)

	adapter.outcome = provider.Ok("second")
	second, chatErr := svc.HandleTurn(context.Background(), TurnRequest{
		UserID:         userID,
		ConversationID: int64Ptr(first.ConversationID),
		Message:        "How are you?",
		History: []provider.Turn{
			{Role: "user", Content: "Hello"},
			{Role: "assistant", Content: "first"},
		},
	})
	require.Nil(t, chatErr)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.False(t, second.NewConversation)
	assert.Equal(t, "How are you?", adapter.message)
	assert.Len(t, adapter.history, 2)

	conversations, err := store.ListConversations(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)

	messages, err := store.ListMessages(context.Background(), first.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, "second", messages[3].Content)
}

func TestHandleTurnLoadsPersistedHistoryWhenNoneSent(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.Ok("answer")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	first, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.Nil(t, chatErr)

	_, chatErr = svc.HandleTurn(context.Background(), TurnRequest{
		UserID:         userID,
		ConversationID: int64Ptr(first.ConversationID),
		Message:        "Again",
	})
	require.Nil(t, chatErr)
	assert.Equal(t, []provider.Turn{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "answer"},
	}, adapter.history)
}

func TestHandleTurnRateLimitedKeepsUserMessage(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.RateLimited(30, map[string]any{"status": "RESOURCE_EXHAUSTED"})}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	_, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusTooManyRequests, chatErr.StatusCode)
	assert.Equal(t, "rate_limited", chatErr.ErrorCode)
	assert.Equal(t, 30, chatErr.RetryAfter)
	assert.Equal(t, "RESOURCE_EXHAUSTED", chatErr.QuotaDetails["status"])
	require.NotZero(t, chatErr.ConversationID)

	messages, err := store.ListMessages(context.Background(), chatErr.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleUser, messages[0].Role)
}

func TestHandleTurnRetryAfterRateLimitIsNewTurn(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.RateLimited(30, nil)}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	_, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.NotNil(t, chatErr)
	require.NotZero(t, chatErr.ConversationID)

	adapter.outcome = provider.Ok("Hi")
	res, chatErr := svc.HandleTurn(context.Background(), TurnRequest{
		UserID:         userID,
		ConversationID: int64Ptr(chatErr.ConversationID),
		Message:        "Hello",
		History:        []provider.Turn{{Role: "user", Content: "Hello"}, {Role: "user", Content: "Hello"}},
	})
	require.Nil(t, chatErr)
	assert.False(t, res.NewConversation)
	assert.Equal(t, []provider.Turn{{Role: "user", Content: "Hello"}}, adapter.history)

	messages, err := store.ListMessages(context.Background(), res.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, []string{models.RoleUser, models.RoleUser, models.RoleAssistant},
		[]string{messages[0].Role, messages[1].Role, messages[2].Role})
	assert.Equal(t, "Hello", messages[1].Content)
	assert.Equal(t, "Hi", messages[2].Content)

	conversations, err := store.ListConversations(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestHandleTurnProviderFailure(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.Failure("provider_error", errors.New("boom"))}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	_, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusInternalServerError, chatErr.StatusCode)
	assert.Equal(t, "chat_failed", chatErr.ErrorCode)

	messages, err := store.ListMessages(context.Background(), chatErr.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestHandleTurnRejectsEmptyMessage(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.Ok("x")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	_, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "   "})
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusBadRequest, chatErr.StatusCode)
	assert.Equal(t, "message_required", chatErr.ErrorCode)
	assert.Zero(t, adapter.calls)

	conversations, err := store.ListConversations(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestHandleTurnForeignConversation(t *testing.T) {
	store := newTestStore(t)
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	adapter := &fakeAdapter{outcome: provider.Ok("x")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{})

	res, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: alice, Message: "mine"})
	require.Nil(t, chatErr)

	_, chatErr = svc.HandleTurn(context.Background(), TurnRequest{
		UserID:         bob,
		ConversationID: int64Ptr(res.ConversationID),
		Message:        "steal",
	})
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusNotFound, chatErr.StatusCode)
	assert.Equal(t, "conversation_not_found", chatErr.ErrorCode)
	assert.Equal(t, 1, adapter.calls)

	messages, err := store.ListMessages(context.Background(), res.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	_, chatErr = svc.HandleTurn(context.Background(), TurnRequest{
		UserID:         alice,
		ConversationID: int64Ptr(9999),
		Message:        "missing",
	})
	require.NotNil(t, chatErr)
	assert.Equal(t, http.StatusNotFound, chatErr.StatusCode)
}

func TestHandleTurnPublishesEvent(t *testing.T) {
	store := newTestStore(t)
	userID := newTestUser(t, store, "alice")
	adapter := &fakeAdapter{outcome: provider.RateLimited(12, nil)}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTurnService(store, adapter, TurnServiceOptions{Publisher: publisher, Topic: "chat.turns"})

	_, chatErr := svc.HandleTurn(context.Background(), TurnRequest{UserID: userID, Message: "Hello"})
	require.NotNil(t, chatErr)
	assert.Equal(t, "rate_limited", chatErr.ErrorCode)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "chat.turns", publisher.topic)
	evt := publisher.events[0]
	assert.Equal(t, eventbus.TypeTurnRateLimited, evt.Type)

	var payload TurnEventPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, chatErr.ConversationID, payload.ConversationID)
	assert.True(t, payload.NewConversation)
	assert.Equal(t, 12, payload.RetryAfter)
}

func TestNormalizeHistory(t *testing.T) {
	testCases := []struct {
		name    string
		history []provider.Turn
		message string
		want    []provider.Turn
	}{
		{
			name:    "empty",
			message: "Hello",
			want:    []provider.Turn{},
		},
		{
			name: "greeting and optimistic message dropped",
			history: []provider.Turn{
				{Role: "assistant", Content: "Hello! How can I help you today?"},
				{Role: "user", Content: "Hello"},
			},
			message: "Hello",
			want:    []provider.Turn{},
		},
		{
			name: "unknown roles and blanks dropped",
			history: []provider.Turn{
				{Role: "system", Content: "be nice"},
				{Role: "user", Content: "  "},
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "reply"},
			},
			message: "second",
			want: []provider.Turn{
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "reply"},
			},
		},
		{
			name: "earlier identical message kept",
			history: []provider.Turn{
				{Role: "user", Content: "again"},
				{Role: "assistant", Content: "ok"},
			},
			message: "again",
			want: []provider.Turn{
				{Role: "user", Content: "again"},
				{Role: "assistant", Content: "ok"},
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, normalizeHistory(testCase.history, testCase.message))
		})
	}
}
