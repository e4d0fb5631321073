package chatclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "chat_session", Value: "tok-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("chat_session")
		writeJSON(w, http.StatusOK, map[string]bool{"loggedIn": err == nil && ck.Value == "tok-1"})
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "chat_session", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	loggedIn, err := client.LoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	require.NoError(t, client.Login(ctx, "alice", "pw"))
	assert.Equal(t, "tok-1", client.SessionToken())

	loggedIn, err = client.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	require.NoError(t, client.Logout(ctx))
	assert.Equal(t, "", client.SessionToken())

	restored, err := NewClient(ClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)
	restored.SetSessionToken("tok-1")
	loggedIn, err = restored.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestDecodeError(t *testing.T) {
	assert.ErrorIs(t, decodeError(http.StatusUnauthorized, []byte(`{"error":"unauthorized"}`)), ErrUnauthorized)

	var rl *RateLimitedError
	require.True(t, errors.As(decodeError(http.StatusTooManyRequests, []byte(`{"error":"rate_limited","retryAfter":12,"quotaDetails":{"scope":"minute"}}`)), &rl))
	assert.Equal(t, 12, rl.RetryAfter)
	assert.Equal(t, "minute", rl.QuotaDetails["scope"])

	require.True(t, errors.As(decodeError(http.StatusTooManyRequests, []byte(`not json`)), &rl))
	assert.Equal(t, 60, rl.RetryAfter)

	var httpErr *HTTPError
	require.True(t, errors.As(decodeError(http.StatusNotFound, []byte(`{"error":"conversation_not_found"}`)), &httpErr))
	assert.Equal(t, "conversation_not_found", httpErr.Code)
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseURL: "localhost"})
	assert.Error(t, err)
}
