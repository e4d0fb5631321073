package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestExtractSessionToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name        string
		cookieValue string
		setCookie   bool
		wantToken   string
		wantErr     error
	}{
		{
			name:    "missing cookie",
			wantErr: ErrMissingCookie,
		},
		{
			name:        "empty cookie",
			cookieValue: "   ",
			setCookie:   true,
			wantErr:     ErrEmptyToken,
		},
		{
			name:        "valid cookie",
			cookieValue: "token-123",
			setCookie:   true,
			wantToken:   "token-123",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, _ := newTestGinContext()
			if testCase.setCookie {
				ginCtx.Request.AddCookie(&http.Cookie{Name: "chat_session", Value: testCase.cookieValue})
			}

			token, err := ExtractSessionToken(ginCtx, "chat_session")
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected error %v, got %v", testCase.wantErr, err)
			}
			if token != testCase.wantToken {
				t.Fatalf("expected token %q, got %q", testCase.wantToken, token)
			}
		})
	}
}

func TestSetAndClearSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ginCtx, recorder := newTestGinContext()
	SetSessionCookie(ginCtx, "chat_session", "abc", 3600, false)
	header := recorder.Header().Get("Set-Cookie")
	if !strings.Contains(header, "chat_session=abc") || !strings.Contains(header, "HttpOnly") {
		t.Fatalf("unexpected Set-Cookie header %q", header)
	}

	ginCtx, recorder = newTestGinContext()
	ClearSessionCookie(ginCtx, "chat_session", false)
	header = recorder.Header().Get("Set-Cookie")
	if !strings.Contains(header, "Max-Age=0") {
		t.Fatalf("expected expired cookie, got %q", header)
	}
}

func TestAbortWithUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ginCtx, recorder := newTestGinContext()
	AbortWithUnauthorized(ginCtx)

	if !ginCtx.IsAborted() {
		t.Fatalf("expected request to be aborted")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["error"] != "unauthorized" {
		t.Fatalf("expected error unauthorized, got %q", body["error"])
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
	BurnPasswordCheck("anything")
}

func newTestGinContext() (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)
	ginCtx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return ginCtx, recorder
}
