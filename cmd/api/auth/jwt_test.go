package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gemini-chat/config"
)

func TestNewSessionManagerRequiresSecret(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{Issuer: "issuer-for-test"})
	if err == nil {
		t.Fatalf("expected error when secret is empty")
	}
	if manager != nil {
		t.Fatalf("expected nil manager when config is invalid")
	}
}

func TestNewSessionManagerUsesDefaults(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.issuer != "gemini-chat" {
		t.Fatalf("expected default issuer gemini-chat, got %q", manager.issuer)
	}
	if manager.ttl != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", manager.ttl)
	}
}

func TestSessionManagerSignAndParseRoundTrip(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{Secret: "test-secret", Issuer: "test-issuer", TTLHours: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Sign(42)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	userID, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestSessionManagerParseClaims(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{Secret: "test-secret", TTLHours: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := manager.Sign(7)
	second, _ := manager.Sign(7)

	a, err := manager.ParseClaims(first)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	b, err := manager.ParseClaims(second)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if a.UserID != 7 || a.TokenID == "" {
		t.Fatalf("unexpected claims %+v", a)
	}
	if a.TokenID == b.TokenID {
		t.Fatalf("expected distinct token ids per login")
	}
	if until := time.Until(a.ExpiresAt); until <= 0 || until > time.Hour {
		t.Fatalf("unexpected expiry %s", a.ExpiresAt)
	}
}

func TestSessionManagerParseRejectsMissingTokenID(t *testing.T) {
	manager := &SessionManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"iss": "issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(manager.secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := manager.Parse(tokenString); err == nil || !strings.Contains(err.Error(), "jti") {
		t.Fatalf("expected missing jti error, got %v", err)
	}
}

func TestSessionManagerParseRejectsInvalidSignature(t *testing.T) {
	manager := &SessionManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"iss": "issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := forged.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign forged token: %v", err)
	}

	if _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for invalid signature")
	}
}

func TestSessionManagerParseRejectsExpiredToken(t *testing.T) {
	manager := &SessionManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"iss": "issuer",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	tokenString, err := expired.SignedString(manager.secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestSessionManagerParseRejectsBadSubject(t *testing.T) {
	manager := &SessionManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	testCases := []struct {
		name    string
		claims  jwt.MapClaims
		wantErr string
	}{
		{
			name:    "missing sub",
			claims:  jwt.MapClaims{"iss": "issuer", "exp": time.Now().Add(time.Hour).Unix()},
			wantErr: "token missing sub claim",
		},
		{
			name:    "non numeric sub",
			claims:  jwt.MapClaims{"sub": "user-001", "iss": "issuer", "exp": time.Now().Add(time.Hour).Unix()},
			wantErr: "not a user id",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, testCase.claims).SignedString(manager.secret)
			if err != nil {
				t.Fatalf("failed to sign token: %v", err)
			}
			_, err = manager.Parse(tokenString)
			if err == nil || !strings.Contains(err.Error(), testCase.wantErr) {
				t.Fatalf("expected error containing %q, got %v", testCase.wantErr, err)
			}
		})
	}
}
