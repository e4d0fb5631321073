package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gemini-chat/cmd/api/auth"
	"gemini-chat/config"
	"gemini-chat/models"
	"gemini-chat/repositories"
)

// ErrSessionRevoked 는 로그아웃으로 폐기된 세션 토큰을 다시 쓸 때 반환된다.
var ErrSessionRevoked = errors.New("session revoked")

type AuthService struct {
	users        repositories.AuthStore
	sessions     *auth.SessionManager
	cookieName   string
	cookieSecure bool
}

func NewAuthService(users repositories.AuthStore, sessions *auth.SessionManager, cfg config.SessionConfig) *AuthService {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "chat_session"
	}
	return &AuthService{
		users:        users,
		sessions:     sessions,
		cookieName:   cookieName,
		cookieSecure: cfg.CookieSecure,
	}
}

// NewAuthServiceFromConfig 는 session 설정으로 SessionManager 까지 함께 만든다.
func NewAuthServiceFromConfig(users repositories.AuthStore, cfg config.SessionConfig) (*AuthService, error) {
	sessions, err := auth.NewSessionManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init SessionManager: %w", err)
	}
	return NewAuthService(users, sessions, cfg), nil
}

func (s *AuthService) CookieName() string { return s.cookieName }
func (s *AuthService) CookieSecure() bool { return s.cookieSecure }
func (s *AuthService) SessionTTL() time.Duration { return s.sessions.TTL() }

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, *ChatError) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, newChatError(http.StatusBadRequest, "credentials_required", nil)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, newChatError(http.StatusInternalServerError, "registration_failed", fmt.Errorf("hash password: %w", err))
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, newChatError(http.StatusConflict, "username_taken", err)
		}
		return nil, newChatError(http.StatusInternalServerError, "registration_failed", fmt.Errorf("create user: %w", err))
	}
	return user, nil
}

// Login 은 자격 증명을 확인하고 세션 토큰을 발급한다.
// 없는 사용자도 더미 해시와 비교해 응답 시간으로 사용자 존재 여부가 드러나지 않게 한다.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *ChatError) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", newChatError(http.StatusBadRequest, "credentials_required", nil)
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			auth.BurnPasswordCheck(password)
			return "", newChatError(http.StatusUnauthorized, "invalid_credentials", err)
		}
		return "", newChatError(http.StatusInternalServerError, "login_failed", fmt.Errorf("find user: %w", err))
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", newChatError(http.StatusUnauthorized, "invalid_credentials", nil)
	}

	token, err := s.sessions.Sign(user.ID)
	if err != nil {
		return "", newChatError(http.StatusInternalServerError, "login_failed", fmt.Errorf("sign session: %w", err))
	}
	return token, nil
}

// ParseSession 은 서명과 만료를 확인한 뒤 로그아웃으로 폐기된 토큰인지 저장소에서 확인한다.
func (s *AuthService) ParseSession(ctx context.Context, token string) (int64, error) {
	claims, err := s.sessions.ParseClaims(token)
	if err != nil {
		return 0, err
	}
	revoked, err := s.users.IsSessionRevoked(ctx, claims.TokenID)
	if err != nil {
		return 0, fmt.Errorf("check revoked session: %w", err)
	}
	if revoked {
		return 0, ErrSessionRevoked
	}
	return claims.UserID, nil
}

// Logout 은 토큰의 jti 를 만료 시각까지 폐기 목록에 올린다.
// 토큰이 없거나 이미 무효하면 할 일이 없으므로 성공으로 본다.
func (s *AuthService) Logout(ctx context.Context, token string) *ChatError {
	if token == "" {
		return nil
	}
	claims, err := s.sessions.ParseClaims(token)
	if err != nil {
		return nil
	}
	if err := s.users.RevokeSession(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return newChatError(http.StatusInternalServerError, "logout_failed", fmt.Errorf("revoke session: %w", err))
	}
	return nil
}
