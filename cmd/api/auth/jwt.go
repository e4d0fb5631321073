package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gemini-chat/config"
)

// SessionManager 는 HS256 단일 시크릿 문자열로 세션 쿠키에 담길 JWT 를 발급/검증한다.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessionManager 는 session 설정으로 SessionManager 를 생성한다.
//
// - secret: HS256 서명에 사용할 시크릿 문자열(필수, SESSION_SECRET 로 주입)
// - issuer: iss 클레임 값(기본값 "gemini-chat")
func NewSessionManager(cfg config.SessionConfig) (*SessionManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "gemini-chat"
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionManager{
		secret: []byte(cfg.Secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

func (m *SessionManager) Sign(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iss": m.issuer,
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// SessionClaims 는 검증된 세션 토큰에서 꺼낸 값이다.
type SessionClaims struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// Parse 는 토큰을 검증하고 sub 클레임의 user id 를 돌려준다.
func (m *SessionManager) Parse(tokenString string) (int64, error) {
	claims, err := m.ParseClaims(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ParseClaims 는 로그아웃 처리를 위해 jti 와 exp 까지 함께 돌려준다.
func (m *SessionManager) ParseClaims(tokenString string) (SessionClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return SessionClaims{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return SessionClaims{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return SessionClaims{}, fmt.Errorf("token missing sub claim")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return SessionClaims{}, fmt.Errorf("token sub claim is not a user id")
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return SessionClaims{}, fmt.Errorf("token missing jti claim")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return SessionClaims{}, fmt.Errorf("token missing exp claim")
	}

	return SessionClaims{UserID: userID, TokenID: jti, ExpiresAt: exp.Time}, nil
}
