package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingCookie = errors.New("missing_session_cookie")
	ErrEmptyToken    = errors.New("empty_token")
)

// ExtractSessionToken reads the session token from the named cookie.
// The cookie is the only accepted credential.
func ExtractSessionToken(c *gin.Context, cookieName string) (string, error) {
	value, err := c.Cookie(cookieName)
	if err != nil {
		return "", ErrMissingCookie
	}

	token := strings.TrimSpace(value)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// SetSessionCookie writes the session token as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, cookieName, token string, maxAgeSeconds int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, token, maxAgeSeconds, "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cookieName string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}

// AbortWithUnauthorized aborts the request with 401 status and error JSON.
// Clients map this response to the login view.
func AbortWithUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
