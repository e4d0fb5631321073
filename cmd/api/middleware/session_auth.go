package middleware

import (
	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/auth"
	"gemini-chat/cmd/api/services"
	"gemini-chat/cmd/api/trace"
	"gemini-chat/internal/logger"
)

// ContextKeyUserID 는 인증된 사용자 id(int64)를 gin 컨텍스트에 저장할 때 쓰는 키다.
const ContextKeyUserID = "user_id"

// SessionAuth 는 세션 쿠키의 JWT 를 검증하고 user_id 를 컨텍스트에 저장한다.
// 쿠키가 없거나 유효하지 않으면 401 {"error":"unauthorized"} 로 중단한다.
func SessionAuth(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractSessionToken(c, authSvc.CookieName())
		if err != nil {
			auth.AbortWithUnauthorized(c)
			return
		}

		userID, err := authSvc.ParseSession(c.Request.Context(), token)
		if err != nil {
			fields := logger.Fields(trace.Fields(c.Request.Context()))
			fields["error"] = err.Error()
			logger.DebugWithFields("session token rejected", fields)
			auth.AbortWithUnauthorized(c)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// UserIDFrom 은 SessionAuth 가 저장한 user_id 를 꺼낸다.
func UserIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
