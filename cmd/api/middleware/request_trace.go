package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/trace"
	"gemini-chat/internal/logger"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"
)

// RequestTrace 는 모든 요청에 Request ID 를 보장하고 응답 헤더에 실은 뒤,
// 처리가 끝나면 "completed request" 로그 한 줄을 남긴다.
//
// 요청 바디는 비밀번호와 대화 내용을 담기 때문에 로그에 남기지 않는다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		ctx := trace.WithRequest(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, trace.CurrentSpanID(ctx))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
			"span_id":    trace.CurrentSpanID(ctx),
		}
		if userID, ok := UserIDFrom(c); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		logger.InfoWithFields("completed request", fields)
	}
}
