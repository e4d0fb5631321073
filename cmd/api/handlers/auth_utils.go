package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/auth"
	"gemini-chat/cmd/api/dto"
	"gemini-chat/cmd/api/middleware"
	"gemini-chat/cmd/api/services"
	"gemini-chat/cmd/api/trace"
	"gemini-chat/internal/logger"
)

// requireUserID 는 SessionAuth 미들웨어가 저장한 user_id 를 꺼낸다.
// 미들웨어 없이 등록된 라우트라면 401 을 내려주고 false 를 반환한다.
func requireUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		auth.AbortWithUnauthorized(c)
		return 0, false
	}
	return userID, true
}

// writeChatError 는 서비스 에러를 HTTP 응답으로 옮긴다. Cause 는 로그에만 남긴다.
func writeChatError(c *gin.Context, chatErr *services.ChatError) {
	fields := logger.Fields(trace.Fields(c.Request.Context()))
	fields["status"] = chatErr.StatusCode
	fields["error_code"] = chatErr.ErrorCode
	if chatErr.Cause != nil {
		fields["cause"] = chatErr.Cause.Error()
	}
	if chatErr.StatusCode >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", fields)
	} else {
		logger.DebugWithFields("request rejected", fields)
	}

	switch {
	case chatErr.StatusCode == http.StatusTooManyRequests:
		details := chatErr.QuotaDetails
		if details == nil {
			details = map[string]any{}
		}
		c.JSON(http.StatusTooManyRequests, dto.RateLimitedResponseDTO{
			Error:          chatErr.ErrorCode,
			RetryAfter:     chatErr.RetryAfter,
			QuotaDetails:   details,
			ConversationID: chatErr.ConversationID,
		})
	case chatErr.ConversationID != 0:
		c.JSON(chatErr.StatusCode, dto.ChatErrorResponseDTO{Error: chatErr.ErrorCode, ConversationID: chatErr.ConversationID})
	default:
		c.JSON(chatErr.StatusCode, dto.ErrorResponseDTO{Error: chatErr.ErrorCode})
	}
}
