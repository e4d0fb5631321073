package services

import "net/http"

// ChatError 는 핸들러가 그대로 HTTP 응답으로 옮길 수 있는 서비스 에러다.
// Cause 는 서버 로그에만 남기고 클라이언트에는 ErrorCode 만 내려준다.
type ChatError struct {
	StatusCode int
	ErrorCode  string
	Cause      error

	// rate_limited 일 때만 채워진다.
	RetryAfter   int
	QuotaDetails map[string]any

	// 대화가 이미 확정된 뒤 실패한 경우(429, provider 실패) 클라이언트가 같은 대화를 이어가도록 id 를 함께 준다.
	ConversationID int64
}

func (e *ChatError) Error() string {
	if e == nil {
		return ""
	}
	return e.ErrorCode
}

func (e *ChatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newChatError(status int, code string, cause error) *ChatError {
	return &ChatError{StatusCode: status, ErrorCode: code, Cause: cause}
}

func errMessageRequired() *ChatError {
	return newChatError(http.StatusBadRequest, "message_required", nil)
}

func errConversationNotFound(cause error) *ChatError {
	return newChatError(http.StatusNotFound, "conversation_not_found", cause)
}

func errPersistence(cause error) *ChatError {
	return newChatError(http.StatusInternalServerError, "persistence_failed", cause)
}
