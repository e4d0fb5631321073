package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConversationID 는 conversationId 필드의 느슨한 입력을 받아들인다.
// 숫자, 숫자 문자열, null, 0 을 허용하며 null/0/"" 은 "대화 없음" 으로 본다.
type ConversationID struct {
	Value int64
	Set   bool
}

func (id *ConversationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ConversationID{}
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*id = ConversationID{}
			return nil
		}
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("conversationId must be a non-negative integer")
	}
	*id = ConversationID{Value: v, Set: v != 0}
	return nil
}

func (id ConversationID) MarshalJSON() ([]byte, error) {
	if !id.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

// Ptr 는 서비스 계층에 넘길 *int64 를 돌려준다. 값이 없으면 nil.
func (id ConversationID) Ptr() *int64 {
	if !id.Set {
		return nil
	}
	v := id.Value
	return &v
}

type ChatTurnDTO struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"Hello"`
}

type ChatRequestDTO struct {
	Message        string         `json:"message" example:"Hello"`
	History        []ChatTurnDTO  `json:"history"`
	ConversationID ConversationID `json:"conversationId" swaggertype:"integer" example:"1"`
}

type ChatResponseDTO struct {
	Response       string `json:"response" example:"Hi there! How can I help?"`
	ConversationID int64  `json:"conversationId" example:"1"`
}

// RateLimitedResponseDTO 는 429 응답 본문이다. retryAfter 는 초 단위.
type RateLimitedResponseDTO struct {
	Error          string         `json:"error" example:"rate_limited"`
	RetryAfter     int            `json:"retryAfter" example:"30"`
	QuotaDetails   map[string]any `json:"quotaDetails"`
	ConversationID int64          `json:"conversationId,omitempty" example:"1"`
}

// ChatErrorResponseDTO 는 대화가 확정된 뒤 실패했을 때의 응답 본문이다.
type ChatErrorResponseDTO struct {
	Error          string `json:"error" example:"chat_failed"`
	ConversationID int64  `json:"conversationId,omitempty" example:"1"`
}
