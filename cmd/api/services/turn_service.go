package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gemini-chat/cmd/api/trace"
	"gemini-chat/internal/logger"
	"gemini-chat/eventbus"
	"gemini-chat/models"
	"gemini-chat/provider"
	"gemini-chat/repositories"
)

const publishTimeout = 3 * time.Second

// TurnRequest 는 /api/chat 한 번의 입력이다.
// ConversationID 가 nil 이면 새 대화를 만든다.
type TurnRequest struct {
	UserID         int64
	ConversationID *int64
	Message        string
	History        []provider.Turn
}

type TurnResult struct {
	Response        string
	ConversationID  int64
	NewConversation bool
}

// TurnEventPayload 는 turn 이 provider 까지 도달했을 때 발행되는 이벤트 본문이다.
type TurnEventPayload struct {
	UserID          int64  `json:"user_id"`
	ConversationID  int64  `json:"conversation_id"`
	Outcome         string `json:"outcome"`
	NewConversation bool   `json:"new_conversation"`
	RetryAfter      int    `json:"retry_after,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Provider        string `json:"provider"`
}

// TurnService 는 대화 확정 → user 메시지 저장 → provider 호출 → assistant 메시지 저장 순서로
// 한 번의 turn 을 처리한다. user 메시지는 provider 결과와 상관없이 남는다.
type TurnService struct {
	store     repositories.ConversationStore
	adapter   provider.Adapter
	publisher eventbus.Publisher
	topic     string
	timeout   time.Duration
}

type TurnServiceOptions struct {
	Publisher eventbus.Publisher
	Topic     string
	// provider 호출 한 건의 상한. 0 이면 요청 컨텍스트만 따른다.
	Timeout time.Duration
}

func NewTurnService(store repositories.ConversationStore, adapter provider.Adapter, opts TurnServiceOptions) *TurnService {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = eventbus.NoopPublisher{}
	}
	return &TurnService{
		store:     store,
		adapter:   adapter,
		publisher: publisher,
		topic:     opts.Topic,
		timeout:   opts.Timeout,
	}
}

func (s *TurnService) HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, *ChatError) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return TurnResult{}, errMessageRequired()
	}

	conv, isNew, chatErr := s.resolveConversation(ctx, req.UserID, req.ConversationID, message)
	if chatErr != nil {
		return TurnResult{}, chatErr
	}

	history := normalizeHistory(req.History, message)
	if len(history) == 0 && !isNew {
		persisted, err := s.store.ListMessages(ctx, conv.ID)
		if err != nil {
			return TurnResult{}, errPersistence(fmt.Errorf("load history for conversation %d: %w", conv.ID, err))
		}
		history = historyFromMessages(persisted)
	}

	if _, err := s.store.AppendMessage(ctx, conv.ID, models.RoleUser, message); err != nil {
		return TurnResult{}, errPersistence(fmt.Errorf("append user message: %w", err))
	}

	outcome := s.respond(ctx, history, message)
	s.publishTurn(ctx, req.UserID, conv.ID, isNew, outcome)

	fields := logger.Fields(trace.Fields(ctx))
	fields["user_id"] = req.UserID
	fields["conversation_id"] = conv.ID
	fields["provider"] = s.adapter.Name()
	fields["outcome"] = outcome.Kind.String()

	switch outcome.Kind {
	case provider.KindOK:
		if _, err := s.store.AppendMessage(ctx, conv.ID, models.RoleAssistant, outcome.Text); err != nil {
			chatErr := errPersistence(fmt.Errorf("append assistant message: %w", err))
			chatErr.ConversationID = conv.ID
			return TurnResult{}, chatErr
		}
		logger.DebugWithFields("turn completed", fields)
		return TurnResult{Response: outcome.Text, ConversationID: conv.ID, NewConversation: isNew}, nil

	case provider.KindRateLimited:
		fields["retry_after"] = outcome.RetryAfter
		logger.WarnWithFields("turn rate limited", fields)
		return TurnResult{}, &ChatError{
			StatusCode:     http.StatusTooManyRequests,
			ErrorCode:      "rate_limited",
			Cause:          errors.New(outcome.String()),
			RetryAfter:     outcome.RetryAfter,
			QuotaDetails:   outcome.Details,
			ConversationID: conv.ID,
		}

	default:
		fields["reason"] = outcome.Reason
		if outcome.Err != nil {
			fields["error"] = outcome.Err.Error()
		}
		logger.ErrorWithFields("turn failed", fields)
		chatErr := newChatError(http.StatusInternalServerError, "chat_failed", errors.New(outcome.String()))
		chatErr.ConversationID = conv.ID
		return TurnResult{}, chatErr
	}
}

// resolveConversation 은 id 가 없으면 새 대화를 만들고, 있으면 요청자 소유인지 확인한다.
func (s *TurnService) resolveConversation(ctx context.Context, userID int64, conversationID *int64, message string) (*models.Conversation, bool, *ChatError) {
	if conversationID == nil || *conversationID == 0 {
		conv, err := s.store.CreateConversation(ctx, userID, models.TitleFromMessage(message))
		if err != nil {
			return nil, false, errPersistence(fmt.Errorf("create conversation: %w", err))
		}
		return conv, true, nil
	}

	conv, chatErr := (&ConversationService{store: s.store}).owned(ctx, userID, *conversationID)
	if chatErr != nil {
		return nil, false, chatErr
	}
	return conv, false, nil
}

func (s *TurnService) respond(ctx context.Context, history []provider.Turn, message string) provider.Outcome {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	requestID, spanID := trace.NextSpanID(ctx)
	start := time.Now()
	outcome := s.adapter.Respond(callCtx, history, message)
	logger.DebugWithFields("provider call", logger.Fields{
		"request_id": requestID,
		"span_id":    spanID,
		"provider":   s.adapter.Name(),
		"outcome":    outcome.Kind.String(),
		"duration":   time.Since(start).String(),
	})
	return outcome
}

// publishTurn 은 이벤트 발행 실패를 로그로만 남긴다.
// 클라이언트 연결이 끊겨도 발행은 끝까지 시도한다.
func (s *TurnService) publishTurn(ctx context.Context, userID, conversationID int64, isNew bool, outcome provider.Outcome) {
	if s.topic == "" {
		return
	}

	eventType := eventbus.TypeTurnCompleted
	switch outcome.Kind {
	case provider.KindRateLimited:
		eventType = eventbus.TypeTurnRateLimited
	case provider.KindFailure:
		eventType = eventbus.TypeTurnFailed
	}

	evt, err := eventbus.NewJSONEvent(eventType, strconv.FormatInt(conversationID, 10), TurnEventPayload{
		UserID:          userID,
		ConversationID:  conversationID,
		Outcome:         outcome.Kind.String(),
		NewConversation: isNew,
		RetryAfter:      outcome.RetryAfter,
		Reason:          outcome.Reason,
		Provider:        s.adapter.Name(),
	})
	if err != nil {
		logger.ErrorWithFields("turn event encode failed", logger.Fields{"error": err.Error()})
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	requestID, spanID := trace.NextSpanID(ctx)
	if err := s.publisher.Publish(pubCtx, s.topic, evt); err != nil {
		logger.ErrorWithFields("turn event publish failed", logger.Fields{
			"request_id": requestID,
			"span_id":    spanID,
			"event_id":   evt.ID,
			"event_type": evt.Type,
			"error":      err.Error(),
		})
	}
}

// normalizeHistory 는 클라이언트가 보낸 transcript 를 provider 에 넘길 수 있는 형태로 정리한다.
//   - 알 수 없는 role, 빈 content 는 버린다.
//   - 마지막 항목이 이번 message 와 같은 user 항목이면 제거한다(낙관적 추가분).
//   - 앞쪽 assistant 항목(인사말)은 제거한다. provider 는 user turn 으로 시작해야 한다.
func normalizeHistory(history []provider.Turn, message string) []provider.Turn {
	out := make([]provider.Turn, 0, len(history))
	for _, t := range history {
		content := strings.TrimSpace(t.Content)
		if !models.ValidRole(t.Role) || content == "" {
			continue
		}
		out = append(out, provider.Turn{Role: t.Role, Content: content})
	}

	if n := len(out); n > 0 && out[n-1].Role == models.RoleUser && out[n-1].Content == message {
		out = out[:n-1]
	}

	start := 0
	for start < len(out) && out[start].Role == models.RoleAssistant {
		start++
	}
	return out[start:]
}

func historyFromMessages(messages []models.Message) []provider.Turn {
	turns := make([]provider.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, provider.Turn{Role: m.Role, Content: m.Content})
	}
	return normalizeHistory(turns, "")
}
