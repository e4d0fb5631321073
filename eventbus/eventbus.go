package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// 이벤트 타입: turn 오케스트레이션 결과별로 하나씩 발행한다.
const (
	TypeTurnCompleted   = "chat.turn.completed"
	TypeTurnRateLimited = "chat.turn.rate_limited"
	TypeTurnFailed      = "chat.turn.failed"
)

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher 는 이벤트 발행의 추상화다. 구독은 이 서비스의 관심사가 아니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewJSONEvent 는 payload를 JSON으로 인코딩하여 Event를 구성합니다.
// key 는 파티션 키로 쓰이며, 같은 대화의 이벤트가 순서대로 소비되도록 conversation id 를 넘긴다.
func NewJSONEvent(eventType, key string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload marshal 실패: %w", err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Payload:    b,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// NoopPublisher 는 브로커가 설정되지 않았을 때 사용하는 빈 구현이다.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NoopPublisher) Close()                                     {}
