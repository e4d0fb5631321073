package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gemini-chat/internal/logger"
)

// State 는 Controller 의 상태다.
type State int

const (
	StateNoConversation State = iota
	StateActive
	StateAwaiting
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateNoConversation:
		return "no_conversation"
	case StateActive:
		return "active"
	case StateAwaiting:
		return "awaiting_response"
	case StateCooldown:
		return "rate_limited_cooldown"
	default:
		return "unknown"
	}
}

// FailureText 는 일반 실패 시 transcript 에 보여줄 문구다.
const FailureText = "Sorry, I encountered an error."

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrSendInFlight   = errors.New("a message is already being sent")
	ErrNothingToRetry = errors.New("nothing to retry")
)

// API 는 Controller 가 사용하는 서버 호출이다. *Client 가 구현한다.
type API interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Conversations(ctx context.Context) ([]Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]Message, error)
}

// Renderer 는 화면 갱신을 담당한다. Controller 는 락을 잡지 않은 상태에서 호출한다.
type Renderer interface {
	AppendEntry(e Entry)
	ReplaceTranscript(entries []Entry)
	SetBusy(busy bool)
	ShowError(text string)
	ShowQuota(retryAfter int, details map[string]any)
	// Countdown 은 1초마다 남은 시간을 알린다. 0 이면 재시도 가능.
	Countdown(secondsLeft int)
	HideQuota()
	LoginRequired()
	ConversationsChanged()
}

// Snapshot 은 Controller 상태의 읽기 전용 사본이다.
type Snapshot struct {
	State       State
	Session     Session
	SecondsLeft int
}

// Controller 는 클라이언트 세션 하나의 상태 기계다. 동시에 하나의 전송만 허용한다.
type Controller struct {
	api      API
	renderer Renderer
	greeting string
	tick     time.Duration

	mu              sync.Mutex
	session         Session
	state           State
	secondsLeft     int
	lastUserMessage string
	stopCountdown   context.CancelFunc
	// epoch 는 Clear/LoadConversation 마다 증가한다. 이전 epoch 의 응답은 버린다.
	epoch uint64
}

type ControllerOptions struct {
	Greeting string
	// Tick 은 카운트다운 간격이다. 기본 1초.
	Tick time.Duration
}

func NewController(api API, renderer Renderer, opts ControllerOptions) *Controller {
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	c := &Controller{api: api, renderer: renderer, greeting: opts.Greeting, tick: tick}
	c.session.reset(c.greeting)
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Session: c.session.clone(), SecondsLeft: c.secondsLeft}
}

// Send 는 메시지를 낙관적으로 transcript 에 추가한 뒤 서버에 보낸다.
// 실패해도 추가된 user 메시지는 되돌리지 않는다.
func (c *Controller) Send(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateAwaiting {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.cancelCountdownLocked()
	prev := c.settledStateLocked()
	entry := Entry{Role: RoleUser, Content: message}
	c.session.Transcript = append(c.session.Transcript, entry)
	c.lastUserMessage = message
	c.state = StateAwaiting
	epoch := c.epoch
	req := ChatRequest{Message: message, History: c.session.history()}
	if c.session.ActiveID != nil {
		id := *c.session.ActiveID
		req.ConversationID = &id
	}
	startedNew := req.ConversationID == nil
	c.mu.Unlock()

	c.renderer.HideQuota()
	c.renderer.AppendEntry(entry)
	c.renderer.SetBusy(true)

	resp, err := c.api.Chat(ctx, req)
	c.renderer.SetBusy(false)

	c.mu.Lock()
	if c.epoch != epoch {
		// 응답을 기다리는 동안 Clear/LoadConversation 이 일어났다.
		c.mu.Unlock()
		return err
	}

	var rateLimited *RateLimitedError
	var httpErr *HTTPError
	switch {
	case err == nil:
		c.session.adopt(resp.ConversationID)
		reply := Entry{Role: RoleAssistant, Content: resp.Response}
		c.session.Transcript = append(c.session.Transcript, reply)
		c.state = StateActive
		refresh := c.session.takeRefresh(startedNew)
		c.mu.Unlock()

		c.renderer.AppendEntry(reply)
		if refresh {
			c.renderer.ConversationsChanged()
		}
		return nil

	case errors.As(err, &rateLimited):
		c.session.adoptFromFailure(rateLimited.ConversationID, startedNew)
		c.state = StateCooldown
		c.secondsLeft = rateLimited.RetryAfter
		c.startCountdownLocked(rateLimited.RetryAfter)
		c.mu.Unlock()

		c.renderer.ShowQuota(rateLimited.RetryAfter, rateLimited.QuotaDetails)
		return err

	case errors.Is(err, ErrUnauthorized):
		c.state = prev
		c.mu.Unlock()

		c.renderer.LoginRequired()
		return err

	default:
		if errors.As(err, &httpErr) && httpErr.ConversationID > 0 {
			c.session.adoptFromFailure(httpErr.ConversationID, startedNew)
			prev = StateActive
		}
		c.state = prev
		c.mu.Unlock()

		logger.WarnWithFields("chat send failed", logger.Fields{"error": err.Error()})
		c.renderer.ShowError(FailureText)
		return err
	}
}

// Retry 는 마지막 user 메시지를 새 turn 으로 다시 보낸다. 카운트다운 중에도 허용된다.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	message := c.lastUserMessage
	c.mu.Unlock()
	if message == "" {
		return ErrNothingToRetry
	}
	return c.Send(ctx, message)
}

// Clear 는 새 대화를 시작한다. 다음 전송이 새 대화를 만든다.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.cancelCountdownLocked()
	c.epoch++
	c.session.reset(c.greeting)
	c.state = StateNoConversation
	c.lastUserMessage = ""
	entries := append([]Entry(nil), c.session.Transcript...)
	c.mu.Unlock()

	c.renderer.HideQuota()
	c.renderer.ReplaceTranscript(entries)
}

// LoadConversation 은 서버의 메시지로 transcript 와 활성 대화 id 를 한 번에 바꾼다.
// 실패하면 로그만 남기고 현재 상태를 유지한다.
func (c *Controller) LoadConversation(ctx context.Context, id int64) error {
	messages, err := c.api.Messages(ctx, id)
	if err != nil {
		logger.WarnWithFields("load conversation failed", logger.Fields{
			"conversation_id": id,
			"error":           err.Error(),
		})
		return err
	}

	entries := make([]Entry, 0, len(messages))
	lastUser := ""
	for _, m := range messages {
		entries = append(entries, Entry{Role: m.Role, Content: m.Content})
		if m.Role == RoleUser {
			lastUser = m.Content
		}
	}

	c.mu.Lock()
	c.cancelCountdownLocked()
	c.epoch++
	c.session.Transcript = entries
	c.session.unlisted = false
	c.session.adopt(id)
	c.state = StateActive
	c.lastUserMessage = lastUser
	out := append([]Entry(nil), entries...)
	c.mu.Unlock()

	c.renderer.HideQuota()
	c.renderer.ReplaceTranscript(out)
	return nil
}

func (c *Controller) Conversations(ctx context.Context) ([]Conversation, error) {
	return c.api.Conversations(ctx)
}

// Close 는 진행 중인 카운트다운을 멈춘다.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelCountdownLocked()
	c.mu.Unlock()
}

// settledStateLocked 는 카운트다운을 제외한 안정 상태를 돌려준다.
func (c *Controller) settledStateLocked() State {
	if c.session.ActiveID != nil {
		return StateActive
	}
	return StateNoConversation
}

func (c *Controller) cancelCountdownLocked() {
	if c.stopCountdown != nil {
		c.stopCountdown()
		c.stopCountdown = nil
	}
	c.secondsLeft = 0
	if c.state == StateCooldown {
		c.state = c.settledStateLocked()
	}
}

func (c *Controller) startCountdownLocked(seconds int) {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopCountdown = cancel
	go c.runCountdown(ctx, seconds)
}

func (c *Controller) runCountdown(ctx context.Context, seconds int) {
	if seconds <= 0 {
		c.renderer.Countdown(0)
		return
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for left := seconds; left > 0; {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		left--

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		c.secondsLeft = left
		c.mu.Unlock()

		c.renderer.Countdown(left)
	}
}
