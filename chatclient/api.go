package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultCookieName = "chat_session"
	maxBodySize       = 5 * 1024 * 1024
)

// ErrUnauthorized 는 서버가 401 을 돌려줬을 때 반환된다. 호출자는 로그인 화면으로 보낸다.
var ErrUnauthorized = errors.New("unauthorized")

// RateLimitedError 는 429 응답이다. RetryAfter 는 초 단위.
type RateLimitedError struct {
	RetryAfter     int
	QuotaDetails   map[string]any
	ConversationID int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfter)
}

// HTTPError 는 그 밖의 실패 응답이다. Code 는 서버의 error 필드 값.
type HTTPError struct {
	StatusCode     int
	Code           string
	ConversationID int64
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("chat api request failed: status=%d error=%s", e.StatusCode, e.Code)
}

// Turn 은 서버로 보내는 history 한 항목이다.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message        string `json:"message"`
	History        []Turn `json:"history"`
	ConversationID *int64 `json:"conversationId"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID int64  `json:"conversationId"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Client 는 채팅 API 의 HTTP 클라이언트다. 세션 쿠키는 내부 cookie jar 가 보관한다.
type Client struct {
	base       *baseClient
	cookieName string
}

type ClientOptions struct {
	BaseURL    string
	CookieName string
	Timeout    time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	base, err := newBaseClient(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return &Client{base: base, cookieName: cookieName}, nil
}

// SessionToken 은 현재 jar 에 있는 세션 쿠키 값을 돌려준다. 없으면 "".
func (c *Client) SessionToken() string {
	return c.base.cookie(c.cookieName)
}

// SetSessionToken 은 저장해 둔 세션 쿠키를 jar 에 다시 넣는다.
func (c *Client) SetSessionToken(token string) {
	if token == "" {
		return
	}
	c.base.setCookie(c.cookieName, token)
}

func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("server status %q", out.Status)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, username, password string) (int64, error) {
	var out struct {
		UserID int64 `json:"userId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{"username": username, "password": password}, &out)
	return out.UserID, err
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/login", map[string]string{"username": username, "password": password}, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) LoggedIn(ctx context.Context) (bool, error) {
	var out struct {
		LoggedIn bool `json:"loggedIn"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &out); err != nil {
		return false, err
	}
	return out.LoggedIn, nil
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.History == nil {
		req.History = []Turn{}
	}
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat", req, &out)
	return out, err
}

func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &out)
	return out, err
}

func (c *Client) Messages(ctx context.Context, conversationID int64) ([]Message, error) {
	var out []Message
	err := c.do(ctx, http.MethodGet, "/api/conversations/"+strconv.FormatInt(conversationID, 10), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, relPath string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.base.newRequest(ctx, method, relPath, body)
	if err != nil {
		return err
	}

	resp, err := c.base.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("chat api response read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("chat api response decode failed: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var payload struct {
		Error          string         `json:"error"`
		RetryAfter     int            `json:"retryAfter"`
		QuotaDetails   map[string]any `json:"quotaDetails"`
		ConversationID int64          `json:"conversationId"`
	}
	_ = json.Unmarshal(data, &payload)

	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		retryAfter := payload.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 60
		}
		return &RateLimitedError{
			RetryAfter:     retryAfter,
			QuotaDetails:   payload.QuotaDetails,
			ConversationID: payload.ConversationID,
		}
	default:
		return &HTTPError{StatusCode: status, Code: payload.Error, ConversationID: payload.ConversationID}
	}
}
