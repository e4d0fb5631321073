package chatclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"gemini-chat/internal/logger"
)

// loggingRoundTripper 는 모든 API 호출에 X-Request-Id 를 붙이고 결과를 로그로 남긴다.
// 요청 바디는 비밀번호와 대화 내용을 담기 때문에 기록하지 않는다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := req.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("chat api request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("chat api request", fields)
	return resp, nil
}

// baseClient 는 쿠키 jar 를 가진 http.Client 와 baseURL 을 묶어 요청 생성을 돕는다.
type baseClient struct {
	httpClient *http.Client
	baseURL    *url.URL
}

func newBaseClient(baseURL string, timeout time.Duration) (*baseClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &baseClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: &loggingRoundTripper{inner: http.DefaultTransport},
		},
		baseURL: u,
	}, nil
}

// newRequest 는 relPath 를 baseURL 에 이어 붙여 요청을 만든다. relPath 에 쿼리를 넣지 않는다.
func (c *baseClient) newRequest(ctx context.Context, method, relPath string, body io.Reader) (*http.Request, error) {
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("relPath must not contain query string: %s", relPath)
	}
	u := *c.baseURL
	u.Path = path.Join(u.Path, relPath)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *baseClient) cookie(name string) string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *baseClient) setCookie(name, value string) {
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}
