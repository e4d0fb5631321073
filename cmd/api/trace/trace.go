package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info 는 하나의 HTTP 요청에 대한 트레이싱 정보를 담는다.
// spanSeq 는 같은 요청 안에서 provider 호출, 이벤트 발행 같은 outbound 작업마다 1씩 증가한다.
type Info struct {
	RequestID string
	spanSeq   int64
}

func GenerateID() string {
	return uuid.NewString()
}

// WithRequest 는 Request ID 를 담고 span 시퀀스를 0 으로 둔 새 컨텍스트를 반환한다.
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyTrace, &Info{RequestID: requestID})
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

func RequestIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RequestID
}

// CurrentSpanID 는 현재 span 값을 증가시키지 않고 문자열로 돌려준다.
func CurrentSpanID(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return "0"
	}
	val := atomic.LoadInt64(&info.spanSeq)
	if val <= 0 {
		return "0"
	}
	return strconv.FormatInt(val, 10)
}

// NextSpanID 는 span 을 1 증가시키고 (requestID, spanID) 를 반환한다.
func NextSpanID(ctx context.Context) (string, string) {
	info := infoFromContext(ctx)
	if info == nil {
		return GenerateID(), "1"
	}
	val := atomic.AddInt64(&info.spanSeq, 1)
	return info.RequestID, strconv.FormatInt(val, 10)
}

// Fields 는 로그에 붙일 request_id / span_id 를 map 으로 돌려준다.
func Fields(ctx context.Context) map[string]any {
	return map[string]any{
		"request_id": RequestIDFromContext(ctx),
		"span_id":    CurrentSpanID(ctx),
	}
}
