package provider

import (
	"context"
	"math"
	"sync"
	"time"

	"gemini-chat/config"
)

// QuotaGuard 는 provider 호출에 대한 로컬 분당/일일 한도를 관리하는 Adapter 데코레이터다.
// 서버 인스턴스가 하나라는 전제로 인메모리로 동작하며, 재시작되면 카운터가 초기화된다.
//
// 한도를 넘으면 대기하지 않고 즉시 RateLimited 를 돌려준다. 재시도 시점은 클라이언트가 정한다.
type QuotaGuard struct {
	next Adapter

	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

// NewQuotaGuard 는 config.yaml 의 provider.quota 설정으로 QuotaGuard 를 만든다.
// 두 한도가 모두 0 이하이면 next 를 그대로 돌려준다.
func NewQuotaGuard(next Adapter, q config.QuotaConfig) Adapter {
	requestsPerDay := q.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	requestsPerMinute := q.RequestsPerMinute
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}

	if requestsPerDay == 0 && requestsPerMinute == 0 {
		return next
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &QuotaGuard{
		next:       next,
		dailyLimit: requestsPerDay,
		interval:   interval,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (g *QuotaGuard) Name() string { return g.next.Name() }

func (g *QuotaGuard) Respond(ctx context.Context, history []Turn, message string) Outcome {
	if wait, scope, ok := g.reserve(); !ok {
		return RateLimited(ceilSeconds(wait), map[string]any{
			"source": "local_quota",
			"scope":  scope,
		})
	}
	return g.next.Respond(ctx, history, message)
}

// reserve 는 호출 가능 여부를 판단하고, 가능하면 한 건을 예약한다.
// 불가능한 경우 다음 호출 가능 시점까지의 대기 시간과 한도 종류(minute/day)를 돌려준다.
func (g *QuotaGuard) reserve() (time.Duration, string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	todayKey := now.Format("2006-01-02")
	if g.dayKey != todayKey {
		g.dayKey = todayKey
		g.usedToday = 0
	}

	if g.dailyLimit > 0 && g.usedToday >= g.dailyLimit {
		// 일일 한도 소진: 다음 UTC 자정까지 기다려야 한다.
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
		return midnight.Sub(now), "day", false
	}

	if g.interval > 0 && !g.lastCall.IsZero() {
		if delay := g.lastCall.Add(g.interval).Sub(now); delay > 0 {
			return delay, "minute", false
		}
	}

	g.usedToday++
	g.lastCall = now
	return 0, "", true
}

func ceilSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
