package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	privateChatRate = 3 * time.Second
	groupChatRate   = 10 * time.Second
	burst           = 1
	idleTTL         = time.Hour
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token per chat per interval. Group chats (negative
// IDs) get a slower interval than private chats.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*entry
	now      func() time.Time
}

func New() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[int64]*entry),
		now:      time.Now,
	}
}

// Allow reports whether chatID may issue a request now and, if not, how long
// it has to wait.
func (rl *RateLimiter) Allow(chatID int64) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdleLocked(now)

	e, ok := rl.limiters[chatID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(getRate(chatID)), burst)}
		rl.limiters[chatID] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, delay
	}

	return true, 0
}

func (rl *RateLimiter) evictIdleLocked(now time.Time) {
	for chatID, e := range rl.limiters {
		if now.Sub(e.lastSeen) > idleTTL {
			delete(rl.limiters, chatID)
		}
	}
}

func getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}
