package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"serotonyl.ru/vending-bot/internal/metrics"
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает количество запросов на пользователя.
// На каждого пользователя — token bucket: limit запросов за window.
type RateLimiter struct {
	mu     sync.Mutex
	users  map[int64]*userLimiter
	every  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window)
	go rl.cleanupLoop()
	return rl
}

func newRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		users:  make(map[int64]*userLimiter),
		every:  rate.Every(window / time.Duration(limit)),
		burst:  limit,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Close останавливает фоновую горутину очистки.
// Его надо вызывать на shutdown (иначе cleanup будет жить вечно).
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u, ok := rl.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.users[userID] = u
	}
	u.lastSeen = now

	if !u.limiter.AllowN(now, 1) {
		metrics.RateLimited.Inc()
		return false
	}
	return true
}

// Cleanup забывает пользователей, молчавших дольше окна.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	removed := 0
	for userID, u := range rl.users {
		if u.lastSeen.Before(cutoff) {
			delete(rl.users, userID)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}
