package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(1), "запрос %d", i)
	}
	assert.False(t, rl.Allow(1))
	assert.True(t, rl.Allow(2), "другой пользователь не затронут")

	now = now.Add(20 * time.Second)
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow(1)
	now = now.Add(30 * time.Second)
	rl.Allow(2)
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 0, rl.Cleanup())
}

func TestRecoverFromPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverFromPanic()
		panic("boom")
	})
}
