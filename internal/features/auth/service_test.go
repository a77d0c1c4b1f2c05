package auth

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrant(t *testing.T) {
	s := NewService()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.False(t, s.IsVerified(1))
	_, ok := s.GrantedAt(1)
	assert.False(t, ok)

	assert.True(t, s.Grant(1))
	assert.False(t, s.Grant(1))
	assert.True(t, s.IsVerified(1))

	at, ok := s.GrantedAt(1)
	require.True(t, ok)
	assert.Equal(t, fixed, at)
	assert.Equal(t, 1, s.Count())
}

func TestGrantConcurrentOnlyOnce(t *testing.T) {
	s := NewService()
	var first atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Grant(7) {
				first.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), first.Load())
}
