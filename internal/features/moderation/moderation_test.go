package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func TestTrackerKeepsLastN(t *testing.T) {
	tr := NewTracker(3)
	for id := 1; id <= 5; id++ {
		tr.Track(10, id)
	}
	tr.Track(20, 100)

	assert.Equal(t, []int{5, 4, 3}, tr.Last(10, 10))
	assert.Equal(t, []int{5}, tr.Last(10, 1))
	assert.Equal(t, []int{100}, tr.Last(20, 5))
	assert.Empty(t, tr.Last(30, 5))

	tr.Forget(10, []int{4})
	assert.Equal(t, []int{5, 3}, tr.Last(10, 10))
	assert.Equal(t, 2, tr.Len(10))
}

func TestTrackerDefaultLimit(t *testing.T) {
	tr := NewTracker(0)
	for id := 0; id < MaxTracked+10; id++ {
		tr.Track(1, id)
	}
	assert.Equal(t, MaxTracked, tr.Len(1))
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit(nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = ParseLimit([]string{"1000"}, 100)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	for _, arg := range []string{"0", "1001", "-5", "abc"} {
		_, err := ParseLimit([]string{arg}, 100)
		assert.ErrorIs(t, err, common.ErrInvalidParameters, arg)
	}
}

func TestConfirmations(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewConfirmations(30 * time.Second)
	c.now = func() time.Time { return now }

	req := c.Create(1, 42, 100)
	require.NotEmpty(t, req.Token)
	c.SetPrompt(req.Token, 555)

	_, err := c.Resolve(req.Token, 7)
	require.ErrorIs(t, err, common.ErrNotInitiator)

	got, err := c.Resolve(req.Token, 42)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Limit)
	assert.Equal(t, 555, got.PromptID)

	_, err = c.Resolve(req.Token, 42)
	require.ErrorIs(t, err, common.ErrConfirmationNotFound)
}

func TestConfirmationsExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewConfirmations(30 * time.Second)
	c.now = func() time.Time { return now }

	stale := c.Create(1, 42, 10)
	now = now.Add(20 * time.Second)
	fresh := c.Create(1, 42, 10)
	now = now.Add(11 * time.Second)

	_, err := c.Resolve(stale.Token, 42)
	require.ErrorIs(t, err, common.ErrConfirmationNotFound)

	assert.Empty(t, c.Expire())
	assert.Equal(t, 1, c.Pending())

	now = now.Add(time.Minute)
	expired := c.Expire()
	require.Len(t, expired, 1)
	assert.Equal(t, fresh.Token, expired[0].Token)
	assert.Equal(t, 0, c.Pending())
}

func TestParseCallback(t *testing.T) {
	action, token, ok := parseCallback("nuke:ok:abc")
	require.True(t, ok)
	assert.Equal(t, actionConfirm, action)
	assert.Equal(t, "abc", token)

	for _, data := range []string{"nuke:ok:", "nuke:maybe:abc", "buy:x", "nuke:"} {
		_, _, ok := parseCallback(data)
		assert.False(t, ok, data)
	}
}
