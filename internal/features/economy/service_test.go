package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func TestGiveCoins(t *testing.T) {
	s := NewService(NewLedger(10))

	balance, err := s.GiveCoins(1, 42, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
	assert.Equal(t, int64(100), s.GetBalance(42))

	_, err = s.GiveCoins(1, 42, -5)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
	assert.Equal(t, int64(100), s.GetBalance(42))
}

func TestGetTransactionHistory(t *testing.T) {
	s := NewService(NewLedger(10))
	assert.Contains(t, s.GetTransactionHistory(42), "нет движений")

	_, err := s.GiveCoins(1, 42, 21)
	require.NoError(t, err)

	history := s.GetTransactionHistory(42)
	assert.Contains(t, history, "Последние 1 операций")
	assert.Contains(t, history, "+21 монета")
}
