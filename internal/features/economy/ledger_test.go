package economy

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func TestGetBalanceUnknownUser(t *testing.T) {
	l := NewLedger(10)
	assert.Equal(t, int64(0), l.GetBalance("nobody"))
	assert.Equal(t, 0, l.Accounts())
}

func TestCredit(t *testing.T) {
	l := NewLedger(10)

	balance, err := l.Credit("u1", 25, "grant")
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)

	balance, err = l.Credit("u1", 5, "grant")
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)
	assert.Equal(t, int64(30), l.GetBalance("u1"))
}

func TestCreditRejectsNonPositive(t *testing.T) {
	l := NewLedger(10)
	_, err := l.Credit("u1", 7, "grant")
	require.NoError(t, err)

	for _, amount := range []int64{0, -5} {
		balance, err := l.Credit("u1", amount, "grant")
		require.ErrorIs(t, err, common.ErrInvalidAmount)
		assert.Equal(t, int64(7), balance)
	}
	assert.Equal(t, int64(7), l.GetBalance("u1"))
}

func TestCreditOverflow(t *testing.T) {
	l := NewLedger(10)
	_, err := l.Credit("u1", math.MaxInt64, "grant")
	require.NoError(t, err)

	_, err = l.Credit("u1", 1, "grant")
	require.ErrorIs(t, err, common.ErrInvalidAmount)
	assert.Equal(t, int64(math.MaxInt64), l.GetBalance("u1"))
}

func TestDebit(t *testing.T) {
	l := NewLedger(10)
	_, err := l.Credit("u1", 10, "grant")
	require.NoError(t, err)

	balance, err := l.Debit("u1", 4, "spend")
	require.NoError(t, err)
	assert.Equal(t, int64(6), balance)

	balance, err = l.Debit("u1", 7, "spend")
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Equal(t, int64(6), balance)

	_, err = l.Debit("u1", 0, "spend")
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	balance, err = l.Debit("u1", 6, "spend")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestTransactRollsBackOnError(t *testing.T) {
	l := NewLedger(10)
	_, err := l.Credit("u1", 10, "grant")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = l.Transact("u1", func(tx *AccountTx) error {
		require.NoError(t, tx.Debit(5, TxTypePurchase, "item"))
		assert.Equal(t, int64(5), tx.Balance())
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), l.GetBalance("u1"))
	assert.Len(t, l.Transactions("u1", 0), 1)
}

func TestStatsAndJournal(t *testing.T) {
	l := NewLedger(3)
	for i := 1; i <= 4; i++ {
		_, err := l.Credit("u1", int64(i), fmt.Sprintf("grant %d", i))
		require.NoError(t, err)
	}
	_, err := l.Debit("u1", 2, "spend")
	require.NoError(t, err)

	stats := l.Stats("u1")
	assert.Equal(t, int64(8), stats.Balance)
	assert.Equal(t, int64(10), stats.TotalEarned)
	assert.Equal(t, int64(2), stats.TotalSpent)

	txs := l.Transactions("u1", 0)
	require.Len(t, txs, 3)
	assert.Equal(t, int64(-2), txs[0].Amount)
	assert.Equal(t, int64(8), txs[0].BalanceAfter)
	assert.Equal(t, "grant 4", txs[1].Description)
	assert.Equal(t, "grant 3", txs[2].Description)

	assert.Len(t, l.Transactions("u1", 1), 1)
	assert.Nil(t, l.Transactions("ghost", 5))
}

func TestConcurrentDebitNeverNegative(t *testing.T) {
	l := NewLedger(10)
	_, err := l.Credit("u1", 50, "grant")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit("u1", 1, "spend"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, successes)
	assert.Equal(t, int64(0), l.GetBalance("u1"))
}
