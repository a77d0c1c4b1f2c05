package vending

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/features/economy"
)

type fakeNotifier struct {
	mu         sync.Mutex
	receipts   []Receipt
	refreshes  [][]Listing
	receiptErr error
	catalogErr error
}

func (f *fakeNotifier) DeliverReceipt(_ context.Context, r Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, r)
	return f.receiptErr
}

func (f *fakeNotifier) RefreshCatalog(_ context.Context, items []Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, items)
	return f.catalogErr
}

func newService(t *testing.T) (*Service, *economy.Ledger, *fakeNotifier) {
	t.Helper()
	ledger := economy.NewLedger(10)
	catalog := NewCatalog()
	svc := NewService(catalog, NewEngine(ledger, catalog))
	n := &fakeNotifier{}
	svc.SetNotifier(n)
	return svc, ledger, n
}

func TestCheckoutNotifies(t *testing.T) {
	svc, ledger, n := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 2))
	require.NoError(t, svc.AppendCodes(ctx, "Potion", []string{"X1"}))
	_, err := ledger.Credit("42", 25, "grant")
	require.NoError(t, err)

	outcome, err := svc.Checkout(ctx, "42", "Potion")
	require.NoError(t, err)
	assert.NoError(t, outcome.Warning)
	assert.Equal(t, "X1", outcome.Receipt.SerialCode)

	require.Len(t, n.receipts, 1)
	assert.Equal(t, outcome.Receipt, n.receipts[0])
	// добавление, загрузка кодов и покупка
	require.Len(t, n.refreshes, 3)
	assert.Equal(t, int64(1), n.refreshes[2][0].Stock)
}

func TestCheckoutWarningKeepsPurchase(t *testing.T) {
	svc, ledger, n := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 2))
	_, err := ledger.Credit("42", 25, "grant")
	require.NoError(t, err)

	n.receiptErr = errors.New("bot was blocked by the user")
	n.catalogErr = errors.New("chat not found")

	outcome, err := svc.Checkout(ctx, "42", "Potion")
	require.NoError(t, err)
	require.Error(t, outcome.Warning)
	assert.Contains(t, outcome.Warning.Error(), "bot was blocked")
	assert.Contains(t, outcome.Warning.Error(), "chat not found")
	assert.ErrorContains(t, outcome.ReceiptWarning, "bot was blocked")
	assert.ErrorContains(t, outcome.CatalogWarning, "chat not found")

	assert.Equal(t, int64(15), ledger.GetBalance("42"))
	item, err := svc.Item("Potion")
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Stock)
}

func TestCheckoutCatalogWarningOnly(t *testing.T) {
	svc, ledger, n := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 2))
	_, err := ledger.Credit("42", 25, "grant")
	require.NoError(t, err)

	n.catalogErr = errors.New("message to edit not found")

	outcome, err := svc.Checkout(ctx, "42", "Potion")
	require.NoError(t, err)
	assert.NoError(t, outcome.ReceiptWarning)
	assert.Error(t, outcome.CatalogWarning)
	assert.Error(t, outcome.Warning)
	assert.Len(t, n.receipts, 1)
}

func TestCheckoutFailureDoesNotNotify(t *testing.T) {
	svc, _, n := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 2))

	_, err := svc.Checkout(ctx, "42", "Potion")
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Empty(t, n.receipts)
	assert.Len(t, n.refreshes, 1)
}

func TestCheckoutWithoutNotifier(t *testing.T) {
	ledger := economy.NewLedger(10)
	catalog := NewCatalog()
	svc := NewService(catalog, NewEngine(ledger, catalog))
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 1))
	_, err := ledger.Credit("1", 10, "grant")
	require.NoError(t, err)

	outcome, err := svc.Checkout(ctx, "1", "Potion")
	require.NoError(t, err)
	assert.NoError(t, outcome.Warning)
	assert.Equal(t, int64(0), outcome.Receipt.RemainingBalance)
}

func TestAdminOperationsTolerateRefreshFailure(t *testing.T) {
	svc, _, n := newService(t)
	ctx := context.Background()
	n.catalogErr = errors.New("timeout")

	require.NoError(t, svc.AddItem(ctx, "Potion", 10, 1))
	require.NoError(t, svc.UpdateItem(ctx, "Potion", ItemUpdate{Price: int64p(5)}))
	require.NoError(t, svc.RemoveItem(ctx, "Potion"))
	require.ErrorIs(t, svc.RemoveItem(ctx, "Potion"), common.ErrItemNotFound)
	assert.Len(t, n.refreshes, 3)
}
