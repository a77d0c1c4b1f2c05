package vending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func newCheckoutHandler(t *testing.T) (*Handler, *fakeNotifier) {
	t.Helper()
	svc, ledger, n := newService(t)
	require.NoError(t, svc.AddItem(context.Background(), "Potion", 10, 2))
	_, err := ledger.Credit("42", 25, "grant")
	require.NoError(t, err)
	// checkout не обращается к Telegram, бот не нужен
	return NewHandler(svc, nil, 0), n
}

func TestCheckoutTextReceiptDelivered(t *testing.T) {
	h, n := newCheckoutHandler(t)

	text, err := h.checkout(context.Background(), 42, "Potion")
	require.NoError(t, err)
	assert.Contains(t, text, "✅ Куплено: Potion")
	assert.Contains(t, text, "📬 Чек отправлен в личные сообщения")
	assert.Len(t, n.receipts, 1)
}

func TestCheckoutTextCatalogRefreshFailed(t *testing.T) {
	h, n := newCheckoutHandler(t)
	n.catalogErr = errors.New("message to edit not found")

	text, err := h.checkout(context.Background(), 42, "Potion")
	require.NoError(t, err)
	assert.Len(t, n.receipts, 1)
	assert.Contains(t, text, "📬 Чек отправлен в личные сообщения")
	assert.NotContains(t, text, "Не удалось отправить чек")
}

func TestCheckoutTextReceiptFailed(t *testing.T) {
	h, n := newCheckoutHandler(t)
	n.receiptErr = errors.New("bot was blocked by the user")

	text, err := h.checkout(context.Background(), 42, "Potion")
	require.NoError(t, err)
	assert.Contains(t, text, "⚠️ Не удалось отправить чек в личку")
	assert.NotContains(t, text, "📬")
}

type stubVerifier map[int64]bool

func (v stubVerifier) IsVerified(userID int64) bool { return v[userID] }

func TestCheckoutRequiresVerification(t *testing.T) {
	h, n := newCheckoutHandler(t)
	h.SetVerifier(stubVerifier{7: true})

	_, err := h.checkout(context.Background(), 42, "Potion")
	assert.ErrorIs(t, err, common.ErrNotVerified)
	assert.Empty(t, n.receipts)
}
