package vending

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCatalog(t *testing.T) {
	assert.Contains(t, FormatCatalog(nil), "Витрина пуста")

	text := FormatCatalog([]Listing{
		{Name: "Potion", Price: 10, Stock: 2, AvailableCodes: 1},
		{Name: "Sword", Price: 1500, Stock: 0},
	})
	assert.Contains(t, text, "1. Potion — 10 монет (в наличии: 2 штуки)")
	assert.Contains(t, text, "2. Sword — 1 500 монет (нет в наличии)")
}

func TestCatalogKeyboardSkipsSoldOut(t *testing.T) {
	assert.Nil(t, CatalogKeyboard([]Listing{{Name: "Sword", Price: 1, Stock: 0}}))

	kb := CatalogKeyboard([]Listing{
		{Name: "Potion", Price: 10, Stock: 2},
		{Name: "Sword", Price: 1, Stock: 0},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	btn := kb.InlineKeyboard[0][0]
	require.NotNil(t, btn.CallbackData)
	assert.Equal(t, "buy:Potion", *btn.CallbackData)
}

func TestParseBuyCallback(t *testing.T) {
	name, ok := ParseBuyCallback("buy:Potion")
	assert.True(t, ok)
	assert.Equal(t, "Potion", name)

	_, ok = ParseBuyCallback("buy:")
	assert.False(t, ok)
	_, ok = ParseBuyCallback("nuke:abc")
	assert.False(t, ok)
}

func TestCallbackDataFitsLimit(t *testing.T) {
	name := strings.Repeat("a", MaxNameBytes)
	assert.LessOrEqual(t, len(BuyCallbackPrefix+name), 64)
}

func TestFormatReceipt(t *testing.T) {
	r := Receipt{
		ID:               "abc",
		ItemName:         "Potion",
		PricePaid:        10,
		RemainingBalance: 15,
		SerialCode:       "X1",
		HasCode:          true,
		PurchasedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	text := FormatReceipt(r)
	assert.Contains(t, text, "Ваш код: X1")
	assert.Contains(t, text, "Номер чека: abc")

	r.HasCode = false
	r.SerialCode = ""
	assert.NotContains(t, FormatReceipt(r), "Ваш код")
}

func TestResolveItem(t *testing.T) {
	items := []Listing{{Name: "Potion"}, {Name: "Sword"}}

	it, ok := ResolveItem(items, "2")
	require.True(t, ok)
	assert.Equal(t, "Sword", it.Name)

	it, ok = ResolveItem(items, "potion")
	require.True(t, ok)
	assert.Equal(t, "Potion", it.Name)

	_, ok = ResolveItem(items, "3")
	assert.False(t, ok)
	_, ok = ResolveItem(items, "")
	assert.False(t, ok)
}

func TestResolveItemPrefersExactName(t *testing.T) {
	// порядок витрины: по названию
	items := []Listing{{Name: "2"}, {Name: "Potion"}, {Name: "Sword"}}

	it, ok := ResolveItem(items, "2")
	require.True(t, ok)
	assert.Equal(t, "2", it.Name)

	it, ok = ResolveItem(items, "3")
	require.True(t, ok)
	assert.Equal(t, "Sword", it.Name)

	it, ok = ResolveItem(items, "1")
	require.True(t, ok)
	assert.Equal(t, "2", it.Name)
}
