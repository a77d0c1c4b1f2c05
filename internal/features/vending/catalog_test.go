package vending

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/common"
)

func int64p(v int64) *int64 { return &v }

func TestAddItem(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.AddItem("Potion", 10, 2))
	require.ErrorIs(t, c.AddItem("Potion", 5, 1), common.ErrDuplicateItem)

	require.ErrorIs(t, c.AddItem("Zero", 0, 1), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AddItem("Empty", 10, 0), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AddItem("   ", 10, 1), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AddItem(" Padded", 10, 1), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AddItem(strings.Repeat("я", 31), 10, 1), common.ErrInvalidParameters)

	item, err := c.Item("Potion")
	require.NoError(t, err)
	assert.Equal(t, Listing{Name: "Potion", Price: 10, Stock: 2, AvailableCodes: 0}, item)
}

func TestUpdateItem(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Potion", 10, 2))
	require.NoError(t, c.AppendCodes("Potion", []string{"A", "B"}))

	require.NoError(t, c.UpdateItem("Potion", ItemUpdate{Price: int64p(15)}))
	item, _ := c.Item("Potion")
	assert.Equal(t, int64(15), item.Price)
	assert.Equal(t, int64(2), item.Stock)
	assert.Equal(t, 2, item.AvailableCodes)

	require.NoError(t, c.UpdateItem("Potion", ItemUpdate{Stock: int64p(0)}))
	item, _ = c.Item("Potion")
	assert.Equal(t, int64(0), item.Stock)

	require.NoError(t, c.UpdateItem("Potion", ItemUpdate{Stock: int64p(3), Codes: []string{"Z"}, ReplaceCodes: true}))
	res, err := c.ReserveUnit("Potion")
	require.NoError(t, err)
	assert.Equal(t, "Z", res.Code)

	require.NoError(t, c.UpdateItem("Potion", ItemUpdate{ReplaceCodes: true}))
	item, _ = c.Item("Potion")
	assert.Equal(t, 0, item.AvailableCodes)

	require.ErrorIs(t, c.UpdateItem("Potion", ItemUpdate{Price: int64p(0)}), common.ErrInvalidParameters)
	require.ErrorIs(t, c.UpdateItem("Potion", ItemUpdate{Stock: int64p(-1)}), common.ErrInvalidParameters)
	require.ErrorIs(t, c.UpdateItem("Ghost", ItemUpdate{Price: int64p(1)}), common.ErrItemNotFound)
}

func TestAppendCodesKeepsOrder(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Key", 1, 5))
	require.NoError(t, c.AppendCodes("Key", []string{"A", "B"}))
	require.NoError(t, c.AppendCodes("Key", []string{" C "}))

	require.ErrorIs(t, c.AppendCodes("Key", nil), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AppendCodes("Key", []string{"D", ""}), common.ErrInvalidParameters)
	require.ErrorIs(t, c.AppendCodes("Ghost", []string{"X"}), common.ErrItemNotFound)

	var got []string
	for i := 0; i < 3; i++ {
		res, err := c.ReserveUnit("Key")
		require.NoError(t, err)
		require.True(t, res.HasCode)
		got = append(got, res.Code)
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)

	res, err := c.ReserveUnit("Key")
	require.NoError(t, err)
	assert.False(t, res.HasCode)
	assert.Empty(t, res.Code)
}

func TestReserveUnit(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Potion", 10, 1))

	res, err := c.ReserveUnit("Potion")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Price)

	_, err = c.ReserveUnit("Potion")
	require.ErrorIs(t, err, common.ErrOutOfStock)

	_, err = c.ReserveUnit("Ghost")
	require.ErrorIs(t, err, common.ErrItemNotFound)

	item, _ := c.Item("Potion")
	assert.Equal(t, int64(0), item.Stock)
}

func TestCodesCanExceedStock(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Key", 1, 1))
	require.NoError(t, c.AppendCodes("Key", []string{"A", "B", "C"}))

	_, err := c.ReserveUnit("Key")
	require.NoError(t, err)
	_, err = c.ReserveUnit("Key")
	require.ErrorIs(t, err, common.ErrOutOfStock)

	item, _ := c.Item("Key")
	assert.Equal(t, 2, item.AvailableCodes)
}

func TestRemoveItem(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Potion", 10, 1))
	require.NoError(t, c.RemoveItem("Potion"))
	require.ErrorIs(t, c.RemoveItem("Potion"), common.ErrItemNotFound)

	_, err := c.Item("Potion")
	require.ErrorIs(t, err, common.ErrItemNotFound)
	assert.Empty(t, c.ListItems())

	require.NoError(t, c.AddItem("Potion", 20, 1))
	item, _ := c.Item("Potion")
	assert.Equal(t, int64(20), item.Price)
}

func TestListItemsIsSortedSnapshot(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("b", 2, 1))
	require.NoError(t, c.AddItem("a", 1, 1))
	require.NoError(t, c.AppendCodes("a", []string{"secret"}))

	items := c.ListItems()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Name)
	assert.Equal(t, 1, items[0].AvailableCodes)
	assert.Equal(t, "b", items[1].Name)

	items[0].Stock = 100
	item, _ := c.Item("a")
	assert.Equal(t, int64(1), item.Stock)
}

func TestConcurrentReserveUnit(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddItem("Key", 1, 20))
	codes := make([]string, 20)
	for i := range codes {
		codes[i] = string(rune('a' + i))
	}
	require.NoError(t, c.AppendCodes("Key", codes))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]int)
		oos  int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.ReserveUnit("Key")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, common.ErrOutOfStock)
				oos++
				return
			}
			seen[res.Code]++
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 20)
	for code, n := range seen {
		assert.Equal(t, 1, n, "код %s выдан повторно", code)
	}
	assert.Equal(t, 30, oos)
	item, _ := c.Item("Key")
	assert.Equal(t, int64(0), item.Stock)
}
