// Package vending — catalog.go хранит товары автомата в памяти.
// Каждый товар защищён своим мьютексом; карта товаров — отдельным RWMutex.
// Порядок блокировок: карта → товар (только при удалении), а при покупке
// товар всегда блокируется после счёта покупателя.
package vending

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"serotonyl.ru/vending-bot/internal/common"
)

type item struct {
	mu      sync.Mutex
	name    string
	price   int64
	stock   int64
	codes   []string // FIFO: первым выдаётся самый старый код
	removed bool
}

func (it *item) listing() Listing {
	return Listing{
		Name:           it.name,
		Price:          it.price,
		Stock:          it.stock,
		AvailableCodes: len(it.codes),
	}
}

// Catalog — набор товаров автомата.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]*item
}

// NewCatalog создаёт пустой каталог.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*item)}
}

func (c *Catalog) lookup(name string) *item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[name]
}

// withItem блокирует товар и вызывает fn. Удалённый товар — ErrItemNotFound.
func (c *Catalog) withItem(name string, fn func(it *item) error) error {
	it := c.lookup(name)
	if it == nil {
		return fmt.Errorf("%q: %w", name, common.ErrItemNotFound)
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.removed {
		return fmt.Errorf("%q: %w", name, common.ErrItemNotFound)
	}
	return fn(it)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return fmt.Errorf("название %q: %w", name, common.ErrInvalidParameters)
	}
	if len(name) > MaxNameBytes {
		return fmt.Errorf("название длиннее %d байт: %w", MaxNameBytes, common.ErrInvalidParameters)
	}
	return nil
}

func normalizeCodes(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("пустой код: %w", common.ErrInvalidParameters)
		}
		out = append(out, code)
	}
	return out, nil
}

// AddItem добавляет товар с пустой очередью кодов.
// Требует price > 0, stock > 0 и уникальное название.
func (c *Catalog) AddItem(name string, price, stock int64) error {
	if err := validateName(name); err != nil {
		return err
	}
	if price <= 0 || stock <= 0 {
		return fmt.Errorf("цена %d, остаток %d: %w", price, stock, common.ErrInvalidParameters)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[name]; ok {
		return fmt.Errorf("%q: %w", name, common.ErrDuplicateItem)
	}
	c.items[name] = &item{name: name, price: price, stock: stock}
	return nil
}

// UpdateItem частично обновляет товар. Замена кодов заменяет всю очередь.
func (c *Catalog) UpdateItem(name string, upd ItemUpdate) error {
	if upd.Price != nil && *upd.Price <= 0 {
		return fmt.Errorf("цена %d: %w", *upd.Price, common.ErrInvalidParameters)
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return fmt.Errorf("остаток %d: %w", *upd.Stock, common.ErrInvalidParameters)
	}
	var codes []string
	if upd.ReplaceCodes {
		var err error
		if codes, err = normalizeCodes(upd.Codes); err != nil {
			return err
		}
	}

	return c.withItem(name, func(it *item) error {
		if upd.Price != nil {
			it.price = *upd.Price
		}
		if upd.Stock != nil {
			it.stock = *upd.Stock
		}
		if upd.ReplaceCodes {
			it.codes = codes
		}
		return nil
	})
}

// AppendCodes добавляет коды в конец очереди, сохраняя порядок.
func (c *Catalog) AppendCodes(name string, codes []string) error {
	if len(codes) == 0 {
		return fmt.Errorf("нет кодов: %w", common.ErrInvalidParameters)
	}
	normalized, err := normalizeCodes(codes)
	if err != nil {
		return err
	}
	return c.withItem(name, func(it *item) error {
		it.codes = append(it.codes, normalized...)
		return nil
	})
}

// RemoveItem удаляет товар. Покупки, уже ждущие блокировку товара,
// получат ErrItemNotFound.
func (c *Catalog) RemoveItem(name string) error {
	c.mu.Lock()
	it, ok := c.items[name]
	if ok {
		delete(c.items, name)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%q: %w", name, common.ErrItemNotFound)
	}
	it.mu.Lock()
	it.removed = true
	it.mu.Unlock()
	return nil
}

// Item возвращает снимок одного товара.
func (c *Catalog) Item(name string) (Listing, error) {
	var out Listing
	err := c.withItem(name, func(it *item) error {
		out = it.listing()
		return nil
	})
	return out, err
}

// ListItems возвращает снимок каталога, отсортированный по названию.
func (c *Catalog) ListItems() []Listing {
	c.mu.RLock()
	items := make([]*item, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	c.mu.RUnlock()

	out := make([]Listing, 0, len(items))
	for _, it := range items {
		it.mu.Lock()
		if !it.removed {
			out = append(out, it.listing())
		}
		it.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ItemTx — изменения товара внутри Transact.
type ItemTx struct {
	name  string
	price int64
	stock int64
	codes []string
}

// Name возвращает название товара.
func (tx *ItemTx) Name() string { return tx.name }

// Price возвращает текущую цену.
func (tx *ItemTx) Price() int64 { return tx.price }

// Stock возвращает остаток с учётом уже сделанных резервов.
func (tx *ItemTx) Stock() int64 { return tx.stock }

// Reserve списывает одну единицу и, если есть, забирает первый код очереди.
func (tx *ItemTx) Reserve() (Reservation, error) {
	if tx.stock <= 0 {
		return Reservation{}, fmt.Errorf("%q: %w", tx.name, common.ErrOutOfStock)
	}
	tx.stock--
	res := Reservation{Price: tx.price}
	if len(tx.codes) > 0 {
		res.Code = tx.codes[0]
		res.HasCode = true
		tx.codes = tx.codes[1:]
	}
	return res, nil
}

// Transact выполняет fn под блокировкой товара name.
// Изменения применяются, только если fn вернула nil.
func (c *Catalog) Transact(name string, fn func(tx *ItemTx) error) error {
	return c.withItem(name, func(it *item) error {
		tx := &ItemTx{name: it.name, price: it.price, stock: it.stock, codes: it.codes}
		if err := fn(tx); err != nil {
			return err
		}
		it.stock = tx.stock
		it.codes = tx.codes
		return nil
	})
}

// ReserveUnit атомарно резервирует одну единицу товара.
func (c *Catalog) ReserveUnit(name string) (Reservation, error) {
	var res Reservation
	err := c.Transact(name, func(tx *ItemTx) error {
		var err error
		res, err = tx.Reserve()
		return err
	})
	return res, err
}
