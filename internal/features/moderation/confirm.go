// Package moderation — confirm.go хранит ожидающие подтверждения !nuke.
package moderation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/vending-bot/internal/common"
)

// Request — запрос на удаление, ожидающий подтверждения.
type Request struct {
	Token       string
	ChatID      int64
	InitiatorID int64
	Limit       int
	PromptID    int // сообщение с кнопками
	ExpiresAt   time.Time
}

// Confirmations — ожидающие подтверждения с таймаутом.
type Confirmations struct {
	mu      sync.Mutex
	pending map[string]*Request
	ttl     time.Duration
	now     func() time.Time
}

// NewConfirmations создаёт хранилище подтверждений.
func NewConfirmations(ttl time.Duration) *Confirmations {
	return &Confirmations{
		pending: make(map[string]*Request),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create регистрирует новый запрос и возвращает его копию с токеном.
func (c *Confirmations) Create(chatID, initiatorID int64, limit int) Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &Request{
		Token:       uuid.NewString(),
		ChatID:      chatID,
		InitiatorID: initiatorID,
		Limit:       limit,
		ExpiresAt:   c.now().Add(c.ttl),
	}
	c.pending[r.Token] = r
	return *r
}

// SetPrompt запоминает сообщение с кнопками.
func (c *Confirmations) SetPrompt(token string, messageID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.pending[token]; ok {
		r.PromptID = messageID
	}
}

// Resolve забирает запрос по токену. Нажать может только инициатор;
// чужое нажатие запрос не снимает.
func (c *Confirmations) Resolve(token string, userID int64) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.pending[token]
	if !ok {
		return Request{}, common.ErrConfirmationNotFound
	}
	if c.now().After(r.ExpiresAt) {
		delete(c.pending, token)
		return Request{}, common.ErrConfirmationNotFound
	}
	if r.InitiatorID != userID {
		return Request{}, fmt.Errorf("инициатор %d: %w", r.InitiatorID, common.ErrNotInitiator)
	}
	delete(c.pending, token)
	return *r, nil
}

// Expire удаляет просроченные запросы и возвращает их.
func (c *Confirmations) Expire() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var out []Request
	for token, r := range c.pending {
		if now.After(r.ExpiresAt) {
			out = append(out, *r)
			delete(c.pending, token)
		}
	}
	return out
}

// Pending — количество ожидающих запросов.
func (c *Confirmations) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
