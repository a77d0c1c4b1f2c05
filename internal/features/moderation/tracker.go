// Package moderation реализует массовое удаление сообщений (!nuke).
// Бот не может читать историю чата, поэтому сам запоминает ID
// последних сообщений в каждом чате.
package moderation

import "sync"

// MaxTracked — сколько последних сообщений помним на чат (и максимум для !nuke).
const MaxTracked = 1000

// Tracker хранит ID последних сообщений по чатам.
type Tracker struct {
	mu    sync.Mutex
	chats map[int64][]int
	limit int
}

// NewTracker создаёт трекер. limit <= 0 — MaxTracked.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = MaxTracked
	}
	return &Tracker{chats: make(map[int64][]int), limit: limit}
}

// Track запоминает сообщение.
func (t *Tracker) Track(chatID int64, messageID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := append(t.chats[chatID], messageID)
	if extra := len(ids) - t.limit; extra > 0 {
		ids = append([]int(nil), ids[extra:]...)
	}
	t.chats[chatID] = ids
}

// Last возвращает до n последних ID, новые первыми.
func (t *Tracker) Last(chatID int64, n int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.chats[chatID]
	if n > len(ids) {
		n = len(ids)
	}
	out := make([]int, 0, n)
	for i := len(ids) - 1; i >= len(ids)-n; i-- {
		out = append(out, ids[i])
	}
	return out
}

// Forget убирает удалённые сообщения из трекера.
func (t *Tracker) Forget(chatID int64, messageIDs []int) {
	if len(messageIDs) == 0 {
		return
	}
	drop := make(map[int]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		drop[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.chats[chatID]
	kept := ids[:0]
	for _, id := range ids {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	t.chats[chatID] = kept
}

// Len — сколько сообщений чата известно.
func (t *Tracker) Len(chatID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.chats[chatID])
}
