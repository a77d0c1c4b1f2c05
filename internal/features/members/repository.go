// Package members — repository.go хранит справочник в памяти процесса.
// Индекс по username поддерживается в нижнем регистре.
package members

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"serotonyl.ru/vending-bot/internal/common"
)

// Repository — хранилище участников.
type Repository struct {
	mu         sync.RWMutex
	byID       map[int64]*Member
	byUsername map[string]int64
	now        func() time.Time
}

// NewRepository создаёт пустое хранилище.
func NewRepository() *Repository {
	return &Repository{
		byID:       make(map[int64]*Member),
		byUsername: make(map[string]int64),
		now:        time.Now,
	}
}

// Upsert создаёт участника или обновляет его имя.
// Возвращает true, если участник новый.
func (r *Repository) Upsert(userID int64, info UpdateInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	m, ok := r.byID[userID]
	if !ok {
		m = &Member{UserID: userID, JoinedAt: now}
		r.byID[userID] = m
	} else if m.Username != "" {
		delete(r.byUsername, strings.ToLower(m.Username))
	}

	m.Username = info.Username
	m.FirstName = info.FirstName
	m.LastName = info.LastName
	m.UpdatedAt = now
	if m.Username != "" {
		r.byUsername[strings.ToLower(m.Username)] = userID
	}
	return !ok
}

// GetByUserID возвращает копию записи. Нет записи — ErrUserNotFound.
func (r *Repository) GetByUserID(userID int64) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}
	out := *m
	return &out, nil
}

// GetByUsername ищет по username без учёта регистра.
func (r *Repository) GetByUsername(username string) (*Member, error) {
	r.mu.RLock()
	id, ok := r.byUsername[strings.ToLower(username)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("username=%s: %w", username, common.ErrUserNotFound)
	}
	return r.GetByUserID(id)
}

// Exists проверяет наличие участника.
func (r *Repository) Exists(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[userID]
	return ok
}

// Count — размер справочника.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
