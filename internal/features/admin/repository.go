// Package admin — repository.go хранит сессии и попытки входа в памяти.
package admin

import (
	"sync"
	"time"
)

// Repository хранит админ-сессии.
type Repository struct {
	mu       sync.Mutex
	sessions map[int64]*AdminSession
	attempts []LoginAttempt
}

// NewRepository создаёт хранилище.
func NewRepository() *Repository {
	return &Repository{sessions: make(map[int64]*AdminSession)}
}

// CreateSession создаёт (или заменяет) сессию администратора.
func (r *Repository) CreateSession(session *AdminSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	r.sessions[session.UserID] = &s
}

// GetActiveSession возвращает действующую на момент now сессию.
func (r *Repository) GetActiveSession(userID int64, now time.Time) (*AdminSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok || !now.Before(s.ExpiresAt) {
		return nil, false
	}
	out := *s
	return &out, true
}

// DeactivateSession завершает сессию.
func (r *Repository) DeactivateSession(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// UpdateActivity обновляет время последней активности.
func (r *Repository) UpdateActivity(userID int64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		s.LastActivity = now
	}
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(userID int64, success bool, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, LoginAttempt{UserID: userID, AttemptTime: at, Success: success})
}

// GetRecentAttempts — количество неудачных попыток с момента since.
func (r *Repository) GetRecentAttempts(userID int64, since time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.attempts {
		if a.UserID == userID && !a.Success && !a.AttemptTime.Before(since) {
			n++
		}
	}
	return n
}

// Cleanup удаляет истёкшие сессии и попытки старше since.
func (r *Repository) Cleanup(now, since time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.AttemptTime.Before(since) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return removed
}
