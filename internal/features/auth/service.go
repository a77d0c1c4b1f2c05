// Package auth ведёт список верифицированных участников.
// Верификация бессрочная: снять её можно только перезапуском бота.
package auth

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Service хранит отметки о верификации в памяти.
type Service struct {
	mu       sync.RWMutex
	verified map[int64]time.Time
	now      func() time.Time
}

// NewService создаёт пустой список.
func NewService() *Service {
	return &Service{
		verified: make(map[int64]time.Time),
		now:      time.Now,
	}
}

// Grant отмечает пользователя верифицированным.
// Возвращает true, если это первая верификация.
func (s *Service) Grant(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.verified[userID]; ok {
		return false
	}
	s.verified[userID] = s.now()
	log.WithField("user_id", userID).Info("Пользователь верифицирован")
	return true
}

// IsVerified проверяет отметку.
func (s *Service) IsVerified(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verified[userID]
	return ok
}

// GrantedAt возвращает время верификации.
func (s *Service) GrantedAt(userID int64) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.verified[userID]
	return t, ok
}

// Count — количество верифицированных.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verified)
}
