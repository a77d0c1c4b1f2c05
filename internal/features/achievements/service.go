// Package achievements — service.go хранит достижения в памяти в порядке добавления.
package achievements

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"serotonyl.ru/vending-bot/internal/common"
)

// Service — журнал достижений.
type Service struct {
	mu     sync.RWMutex
	byUser map[int64][]Achievement
	now    func() time.Time
}

// NewService создаёт пустой журнал.
func NewService() *Service {
	return &Service{
		byUser: make(map[int64][]Achievement),
		now:    time.Now,
	}
}

// Add добавляет достижение пользователю.
func (s *Service) Add(userID int64, userName, text string) (Achievement, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Achievement{}, common.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return Achievement{}, fmt.Errorf("максимум %d символов: %w", MaxTextRunes, common.ErrTextTooLong)
	}

	a := Achievement{Text: text, Date: s.now(), UserName: userName}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = append(s.byUser[userID], a)
	return a, nil
}

// List возвращает копию достижений пользователя.
func (s *Service) List(userID int64) []Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byUser[userID]
	out := make([]Achievement, len(list))
	copy(out, list)
	return out
}
