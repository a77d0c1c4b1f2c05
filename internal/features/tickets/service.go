// Package tickets — service.go хранит тикеты и проверяет права на них.
package tickets

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Service управляет тикетами.
type Service struct {
	mu      sync.Mutex
	tickets map[int]*Ticket
	nextID  int
	now     func() time.Time
}

// NewService создаёт пустое хранилище тикетов.
func NewService() *Service {
	return &Service{
		tickets: make(map[int]*Ticket),
		nextID:  1,
		now:     time.Now,
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", common.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return "", fmt.Errorf("максимум %d символов: %w", MaxTextRunes, common.ErrTextTooLong)
	}
	return text, nil
}

// snapshot копирует тикет, чтобы вызывающий не держал ссылки на внутренние данные.
func snapshot(t *Ticket) Ticket {
	out := *t
	out.Messages = append([]Message(nil), t.Messages...)
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		out.ClosedAt = &at
	}
	return out
}

// Open создаёт тикет. Номера идут подряд и не переиспользуются.
func (s *Service) Open(userID int64, userName, issue string) (Ticket, error) {
	issue, err := validateText(issue)
	if err != nil {
		return Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Ticket{
		ID:        s.nextID,
		UserID:    userID,
		UserName:  userName,
		Issue:     issue,
		Status:    StatusOpen,
		CreatedAt: s.now(),
	}
	s.tickets[t.ID] = t
	s.nextID++

	log.WithFields(log.Fields{"ticket": t.Number(), "user_id": userID}).Info("Тикет открыт")
	return snapshot(t), nil
}

// open возвращает открытый тикет, на который у пользователя есть права.
// Вызывается под s.mu.
func (s *Service) open(id int, userID int64, isStaff bool) (*Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", FormatNumber(id), common.ErrTicketNotFound)
	}
	if t.UserID != userID && !isStaff {
		return nil, fmt.Errorf("%s: %w", FormatNumber(id), common.ErrNotTicketOwner)
	}
	if t.Status != StatusOpen {
		return nil, fmt.Errorf("%s: %w", FormatNumber(id), common.ErrTicketClosed)
	}
	return t, nil
}

// AddMessage добавляет сообщение в открытый тикет.
func (s *Service) AddMessage(id int, authorID int64, authorName, text string, isStaff bool) (Ticket, error) {
	text, err := validateText(text)
	if err != nil {
		return Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(id, authorID, isStaff)
	if err != nil {
		return Ticket{}, err
	}
	t.Messages = append(t.Messages, Message{
		AuthorID:   authorID,
		AuthorName: authorName,
		Text:       text,
		Timestamp:  s.now(),
	})
	return snapshot(t), nil
}

// Close закрывает тикет. Закрыть может автор или поддержка.
func (s *Service) Close(id int, byID int64, byName string, isStaff bool) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.open(id, byID, isStaff)
	if err != nil {
		return Ticket{}, err
	}
	now := s.now()
	t.Status = StatusClosed
	t.ClosedAt = &now
	t.ClosedBy = byName

	log.WithFields(log.Fields{"ticket": t.Number(), "closed_by": byID}).Info("Тикет закрыт")
	return snapshot(t), nil
}

// Get возвращает тикет по номеру.
func (s *Service) Get(id int) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return Ticket{}, fmt.Errorf("%s: %w", FormatNumber(id), common.ErrTicketNotFound)
	}
	return snapshot(t), nil
}

// ListOpen возвращает открытые тикеты по порядку номеров.
func (s *Service) ListOpen() []Ticket {
	return s.list(func(t *Ticket) bool { return true })
}

// ListOpenFor возвращает открытые тикеты пользователя.
func (s *Service) ListOpenFor(userID int64) []Ticket {
	return s.list(func(t *Ticket) bool { return t.UserID == userID })
}

func (s *Service) list(match func(t *Ticket) bool) []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Ticket, 0)
	for _, t := range s.tickets {
		if t.Status == StatusOpen && match(t) {
			out = append(out, snapshot(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OpenCount — количество открытых тикетов.
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.Status == StatusOpen {
			n++
		}
	}
	return n
}

// SweepClosed удаляет тикеты, закрытые раньше чем olderThan назад.
// Возвращает количество удалённых.
func (s *Service) SweepClosed(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, t := range s.tickets {
		if t.Status == StatusClosed && t.ClosedAt != nil && !t.ClosedAt.After(cutoff) {
			delete(s.tickets, id)
			removed++
		}
	}
	return removed
}
