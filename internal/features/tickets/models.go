// Package tickets реализует обращения в поддержку.
// Тикет живёт в памяти: открыт → закрыт → удалён по истечении срока хранения.
package tickets

import (
	"fmt"
	"time"
)

// MaxTextRunes — максимальная длина проблемы или сообщения.
const MaxTextRunes = 1000

// Status — состояние тикета.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Message — сообщение в переписке по тикету.
type Message struct {
	AuthorID   int64
	AuthorName string
	Text       string
	Timestamp  time.Time
}

// Ticket — обращение пользователя.
type Ticket struct {
	ID        int
	UserID    int64
	UserName  string
	Issue     string
	Status    Status
	CreatedAt time.Time
	ClosedAt  *time.Time
	ClosedBy  string
	Messages  []Message
}

// Number возвращает номер вида #0001.
func (t Ticket) Number() string {
	return FormatNumber(t.ID)
}

// FormatNumber форматирует номер тикета.
func FormatNumber(id int) string {
	return fmt.Sprintf("#%04d", id)
}
