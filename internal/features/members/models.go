// Package members ведёт справочник участников чата.
// models.go описывает запись справочника.
package members

import (
	"strconv"
	"time"
)

// Member — участник, которого бот видел в чате или в личке.
type Member struct {
	UserID    int64     // Telegram user ID
	Username  string    // @username (может быть пустым)
	FirstName string    // Имя пользователя
	LastName  string    // Фамилия (может быть пустой)
	JoinedAt  time.Time // Когда впервые увидели
	UpdatedAt time.Time // Последнее обновление имени
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Используется, когда пользователь сменил имя или username.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилия.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	if name == "" {
		return "id" + strconv.FormatInt(m.UserID, 10)
	}
	return name
}
