// Package members — handlers.go обрабатывает Telegram-события о вступлении в чат.
package members

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler обрабатывает события участников.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик событий участников.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleNewChatMembers регистрирует вступивших участников.
// Боты в справочник не попадают.
func (h *Handler) HandleNewChatMembers(newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}
		h.service.EnsureMember(user.ID, user.UserName, user.FirstName, user.LastName)
	}
}
