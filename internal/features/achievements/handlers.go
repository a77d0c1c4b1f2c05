// Package achievements — handlers.go обрабатывает команды:
// !достижение <текст> и !достижения.
package achievements

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Handler обрабатывает команды достижений.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик достижений.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAdd обрабатывает !достижение <текст>.
func (h *Handler) HandleAdd(chatID, userID int64, userName, text string) {
	_, err := h.service.Add(userID, userName, text)
	switch {
	case errors.Is(err, common.ErrEmptyText):
		h.sendMessage(chatID, "Использование: !достижение <текст>")
		return
	case errors.Is(err, common.ErrTextTooLong):
		h.sendMessage(chatID, fmt.Sprintf("❌ Слишком длинно, максимум %d символов", MaxTextRunes))
		return
	case err != nil:
		log.WithError(err).WithField("user_id", userID).Error("Не удалось добавить достижение")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🏆 Достижение записано, всего: %d", len(h.service.List(userID))))
}

// HandleList обрабатывает !достижения. ownerName — чьи достижения показываем.
func (h *Handler) HandleList(chatID, ownerID int64, ownerName string) {
	h.sendMessage(chatID, FormatList(ownerName, h.service.List(ownerID)))
}

// FormatList форматирует список достижений.
func FormatList(ownerName string, list []Achievement) string {
	if len(list) == 0 {
		return fmt.Sprintf("🏆 У %s пока нет достижений", ownerName)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 Достижения %s:\n\n", ownerName))
	for i, a := range list {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, a.Text, common.FormatDate(a.Date)))
	}
	return sb.String()
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
