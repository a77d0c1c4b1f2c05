// Package tickets — handlers.go обрабатывает команды поддержки:
// !тикет, !написать, !закрыть, !тикеты.
// Переписка идёт через личные сообщения бота: автор ↔ поддержка.
package tickets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Handler обрабатывает команды тикетов.
type Handler struct {
	service  *Service
	bot      *tgbotapi.BotAPI
	staffIDs []int64
}

// NewHandler создаёт обработчик тикетов. staffIDs получают уведомления.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, staffIDs []int64) *Handler {
	return &Handler{service: service, bot: bot, staffIDs: staffIDs}
}

func (h *Handler) isStaff(userID int64) bool {
	for _, id := range h.staffIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HandleOpen обрабатывает !тикет <проблема>.
func (h *Handler) HandleOpen(chatID, userID int64, userName, issue string) {
	t, err := h.service.Open(userID, userName, issue)
	if err != nil {
		if errors.Is(err, common.ErrEmptyText) {
			h.sendMessage(chatID, "Использование: !тикет <описание проблемы>")
			return
		}
		h.sendMessage(chatID, "❌ "+ticketErrorText(err))
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🎫 Тикет %s создан. Поддержка ответит в личные сообщения.\nДополнить: !написать %d <текст>, закрыть: !закрыть %d",
		t.Number(), t.ID, t.ID))

	note := fmt.Sprintf("🎫 Новый тикет %s\n👤 %s\n📝 %s\n\nОтветить: !написать %d <текст>",
		t.Number(), t.UserName, t.Issue, t.ID)
	for _, id := range h.staffIDs {
		if id != userID {
			h.sendMessage(id, note)
		}
	}
}

// HandleReply обрабатывает !написать <номер> <текст>.
func (h *Handler) HandleReply(chatID, userID int64, userName string, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Использование: !написать <номер> <текст>")
		return
	}
	id, ok := parseID(args[0])
	if !ok {
		h.sendMessage(chatID, "❌ Неверный номер тикета")
		return
	}

	t, err := h.service.AddMessage(id, userID, userName, strings.Join(args[1:], " "), h.isStaff(userID))
	if err != nil {
		h.sendMessage(chatID, "❌ "+ticketErrorText(err))
		return
	}

	last := t.Messages[len(t.Messages)-1]
	text := fmt.Sprintf("💬 %s | %s:\n%s", t.Number(), last.AuthorName, last.Text)
	if userID == t.UserID {
		for _, id := range h.staffIDs {
			if id != userID {
				h.sendMessage(id, text)
			}
		}
	} else {
		h.sendMessage(t.UserID, text)
	}
	h.sendMessage(chatID, "✅ Сообщение отправлено")
}

// HandleClose обрабатывает !закрыть <номер>.
func (h *Handler) HandleClose(chatID, userID int64, userName string, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Использование: !закрыть <номер>")
		return
	}
	id, ok := parseID(args[0])
	if !ok {
		h.sendMessage(chatID, "❌ Неверный номер тикета")
		return
	}

	t, err := h.service.Close(id, userID, userName, h.isStaff(userID))
	if err != nil {
		h.sendMessage(chatID, "❌ "+ticketErrorText(err))
		return
	}

	text := fmt.Sprintf("🔒 Тикет %s закрыт (%s)", t.Number(), t.ClosedBy)
	h.sendMessage(chatID, text)
	if t.UserID != chatID {
		h.sendMessage(t.UserID, text)
	}
}

// HandleList обрабатывает !тикеты. Поддержка видит все открытые, остальные — свои.
func (h *Handler) HandleList(chatID, userID int64) {
	var list []Ticket
	if h.isStaff(userID) {
		list = h.service.ListOpen()
	} else {
		list = h.service.ListOpenFor(userID)
	}
	h.sendMessage(chatID, FormatList(list))
}

// FormatList форматирует список открытых тикетов.
func FormatList(list []Ticket) string {
	if len(list) == 0 {
		return "🎫 Открытых тикетов нет"
	}
	var sb strings.Builder
	sb.WriteString("🎫 Открытые тикеты:\n\n")
	for _, t := range list {
		sb.WriteString(fmt.Sprintf("%s | 👤 %s | 📅 %s\n📝 %s\n\n",
			t.Number(), t.UserName, common.FormatDateTime(t.CreatedAt), common.Truncate(t.Issue, 50)))
	}
	sb.WriteString(fmt.Sprintf("Всего: %d", len(list)))
	return sb.String()
}

// parseID принимает «12», «#12» и «#0012».
func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func ticketErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrTicketNotFound):
		return "Тикет не найден"
	case errors.Is(err, common.ErrTicketClosed):
		return "Тикет уже закрыт"
	case errors.Is(err, common.ErrNotTicketOwner):
		return "Это чужой тикет"
	case errors.Is(err, common.ErrEmptyText):
		return "Текст не может быть пустым"
	case errors.Is(err, common.ErrTextTooLong):
		return fmt.Sprintf("Слишком длинно, максимум %d символов", MaxTextRunes)
	default:
		log.WithError(err).Error("Неожиданная ошибка тикета")
		return "Что-то пошло не так"
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
