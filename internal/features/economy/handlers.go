// Package economy — handlers.go обрабатывает команды:
// !баланс и !транзакции.
package economy

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service         // Сервис экономики
	bot     *tgbotapi.BotAPI // API Telegram для отправки ответов
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service: service,
		bot:     bot,
	}
}

// HandleBalance обрабатывает команду !баланс.
//
// Формат ответа:
//
//	💰 Баланс: 150 монет
//	Потрачено в автомате: 40 монет
func (h *Handler) HandleBalance(chatID int64, userID int64) {
	stats := h.service.Stats(userID)

	text := fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(stats.Balance))
	if stats.TotalSpent > 0 {
		text += fmt.Sprintf("\nПотрачено в автомате: %s", common.FormatBalance(stats.TotalSpent))
	}
	h.sendMessage(chatID, text)
}

// HandleTransactions обрабатывает команду !транзакции — показывает историю.
// История отправляется только в личку.
func (h *Handler) HandleTransactions(chatID int64, userID int64) {
	h.sendMessage(userID, h.service.GetTransactionHistory(userID))
	if chatID != userID {
		h.sendMessage(chatID, "📬 История отправлена в личные сообщения")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
