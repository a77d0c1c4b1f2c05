// Package auth — handlers.go обрабатывает !верификация и нажатие кнопки.
package auth

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// VerifyCallbackData — callback_data кнопки верификации.
const VerifyCallbackData = "verify"

// Handler обрабатывает верификацию.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик верификации.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleVerifyPanel выкладывает сообщение с кнопкой «Верифицироваться».
func (h *Handler) HandleVerifyPanel(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "✅ Верификация\n\nНажмите кнопку ниже, чтобы получить доступ к магазину.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Верифицироваться", VerifyCallbackData),
		),
	)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки панели верификации")
	}
}

// HandleVerifyCallback выдаёт верификацию нажавшему кнопку.
func (h *Handler) HandleVerifyCallback(cb *tgbotapi.CallbackQuery) {
	var text string
	if h.service.Grant(cb.From.ID) {
		text = "✅ Вы верифицированы!"
	} else {
		at, _ := h.service.GrantedAt(cb.From.ID)
		text = fmt.Sprintf("Вы уже верифицированы (%s)", common.FormatDateTime(at))
	}

	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.WithError(err).WithField("user_id", cb.From.ID).Warn("Не удалось ответить на callback")
	}
}
