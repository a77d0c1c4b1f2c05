// Package moderation — handlers.go обрабатывает !nuke и кнопки подтверждения.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"serotonyl.ru/vending-bot/internal/common"
)

// CallbackPrefix — префикс callback_data кнопок подтверждения.
const CallbackPrefix = "nuke:"

const (
	actionConfirm = "ok"
	actionCancel  = "no"
)

// Handler обрабатывает команду !nuke.
type Handler struct {
	tracker       *Tracker
	confirmations *Confirmations
	bot           *tgbotapi.BotAPI
	defaultLimit  int
	// Telegram ограничивает частоту deleteMessage, удаляем не быстрее лимитера
	deleteLimiter *rate.Limiter
}

// NewHandler создаёт обработчик модерации.
func NewHandler(tracker *Tracker, confirmations *Confirmations, bot *tgbotapi.BotAPI, defaultLimit int) *Handler {
	return &Handler{
		tracker:       tracker,
		confirmations: confirmations,
		bot:           bot,
		defaultLimit:  defaultLimit,
		deleteLimiter: rate.NewLimiter(rate.Limit(25), 5),
	}
}

// ParseLimit разбирает аргумент !nuke [N]. Допустимо 1..MaxTracked.
func ParseLimit(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > MaxTracked {
		return 0, fmt.Errorf("%q: количество от 1 до %d: %w", args[0], MaxTracked, common.ErrInvalidParameters)
	}
	return n, nil
}

// HandleNuke обрабатывает !nuke [N]. Права администратора проверяет роутер.
func (h *Handler) HandleNuke(chatID, userID int64, args []string) {
	limit, err := ParseLimit(args, h.defaultLimit)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ Укажите количество от 1 до %d", MaxTracked))
		return
	}

	req := h.confirmations.Create(chatID, userID, limit)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⚠️ Удалить последние %d %s? Подтвердить может только инициатор.",
		limit, common.PluralizeMessages(limit)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Удалить", CallbackPrefix+actionConfirm+":"+req.Token),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", CallbackPrefix+actionCancel+":"+req.Token),
		),
	)
	sent, err := h.bot.Send(msg)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки подтверждения")
		return
	}
	h.confirmations.SetPrompt(req.Token, sent.MessageID)
}

// parseCallback разбирает nuke:<action>:<token>.
func parseCallback(data string) (action, token string, ok bool) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", false
	}
	if parts[0] != actionConfirm && parts[0] != actionCancel {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// HandleCallback обрабатывает нажатие «Удалить» / «Отмена».
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	action, token, ok := parseCallback(cb.Data)
	if !ok {
		return
	}

	req, err := h.confirmations.Resolve(token, cb.From.ID)
	if err != nil {
		text := "Запрос истёк"
		if errors.Is(err, common.ErrNotInitiator) {
			text = "Подтвердить может только инициатор"
		}
		h.answer(cb, text)
		return
	}

	if action == actionCancel {
		h.answer(cb, "Отменено")
		h.deletePrompt(req)
		return
	}

	h.answer(cb, "Удаляю...")
	h.deletePrompt(req)
	deleted := h.purge(ctx, req)

	log.WithFields(log.Fields{
		"chat_id":   req.ChatID,
		"initiator": req.InitiatorID,
		"requested": req.Limit,
		"deleted":   deleted,
	}).Info("Nuke выполнен")
	h.sendMessage(req.ChatID, fmt.Sprintf("🧹 Удалено %d %s", deleted, common.PluralizeMessages(deleted)))
}

// purge удаляет до req.Limit последних сообщений и возвращает число удалённых.
func (h *Handler) purge(ctx context.Context, req Request) int {
	ids := h.tracker.Last(req.ChatID, req.Limit)
	var done []int
	for _, id := range ids {
		if err := h.deleteLimiter.Wait(ctx); err != nil {
			break
		}
		if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(req.ChatID, id)); err != nil {
			// сообщение старше 48 часов или уже удалено
			log.WithError(err).WithField("message_id", id).Debug("Не удалось удалить сообщение")
			continue
		}
		done = append(done, id)
	}
	h.tracker.Forget(req.ChatID, ids)
	return len(done)
}

// ExpirePending снимает просроченные подтверждения и убирает их кнопки.
func (h *Handler) ExpirePending() int {
	expired := h.confirmations.Expire()
	for _, req := range expired {
		if req.PromptID == 0 {
			continue
		}
		edit := tgbotapi.NewEditMessageText(req.ChatID, req.PromptID, "⌛ Время подтверждения истекло")
		if _, err := h.bot.Request(edit); err != nil {
			log.WithError(err).WithField("chat_id", req.ChatID).Debug("Не удалось обновить подтверждение")
		}
	}
	return len(expired)
}

func (h *Handler) deletePrompt(req Request) {
	if req.PromptID == 0 {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(req.ChatID, req.PromptID)); err != nil {
		log.WithError(err).Debug("Не удалось удалить подтверждение")
	}
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.WithError(err).Warn("Не удалось ответить на callback")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
