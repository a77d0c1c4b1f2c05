// Package vending — handlers.go обрабатывает команды автомата:
// !магазин, !купить и нажатия кнопок «Купить» на витрине.
// Handler же доставляет чеки и обновляет витрину (реализует Notifier).
package vending

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Verifier сообщает, прошёл ли пользователь верификацию.
type Verifier interface {
	IsVerified(userID int64) bool
}

// Handler обрабатывает команды торгового автомата.
type Handler struct {
	service    *Service
	bot        *tgbotapi.BotAPI
	mainChatID int64
	verifier   Verifier // nil — покупать могут все

	boardMu    sync.Mutex
	boardMsgID int // сообщение с витриной в основном чате (0 — ещё не выложена)
}

// NewHandler создаёт обработчик автомата.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, mainChatID int64) *Handler {
	return &Handler{
		service:    service,
		bot:        bot,
		mainChatID: mainChatID,
	}
}

// SetVerifier включает проверку верификации перед покупкой.
func (h *Handler) SetVerifier(v Verifier) {
	h.verifier = v
}

// DeliverReceipt отправляет чек покупателю в личные сообщения.
func (h *Handler) DeliverReceipt(ctx context.Context, receipt Receipt) error {
	userID, err := strconv.ParseInt(receipt.Buyer, 10, 64)
	if err != nil {
		return fmt.Errorf("покупатель %q: %w", receipt.Buyer, err)
	}
	if _, err := h.bot.Send(tgbotapi.NewMessage(userID, FormatReceipt(receipt))); err != nil {
		return fmt.Errorf("отправка чека: %w", err)
	}
	return nil
}

// RefreshCatalog перерисовывает витрину в основном чате, если она выложена.
func (h *Handler) RefreshCatalog(ctx context.Context, items []Listing) error {
	h.boardMu.Lock()
	defer h.boardMu.Unlock()

	if h.boardMsgID == 0 {
		return nil
	}

	edit := tgbotapi.NewEditMessageText(h.mainChatID, h.boardMsgID, FormatCatalog(items))
	if kb := CatalogKeyboard(items); kb != nil {
		edit.ReplyMarkup = kb
	} else {
		edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	if _, err := h.bot.Request(edit); err != nil {
		// Telegram отвечает ошибкой, если текст не изменился
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("обновление витрины: %w", err)
	}
	return nil
}

// HandleShop обрабатывает команду !магазин — выкладывает витрину.
// В основном чате витрина запоминается и дальше обновляется на месте.
func (h *Handler) HandleShop(ctx context.Context, chatID int64) {
	items := h.service.ListItems()

	msg := tgbotapi.NewMessage(chatID, FormatCatalog(items))
	if kb := CatalogKeyboard(items); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := h.bot.Send(msg)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки витрины")
		return
	}

	if chatID == h.mainChatID {
		h.boardMu.Lock()
		h.boardMsgID = sent.MessageID
		h.boardMu.Unlock()
	}
}

// HandleBuy обрабатывает команду !купить <номер|название>.
func (h *Handler) HandleBuy(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: !купить <номер или название>")
		return
	}

	item, ok := ResolveItem(h.service.ListItems(), strings.Join(args, " "))
	if !ok {
		h.sendMessage(chatID, "❌ "+purchaseErrorText(common.ErrItemNotFound))
		return
	}

	text, err := h.checkout(ctx, userID, item.Name)
	if err != nil {
		h.sendMessage(chatID, "❌ "+purchaseErrorText(err))
		return
	}
	h.sendMessage(chatID, text)
}

// HandleBuyCallback обрабатывает нажатие кнопки «Купить» на витрине.
func (h *Handler) HandleBuyCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	name, ok := ParseBuyCallback(cb.Data)
	if !ok {
		return
	}

	text, err := h.checkout(ctx, cb.From.ID, name)
	if err != nil {
		text = "❌ " + purchaseErrorText(err)
	}

	answer := tgbotapi.NewCallback(cb.ID, text)
	answer.ShowAlert = err != nil
	if _, err := h.bot.Request(answer); err != nil {
		log.WithError(err).WithField("user_id", cb.From.ID).Warn("Не удалось ответить на callback")
	}
}

// checkout проводит покупку и возвращает текст ответа в чат.
func (h *Handler) checkout(ctx context.Context, userID int64, itemName string) (string, error) {
	if h.verifier != nil && !h.verifier.IsVerified(userID) {
		return "", common.ErrNotVerified
	}

	outcome, err := h.service.Checkout(ctx, common.UserKey(userID), itemName)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("✅ Куплено: %s за %s. Остаток: %s",
		outcome.Receipt.ItemName,
		common.FormatBalance(outcome.Receipt.PricePaid),
		common.FormatBalance(outcome.Receipt.RemainingBalance),
	)
	if outcome.ReceiptWarning != nil {
		text += "\n⚠️ Не удалось отправить чек в личку. Напишите боту /start и обратитесь к администратору, номер чека: " + outcome.Receipt.ID
	} else {
		text += "\n📬 Чек отправлен в личные сообщения"
	}
	return text, nil
}

// purchaseErrorText переводит ошибку покупки в текст для пользователя.
func purchaseErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		return "Такого товара нет"
	case errors.Is(err, common.ErrOutOfStock):
		return "Товар закончился"
	case errors.Is(err, common.ErrInsufficientFunds):
		return "Недостаточно монет на счёте"
	case errors.Is(err, common.ErrNotVerified):
		return "Сначала пройдите верификацию: !верификация"
	default:
		log.WithError(err).Error("Неожиданная ошибка покупки")
		return "Не удалось провести покупку, попробуйте позже"
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
