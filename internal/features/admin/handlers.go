// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: аутентификация → клавиатура → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/features/economy"
	"serotonyl.ru/vending-bot/internal/features/members"
	"serotonyl.ru/vending-bot/internal/features/vending"
)

// Кнопки клавиатуры
const (
	btnAddItem  = "Добавить товар"
	btnCodes    = "Загрузить коды"
	btnCatalog  = "Каталог"
	btnLogout   = "Выйти"
	btnCancel   = "Отмена"
	btnAppend   = "Добавить к очереди"
	btnReplace  = "Заменить очередь"
	maxCodesMsg = 500
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service        *Service
	vendingService *vending.Service
	economyService *economy.Service
	memberService  *members.Service
	bot            *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(
	service *Service,
	vendingService *vending.Service,
	economyService *economy.Service,
	memberService *members.Service,
	bot *tgbotapi.BotAPI,
) *Handler {
	return &Handler{
		service:        service,
		vendingService: vendingService,
		economyService: economyService,
		memberService:  memberService,
		bot:            bot,
	}
}

// isPanelTrigger — сообщения, которые относятся к админке даже без активного диалога.
func isPanelTrigger(text string) bool {
	switch text {
	case btnAddItem, btnCodes, btnCatalog, btnLogout, "Админ", "Панель", "админ", "панель":
		return true
	}
	cmd := strings.Fields(text)
	if len(cmd) == 0 {
		return false
	}
	switch cmd[0] {
	case "/login", "/admin", "/setprice", "/setstock", "/delitem", "/give", "/catalog", "/logout":
		return true
	}
	return false
}

// HandleAdminMessage обрабатывает сообщение от администратора в DM.
// Возвращает true, если сообщение относилось к админке.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	if !h.service.IsAdmin(userID) {
		return false
	}
	text = strings.TrimSpace(text)

	state := h.service.GetState(userID)

	if state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(chatID, userID, text)
		return true
	}
	if state == nil && !isPanelTrigger(text) {
		return false
	}

	if !h.service.HasActiveSession(userID) {
		// /login <пароль> сразу
		if fields := strings.Fields(text); len(fields) == 2 && fields[0] == "/login" {
			h.handlePasswordInput(chatID, userID, fields[1])
			return true
		}
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
		h.service.SetState(userID, StateAwaitingPassword, nil)
		return true
	}

	h.service.Touch(userID)

	if text == btnCancel {
		h.service.ClearState(userID)
		h.showKeyboard(chatID, "Действие отменено")
		return true
	}

	if state != nil {
		switch state.State {
		case StateAddItemName:
			h.handleAddItemName(chatID, userID, text)
			return true
		case StateAddItemPrice:
			h.handleAddItemPrice(chatID, userID, state, text)
			return true
		case StateAddItemStock:
			h.handleAddItemStock(ctx, chatID, userID, state, text)
			return true
		case StateCodesSelect:
			h.handleCodesSelect(chatID, userID, state, text)
			return true
		case StateCodesMode:
			h.handleCodesMode(chatID, userID, state, text)
			return true
		case StateCodesInput:
			h.handleCodesInput(ctx, chatID, userID, state, text)
			return true
		}
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		fields = []string{""}
	}
	switch {
	case text == btnAddItem:
		h.sendMessage(chatID, fmt.Sprintf("Введите название товара (до %d байт):", vending.MaxNameBytes))
		h.service.SetState(userID, StateAddItemName, nil)
	case text == btnCodes:
		h.startCodes(chatID, userID)
	case text == btnCatalog || fields[0] == "/catalog":
		h.sendMessage(chatID, vending.FormatAdminCatalog(h.vendingService.ListItems()))
	case text == btnLogout || fields[0] == "/logout":
		h.service.Logout(userID)
		msg := tgbotapi.NewMessage(chatID, "👋 Вы вышли из админ-панели")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		h.send(msg)
	case fields[0] == "/setprice":
		h.handleSetPrice(ctx, chatID, fields[1:])
	case fields[0] == "/setstock":
		h.handleSetStock(ctx, chatID, fields[1:])
	case fields[0] == "/delitem":
		h.handleDeleteItem(ctx, chatID, fields[1:])
	case fields[0] == "/give":
		h.handleGive(chatID, userID, fields[1:])
	default:
		h.showKeyboard(chatID, "✅ Админ-панель открыта")
	}
	return true
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(chatID int64, userID int64, password string) {
	h.service.ClearState(userID)
	if err := h.service.VerifyPassword(userID, password); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}
	h.showKeyboard(chatID, "✅ Аутентификация успешна!")
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text+"\n\nКоманды: /setprice <№> <цена>, /setstock <№> <кол-во>, /delitem <№>, /give <@user|id> <сумма>, /catalog")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAddItem),
			tgbotapi.NewKeyboardButton(btnCodes),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCatalog),
			tgbotapi.NewKeyboardButton(btnLogout),
		),
	)
	h.send(msg)
}

// --- Добавить товар (3 шага) ---

func (h *Handler) handleAddItemName(chatID, userID int64, text string) {
	if text == "" || len(text) > vending.MaxNameBytes {
		h.sendMessage(chatID, fmt.Sprintf("❌ Название от 1 до %d байт. Попробуйте ещё раз.", vending.MaxNameBytes))
		return
	}
	if _, err := h.vendingService.Item(text); err == nil {
		h.sendMessage(chatID, "❌ Такой товар уже есть. Введите другое название.")
		return
	}
	h.sendMessage(chatID, "Введите цену в монетах:")
	h.service.SetState(userID, StateAddItemPrice, &itemDraft{Name: text})
}

func (h *Handler) handleAddItemPrice(chatID, userID int64, state *AdminState, text string) {
	draft := state.Data.(*itemDraft)
	price, err := strconv.ParseInt(text, 10, 64)
	if err != nil || price <= 0 {
		h.sendMessage(chatID, "❌ Цена должна быть положительным числом")
		return
	}
	draft.Price = price
	h.sendMessage(chatID, "Введите количество в наличии:")
	h.service.SetState(userID, StateAddItemStock, draft)
}

func (h *Handler) handleAddItemStock(ctx context.Context, chatID, userID int64, state *AdminState, text string) {
	draft := state.Data.(*itemDraft)
	stock, err := strconv.ParseInt(text, 10, 64)
	if err != nil || stock <= 0 {
		h.sendMessage(chatID, "❌ Количество должно быть положительным числом")
		return
	}

	h.service.ClearState(userID)
	if err := h.vendingService.AddItem(ctx, draft.Name, draft.Price, stock); err != nil {
		h.sendMessage(chatID, "❌ "+catalogErrorText(err))
		return
	}
	h.showKeyboard(chatID, fmt.Sprintf("✅ Товар добавлен: %s, %s, %d шт.", draft.Name, common.FormatBalance(draft.Price), stock))
}

// --- Загрузить коды (3 шага) ---

func (h *Handler) startCodes(chatID, userID int64) {
	items := h.vendingService.ListItems()
	if len(items) == 0 {
		h.sendMessage(chatID, "📦 Каталог пуст, сначала добавьте товар")
		return
	}
	h.sendMessage(chatID, vending.FormatAdminCatalog(items)+"\nВыберите товар (отправьте номер):")
	h.service.SetState(userID, StateCodesSelect, items)
}

func (h *Handler) handleCodesSelect(chatID, userID int64, state *AdminState, text string) {
	items := state.Data.([]vending.Listing)
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(items) {
		h.sendMessage(chatID, "❌ Неверный номер. Попробуйте ещё раз.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Товар: %s. Добавить коды в конец очереди или заменить её?", items[num-1].Name))
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAppend),
			tgbotapi.NewKeyboardButton(btnReplace),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	h.send(msg)
	h.service.SetState(userID, StateCodesMode, &codesDraft{ItemName: items[num-1].Name})
}

func (h *Handler) handleCodesMode(chatID, userID int64, state *AdminState, text string) {
	draft := state.Data.(*codesDraft)
	switch text {
	case btnAppend:
		draft.Replace = false
	case btnReplace:
		draft.Replace = true
	default:
		h.sendMessage(chatID, "Выберите кнопку на клавиатуре")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("Отправьте коды, по одному на строку (до %d за раз):", maxCodesMsg))
	h.service.SetState(userID, StateCodesInput, draft)
}

func (h *Handler) handleCodesInput(ctx context.Context, chatID, userID int64, state *AdminState, text string) {
	draft := state.Data.(*codesDraft)
	codes := ParseCodes(text)
	if len(codes) == 0 || len(codes) > maxCodesMsg {
		h.sendMessage(chatID, fmt.Sprintf("❌ Нужен хотя бы один код и не больше %d", maxCodesMsg))
		return
	}

	h.service.ClearState(userID)
	var err error
	if draft.Replace {
		err = h.vendingService.UpdateItem(ctx, draft.ItemName, vending.ItemUpdate{Codes: codes, ReplaceCodes: true})
	} else {
		err = h.vendingService.AppendCodes(ctx, draft.ItemName, codes)
	}
	if err != nil {
		h.showKeyboard(chatID, "❌ "+catalogErrorText(err))
		return
	}

	item, _ := h.vendingService.Item(draft.ItemName)
	h.showKeyboard(chatID, fmt.Sprintf("✅ Загружено кодов: %d. В очереди %s: %d", len(codes), draft.ItemName, item.AvailableCodes))
}

// ParseCodes разбивает сообщение на коды: по одному на строку, пустые строки пропускаются.
func ParseCodes(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// --- Команды с аргументами ---

// resolveItem находит товар по номеру в каталоге или названию.
func (h *Handler) resolveItem(chatID int64, ref string) (vending.Listing, bool) {
	item, ok := vending.ResolveItem(h.vendingService.ListItems(), ref)
	if !ok {
		h.sendMessage(chatID, "❌ Товар не найден. Номера — в /catalog")
	}
	return item, ok
}

func (h *Handler) handleSetPrice(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		h.sendMessage(chatID, "Использование: /setprice <№> <цена>")
		return
	}
	price, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Цена должна быть числом")
		return
	}
	item, ok := h.resolveItem(chatID, args[0])
	if !ok {
		return
	}
	if err := h.vendingService.UpdateItem(ctx, item.Name, vending.ItemUpdate{Price: &price}); err != nil {
		h.sendMessage(chatID, "❌ "+catalogErrorText(err))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ %s: цена %s", item.Name, common.FormatBalance(price)))
}

func (h *Handler) handleSetStock(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		h.sendMessage(chatID, "Использование: /setstock <№> <кол-во>")
		return
	}
	stock, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Количество должно быть числом")
		return
	}
	item, ok := h.resolveItem(chatID, args[0])
	if !ok {
		return
	}
	if err := h.vendingService.UpdateItem(ctx, item.Name, vending.ItemUpdate{Stock: &stock}); err != nil {
		h.sendMessage(chatID, "❌ "+catalogErrorText(err))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ %s: в наличии %d", item.Name, stock))
}

func (h *Handler) handleDeleteItem(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "Использование: /delitem <№>")
		return
	}
	item, ok := h.resolveItem(chatID, strings.Join(args, " "))
	if !ok {
		return
	}
	if err := h.vendingService.RemoveItem(ctx, item.Name); err != nil {
		h.sendMessage(chatID, "❌ "+catalogErrorText(err))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🗑 Товар удалён: %s", item.Name))
}

func (h *Handler) handleGive(chatID, adminID int64, args []string) {
	if len(args) != 2 {
		h.sendMessage(chatID, "Использование: /give <@user|id> <сумма>")
		return
	}
	target, err := h.memberService.Resolve(args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Пользователь не найден. Он должен хотя бы раз написать в чат.")
		return
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Сумма должна быть числом")
		return
	}

	newBalance, err := h.economyService.GiveCoins(adminID, target, amount)
	if err != nil {
		if errors.Is(err, common.ErrInvalidAmount) {
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
			return
		}
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}

	name := h.memberService.DisplayName(target)
	h.sendMessage(chatID, fmt.Sprintf("✅ %s: %s, баланс %s", name, common.FormatCoinsAmount(amount), common.FormatBalance(newBalance)))
	h.sendMessage(target, fmt.Sprintf("💰 Вам начислено %s. Баланс: %s", common.FormatCoinsAmount(amount), common.FormatBalance(newBalance)))
}

func catalogErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateItem):
		return "Такой товар уже есть"
	case errors.Is(err, common.ErrItemNotFound):
		return "Товар не найден"
	case errors.Is(err, common.ErrInvalidParameters):
		return "Некорректные параметры: цена > 0, количество ≥ 0, коды непустые"
	default:
		log.WithError(err).Error("Ошибка изменения каталога")
		return "Не удалось изменить каталог"
	}
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", msg.ChatID).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}
