// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go принимает апдейты, фильтрует их и раздаёт обработчикам фич.
package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/bot/filters"
	"serotonyl.ru/vending-bot/internal/bot/middleware"
	"serotonyl.ru/vending-bot/internal/config"
	"serotonyl.ru/vending-bot/internal/features/achievements"
	"serotonyl.ru/vending-bot/internal/features/admin"
	"serotonyl.ru/vending-bot/internal/features/auth"
	"serotonyl.ru/vending-bot/internal/features/economy"
	"serotonyl.ru/vending-bot/internal/features/members"
	"serotonyl.ru/vending-bot/internal/features/moderation"
	"serotonyl.ru/vending-bot/internal/features/tickets"
	"serotonyl.ru/vending-bot/internal/features/vending"
	"serotonyl.ru/vending-bot/internal/metrics"
)

const helpText = `🤖 Команды:

🏪 Магазин
!магазин — витрина автомата
!купить <номер|название> — купить товар
!баланс — ваш баланс
!транзакции — история (в личку)

✅ !верификация — получить доступ к покупкам
🏆 !достижение <текст>, !достижения
🎫 !тикет <проблема>, !написать <№> <текст>, !закрыть <№>, !тикеты
🧹 !nuke [N] — удалить последние N сообщений (админы)

🔐 /login — админ-панель (в личке)`

// Handlers — обработчики фич, которые собирает app.
type Handlers struct {
	Members      *members.Handler
	Economy      *economy.Handler
	Vending      *vending.Handler
	Auth         *auth.Handler
	Achievements *achievements.Handler
	Tickets      *tickets.Handler
	Moderation   *moderation.Handler
	Admin        *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	tracker     *moderation.Tracker

	memberService *members.Service
	handlers      Handlers

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	handlers Handlers,
	tracker *moderation.Tracker,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		tracker:       tracker,
		memberService: memberService,
		handlers:      handlers,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram. Блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) error {
	defer b.rateLimiter.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				return errors.New("канал updates закрыт")
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		metrics.Updates.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	if b.shouldTrack(message) {
		b.tracker.Track(message.Chat.ID, message.MessageID)
	}

	// Вступление новых участников
	if message.NewChatMembers != nil {
		metrics.Updates.WithLabelValues("join").Inc()
		if message.Chat.ID == b.cfg.MainChatID {
			b.handlers.Members.HandleNewChatMembers(message.NewChatMembers)
		}
		return
	}

	if message.Text == "" {
		return
	}
	metrics.Updates.WithLabelValues("message").Inc()

	middleware.LogMessage(message)

	// Проверяем доступ (MAIN_CHAT_ID или DM участника)
	if !b.chatFilter.CheckAccess(message) {
		return
	}

	// Rate limiting
	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	b.memberService.EnsureMember(userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	)

	// В DM проверяем админ-панель
	if message.Chat.IsPrivate() {
		if b.handlers.Admin.HandleAdminMessage(ctx, chatID, userID, message.Text) {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	b.routeCommand(ctx, message, cmd, args)
}

// shouldTrack — запоминать ли сообщение для !nuke.
// Сама команда nuke в счёт N не входит.
func (b *Bot) shouldTrack(message *tgbotapi.Message) bool {
	if b.tracker == nil || message.Chat.ID != b.cfg.MainChatID {
		return false
	}
	cmd, _, isCommand := b.parser.ParseCommand(message.Text)
	return !isCommand || cmd != "nuke"
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID
	userName := b.memberService.DisplayName(userID)

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(chatID, helpText)

	case "баланс":
		b.handlers.Economy.HandleBalance(chatID, userID)

	case "транзакции":
		b.handlers.Economy.HandleTransactions(chatID, userID)

	case "магазин":
		b.handlers.Vending.HandleShop(ctx, chatID)

	case "купить":
		b.handlers.Vending.HandleBuy(ctx, chatID, userID, args)

	case "верификация":
		b.handlers.Auth.HandleVerifyPanel(chatID)

	case "достижение":
		if b.cfg.FeatureAchievementsEnabled {
			b.handlers.Achievements.HandleAdd(chatID, userID, userName, strings.Join(args, " "))
		}

	case "достижения":
		if b.cfg.FeatureAchievementsEnabled {
			ownerID, ownerName := userID, userName
			if r := message.ReplyToMessage; r != nil && r.From != nil && !r.From.IsBot {
				ownerID, ownerName = r.From.ID, b.memberService.DisplayName(r.From.ID)
			}
			b.handlers.Achievements.HandleList(chatID, ownerID, ownerName)
		}

	case "тикет":
		if b.cfg.FeatureTicketsEnabled {
			b.handlers.Tickets.HandleOpen(chatID, userID, userName, strings.Join(args, " "))
		}

	case "написать":
		if b.cfg.FeatureTicketsEnabled {
			b.handlers.Tickets.HandleReply(chatID, userID, userName, args)
		}

	case "закрыть":
		if b.cfg.FeatureTicketsEnabled {
			b.handlers.Tickets.HandleClose(chatID, userID, userName, args)
		}

	case "тикеты":
		if b.cfg.FeatureTicketsEnabled {
			b.handlers.Tickets.HandleList(chatID, userID)
		}

	case "nuke":
		if !b.cfg.FeatureNukeEnabled || message.Chat.IsPrivate() {
			return
		}
		if !b.cfg.IsAdmin(userID) {
			b.sendMessage(chatID, "❌ Команда доступна только администраторам")
			return
		}
		b.handlers.Moderation.HandleNuke(chatID, userID, args)
	}
}

// handleCallback раздаёт нажатия inline-кнопок по префиксу callback_data.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}
	middleware.LogCallback(cb)

	if !b.rateLimiter.Allow(cb.From.ID) {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "Слишком часто, подождите")); err != nil {
			log.WithError(err).Debug("Не удалось ответить на callback")
		}
		return
	}
	b.memberService.EnsureMember(cb.From.ID, cb.From.UserName, cb.From.FirstName, cb.From.LastName)

	switch {
	case strings.HasPrefix(cb.Data, vending.BuyCallbackPrefix):
		b.handlers.Vending.HandleBuyCallback(ctx, cb)
	case cb.Data == auth.VerifyCallbackData:
		b.handlers.Auth.HandleVerifyCallback(cb)
	case strings.HasPrefix(cb.Data, moderation.CallbackPrefix):
		if b.cfg.FeatureNukeEnabled {
			b.handlers.Moderation.HandleCallback(ctx, cb)
		}
	default:
		log.WithField("data", cb.Data).Debug("Неизвестный callback")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @botname у команды отбрасывается.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
