// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт хранилища, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/bot"
	"serotonyl.ru/vending-bot/internal/bot/filters"
	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/config"
	"serotonyl.ru/vending-bot/internal/features/achievements"
	"serotonyl.ru/vending-bot/internal/features/admin"
	"serotonyl.ru/vending-bot/internal/features/auth"
	"serotonyl.ru/vending-bot/internal/features/economy"
	"serotonyl.ru/vending-bot/internal/features/members"
	"serotonyl.ru/vending-bot/internal/features/moderation"
	"serotonyl.ru/vending-bot/internal/features/tickets"
	"serotonyl.ru/vending-bot/internal/features/vending"
	"serotonyl.ru/vending-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(cfg *config.Config) (*App, error) {
	// === 1. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 2. Хранилища (память процесса) ===
	ledger := economy.NewLedger(cfg.ShopJournalSize)
	catalog := vending.NewCatalog()
	memberRepo := members.NewRepository()
	adminRepo := admin.NewRepository()
	tracker := moderation.NewTracker(moderation.MaxTracked)

	// === 3. Сервисы ===
	memberService := members.NewService(memberRepo)
	economyService := economy.NewService(ledger)
	vendingService := vending.NewService(catalog, vending.NewEngine(ledger, catalog))
	authService := auth.NewService()
	achievementService := achievements.NewService()
	ticketService := tickets.NewService()
	adminService := admin.NewService(adminRepo, cfg)
	confirmations := moderation.NewConfirmations(cfg.NukeConfirmTimeout)

	// === 4. Обработчики ===
	vendingHandler := vending.NewHandler(vendingService, botAPI, cfg.MainChatID)
	vendingService.SetNotifier(vendingHandler)
	if cfg.ShopRequireVerification {
		vendingHandler.SetVerifier(authService)
	}
	moderationHandler := moderation.NewHandler(tracker, confirmations, botAPI, cfg.NukeDefaultLimit)

	handlers := bot.Handlers{
		Members:      members.NewHandler(memberService),
		Economy:      economy.NewHandler(economyService, botAPI),
		Vending:      vendingHandler,
		Auth:         auth.NewHandler(authService, botAPI),
		Achievements: achievements.NewHandler(achievementService, botAPI),
		Tickets:      tickets.NewHandler(ticketService, botAPI, cfg.AdminIDs),
		Moderation:   moderationHandler,
		Admin:        admin.NewHandler(adminService, vendingService, economyService, memberService, botAPI),
	}

	// === 5. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.MainChatID, memberService, botAPI, cfg.IsAdmin)

	// === 6. Собираем бота ===
	b := bot.New(botAPI, cfg, memberService, handlers, tracker, chatFilter)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(jobs.Deps{
		Tickets:         ticketService,
		TicketRetention: cfg.TicketRetention,
		Nuke:            moderationHandler,
		Admin:           adminService,
		Filter:          chatFilter,
		Members:         memberService,
		Ledger:          ledger,
		Vending:         vendingService,
	}, common.Location())

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		BotAPI:    botAPI,
	}, nil
}
