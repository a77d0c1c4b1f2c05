// Package filters решает, на какие сообщения бот вообще отвечает.
package filters

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/features/members"
)

// сколько помним ответ GetChatMember
const membershipTTL = 10 * time.Minute

type membership struct {
	allowed   bool
	checkedAt time.Time
}

// ChatFilter пропускает сообщения основного чата и личку его участников.
type ChatFilter struct {
	mainChatID    int64
	memberService *members.Service
	bot           *tgbotapi.BotAPI
	isAdmin       func(int64) bool
	now           func() time.Time

	mu    sync.Mutex
	cache map[int64]membership
}

func NewChatFilter(mainChatID int64, memberService *members.Service, bot *tgbotapi.BotAPI, isAdmin func(int64) bool) *ChatFilter {
	return &ChatFilter{
		mainChatID:    mainChatID,
		memberService: memberService,
		bot:           bot,
		isAdmin:       isAdmin,
		now:           time.Now,
		cache:         make(map[int64]membership),
	}
}

func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component":    "ChatFilter",
		"chat_id":      chatID,
		"chat_type":    message.Chat.Type,
		"user_id":      userID,
		"main_chat_id": f.mainChatID,
	})

	// 1) Основной чат
	if chatID == f.mainChatID {
		return true
	}

	// 2) Остальные чаты игнорируем
	if !message.Chat.IsPrivate() {
		logger.Info("deny: not main chat and not private")
		return false
	}

	// 3) Личка: админы, знакомые участники, затем Telegram API
	if f.isAdmin != nil && f.isAdmin(userID) {
		return true
	}
	if f.memberService.IsMember(userID) {
		return true
	}
	if f.IsChatMember(userID) {
		logger.Info("allow: private (telegram member)")
		return true
	}

	logger.Info("deny: private (not a chat member)")
	msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников основного чата")
	if _, err := f.bot.Send(msg); err != nil {
		logger.WithError(err).Warn("failed to send deny message")
	}
	return false
}

// IsChatMember проверяет членство в основном чате через GetChatMember.
// Ответ кешируется на membershipTTL.
func (f *ChatFilter) IsChatMember(userID int64) bool {
	f.mu.Lock()
	if m, ok := f.cache[userID]; ok && f.now().Sub(m.checkedAt) < membershipTTL {
		f.mu.Unlock()
		return m.allowed
	}
	f.mu.Unlock()

	cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: f.mainChatID,
			UserID: userID,
		},
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("member check failed (telegram GetChatMember)")
		return false
	}

	allowed := false
	switch cm.Status {
	case "creator", "administrator", "member", "restricted":
		allowed = true
	}

	f.mu.Lock()
	f.cache[userID] = membership{allowed: allowed, checkedAt: f.now()}
	f.mu.Unlock()
	return allowed
}

// PurgeCache удаляет устаревшие ответы GetChatMember. Вызывается из cron.
func (f *ChatFilter) PurgeCache() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	removed := 0
	for id, m := range f.cache {
		if now.Sub(m.checkedAt) >= membershipTTL {
			delete(f.cache, id)
			removed++
		}
	}
	return removed
}
