// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `ignored:"true"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID основного группового чата. В нём висит витрина автомата.
	MainChatID int64 `envconfig:"MAIN_CHAT_ID" required:"true"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Если задан — логи дублируются в файл с ротацией
	AppLogFile  string `envconfig:"APP_LOG_FILE" default:""`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`
	AdminSessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"24h"`

	// --- Shop ---
	ShopRequireVerification bool `envconfig:"SHOP_REQUIRE_VERIFICATION" default:"false"`
	ShopJournalSize         int  `envconfig:"SHOP_JOURNAL_SIZE" default:"50"`

	// --- Tickets ---
	// Сколько хранить закрытый тикет до удаления
	TicketRetention time.Duration `envconfig:"TICKET_RETENTION" default:"5s"`

	// --- Nuke ---
	NukeDefaultLimit   int           `envconfig:"NUKE_DEFAULT_LIMIT" default:"100"`
	NukeConfirmTimeout time.Duration `envconfig:"NUKE_CONFIRM_TIMEOUT" default:"30s"`

	// --- Keep-alive HTTP ---
	HTTPEnabled bool `envconfig:"HTTP_ENABLED" default:"false"`
	HTTPPort    int  `envconfig:"PORT" default:"10000"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureTicketsEnabled      bool `envconfig:"FEATURE_TICKETS_ENABLED" default:"true"`
	FeatureAchievementsEnabled bool `envconfig:"FEATURE_ACHIEVEMENTS_ENABLED" default:"true"`
	FeatureNukeEnabled         bool `envconfig:"FEATURE_NUKE_ENABLED" default:"true"`
}

// IsAdmin проверяет, входит ли пользователь в ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.MainChatID == 0 {
		return fmt.Errorf("MAIN_CHAT_ID не задан или равен 0")
	}
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_IDS пуст")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.NukeDefaultLimit < 1 || c.NukeDefaultLimit > 1000 {
		return fmt.Errorf("NUKE_DEFAULT_LIMIT должен быть от 1 до 1000")
	}
	if c.ShopJournalSize <= 0 {
		return fmt.Errorf("SHOP_JOURNAL_SIZE должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	if c.HTTPEnabled && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		return fmt.Errorf("PORT вне диапазона: %d", c.HTTPPort)
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
