// Package admin — service.go содержит аутентификацию, управление сессиями
// и state-машину для пошаговых админ-диалогов.
package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/config"
)

const (
	maxFailedAttempts = 3
	attemptsWindow    = time.Hour
	stateTTL          = 5 * time.Minute
)

// Service управляет админ-панелью.
type Service struct {
	repo     *Repository
	cfg      *config.Config
	states   map[int64]*AdminState // Состояния диалогов (in-memory)
	statesMu sync.RWMutex
	now      func() time.Time
}

// NewService создаёт сервис админ-панели.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		states: make(map[int64]*AdminState),
		now:    time.Now,
	}
}

// IsAdmin проверяет, входит ли пользователь в ADMIN_IDS.
func (s *Service) IsAdmin(userID int64) bool {
	return s.cfg.IsAdmin(userID)
}

// VerifyPassword проверяет пароль администратора с использованием Argon2id.
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(userID int64, password string) error {
	now := s.now()
	if s.repo.GetRecentAttempts(userID, now.Add(-attemptsWindow)) >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)
	s.repo.LogAttempt(userID, match, now)

	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль админ-панели")
		return common.ErrWrongPassword
	}

	s.repo.CreateSession(&AdminSession{
		UserID:          userID,
		SessionToken:    generateSecureToken(),
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.cfg.AdminSessionTTL),
		LastActivity:    now,
	})
	log.WithField("user_id", userID).Info("Вход в админ-панель")
	return nil
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(userID int64) bool {
	_, ok := s.repo.GetActiveSession(userID, s.now())
	return ok
}

// Touch обновляет активность сессии.
func (s *Service) Touch(userID int64) {
	s.repo.UpdateActivity(userID, s.now())
}

// Logout завершает сессию и сбрасывает диалог.
func (s *Service) Logout(userID int64) {
	s.repo.DeactivateSession(userID)
	s.ClearState(userID)
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) *AdminState {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil
	}
	if s.now().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetState(userID int64, stateName string, data interface{}) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &AdminState{
		State:     stateName,
		Data:      data,
		ExpiresAt: s.now().Add(stateTTL),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// Cleanup удаляет истёкшие состояния, сессии и старые попытки входа.
func (s *Service) Cleanup() int {
	now := s.now()

	s.statesMu.Lock()
	removed := 0
	for id, st := range s.states {
		if now.After(st.ExpiresAt) {
			delete(s.states, id)
			removed++
		}
	}
	s.statesMu.Unlock()

	return removed + s.repo.Cleanup(now, now.Add(-attemptsWindow))
}

// --- Криптографические функции ---

// Argon2Params — параметры хеширования пароля.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params — 64 MB, 3 прохода, 2 потока.
var DefaultArgon2Params = Argon2Params{
	Memory:      65536,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword возвращает хеш в формате
// $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func HashPassword(password string, p Argon2Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("генерация соли: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение за постоянное время (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически стойкий токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
