// Package members — service.go содержит логику справочника участников:
// регистрацию при первом сообщении и поиск по @username.
package members

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Service управляет участниками чата.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис участников.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureMember регистрирует пользователя или обновляет его имя.
// Вызывается на каждое сообщение.
func (s *Service) EnsureMember(userID int64, username, firstName, lastName string) {
	created := s.repo.Upsert(userID, UpdateInfo{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
	if created {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"username": username,
		}).Info("Новый участник зарегистрирован")
	}
}

// IsMember проверяет, видел ли бот пользователя.
func (s *Service) IsMember(userID int64) bool {
	return s.repo.Exists(userID)
}

// GetByUserID возвращает участника по Telegram user ID.
func (s *Service) GetByUserID(userID int64) (*Member, error) {
	return s.repo.GetByUserID(userID)
}

// GetByUsername возвращает участника по @username (с @ или без).
func (s *Service) GetByUsername(username string) (*Member, error) {
	return s.repo.GetByUsername(strings.TrimPrefix(username, "@"))
}

// Resolve находит пользователя по «@username» или числовому ID.
// Числовой ID принимается даже для незнакомых боту пользователей.
func (s *Service) Resolve(ref string) (int64, error) {
	if !strings.HasPrefix(ref, "@") {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			return id, nil
		}
	}
	m, err := s.GetByUsername(ref)
	if err != nil {
		return 0, err
	}
	return m.UserID, nil
}

// DisplayName возвращает имя для сообщений; незнакомый — «id<число>».
func (s *Service) DisplayName(userID int64) string {
	m, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "id" + strconv.FormatInt(userID, 10)
	}
	return m.DisplayName()
}

// Count — сколько участников в справочнике.
func (s *Service) Count() int {
	return s.repo.Count()
}
