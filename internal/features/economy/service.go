// Package economy — service.go содержит бизнес-логику экономики поверх Ledger:
// выдачу монет админом, получение баланса и истории движений.
package economy

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
)

// Service управляет экономикой бота (монеты).
type Service struct {
	ledger *Ledger
}

// NewService создаёт новый сервис экономики.
func NewService(ledger *Ledger) *Service {
	return &Service{ledger: ledger}
}

// Ledger возвращает реестр балансов (нужен движку покупок).
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(userID int64) int64 {
	return s.ledger.GetBalance(common.UserKey(userID))
}

// Stats возвращает баланс вместе с суммами начислений и трат.
func (s *Service) Stats(userID int64) Balance {
	return s.ledger.Stats(common.UserKey(userID))
}

// GiveCoins начисляет монеты от имени администратора.
func (s *Service) GiveCoins(adminID, userID int64, amount int64) (int64, error) {
	description := fmt.Sprintf("Выдано администратором: %s", common.FormatCoinsAmount(amount))
	newBalance, err := s.ledger.Credit(common.UserKey(userID), amount, description)
	if err != nil {
		return newBalance, err
	}

	log.WithFields(log.Fields{
		"admin_id":    adminID,
		"user_id":     userID,
		"amount":      amount,
		"new_balance": newBalance,
	}).Info("Монеты выданы")
	return newBalance, nil
}

// GetTransactionHistory возвращает форматированную историю движений.
// Последние 10 записей, новые сверху.
func (s *Service) GetTransactionHistory(userID int64) string {
	transactions := s.ledger.Transactions(common.UserKey(userID), 10)
	if len(transactions) == 0 {
		return "📋 У вас пока нет движений по счёту"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d операций:\n\n", len(transactions)))
	for i, tx := range transactions {
		sb.WriteString(fmt.Sprintf("%d. %s | %s | %s\n",
			i+1,
			common.FormatDateTime(tx.CreatedAt),
			common.FormatCoinsAmount(tx.Amount),
			tx.Description,
		))
	}
	return sb.String()
}
