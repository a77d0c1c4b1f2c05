// Package economy управляет внутренней валютой бота — монетами.
// models.go описывает структуры для балансов и движений по счёту.
package economy

import "time"

// Balance — снимок счёта пользователя.
type Balance struct {
	UserID      string // Непрозрачный ID пользователя
	Balance     int64  // Текущий баланс (никогда не отрицательный)
	TotalEarned int64  // Сколько всего начислено
	TotalSpent  int64  // Сколько всего потрачено
}

// Transaction — одно движение монет по счёту.
// Amount положительный для начислений и отрицательный для списаний.
type Transaction struct {
	UserID          string
	Amount          int64
	BalanceAfter    int64
	TransactionType string
	Description     string
	CreatedAt       time.Time
}

// TransactionTypes — допустимые типы движений
const (
	TxTypeAdminGive = "admin_give" // Выдача админом
	TxTypePurchase  = "purchase"   // Покупка в автомате
	TxTypeDebit     = "debit"      // Прочие списания
)
