// Package economy — ledger.go хранит балансы в памяти процесса.
// Каждая запись счёта защищена собственным мьютексом: операции над
// разными пользователями не блокируют друг друга.
package economy

import (
	"fmt"
	"math"
	"sync"
	"time"

	"serotonyl.ru/vending-bot/internal/common"
)

type account struct {
	mu      sync.Mutex
	balance int64
	earned  int64
	spent   int64
	journal []Transaction // последние движения, не больше journalSize
}

// Ledger — реестр балансов. Записи только создаются и никогда не удаляются.
type Ledger struct {
	mu          sync.RWMutex
	accounts    map[string]*account
	journalSize int
	now         func() time.Time
}

// NewLedger создаёт пустой реестр.
// journalSize — сколько последних движений хранить на пользователя.
func NewLedger(journalSize int) *Ledger {
	if journalSize <= 0 {
		journalSize = 50
	}
	return &Ledger{
		accounts:    make(map[string]*account),
		journalSize: journalSize,
		now:         time.Now,
	}
}

func (l *Ledger) lookup(userID string) *account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[userID]
}

func (l *Ledger) ensure(userID string) *account {
	if a := l.lookup(userID); a != nil {
		return a
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[userID]
	if !ok {
		a = &account{}
		l.accounts[userID] = a
	}
	return a
}

// AccountTx — изменения счёта внутри Transact.
// Изменения применяются, только если функция транзакции вернула nil.
type AccountTx struct {
	userID  string
	balance int64
	earned  int64
	spent   int64
	entries []Transaction
	now     time.Time
}

// UserID возвращает владельца счёта.
func (tx *AccountTx) UserID() string { return tx.userID }

// Balance возвращает баланс с учётом уже подготовленных изменений.
func (tx *AccountTx) Balance() int64 { return tx.balance }

// Credit готовит начисление amount монет.
func (tx *AccountTx) Credit(amount int64, txType, description string) error {
	if amount <= 0 {
		return fmt.Errorf("начисление %d: %w", amount, common.ErrInvalidAmount)
	}
	if tx.balance > math.MaxInt64-amount {
		return fmt.Errorf("начисление %d переполняет баланс: %w", amount, common.ErrInvalidAmount)
	}
	tx.balance += amount
	tx.earned += amount
	tx.record(amount, txType, description)
	return nil
}

// Debit готовит списание amount монет. Баланс не может стать отрицательным.
func (tx *AccountTx) Debit(amount int64, txType, description string) error {
	if amount <= 0 {
		return fmt.Errorf("списание %d: %w", amount, common.ErrInvalidAmount)
	}
	if tx.balance < amount {
		return fmt.Errorf("нужно %d, есть %d: %w", amount, tx.balance, common.ErrInsufficientFunds)
	}
	tx.balance -= amount
	tx.spent += amount
	tx.record(-amount, txType, description)
	return nil
}

func (tx *AccountTx) record(amount int64, txType, description string) {
	tx.entries = append(tx.entries, Transaction{
		UserID:          tx.userID,
		Amount:          amount,
		BalanceAfter:    tx.balance,
		TransactionType: txType,
		Description:     description,
		CreatedAt:       tx.now,
	})
}

// Transact выполняет fn под блокировкой счёта userID.
// Если fn вернула ошибку — счёт не меняется, ошибка возвращается как есть.
// Вложенные блокировки (каталог) берутся только внутри fn: порядок всегда
// «сначала счёт, потом товар».
func (l *Ledger) Transact(userID string, fn func(tx *AccountTx) error) error {
	a := l.ensure(userID)

	a.mu.Lock()
	defer a.mu.Unlock()

	tx := &AccountTx{
		userID:  userID,
		balance: a.balance,
		earned:  a.earned,
		spent:   a.spent,
		now:     l.now(),
	}
	if err := fn(tx); err != nil {
		return err
	}

	a.balance = tx.balance
	a.earned = tx.earned
	a.spent = tx.spent
	a.journal = append(a.journal, tx.entries...)
	if extra := len(a.journal) - l.journalSize; extra > 0 {
		a.journal = append([]Transaction(nil), a.journal[extra:]...)
	}
	return nil
}

// GetBalance возвращает баланс пользователя. Неизвестный пользователь — 0.
func (l *Ledger) GetBalance(userID string) int64 {
	a := l.lookup(userID)
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Credit начисляет amount монет и возвращает новый баланс.
func (l *Ledger) Credit(userID string, amount int64, description string) (int64, error) {
	var newBalance int64
	err := l.Transact(userID, func(tx *AccountTx) error {
		if err := tx.Credit(amount, TxTypeAdminGive, description); err != nil {
			return err
		}
		newBalance = tx.Balance()
		return nil
	})
	if err != nil {
		return l.GetBalance(userID), err
	}
	return newBalance, nil
}

// Debit списывает amount монет и возвращает новый баланс.
// Либо баланс уменьшается ровно на amount, либо не меняется.
func (l *Ledger) Debit(userID string, amount int64, description string) (int64, error) {
	var newBalance int64
	err := l.Transact(userID, func(tx *AccountTx) error {
		if err := tx.Debit(amount, TxTypeDebit, description); err != nil {
			return err
		}
		newBalance = tx.Balance()
		return nil
	})
	if err != nil {
		return l.GetBalance(userID), err
	}
	return newBalance, nil
}

// Stats возвращает снимок счёта.
func (l *Ledger) Stats(userID string) Balance {
	out := Balance{UserID: userID}
	a := l.lookup(userID)
	if a == nil {
		return out
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out.Balance = a.balance
	out.TotalEarned = a.earned
	out.TotalSpent = a.spent
	return out
}

// Transactions возвращает последние limit движений, новые первыми.
func (l *Ledger) Transactions(userID string, limit int) []Transaction {
	a := l.lookup(userID)
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.journal)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, a.journal[i])
	}
	return out
}

// Accounts возвращает количество заведённых счетов.
func (l *Ledger) Accounts() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}
