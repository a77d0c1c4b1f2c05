// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// UserKey переводит Telegram user ID в строковый ключ хранилищ.
func UserKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// pluralize выбирает форму слова для числа n по правилам русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralize(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeCoins возвращает правильную форму слова «монета» для числа n.
//
// Примеры:
//
//	PluralizeCoins(1)  → "монета"
//	PluralizeCoins(3)  → "монеты"
//	PluralizeCoins(5)  → "монет"
//	PluralizeCoins(11) → "монет"
//	PluralizeCoins(21) → "монета"
func PluralizeCoins(n int64) string {
	return pluralize(n, "монета", "монеты", "монет")
}

// PluralizeMessages возвращает правильную форму слова «сообщение».
func PluralizeMessages(n int) string {
	return pluralize(int64(n), "сообщение", "сообщения", "сообщений")
}

// PluralizePieces возвращает правильную форму слова «штука».
func PluralizePieces(n int64) string {
	return pluralize(n, "штука", "штуки", "штук")
}

// FormatBalance форматирует баланс в читабельную строку.
// Пример: FormatBalance(150) → "150 монет"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(balance), PluralizeCoins(balance))
}

var (
	locMu    sync.RWMutex
	location = time.FixedZone("MSK", 3*60*60)
)

// SetTimezone задаёт часовой пояс для отображения дат.
// Если зону не удалось загрузить — остаётся UTC+3.
func SetTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("часовой пояс %q: %w", name, err)
	}
	locMu.Lock()
	location = loc
	locMu.Unlock()
	return nil
}

// Location возвращает часовой пояс бота.
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return location
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
func FormatDateTime(t time.Time) string {
	return t.In(Location()).Format("02.01.2006 15:04")
}

// FormatDate форматирует только дату: "02.01.2006".
func FormatDate(t time.Time) string {
	return t.In(Location()).Format("02.01.2006")
}
