// Package admin реализует админ-панель с парольной аутентификацией.
// models.go описывает структуры сессий, попыток входа и состояний диалога.
package admin

import "time"

// AdminSession — активная сессия администратора.
type AdminSession struct {
	UserID          int64
	SessionToken    string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
	LastActivity    time.Time
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	UserID      int64
	AttemptTime time.Time
	Success     bool
}

// AdminState — состояние диалога с админом (конечный автомат).
// Админ-панель работает по шагам: выбор действия → выбор товара → ввод данных.
type AdminState struct {
	State     string      // Текущее состояние ("", "awaiting_password", "add_item_name", ...)
	Data      interface{} // Данные контекста (черновик товара, выбранный товар)
	ExpiresAt time.Time   // Когда состояние истекает (5 минут)
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
	StateAddItemName      = "add_item_name"     // Ждём название нового товара
	StateAddItemPrice     = "add_item_price"    // Ждём цену
	StateAddItemStock     = "add_item_stock"    // Ждём остаток
	StateCodesSelect      = "codes_select"      // Ждём выбор товара для кодов
	StateCodesMode        = "codes_mode"        // Ждём «добавить» или «заменить»
	StateCodesInput       = "codes_input"       // Ждём коды, по одному на строку
)

// itemDraft — черновик товара в диалоге добавления.
type itemDraft struct {
	Name  string
	Price int64
}

// codesDraft — загрузка кодов для выбранного товара.
type codesDraft struct {
	ItemName string
	Replace  bool
}
