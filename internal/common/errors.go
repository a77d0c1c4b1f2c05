// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Обработчики сравнивают их через errors.Is и отправляют
// пользователю понятные сообщения.
package common

import "errors"

// Ошибки торгового автомата и монет
var (
	// ErrInvalidParameters — некорректные параметры товара (цена, остаток, коды)
	ErrInvalidParameters = errors.New("некорректные параметры")
	// ErrDuplicateItem — товар с таким названием уже есть
	ErrDuplicateItem = errors.New("товар уже существует")
	// ErrItemNotFound — товар не найден (или удалён во время покупки)
	ErrItemNotFound = errors.New("товар не найден")
	// ErrOutOfStock — товар закончился
	ErrOutOfStock = errors.New("товар закончился")
	// ErrInsufficientFunds — недостаточно монет на счёте
	ErrInsufficientFunds = errors.New("недостаточно монет на счёте")
	// ErrInvalidAmount — сумма должна быть положительной
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
)

// Ошибки тикетов и достижений
var (
	// ErrTicketNotFound — тикет не найден
	ErrTicketNotFound = errors.New("тикет не найден")
	// ErrTicketClosed — тикет уже закрыт
	ErrTicketClosed = errors.New("тикет уже закрыт")
	// ErrNotTicketOwner — закрыть или дополнить тикет может только автор или поддержка
	ErrNotTicketOwner = errors.New("нет прав на этот тикет")
	// ErrEmptyText — пустой текст
	ErrEmptyText = errors.New("текст не может быть пустым")
	// ErrTextTooLong — текст слишком длинный
	ErrTextTooLong = errors.New("текст слишком длинный")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrUserNotFound — пользователь не найден в справочнике
	ErrUserNotFound = errors.New("пользователь не найден")
)

// ErrNotVerified — покупки доступны только верифицированным участникам
var ErrNotVerified = errors.New("сначала пройдите верификацию")

// Ошибки модерации
var (
	// ErrConfirmationNotFound — подтверждение не найдено или истекло
	ErrConfirmationNotFound = errors.New("подтверждение не найдено или истекло")
	// ErrNotInitiator — подтвердить действие может только его инициатор
	ErrNotInitiator = errors.New("это не ваше подтверждение")
)
