// Package vending реализует торговый автомат: каталог товаров с очередью
// серийных кодов, движок покупки и витрину в чате.
// models.go описывает структуры каталога и чека.
package vending

import "time"

// MaxNameBytes — максимальная длина названия товара в байтах.
// Название целиком уходит в callback_data кнопки «Купить» (лимит Telegram — 64 байта).
const MaxNameBytes = 60

// Listing — публичный снимок товара для витрины.
// Сами коды наружу не отдаются, только их количество.
type Listing struct {
	Name           string
	Price          int64
	Stock          int64
	AvailableCodes int
}

// ItemUpdate — частичное изменение товара. nil-поля не трогаются.
// ReplaceCodes=true заменяет всю очередь кодов на Codes (в том числе пустую).
type ItemUpdate struct {
	Price        *int64
	Stock        *int64
	Codes        []string
	ReplaceCodes bool
}

// Reservation — результат резервирования одной единицы товара.
type Reservation struct {
	Price   int64  // Цена на момент резервирования
	Code    string // Серийный код (если очередь была не пуста)
	HasCode bool
}

// Receipt — чек успешной покупки. Не хранится, только возвращается.
type Receipt struct {
	ID               string
	Buyer            string
	ItemName         string
	PricePaid        int64
	RemainingBalance int64
	SerialCode       string
	HasCode          bool
	PurchasedAt      time.Time
}

// Outcome — результат покупки вместе с предупреждением доставки.
// Warning не отменяет покупку: списание и резерв уже зафиксированы.
// Warning объединяет ReceiptWarning и CatalogWarning.
type Outcome struct {
	Receipt        Receipt
	Warning        error
	ReceiptWarning error // чек не доставлен в личку
	CatalogWarning error // витрина не обновлена
}
