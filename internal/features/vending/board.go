// Package vending — board.go отрисовывает витрину и чеки.
// Здесь только форматирование, без обращений к Telegram API.
package vending

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"serotonyl.ru/vending-bot/internal/common"
)

// BuyCallbackPrefix — префикс callback_data кнопки «Купить».
const BuyCallbackPrefix = "buy:"

// FormatCatalog возвращает текст витрины.
//
// Формат:
//
//	🏪 Торговый автомат
//
//	1. Potion — 10 монет (в наличии: 2 штуки)
func FormatCatalog(items []Listing) string {
	if len(items) == 0 {
		return "🏪 Торговый автомат\n\nВитрина пуста"
	}

	var sb strings.Builder
	sb.WriteString("🏪 Торговый автомат\n\n")
	for i, it := range items {
		stock := "нет в наличии"
		if it.Stock > 0 {
			stock = fmt.Sprintf("в наличии: %d %s", it.Stock, common.PluralizePieces(it.Stock))
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %s (%s)\n", i+1, it.Name, common.FormatBalance(it.Price), stock))
	}
	sb.WriteString("\nКупить: кнопка ниже или !купить <номер>")
	return sb.String()
}

// FormatAdminCatalog — витрина для админки: с количеством кодов.
func FormatAdminCatalog(items []Listing) string {
	if len(items) == 0 {
		return "📦 Каталог пуст"
	}
	var sb strings.Builder
	sb.WriteString("📦 Каталог:\n\n")
	for i, it := range items {
		sb.WriteString(fmt.Sprintf("%d. %s | цена %d | остаток %d | кодов %d\n",
			i+1, it.Name, it.Price, it.Stock, it.AvailableCodes))
	}
	return sb.String()
}

// CatalogKeyboard строит кнопки «Купить» для товаров в наличии.
// Пустая клавиатура возвращается как nil.
func CatalogKeyboard(items []Listing) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		if it.Stock <= 0 {
			continue
		}
		label := fmt.Sprintf("🛒 %s — %d", common.Truncate(it.Name, 40), it.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, BuyCallbackPrefix+it.Name),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// ParseBuyCallback извлекает название товара из callback_data.
func ParseBuyCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, BuyCallbackPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(data, BuyCallbackPrefix)
	return name, name != ""
}

// FormatReceipt форматирует чек для личных сообщений.
func FormatReceipt(r Receipt) string {
	var sb strings.Builder
	sb.WriteString("🧾 Чек покупки\n\n")
	sb.WriteString(fmt.Sprintf("Товар: %s\n", r.ItemName))
	sb.WriteString(fmt.Sprintf("Цена: %s\n", common.FormatBalance(r.PricePaid)))
	sb.WriteString(fmt.Sprintf("Остаток на счёте: %s\n", common.FormatBalance(r.RemainingBalance)))
	sb.WriteString(fmt.Sprintf("Дата: %s\n", common.FormatDateTime(r.PurchasedAt)))
	if r.HasCode {
		sb.WriteString(fmt.Sprintf("\n🔑 Ваш код: %s\n", r.SerialCode))
	} else {
		sb.WriteString("\nКод не предусмотрен, товар выдаст администратор\n")
	}
	sb.WriteString(fmt.Sprintf("\nНомер чека: %s", r.ID))
	return sb.String()
}

// ResolveItem находит товар по точному названию, затем по номеру на витрине (с 1),
// затем по названию без учёта регистра.
func ResolveItem(items []Listing, arg string) (Listing, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Listing{}, false
	}
	for _, it := range items {
		if it.Name == arg {
			return it, true
		}
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1], true
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, arg) {
			return it, true
		}
	}
	return Listing{}, false
}
