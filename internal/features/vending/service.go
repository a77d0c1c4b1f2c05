// Package vending — service.go содержит операции автомата для команд бота:
// покупку с уведомлением и админское управление каталогом.
package vending

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/metrics"
)

// Notifier доставляет чек и обновляет витрину.
// Вызывается после фиксации покупки; его ошибки покупку не отменяют.
type Notifier interface {
	DeliverReceipt(ctx context.Context, receipt Receipt) error
	RefreshCatalog(ctx context.Context, items []Listing) error
}

// Service управляет торговым автоматом.
type Service struct {
	catalog  *Catalog
	engine   *Engine
	notifier Notifier
}

// NewService создаёт сервис автомата.
func NewService(catalog *Catalog, engine *Engine) *Service {
	return &Service{catalog: catalog, engine: engine}
}

// SetNotifier подключает доставку уведомлений (обработчик создаётся позже сервиса).
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// ListItems возвращает снимок каталога.
func (s *Service) ListItems() []Listing {
	return s.catalog.ListItems()
}

// Item возвращает один товар.
func (s *Service) Item(name string) (Listing, error) {
	return s.catalog.Item(name)
}

// Checkout покупает товар и уведомляет покупателя.
func (s *Service) Checkout(ctx context.Context, userID, itemName string) (*Outcome, error) {
	receipt, err := s.engine.Purchase(userID, itemName)
	if err != nil {
		metrics.Purchases.WithLabelValues(purchaseResult(err)).Inc()
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"item":    itemName,
		}).Debug("Покупка отклонена")
		return nil, err
	}

	metrics.Purchases.WithLabelValues("ok").Inc()
	metrics.CoinsSpent.Add(float64(receipt.PricePaid))
	log.WithFields(log.Fields{
		"receipt_id": receipt.ID,
		"user_id":    userID,
		"item":       itemName,
		"price":      receipt.PricePaid,
		"balance":    receipt.RemainingBalance,
		"with_code":  receipt.HasCode,
	}).Info("Покупка выполнена")

	outcome := &Outcome{Receipt: *receipt}
	if s.notifier == nil {
		return outcome, nil
	}

	if err := s.notifier.DeliverReceipt(ctx, *receipt); err != nil {
		metrics.NotifyFailures.WithLabelValues("receipt").Inc()
		outcome.ReceiptWarning = fmt.Errorf("чек не доставлен: %w", err)
	}
	if err := s.notifier.RefreshCatalog(ctx, s.catalog.ListItems()); err != nil {
		metrics.NotifyFailures.WithLabelValues("catalog").Inc()
		outcome.CatalogWarning = fmt.Errorf("витрина не обновлена: %w", err)
	}
	if outcome.ReceiptWarning != nil || outcome.CatalogWarning != nil {
		outcome.Warning = errors.Join(outcome.ReceiptWarning, outcome.CatalogWarning)
		log.WithError(outcome.Warning).WithField("receipt_id", receipt.ID).Warn("Покупка выполнена, уведомление не прошло")
	}
	return outcome, nil
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, common.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, common.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "error"
	}
}

// AddItem добавляет товар в каталог.
func (s *Service) AddItem(ctx context.Context, name string, price, stock int64) error {
	if err := s.catalog.AddItem(name, price, stock); err != nil {
		return err
	}
	log.WithFields(log.Fields{"item": name, "price": price, "stock": stock}).Info("Товар добавлен")
	s.refresh(ctx)
	return nil
}

// UpdateItem частично обновляет товар.
func (s *Service) UpdateItem(ctx context.Context, name string, upd ItemUpdate) error {
	if err := s.catalog.UpdateItem(name, upd); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"item":          name,
		"price_changed": upd.Price != nil,
		"stock_changed": upd.Stock != nil,
		"codes_replace": upd.ReplaceCodes,
	}).Info("Товар обновлён")
	s.refresh(ctx)
	return nil
}

// AppendCodes дозагружает коды товара.
func (s *Service) AppendCodes(ctx context.Context, name string, codes []string) error {
	if err := s.catalog.AppendCodes(name, codes); err != nil {
		return err
	}
	log.WithFields(log.Fields{"item": name, "count": len(codes)}).Info("Коды загружены")
	s.refresh(ctx)
	return nil
}

// RemoveItem удаляет товар.
func (s *Service) RemoveItem(ctx context.Context, name string) error {
	if err := s.catalog.RemoveItem(name); err != nil {
		return err
	}
	log.WithField("item", name).Info("Товар удалён")
	s.refresh(ctx)
	return nil
}

// refresh обновляет витрину после админских изменений.
func (s *Service) refresh(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RefreshCatalog(ctx, s.catalog.ListItems()); err != nil {
		metrics.NotifyFailures.WithLabelValues("catalog").Inc()
		log.WithError(err).Warn("Не удалось обновить витрину")
	}
}
