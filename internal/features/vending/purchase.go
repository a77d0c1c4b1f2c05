// Package vending — purchase.go проводит одну покупку от начала до конца.
package vending

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/features/economy"
)

// Engine связывает реестр балансов и каталог в одну транзакцию покупки.
type Engine struct {
	ledger  *economy.Ledger
	catalog *Catalog
	now     func() time.Time
}

// NewEngine создаёт движок покупок.
func NewEngine(ledger *economy.Ledger, catalog *Catalog) *Engine {
	return &Engine{ledger: ledger, catalog: catalog, now: time.Now}
}

// Purchase покупает одну единицу товара itemName для userID.
//
// Порядок проверок: товар существует → есть остаток → хватает монет.
// Списание и резерв происходят под блокировками счёта и товара
// (именно в этом порядке), цена и остаток читаются уже под блокировкой.
// При любой ошибке ни баланс, ни остаток не меняются.
func (e *Engine) Purchase(userID, itemName string) (*Receipt, error) {
	var receipt *Receipt

	err := e.ledger.Transact(userID, func(acct *economy.AccountTx) error {
		return e.catalog.Transact(itemName, func(it *ItemTx) error {
			price := it.Price()
			if it.Stock() <= 0 {
				return fmt.Errorf("%q: %w", itemName, common.ErrOutOfStock)
			}
			if acct.Balance() < price {
				return fmt.Errorf("%q стоит %d, на счёте %d: %w",
					itemName, price, acct.Balance(), common.ErrInsufficientFunds)
			}

			res, err := it.Reserve()
			if err != nil {
				return err
			}
			if err := acct.Debit(price, economy.TxTypePurchase, "Покупка: "+itemName); err != nil {
				return err
			}

			receipt = &Receipt{
				ID:               uuid.NewString(),
				Buyer:            userID,
				ItemName:         itemName,
				PricePaid:        res.Price,
				RemainingBalance: acct.Balance(),
				SerialCode:       res.Code,
				HasCode:          res.HasCode,
				PurchasedAt:      e.now(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
