package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionItem records a resolved inventory item on a transaction.
// Uniqueness is enforced on (transaction_id, item_name): a transaction may not
// record the same named item twice.
type TransactionItem struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TransactionID int64           `gorm:"column:transaction_id;uniqueIndex:idx_transaction_item_name" json:"transaction_id"`
	ItemName      string          `gorm:"column:item_name;uniqueIndex:idx_transaction_item_name" json:"item_name"`
	ItemPrice     decimal.Decimal `gorm:"column:item_price;type:numeric(12,2)" json:"item_price"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TransactionItem) TableName() string {
	return "transaction_items"
}
