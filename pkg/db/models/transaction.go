package models

import "time"

// Transaction is a persisted sales transaction. The timestamp is stored as an
// absolute UTC instant; the footage links are the only fields mutated after
// insert, and only once both resolved successfully.
type Transaction struct {
	TransactionID     int64     `gorm:"column:transaction_id;primaryKey" json:"transaction_id"`
	TransactionNumber string    `gorm:"column:transaction_number" json:"transaction_number"`
	TransactionDate   time.Time `gorm:"column:transaction_date" json:"transaction_date"`
	POSID             int64     `gorm:"column:pos_id" json:"pos_id"`
	ThumbnailLink     *string   `gorm:"column:thumbnail_link" json:"thumbnail_link,omitempty"`
	FootageLink       *string   `gorm:"column:footage_link" json:"footage_link,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
