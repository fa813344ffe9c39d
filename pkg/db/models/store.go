package models

import "time"

// Store mirrors a retail store record keyed by the backend's external id.
type Store struct {
	StoreID      int64     `gorm:"column:store_id;primaryKey" json:"store_id"`
	StoreName    string    `gorm:"column:store_name" json:"store_name"`
	StoreAddress string    `gorm:"column:store_address" json:"store_address"`
	StorePhone   string    `gorm:"column:store_phone" json:"store_phone"`
	StoreEmail   string    `gorm:"column:store_email" json:"store_email"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Store) TableName() string {
	return "stores"
}
