package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// ItemDTO is a line item on a transaction in API responses.
type ItemDTO struct {
	ItemName  string          `json:"item_name"`
	ItemPrice decimal.Decimal `json:"item_price"`
}

// TransactionDTO exposes a persisted transaction with its items.
type TransactionDTO struct {
	TransactionID     int64     `json:"transaction_id"`
	TransactionNumber string    `json:"transaction_number"`
	TransactionDate   time.Time `json:"transaction_date"`
	POSID             int64     `json:"pos_id"`
	ThumbnailLink     *string   `json:"thumbnail_link,omitempty"`
	FootageLink       *string   `json:"footage_link,omitempty"`
	Items             []ItemDTO `json:"items"`
}

// SalesSummaryDTO reports a store's sales total.
type SalesSummaryDTO struct {
	StoreID    int64           `json:"store_id"`
	SalesTotal decimal.Decimal `json:"sales_total"`
}

// StoreDTO exposes a persisted store.
type StoreDTO struct {
	StoreID      int64  `json:"store_id"`
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StorePhone   string `json:"store_phone"`
	StoreEmail   string `json:"store_email"`
}

// StoreDTOFromModel converts a store row to its API shape.
func StoreDTOFromModel(store models.Store) StoreDTO {
	return StoreDTO{
		StoreID:      store.StoreID,
		StoreName:    store.StoreName,
		StoreAddress: store.StoreAddress,
		StorePhone:   store.StorePhone,
		StoreEmail:   store.StoreEmail,
	}
}

func transactionDTOFromModel(txn models.Transaction, items []models.TransactionItem) TransactionDTO {
	dto := TransactionDTO{
		TransactionID:     txn.TransactionID,
		TransactionNumber: txn.TransactionNumber,
		TransactionDate:   txn.TransactionDate,
		POSID:             txn.POSID,
		ThumbnailLink:     txn.ThumbnailLink,
		FootageLink:       txn.FootageLink,
		Items:             make([]ItemDTO, 0, len(items)),
	}
	for _, item := range items {
		dto.Items = append(dto.Items, ItemDTO{
			ItemName:  item.ItemName,
			ItemPrice: item.ItemPrice,
		})
	}
	return dto
}
