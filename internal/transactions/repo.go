package transactions

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// Repository handles transaction and transaction item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a transaction by its external id.
func (r *Repository) FindByID(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListAll returns every persisted transaction ordered by date.
func (r *Repository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	var result []models.Transaction
	if err := r.db.WithContext(ctx).
		Order("transaction_date, transaction_id").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ListByStore returns the store's transactions by joining tills to their
// owning store.
func (r *Repository) ListByStore(ctx context.Context, storeID int64) ([]models.Transaction, error) {
	var result []models.Transaction
	if err := r.db.WithContext(ctx).
		Joins("JOIN point_of_service ON point_of_service.pos_id = transactions.pos_id").
		Where("point_of_service.store_id = ?", storeID).
		Order("transactions.transaction_date, transactions.transaction_id").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ItemsForTransactions loads the items belonging to the provided transaction
// ids.
func (r *Repository) ItemsForTransactions(ctx context.Context, transactionIDs []int64) ([]models.TransactionItem, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}
	var items []models.TransactionItem
	if err := r.db.WithContext(ctx).
		Where("transaction_id IN ?", transactionIDs).
		Order("transaction_id, item_name").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SalesTotal sums the item prices across the store's transactions.
func (r *Repository) SalesTotal(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.TransactionItem{}).
		Select("SUM(transaction_items.item_price)").
		Joins("JOIN transactions ON transactions.transaction_id = transaction_items.transaction_id").
		Joins("JOIN point_of_service ON point_of_service.pos_id = transactions.pos_id").
		Where("point_of_service.store_id = ?", storeID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CreateIfAbsentTx inserts the transaction unless a row with the same id
// already exists. It reports whether a new row was written.
func (r *Repository) CreateIfAbsentTx(tx *gorm.DB, txn *models.Transaction) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(txn)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateItemIfAbsentTx inserts the item unless the transaction already records
// an item with the same name. It reports whether a new row was written.
func (r *Repository) CreateItemIfAbsentTx(tx *gorm.DB, item *models.TransactionItem) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateLinks records the footage links on a transaction. Links are written
// once: rows that already carry a thumbnail are left untouched.
func (r *Repository) UpdateLinks(ctx context.Context, transactionID int64, thumbnailLink, footageLink string) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("transaction_id = ? AND thumbnail_link IS NULL", transactionID).
		Updates(map[string]any{
			"thumbnail_link": thumbnailLink,
			"footage_link":   footageLink,
		}).Error
}
