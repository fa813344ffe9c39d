package stores

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a store by its external id.
func (r *Repository) FindByID(ctx context.Context, storeID int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "store_id = ?", storeID).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// ListAll returns every known store ordered by id.
func (r *Repository) ListAll(ctx context.Context) ([]models.Store, error) {
	var result []models.Store
	if err := r.db.WithContext(ctx).Order("store_id").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// CreateIfAbsentTx inserts the store unless a row with the same id already
// exists. It reports whether a new row was written.
func (r *Repository) CreateIfAbsentTx(tx *gorm.DB, store *models.Store) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(store)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
