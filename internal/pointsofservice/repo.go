package pointsofservice

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// Repository handles point-of-service persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to point-of-service operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a till by its external id.
func (r *Repository) FindByID(ctx context.Context, posID int64) (*models.PointOfService, error) {
	var pos models.PointOfService
	if err := r.db.WithContext(ctx).First(&pos, "pos_id = ?", posID).Error; err != nil {
		return nil, err
	}
	return &pos, nil
}

// CreateIfAbsentTx inserts the till unless a row with the same id already
// exists. It reports whether a new row was written.
func (r *Repository) CreateIfAbsentTx(tx *gorm.DB, pos *models.PointOfService) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(pos)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
