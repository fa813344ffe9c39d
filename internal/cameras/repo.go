package cameras

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// Repository handles camera persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to camera operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a camera by its external id.
func (r *Repository) FindByID(ctx context.Context, cameraID int64) (*models.Camera, error) {
	var camera models.Camera
	if err := r.db.WithContext(ctx).First(&camera, "camera_id = ?", cameraID).Error; err != nil {
		return nil, err
	}
	return &camera, nil
}

// CreateIfAbsentTx inserts the camera unless a row with the same id already
// exists. It reports whether a new row was written.
func (r *Repository) CreateIfAbsentTx(tx *gorm.DB, camera *models.Camera) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(camera)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
