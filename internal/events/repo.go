package events

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db/models"
)

// Repository persists Helix event type registrations so the uid assigned by
// Verkada survives restarts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to registration operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByName loads a registration by event type name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.EventTypeRegistration, error) {
	var reg models.EventTypeRegistration
	if err := r.db.WithContext(ctx).First(&reg, "event_type_name = ?", name).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create records a registration. A concurrent insert of the same name is
// tolerated: the row already present wins.
func (r *Repository) Create(ctx context.Context, reg *models.EventTypeRegistration) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reg).Error
}
