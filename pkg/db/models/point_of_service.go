package models

import "time"

// PointOfService is a till/register tied to one store and one camera.
type PointOfService struct {
	POSID     int64     `gorm:"column:pos_id;primaryKey" json:"pos_id"`
	POSName   string    `gorm:"column:pos_name" json:"pos_name"`
	StoreID   int64     `gorm:"column:store_id" json:"store_id"`
	CameraID  int64     `gorm:"column:camera_id" json:"camera_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PointOfService) TableName() string {
	return "point_of_service"
}
