package models

import "time"

// Camera is a surveillance device keyed by the video platform's external id.
// StoreID may point at a store row that has not been ingested yet.
type Camera struct {
	CameraID    int64     `gorm:"column:camera_id;primaryKey" json:"camera_id"`
	CameraName  string    `gorm:"column:camera_name" json:"camera_name"`
	CameraModel string    `gorm:"column:camera_model" json:"camera_model"`
	StoreID     int64     `gorm:"column:store_id" json:"store_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Camera) TableName() string {
	return "cameras"
}
