package models

import "time"

// EventTypeRegistration is the durable cache of a Helix event-type
// registration, keyed by name so the remote call happens at most once per
// distinct event type across process restarts.
type EventTypeRegistration struct {
	EventTypeName string    `gorm:"column:event_type_name;primaryKey" json:"event_type_name"`
	EventTypeUID  string    `gorm:"column:event_type_uid;uniqueIndex" json:"event_type_uid"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EventTypeRegistration) TableName() string {
	return "event_type_registrations"
}
