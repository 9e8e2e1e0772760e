package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReservationEvent is a persisted audit entry for a reservation change.
type ReservationEvent struct {
	gorm.Model
	EventID       string         `json:"event_id" gorm:"column:event_id;type:varchar(36);uniqueIndex"`
	EventType     string         `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	ReservationID string         `json:"reservation_id" gorm:"column:reservation_id;type:varchar(36);index"`
	Doctor        string         `json:"doctor" gorm:"column:doctor;type:varchar(100);index"`
	Message       string         `json:"message" gorm:"column:message;type:text"`
	Details       datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
