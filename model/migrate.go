package model

import "gorm.io/gorm"

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Patient{},
		&Doctor{},
		&TreatmentItem{},
		&Reservation{},
		&ReservationPart{},
		&ReservationEvent{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
