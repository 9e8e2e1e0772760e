package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerRow is one active part as the capacity ledger needs it.
type LedgerRow struct {
	PublicID string
	Doctor   string
	Date     string
	Time     string
	Units    int
}

// CalendarEntry is a part joined with its reservation for the day view.
type CalendarEntry struct {
	ReservationID  string   `json:"reservation_id" gorm:"column:public_id"`
	PatientID      uint     `json:"patient_id" gorm:"column:patient_id"`
	Doctor         string   `json:"doctor" gorm:"column:doctor"`
	Date           string   `json:"date" gorm:"column:date"`
	Time           string   `json:"time" gorm:"column:time"`
	Units          int      `json:"units" gorm:"column:units"`
	IsContinuation bool     `json:"is_continuation" gorm:"column:is_continuation"`
	VisitType      string   `json:"visit_type" gorm:"column:visit_type"`
	Memo           string   `json:"memo" gorm:"column:memo"`
	PatientName    string   `json:"patient_name" gorm:"column:patient_name"`
	Items          []string `json:"items" gorm:"-"`
	RawItems       []byte   `json:"-" gorm:"column:items"`
}

func activeParts(db *gorm.DB) *gorm.DB {
	return db.Table("reservation_parts").
		Joins("JOIN reservations ON reservations.id = reservation_parts.reservation_id AND reservations.deleted_at IS NULL").
		Where("reservation_parts.deleted_at IS NULL").
		Where("reservations.canceled = ?", false)
}

// ActivePartsFrom returns the live parts of doctor dated on or after date,
// in calendar order.
func ActivePartsFrom(db *gorm.DB, doctor, date string) ([]LedgerRow, error) {
	var rows []LedgerRow
	err := activeParts(db).
		Select("reservations.public_id, reservation_parts.doctor, reservation_parts.date, reservation_parts.time, reservation_parts.units").
		Where("reservation_parts.doctor = ? AND reservation_parts.date >= ?", doctor, date).
		Order("reservation_parts.date ASC").Order("reservation_parts.time ASC").
		Scan(&rows).Error
	return rows, err
}

// ListDay returns the calendar entries of date, optionally for one doctor.
func ListDay(db *gorm.DB, date, doctor string) ([]CalendarEntry, error) {
	var entries []CalendarEntry
	query := activeParts(db).
		Select("reservations.public_id, reservations.patient_id, reservation_parts.doctor, reservation_parts.date, " +
			"reservation_parts.time, reservation_parts.units, reservation_parts.is_continuation, " +
			"reservations.visit_type, reservations.memo, reservations.items, patients.full_name AS patient_name").
		Joins("LEFT JOIN patients ON patients.id = reservations.patient_id").
		Where("reservation_parts.date = ?", date)
	if doctor != "" {
		query = query.Where("reservation_parts.doctor = ?", doctor)
	}
	err := query.Order("reservation_parts.doctor ASC").Order("reservation_parts.time ASC").Order("reservation_parts.seq ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Items = Reservation{Items: datatypes.JSON(entries[i].RawItems)}.ItemNames()
	}
	return entries, nil
}

// FindReservation loads a reservation and its parts by public id.
func FindReservation(db *gorm.DB, publicID string) (Reservation, error) {
	var res Reservation
	err := db.Preload("Parts", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("seq ASC")
	}).Where("public_id = ?", publicID).First(&res).Error
	return res, err
}

// CreateReservation inserts the reservation and its parts.
func CreateReservation(tx *gorm.DB, res *Reservation) error {
	return tx.Create(res).Error
}

// ReplaceReservation overwrites the reservation row and swaps its parts for
// res.Parts. Old parts are removed outright; they carry no history.
func ReplaceReservation(tx *gorm.DB, res *Reservation) error {
	if err := tx.Unscoped().Where("reservation_id = ?", res.ID).Delete(&ReservationPart{}).Error; err != nil {
		return err
	}
	parts := res.Parts
	res.Parts = nil
	if err := tx.Save(res).Error; err != nil {
		return err
	}
	for i := range parts {
		parts[i].ID = 0
		parts[i].ReservationID = res.ID
	}
	if len(parts) > 0 {
		if err := tx.Create(&parts).Error; err != nil {
			return err
		}
	}
	res.Parts = parts
	return nil
}

// MarkCanceled flags the reservation canceled. Its parts stay for display
// and stop counting toward capacity.
func MarkCanceled(tx *gorm.DB, res *Reservation) error {
	res.Canceled = true
	return tx.Model(res).Update("canceled", true).Error
}

// PatientReservations returns a patient's reservations with their parts,
// newest start first. Canceled ones are included only when asked for.
func PatientReservations(db *gorm.DB, patientID uint, includeCanceled bool) ([]Reservation, error) {
	var out []Reservation
	query := db.Preload("Parts", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("seq ASC")
	}).Where("patient_id = ?", patientID)
	if !includeCanceled {
		query = query.Where("canceled = ?", false)
	}
	err := query.Order("start_date DESC").Order("start_time DESC").Find(&out).Error
	return out, err
}
