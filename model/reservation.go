package model

import (
	"encoding/json"

	"github.com/ariebrainware/clinic-reservation/slot"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reservation is one booking on a doctor's calendar. Its capacity lives in
// the parts; the reservation row only describes what was booked.
// @Description Reservation information
type Reservation struct {
	gorm.Model
	PublicID      string            `json:"id" gorm:"column:public_id;type:varchar(36);uniqueIndex;not null" example:"9f1c2b9e-3c1a-4f7e-8a6d-2b1d4c5e6f70"`
	PatientID     uint              `json:"patient_id" gorm:"column:patient_id;index" example:"1"`
	Doctor        string            `json:"doctor" gorm:"column:doctor;type:varchar(100);index;not null" example:"dr-kim"`
	Items         datatypes.JSON    `json:"items" gorm:"column:items;type:json" swaggertype:"array,string" example:"acupuncture,chuna"`
	VisitType     string            `json:"visit_type" gorm:"column:visit_type;type:varchar(64)" example:"repeat"`
	Memo          string            `json:"memo" gorm:"column:memo;type:text"`
	RequiredUnits int               `json:"required_units" gorm:"column:required_units;not null" example:"2"`
	Canceled      bool              `json:"canceled" gorm:"column:canceled;default:false;index"`
	StartDate     string            `json:"start_date" gorm:"column:start_date;type:varchar(10);index" example:"2025-01-15"`
	StartTime     string            `json:"start_time" gorm:"column:start_time;type:varchar(5)" example:"10:00"`
	Parts         []ReservationPart `json:"parts" gorm:"foreignKey:ReservationID"`
}

// ReservationPart is the share of a reservation held in one bucket.
type ReservationPart struct {
	gorm.Model
	ReservationID  uint   `json:"reservation_id" gorm:"column:reservation_id;index;not null"`
	Doctor         string `json:"doctor" gorm:"column:doctor;type:varchar(100);index:idx_part_doctor_date;not null"`
	Date           string `json:"date" gorm:"column:date;type:varchar(10);index:idx_part_doctor_date;not null" example:"2025-01-15"`
	Time           string `json:"time" gorm:"column:time;type:varchar(5);not null" example:"10:30"`
	Units          int    `json:"units" gorm:"column:units;not null" example:"2"`
	IsContinuation bool   `json:"is_continuation" gorm:"column:is_continuation"`
	Seq            int    `json:"seq" gorm:"column:seq"`
}

// ItemNames decodes the stored item list.
func (r Reservation) ItemNames() []string {
	var items []string
	if len(r.Items) == 0 {
		return items
	}
	if err := json.Unmarshal(r.Items, &items); err != nil {
		// older rows stored the items as free text
		var raw string
		if json.Unmarshal(r.Items, &raw) == nil {
			return slot.ParseItems(raw)
		}
		return slot.ParseItems(string(r.Items))
	}
	return items
}

// Record converts the row and its loaded parts to the engine's record.
func (r Reservation) Record() slot.Record {
	rec := slot.Record{
		ID:            r.PublicID,
		PatientID:     r.PatientID,
		Doctor:        r.Doctor,
		Items:         r.ItemNames(),
		VisitType:     r.VisitType,
		Memo:          r.Memo,
		RequiredUnits: r.RequiredUnits,
		Canceled:      r.Canceled,
		Parts:         make([]slot.Part, len(r.Parts)),
	}
	for i, p := range r.Parts {
		rec.Parts[i] = slot.Part{
			Bucket:         slot.Bucket{Date: p.Date, Time: p.Time},
			Units:          p.Units,
			IsContinuation: p.IsContinuation,
		}
	}
	return rec
}

// ApplyRecord copies rec onto the row. Parts are rebuilt in order; the
// caller persists them.
func (r *Reservation) ApplyRecord(rec slot.Record) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return err
	}
	r.PublicID = rec.ID
	r.PatientID = rec.PatientID
	r.Doctor = rec.Doctor
	r.Items = datatypes.JSON(items)
	r.VisitType = rec.VisitType
	r.Memo = rec.Memo
	r.RequiredUnits = rec.RequiredUnits
	r.Canceled = rec.Canceled
	r.Parts = make([]ReservationPart, len(rec.Parts))
	for i, p := range rec.Parts {
		r.Parts[i] = ReservationPart{
			ReservationID:  r.ID,
			Doctor:         rec.Doctor,
			Date:           p.Bucket.Date,
			Time:           p.Bucket.Time,
			Units:          p.Units,
			IsContinuation: p.IsContinuation,
			Seq:            i,
		}
	}
	if len(rec.Parts) > 0 {
		r.StartDate = rec.Parts[0].Bucket.Date
		r.StartTime = rec.Parts[0].Bucket.Time
	}
	return nil
}
