// Package queue publishes reservation events to RabbitMQ so downstream
// consumers (reminders, reporting) can follow calendar changes.
package queue

import (
	"time"

	"github.com/ariebrainware/clinic-reservation/slot"
)

// Event types double as queue names.
const (
	EventBooked   = "reservation.booked"
	EventEdited   = "reservation.edited"
	EventCanceled = "reservation.canceled"
)

// EventTypes lists every queue the publisher declares.
var EventTypes = []string{EventBooked, EventEdited, EventCanceled}

// ReservationEvent is the message body published after a commit.
type ReservationEvent struct {
	EventID       string      `json:"event_id"`
	Type          string      `json:"type"`
	ReservationID string      `json:"reservation_id"`
	PatientID     uint        `json:"patient_id"`
	Doctor        string      `json:"doctor"`
	Items         []string    `json:"items"`
	VisitType     string      `json:"visit_type,omitempty"`
	RequiredUnits int         `json:"required_units"`
	Parts         []slot.Part `json:"parts"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// NewReservationEvent builds an event from a committed record.
func NewReservationEvent(eventID, eventType string, rec slot.Record, at time.Time) ReservationEvent {
	return ReservationEvent{
		EventID:       eventID,
		Type:          eventType,
		ReservationID: rec.ID,
		PatientID:     rec.PatientID,
		Doctor:        rec.Doctor,
		Items:         rec.Items,
		VisitType:     rec.VisitType,
		RequiredUnits: rec.RequiredUnits,
		Parts:         rec.Parts,
		OccurredAt:    at.UTC(),
	}
}
