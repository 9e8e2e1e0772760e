package util

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReservationEventType names a change to the calendar.
type ReservationEventType string

const (
	EventReservationBooked   ReservationEventType = "RESERVATION_BOOKED"
	EventReservationEdited   ReservationEventType = "RESERVATION_EDITED"
	EventReservationCanceled ReservationEventType = "RESERVATION_CANCELED"
	EventCapacityViolation   ReservationEventType = "CAPACITY_VIOLATION"
	EventOverfullBucket      ReservationEventType = "OVERFULL_BUCKET"
	EventItemChanged         ReservationEventType = "TREATMENT_ITEM_CHANGED"
)

// ReservationEvent is an audit entry to be logged.
type ReservationEvent struct {
	EventType     ReservationEventType
	ReservationID string
	Doctor        string
	Message       string
	Details       map[string]interface{}
}

var auditLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "audit").Logger()
var auditDB *gorm.DB

// SetAuditLoggerDB sets the gorm DB the audit logger persists events to.
// Call this during startup after the DB is connected.
func SetAuditLoggerDB(db *gorm.DB) {
	auditDB = db
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogReservationEvent writes one audit line and, when a DB is set, a
// best-effort model.ReservationEvent row. It returns the event id.
func LogReservationEvent(event ReservationEvent) string {
	eventID := uuid.NewString()

	entry := auditLogger.Info()
	if event.EventType == EventCapacityViolation || event.EventType == EventOverfullBucket {
		entry = auditLogger.Error()
	}
	entry.
		Str("event_id", eventID).
		Str("event", sanitizeLogValue(string(event.EventType))).
		Str("reservation_id", sanitizeLogValue(event.ReservationID)).
		Str("doctor", sanitizeLogValue(event.Doctor)).
		Int("details_count", len(event.Details)).
		Msg(sanitizeLogValue(event.Message))

	if auditDB == nil {
		return eventID
	}
	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}
	row := model.ReservationEvent{
		EventID:       eventID,
		EventType:     string(event.EventType),
		ReservationID: sanitizeLogValue(event.ReservationID),
		Doctor:        sanitizeLogValue(event.Doctor),
		Message:       sanitizeLogValue(event.Message),
		Details:       details,
	}
	if err := auditDB.Create(&row).Error; err != nil {
		auditLogger.Warn().Err(err).Str("event_id", eventID).Msg("failed to persist reservation event")
	}
	return eventID
}

// SetAuditLoggerForTest swaps the audit logger and returns a restore func.
func SetAuditLoggerForTest(logger zerolog.Logger) func() {
	original := auditLogger
	auditLogger = logger
	return func() { auditLogger = original }
}
