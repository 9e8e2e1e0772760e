package util

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-reservation/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ReservationEvent{}))
	SetAuditLoggerDB(db)
	t.Cleanup(func() { SetAuditLoggerDB(nil) })
	return db
}

func TestSanitizeLogValue(t *testing.T) {
	assert.Equal(t, "a b c d", sanitizeLogValue("a\nb\rc\td"))
	assert.Equal(t, strings.Repeat("x", 200)+"...", sanitizeLogValue(strings.Repeat("x", 250)))
	assert.Equal(t, "", sanitizeLogValue(""))
}

func TestLogReservationEvent_WritesLine(t *testing.T) {
	buf := &bytes.Buffer{}
	restore := SetAuditLoggerForTest(zerolog.New(buf))
	defer restore()

	id := LogReservationEvent(ReservationEvent{
		EventType:     EventReservationBooked,
		ReservationID: "r-1",
		Doctor:        "dr-kim",
		Message:       "booked\n3 units",
		Details:       map[string]interface{}{"units": 3},
	})

	out := buf.String()
	assert.NotEmpty(t, id)
	assert.Contains(t, out, `"event":"RESERVATION_BOOKED"`)
	assert.Contains(t, out, `"reservation_id":"r-1"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"message":"booked 3 units"`)
	assert.Contains(t, out, id)
}

func TestLogReservationEvent_CapacityViolationIsError(t *testing.T) {
	buf := &bytes.Buffer{}
	restore := SetAuditLoggerForTest(zerolog.New(buf))
	defer restore()

	LogReservationEvent(ReservationEvent{EventType: EventCapacityViolation, Doctor: "dr-kim", Message: "over"})
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestLogReservationEvent_PersistsRow(t *testing.T) {
	restore := SetAuditLoggerForTest(zerolog.Nop())
	defer restore()
	db := setupAuditDB(t)

	id := LogReservationEvent(ReservationEvent{
		EventType:     EventReservationCanceled,
		ReservationID: "r-9",
		Doctor:        "dr-lee",
		Message:       "canceled",
		Details:       map[string]interface{}{"freed": 3},
	})

	var row model.ReservationEvent
	require.NoError(t, db.Where("event_id = ?", id).First(&row).Error)
	assert.Equal(t, "RESERVATION_CANCELED", row.EventType)
	assert.Equal(t, "r-9", row.ReservationID)
	assert.JSONEq(t, `{"freed":3}`, string(row.Details))
}
