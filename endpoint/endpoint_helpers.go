package endpoint

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/middleware"
	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errDuplicate = errors.New("duplicate")

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func getBookingOrRespond(c *gin.Context) (*booking.Service, bool) {
	svc := middleware.GetBooking(c)
	if svc == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Booking service not available", Err: fmt.Errorf("booking service is nil")})
		return nil, false
	}
	return svc, true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid ID", Err: fmt.Errorf("id must be a positive integer")})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps booking and engine errors onto the API envelope.
func respondServiceError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, slot.ErrInvalidRequest):
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrItemNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: msg, Err: err})
	case errors.Is(err, slot.ErrInsufficientCapacity):
		util.CallConflict(c, util.APIErrorParams{Msg: msg, Err: err})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		_ = c.Error(err)
		util.CallServerError(c, util.APIErrorParams{Msg: msg, Err: err})
	}
}

// itemsParam reads repeated ?items= values. A single value may hold several
// names separated by commas or plus signs.
func itemsParam(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, slot.ParseItems(v)...)
	}
	return out
}
