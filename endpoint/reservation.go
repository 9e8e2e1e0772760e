package endpoint

import (
	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
)

type reservationRequest struct {
	PatientID uint     `json:"patient_id" example:"1"`
	Doctor    string   `json:"doctor" binding:"required" example:"dr-kim"`
	Items     []string `json:"items" binding:"required,min=1,dive,required" example:"acupuncture,chuna"`
	VisitType string   `json:"visit_type" example:"repeat"`
	Date      string   `json:"date" binding:"required,isodate" example:"2025-01-15"`
	Time      string   `json:"time" binding:"required,clocktime" example:"10:00"`
	Memo      string   `json:"memo" example:"prefers the window bed"`
}

func (r reservationRequest) toBooking() booking.BookRequest {
	return booking.BookRequest{
		PatientID: r.PatientID,
		Doctor:    r.Doctor,
		Items:     r.Items,
		VisitType: r.VisitType,
		Date:      r.Date,
		Time:      r.Time,
		Memo:      r.Memo,
	}
}

type calendarQuery struct {
	Date   string `form:"date" binding:"required,isodate"`
	Doctor string `form:"doctor"`
}

type availabilityQuery struct {
	Doctor    string   `form:"doctor" binding:"required"`
	Date      string   `form:"date" binding:"required,isodate"`
	Items     []string `form:"items" binding:"required,min=1"`
	VisitType string   `form:"type"`
	Exclude   string   `form:"exclude"`
}

type previewQuery struct {
	availabilityQuery
	Time string `form:"time" binding:"required,clocktime"`
}

// ListReservations godoc
// @Summary      List a day of the calendar
// @Description  Returns every active reservation part on a date, optionally for one doctor
// @Tags         Reservation
// @Produce      json
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Param        doctor query string false "Doctor name"
// @Success      200 {object} util.APIResponse{data=object} "Reservations retrieved"
// @Failure      400 {object} util.APIResponse "Invalid query"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /reservation [get]
func ListReservations(c *gin.Context) {
	var q calendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	entries, err := svc.ListDay(c.Request.Context(), q.Date, q.Doctor)
	if err != nil {
		respondServiceError(c, "Failed to retrieve reservations", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Reservations retrieved",
		Data: map[string]interface{}{"date": q.Date, "total": len(entries), "reservations": entries},
	})
}

// GetReservation godoc
// @Summary      Get a reservation
// @Tags         Reservation
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200 {object} util.APIResponse{data=slot.Record} "Reservation retrieved"
// @Failure      404 {object} util.APIResponse "Reservation not found"
// @Router       /reservation/{id} [get]
func GetReservation(c *gin.Context) {
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}
	rec, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "Failed to retrieve reservation", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Reservation retrieved", Data: rec})
}

// ReservationAvailability godoc
// @Summary      Day availability for a request
// @Description  Previews the requested items at every bucket of the day
// @Tags         Reservation
// @Produce      json
// @Param        doctor query string true "Doctor name"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Param        items query []string true "Treatment items"
// @Param        type query string false "Visit type"
// @Param        exclude query string false "Reservation being edited"
// @Success      200 {object} util.APIResponse{data=object} "Availability retrieved"
// @Failure      400 {object} util.APIResponse "Invalid query"
// @Router       /reservation/availability [get]
func ReservationAvailability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	day, units, err := svc.DayAvailability(c.Request.Context(), booking.PreviewRequest{
		Doctor:    q.Doctor,
		Items:     itemsParam(q.Items),
		VisitType: q.VisitType,
		Date:      q.Date,
		ExcludeID: q.Exclude,
	})
	if err != nil {
		respondServiceError(c, "Failed to compute availability", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Availability retrieved",
		Data: map[string]interface{}{"doctor": q.Doctor, "date": q.Date, "required_units": units, "buckets": day},
	})
}

// PreviewReservation godoc
// @Summary      Preview a booking
// @Description  Answers whether the items fit at the clicked bucket, spilling at most into the next one
// @Tags         Reservation
// @Produce      json
// @Param        doctor query string true "Doctor name"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Param        time query string true "Time (HH:MM)"
// @Param        items query []string true "Treatment items"
// @Param        type query string false "Visit type"
// @Param        exclude query string false "Reservation being edited"
// @Success      200 {object} util.APIResponse{data=slot.PreviewResult} "Preview computed"
// @Failure      400 {object} util.APIResponse "Invalid query"
// @Router       /reservation/preview [get]
func PreviewReservation(c *gin.Context) {
	var q previewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	res, err := svc.Preview(c.Request.Context(), booking.PreviewRequest{
		Doctor:    q.Doctor,
		Items:     itemsParam(q.Items),
		VisitType: q.VisitType,
		Date:      q.Date,
		Time:      q.Time,
		ExcludeID: q.Exclude,
	})
	if err != nil {
		respondServiceError(c, "Failed to preview reservation", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: res.Message, Data: res})
}

// BookReservation godoc
// @Summary      Book a reservation
// @Tags         Reservation
// @Accept       json
// @Produce      json
// @Param        request body reservationRequest true "Reservation"
// @Success      201 {object} util.APIResponse{data=slot.Record} "Reservation booked"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      409 {object} util.APIResponse "No capacity within the overflow horizon"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /reservation [post]
func BookReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request body", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	rec, err := svc.Book(c.Request.Context(), req.toBooking())
	if err != nil {
		respondServiceError(c, "Failed to book reservation", err)
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Reservation booked", Data: rec})
}

// EditReservation godoc
// @Summary      Edit a reservation
// @Description  Re-places the reservation; its own previous slots count as free
// @Tags         Reservation
// @Accept       json
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Param        request body reservationRequest true "Reservation"
// @Success      200 {object} util.APIResponse{data=slot.Record} "Reservation updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Reservation not found"
// @Router       /reservation/{id} [patch]
func EditReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request body", Err: err})
		return
	}
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}

	rec, err := svc.Edit(c.Request.Context(), c.Param("id"), req.toBooking())
	if err != nil {
		respondServiceError(c, "Failed to update reservation", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Reservation updated", Data: rec})
}

// CancelReservation godoc
// @Summary      Cancel a reservation
// @Description  Frees the reservation's capacity. Canceling twice is not an error.
// @Tags         Reservation
// @Produce      json
// @Param        id path string true "Reservation ID"
// @Success      200 {object} util.APIResponse{data=slot.Record} "Reservation canceled"
// @Failure      404 {object} util.APIResponse "Reservation not found"
// @Router       /reservation/{id}/cancel [post]
func CancelReservation(c *gin.Context) {
	svc, ok := getBookingOrRespond(c)
	if !ok {
		return
	}
	rec, err := svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "Failed to cancel reservation", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Reservation canceled", Data: rec})
}
