package endpoint

import (
	"fmt"
	"net/http"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterOptions tune the router built by SetupRouter.
type RouterOptions struct {
	AppName   string
	RateLimit middleware.RateLimitConfig
}

// SetupRouter wires every handler of the calendar API. Writes go through
// the rate limiter.
func SetupRouter(db *gorm.DB, svc *booking.Service, opts RouterOptions) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.EndpointCallLogger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.BookingMiddleware(svc))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", opts.AppName),
		})
	})

	limited := middleware.RateLimiter(opts.RateLimit)

	doctor := router.Group("/doctor")
	doctor.GET("", ListDoctors)
	doctor.POST("", limited, CreateDoctor)

	patient := router.Group("/patient")
	patient.GET("", ListPatients)
	patient.GET("/:id", GetPatient)
	patient.GET("/:id/reservations", GetPatientReservations)
	patient.POST("", limited, CreatePatient)

	items := router.Group("/treatment-item")
	items.GET("", ListTreatmentItems)
	items.GET("/quote", QuoteTreatmentItems)
	items.POST("", limited, CreateTreatmentItem)
	items.PATCH("/:id", limited, UpdateTreatmentItem)
	items.DELETE("/:id", limited, DeactivateTreatmentItem)

	reservation := router.Group("/reservation")
	reservation.GET("", ListReservations)
	reservation.GET("/availability", ReservationAvailability)
	reservation.GET("/preview", PreviewReservation)
	reservation.GET("/:id", GetReservation)
	reservation.POST("", limited, BookReservation)
	reservation.PATCH("/:id", limited, EditReservation)
	reservation.POST("/:id/cancel", limited, CancelReservation)

	return router, nil
}
