package middleware

import (
	"net/http"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// DBKey is the context key under which DatabaseMiddleware stores the connection.
	DBKey = "db"
	// BookingKey is the context key of the booking service.
	BookingKey = "booking"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db.WithContext(c.Request.Context()))
		c.Next()
	}
}

// GetDB returns the request's database handle, or nil when none was set.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// BookingMiddleware makes the booking service available through GetBooking.
func BookingMiddleware(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(BookingKey, svc)
		c.Next()
	}
}

// GetBooking returns the booking service, or nil when none was set.
func GetBooking(c *gin.Context) *booking.Service {
	v, ok := c.Get(BookingKey)
	if !ok {
		return nil
	}
	svc, _ := v.(*booking.Service)
	return svc
}
