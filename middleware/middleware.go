package middleware

import (
	"net/http"

	"github.com/ariebrainware/clinic-booking/booking"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

const bookingServiceKey = "booking_service"

func setCorsHeaders(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PATCH")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type")
	c.Writer.Header().Set("Access-Control-Max-Age", "86400")
}

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCorsHeaders(c)

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// BookingServiceMiddleware makes svc available to handlers through GetBookingService.
func BookingServiceMiddleware(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(bookingServiceKey, svc)
		c.Next()
	}
}

// GetBookingService returns the service set by BookingServiceMiddleware, or nil.
func GetBookingService(c *gin.Context) *booking.Service {
	v, ok := c.Get(bookingServiceKey)
	if !ok {
		return nil
	}
	svc, _ := v.(*booking.Service)
	return svc
}

// ClientInfoMiddleware attaches the caller's IP and user agent to the request context
// so booking events can be attributed.
func ClientInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := util.WithClientInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
