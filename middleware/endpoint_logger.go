package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger records each HTTP request as an endpoint event and in the
// HTTP metrics. m may be nil.
func EndpointCallLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), duration.Seconds())

		util.LogBookingEvent(util.BookingEvent{
			EventType: util.EventEndpointCall,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details: map[string]interface{}{
				"method":      c.Request.Method,
				"path":        route,
				"status":      status,
				"duration_ms": duration.Milliseconds(),
			},
		})
	}
}
