// Package routes wires the HTTP surface onto a gin engine.
package routes

import (
	"github.com/ariebrainware/clinic-booking/booking"
	"github.com/ariebrainware/clinic-booking/endpoint"
	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the routes need.
type Dependencies struct {
	AppName   string
	Service   *booking.Service
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	RateLimit middleware.RateLimitConfig
}

// SetupRoutes registers middleware and every route on router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ClientInfoMiddleware())
	router.Use(middleware.EndpointCallLogger(deps.Metrics))

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/", endpoint.Index(deps.AppName))
	router.GET("/health", endpoint.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.Use(middleware.BookingServiceMiddleware(deps.Service))
	{
		api.GET("/doctors", endpoint.ListDoctors)

		api.GET("/appointments", endpoint.ListAppointments)
		api.POST("/appointments", middleware.RateLimiter(deps.RateLimit), endpoint.CreateAppointment)
		api.GET("/appointments/:appointmentId", endpoint.GetAppointment)
		api.PATCH("/appointments/:appointmentId", endpoint.UpdateAppointment)

		api.POST("/availability/check", endpoint.CheckAvailability)
	}
}
