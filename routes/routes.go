package routes

import (
	"net/http"
	"time"

	"vendly/handlers"
	"vendly/middleware"
	"vendly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers template management and slot queries.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter middleware.LimiterStore) {
	api := r.Group("/api/availability")
	{
		api.PUT("/templates", middleware.RateLimit(limiter, "availability:write"), hb.Availability.UpsertTemplate)
		api.DELETE("/templates/:id", middleware.RateLimit(limiter, "availability:write"), hb.Availability.DeleteTemplate)
		api.GET("/templates/:vendorID", hb.Availability.ListTemplates)
		api.GET("/slots/:vendorID", hb.Availability.QuerySlots)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter middleware.LimiterStore) {
	api := r.Group("/api/bookings")
	{
		api.POST("", middleware.RateLimit(limiter, "booking:create"), hb.Bookings.Create)
		api.GET("/:id", hb.Bookings.Get)
		api.POST("/:id/confirm", hb.Bookings.Confirm)
		api.POST("/:id/start", hb.Bookings.Start)
		api.POST("/:id/complete", hb.Bookings.Complete)
		api.POST("/:id/cancel", hb.Bookings.Cancel)
		api.POST("/:id/reschedule", middleware.RateLimit(limiter, "booking:reschedule"), hb.Bookings.Reschedule)
		api.PATCH("/:id", hb.Bookings.Update)
		api.POST("/:id/payments", middleware.RateLimit(limiter, "payment:initiate"), hb.Payments.InitiateDeposit)
	}
}

// RegisterServiceRoutes registers the vendor service catalogue.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.PUT("", hb.Services.Upsert)
		api.GET("/:id", hb.Services.Get)
		api.GET("/vendor/:vendorID", hb.Services.ListByVendor)
		api.DELETE("/:id", hb.Services.Delete)
	}
}

// RegisterPaymentRoutes registers the confirm path and the provider webhook.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/confirm", hb.Payments.Confirm)
		api.POST("/webhook", hb.Webhooks.ProviderEvent)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// periodic dependency monitor. Unhealthy snapshots answer 503 so load
// balancers can rotate the instance out.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter middleware.LimiterStore) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Actor-ID", "X-Acting-As", "X-Webhook-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb, limiter)
	RegisterBookingRoutes(r, hb, limiter)
	RegisterServiceRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
