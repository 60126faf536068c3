package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes mounts the admin booking console behind adminGuard.
// Shoppers create bookings through the storefront checkout, never directly.
func SetupBookingRoutes(router *gin.RouterGroup, controller Controller, adminGuard ...gin.HandlerFunc) {
	adminBookings := router.Group("/admin/bookings")
	adminBookings.Use(adminGuard...)
	{
		adminBookings.GET("", controller.ListBookings)              // GET /api/v1/admin/bookings?status=&search=
		adminBookings.GET("/:id", controller.GetBooking)            // GET /api/v1/admin/bookings/:id
		adminBookings.PATCH("/:id/status", controller.UpdateStatus) // PATCH /api/v1/admin/bookings/:id/status
	}
}
