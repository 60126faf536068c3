package storefront

import (
	"github.com/gin-gonic/gin"
)

// SetupStorefrontRoutes mounts shopper sessions and the realtime streams.
// identity is applied to every session route; it may set user_id but never rejects.
func SetupStorefrontRoutes(router *gin.RouterGroup, controller Controller, identity ...gin.HandlerFunc) {
	sessions := router.Group("/storefront/sessions")
	sessions.Use(identity...)
	{
		sessions.POST("", controller.CreateSession)       // POST /api/v1/storefront/sessions
		sessions.GET("/:id", controller.GetSession)       // GET /api/v1/storefront/sessions/:id
		sessions.DELETE("/:id", controller.CloseSession)  // DELETE /api/v1/storefront/sessions/:id
		sessions.GET("/:id/ws", controller.SessionStream) // GET /api/v1/storefront/sessions/:id/ws - Countdown and notices

		sessions.PUT("/:id/event", controller.OpenEvent)                   // PUT /api/v1/storefront/sessions/:id/event - Open seat map
		sessions.GET("/:id/seats", controller.GetSeatMap)                  // GET /api/v1/storefront/sessions/:id/seats
		sessions.POST("/:id/seats/:seatId/toggle", controller.ToggleSeat)  // POST /api/v1/storefront/sessions/:id/seats/:seatId/toggle
		sessions.DELETE("/:id/selection", controller.ClearSelection)       // DELETE /api/v1/storefront/sessions/:id/selection
		sessions.GET("/:id/cart", controller.GetCart)                      // GET /api/v1/storefront/sessions/:id/cart

		sessions.POST("/:id/checkout", controller.StartCheckout)           // POST /api/v1/storefront/sessions/:id/checkout
		sessions.GET("/:id/checkout", controller.GetCheckout)              // GET /api/v1/storefront/sessions/:id/checkout
		sessions.POST("/:id/checkout/confirm", controller.ConfirmCheckout) // POST /api/v1/storefront/sessions/:id/checkout/confirm
		sessions.POST("/:id/checkout/cancel", controller.CancelCheckout)   // POST /api/v1/storefront/sessions/:id/checkout/cancel
	}

	router.GET("/events/:id/ws", controller.EventStream) // GET /api/v1/events/:id/ws - Seats booked by other shoppers
}
