package events

import (
	"github.com/gin-gonic/gin"
)

// SetupEventRoutes mounts the public catalog and the admin event console.
// adminGuard is applied to every admin route.
func SetupEventRoutes(router *gin.RouterGroup, controller Controller, adminGuard ...gin.HandlerFunc) {
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents) // GET /api/v1/events - Browse the catalog
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id - Event details
	}

	adminEvents := router.Group("/admin/events")
	adminEvents.Use(adminGuard...)
	{
		adminEvents.GET("", controller.GetAdminEvents)     // GET /api/v1/admin/events - Newest first
		adminEvents.POST("", controller.CreateEvent)       // POST /api/v1/admin/events - Create event
		adminEvents.GET("/:id", controller.GetEvent)       // GET /api/v1/admin/events/:id - Event details
		adminEvents.PUT("/:id", controller.UpdateEvent)    // PUT /api/v1/admin/events/:id - Update event
		adminEvents.DELETE("/:id", controller.DeleteEvent) // DELETE /api/v1/admin/events/:id - Delete event
	}
}
