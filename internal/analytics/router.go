package analytics

import (
	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, adminGuard ...gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(adminGuard...)

	admin.GET("/dashboard", controller.GetDashboard) // GET /api/v1/admin/dashboard
	admin.GET("/analytics", controller.GetAnalytics) // GET /api/v1/admin/analytics
}
