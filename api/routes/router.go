// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "neontix/docs"
	"neontix/internal/analytics"
	"neontix/internal/bookings"
	"neontix/internal/events"
	"neontix/internal/notifications"
	"neontix/internal/realtime"
	"neontix/internal/shared/config"
	"neontix/internal/shared/database"
	"neontix/internal/shared/middleware"
	"neontix/internal/storefront"
	"neontix/pkg/cache"
)

// Dependencies are the long-lived components main owns and shuts down
type Dependencies struct {
	Publisher notifications.Publisher
	Hub       *realtime.Hub
	Registry  *storefront.Registry
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   Dependencies

	cacheService   cache.Service
	eventService   events.Service
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps Dependencies) *Router {
	r := &Router{
		config: cfg,
		db:     db,
		deps:   deps,
	}
	if db.Redis != nil {
		r.cacheService = cache.NewService(db.Redis)
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	adminGuard := middleware.AdminGuard(r.config.JWT)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Events first: bookings invalidate the catalog cache and storefront reads it
		r.setupEventRoutes(api, adminGuard)
		r.setupBookingRoutes(api, adminGuard)
		r.setupStorefrontRoutes(api)
		r.setupAnalyticsRoutes(api, adminGuard)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "neontix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "neontix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		status := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		}
		if r.deps.Registry != nil {
			status["shopper_sessions"] = r.deps.Registry.Len()
		}
		c.JSON(http.StatusOK, status)
	})
}

// setupEventRoutes configures the catalog and the admin event console
func (r *Router) setupEventRoutes(rg *gin.RouterGroup, adminGuard []gin.HandlerFunc) {
	eventRepo := events.NewRepository(r.db.PostgreSQL)
	eventService := events.NewServiceWithTTL(eventRepo, r.config.Redis.EventCacheTTL, r.config.Redis.EventListCacheTTL)
	if r.cacheService != nil {
		eventService.SetCacheService(r.cacheService)
	}
	r.eventService = eventService

	events.SetupEventRoutes(rg, events.NewController(eventService), adminGuard...)
}

// setupBookingRoutes configures the admin booking console
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup, adminGuard []gin.HandlerFunc) {
	bookingRepo := bookings.NewRepository(r.db.PostgreSQL)
	bookingService := bookings.NewService(bookingRepo, r.deps.Publisher, r.eventService)
	if r.cacheService != nil {
		bookingService.SetCacheService(r.cacheService)
	}
	r.bookingService = bookingService

	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService), adminGuard...)
}

// setupStorefrontRoutes configures shopper sessions, checkout and the realtime streams
func (r *Router) setupStorefrontRoutes(rg *gin.RouterGroup) {
	opts := []storefront.ServiceOption{
		storefront.WithNotifiers(notifications.NewCheckoutNotifier(r.deps.Publisher, nil)),
	}
	if r.deps.Hub != nil {
		opts = append(opts, storefront.WithNotifiers(r.deps.Hub))
		r.deps.Registry.SetAnnouncer(r.deps.Hub)
	}

	storefrontService := storefront.NewService(
		r.deps.Registry,
		r.eventService,
		r.bookingService,
		r.bookingService,
		storefront.ConfigFromAppConfig(r.config),
		opts...,
	)
	controller := storefront.NewController(storefrontService, r.deps.Hub, r.config.AllowedOrigins)

	storefront.SetupStorefrontRoutes(rg, controller, middleware.OptionalAuthWithConfig(r.config.JWT))
}

// setupAnalyticsRoutes configures the admin dashboard and analytics
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup, adminGuard []gin.HandlerFunc) {
	analyticsRepo := analytics.NewRepository(r.db.PostgreSQL)
	analyticsService := analytics.NewServiceWithTTL(analyticsRepo, r.config.Redis.AnalyticsCacheTTL)
	if r.cacheService != nil {
		analyticsService.SetCacheService(r.cacheService)
	}

	analytics.SetupAnalyticsRoutes(rg, analytics.NewController(analyticsService), adminGuard...)
}
