package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"neontix/api/routes"
	"neontix/internal/bookings"
	"neontix/internal/events"
	"neontix/internal/notifications"
	"neontix/internal/realtime"
	"neontix/internal/shared/config"
	"neontix/internal/shared/database"
	"neontix/internal/storefront"
	"neontix/pkg/logger"
	"neontix/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title						Neontix API
// @version					1.0
// @description				Event catalog, seat selection and timed checkout for the Neontix storefront.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	envLoaded := godotenv.Load() == nil

	cfg := config.Load()
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	switch {
	case envLoaded:
		appLogger.Info("Development environment: loaded .env file")
	case cfg.IsProduction() || os.Getenv("DOCKER_CONTAINER") == "true":
		appLogger.Info("Production environment: using container environment variables")
	default:
		appLogger.Info("No .env file found, using system environment variables")
	}
	appLogger.Info("Starting neontix",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	if err := storefront.ConfigFromAppConfig(cfg).Validate(); err != nil {
		appLogger.Error("Invalid storefront configuration", slog.Any("error", err))
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := events.RegisterValidators(); err != nil {
		appLogger.Error("Failed to register event validators", slog.Any("error", err))
		os.Exit(1)
	}
	if err := bookings.RegisterValidators(); err != nil {
		appLogger.Error("Failed to register booking validators", slog.Any("error", err))
		os.Exit(1)
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:            cfg.RateLimit.Enabled,
			WindowDuration:     cfg.RateLimit.WindowDuration,
			DefaultRequests:    cfg.RateLimit.DefaultRequests,
			PublicRequests:     cfg.RateLimit.PublicRequests,
			StorefrontRequests: cfg.RateLimit.StorefrontRequests,
			CheckoutRequests:   cfg.RateLimit.CheckoutRequests,
			AdminRequests:      cfg.RateLimit.AdminRequests,
			AnalyticsRequests:  cfg.RateLimit.AnalyticsRequests,
			WhitelistedIPs:     cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	publisher := newPublisher(cfg, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing notification publisher", slog.Any("error", err))
		}
	}()

	if consumer := newConsumer(cfg, appLogger); consumer != nil {
		consumer.Start(backgroundCtx)
		defer func() {
			appLogger.Info("Stopping notification consumer...")
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
			}
		}()
	}

	hub := realtime.NewHub(appLogger)
	go hub.Run(backgroundCtx)

	registry := storefront.NewRegistry(cfg.Checkout.IdleTimeout)
	sweeper := storefront.NewSweeper(registry, cfg.Checkout.SweepInterval)
	sweeper.Start(backgroundCtx)

	router := setupRouter(cfg, db, rateLimiter, routes.Dependencies{
		Publisher: publisher,
		Hub:       hub,
		Registry:  registry,
	})

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	// Open checkouts are abandoned before the background loops stop
	sweeper.Stop()
	registry.CloseAll()
	backgroundCancel()

	appLogger.Info("Server exited gracefully")
}

func newPublisher(cfg *config.Config, log *logger.Logger) notifications.Publisher {
	if !cfg.Kafka.Enabled {
		log.Info("Kafka disabled, notifications are logged only")
		return notifications.NewNoopPublisher(log)
	}

	producer, err := notifications.NewKafkaProducer(notifications.ProducerConfigFromKafkaConfig(cfg.Kafka), log)
	if err != nil {
		log.Error("Failed to create Kafka producer, notifications are logged only", slog.Any("error", err))
		return notifications.NewNoopPublisher(log)
	}
	log.Info("Kafka producer initialized", slog.Any("brokers", cfg.Kafka.Brokers))
	return producer
}

func newConsumer(cfg *config.Config, log *logger.Logger) *notifications.Consumer {
	if !cfg.Kafka.Enabled || !cfg.Kafka.ConsumerEnabled {
		return nil
	}

	sender, err := notifications.NewEmailSender(cfg.Email, log)
	if err != nil {
		log.Error("Failed to create email sender", slog.Any("error", err))
		return nil
	}

	consumer, err := notifications.NewConsumer(notifications.ConsumerConfigFromKafkaConfig(cfg.Kafka), sender, log)
	if err != nil {
		log.Error("Failed to create notification consumer", slog.Any("error", err))
		return nil
	}
	return consumer
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, deps routes.Dependencies) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(logger.RequestMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter := routes.NewRouter(cfg, db, deps)
	appRouter.SetupRoutes(engine)

	return engine
}
