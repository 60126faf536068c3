package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	AllowedOrigins []string

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Storefront checkout
	Checkout CheckoutConfig

	// Seat chart generation
	Seating SeatingConfig

	// Logging
	LogLevel string

	// External services
	Email EmailConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for cached reads
	EventCacheTTL     time.Duration
	EventListCacheTTL time.Duration
	AnalyticsCacheTTL time.Duration
}

// JWTConfig holds the shared secret of the identity provider that issues admin tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled            bool          `json:"enabled"`
	WindowDuration     time.Duration `json:"window_duration"`
	DefaultRequests    int           `json:"default_requests"`
	PublicRequests     int           `json:"public_requests"`
	StorefrontRequests int           `json:"storefront_requests"`
	CheckoutRequests   int           `json:"checkout_requests"`
	AdminRequests      int           `json:"admin_requests"`
	AnalyticsRequests  int           `json:"analytics_requests"`
	WhitelistedIPs     []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds broker and topic configuration
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	BookingTopic     string
	CheckoutTopic    string
	ConsumerGroup    string
	ConsumerEnabled  bool
	MaxRetries       int
	RetryBackoff     time.Duration
	ProducerClientID string
}

// CheckoutConfig controls the checkout countdown and price breakdown
type CheckoutConfig struct {
	HoldDuration  time.Duration
	TickInterval  time.Duration
	FeePercent    int
	TaxPercent    int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// SeatingConfig controls the generated seat chart
type SeatingConfig struct {
	Rows              []string
	SeatsPerRow       int
	BookedProbability float64
	Seed              int64
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB
		AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "neontix_db"),
			User:     getEnv("DB_USER", "neontix_user"),
			Password: getEnv("DB_PASSWORD", "neontix_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			EventCacheTTL:     getDurationEnv("REDIS_EVENT_CACHE_TTL", 10*time.Minute),
			EventListCacheTTL: getDurationEnv("REDIS_EVENT_LIST_CACHE_TTL", 2*time.Minute),
			AnalyticsCacheTTL: getDurationEnv("REDIS_ANALYTICS_CACHE_TTL", 1*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			Issuer: getEnv("JWT_ISSUER", ""),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:            getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:     getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:    getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:     getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			StorefrontRequests: getIntEnv("RATE_LIMIT_STOREFRONT_REQUESTS", 240),
			CheckoutRequests:   getIntEnv("RATE_LIMIT_CHECKOUT_REQUESTS", 20),
			AdminRequests:      getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			AnalyticsRequests:  getIntEnv("RATE_LIMIT_ANALYTICS_REQUESTS", 30),
			WhitelistedIPs:     getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:          getBoolEnv("KAFKA_ENABLED", false),
			Brokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			BookingTopic:     getEnv("KAFKA_BOOKING_TOPIC", "booking.confirmed"),
			CheckoutTopic:    getEnv("KAFKA_CHECKOUT_TOPIC", "checkout.expired"),
			ConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "neontix-notifications"),
			ConsumerEnabled:  getBoolEnv("KAFKA_CONSUMER_ENABLED", true),
			MaxRetries:       getIntEnv("KAFKA_MAX_RETRIES", 3),
			RetryBackoff:     getDurationEnv("KAFKA_RETRY_BACKOFF", 1*time.Second),
			ProducerClientID: getEnv("KAFKA_CLIENT_ID", "neontix-producer"),
		},

		// Checkout configuration
		Checkout: CheckoutConfig{
			HoldDuration:  getDurationEnvSeconds("CHECKOUT_HOLD_SECONDS", 600*time.Second),
			TickInterval:  getDurationEnv("CHECKOUT_TICK_INTERVAL", 1*time.Second),
			FeePercent:    getIntEnv("CHECKOUT_FEE_PERCENT", 10),
			TaxPercent:    getIntEnv("CHECKOUT_TAX_PERCENT", 8),
			IdleTimeout:   getDurationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			SweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", 1*time.Minute),
		},

		// Seating configuration
		Seating: SeatingConfig{
			Rows:              getStringSliceEnv("SEATING_ROWS", []string{"A", "B", "C", "D", "E", "F", "G", "H"}),
			SeatsPerRow:       getIntEnv("SEATING_SEATS_PER_ROW", 12),
			BookedProbability: getFloatEnv("SEATING_BOOKED_PROBABILITY", 0.25),
			Seed:              getInt64Env("SEATING_SEED", 0),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "tickets@neontix.app"),
		},
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getInt64Env gets an int64 environment variable with a fallback value
func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
