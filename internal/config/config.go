package config // package config loads application configuration from environment variables

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Sections that belong to a single concern
// (rate limiting, the notification queue, the seat cache) live in their own
// structs so they can be handed to the component that needs them.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"dev"`            // application environment (dev, test, prod)
	Port     string `env:"APP_PORT" env-default:"8080"`          // HTTP port to listen on
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`         // logrus level name
	DBUser   string `env:"DB_USER" env-required:"true"`          // database username
	DBPass   string `env:"DB_PASS"`                              // database password (optional)
	DBHost   string `env:"DB_HOST" env-default:"localhost"`      // database host address
	DBPort   string `env:"DB_PORT" env-default:"3306"`           // database port number
	DBName   string `env:"DB_NAME" env-default:"movie_tickets"` // database name

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`

	// CreateSchema runs CREATE TABLE IF NOT EXISTS for every table at boot.
	CreateSchema bool `env:"DB_CREATE_SCHEMA" env-default:"false"`

	// BookingTxTimeout bounds how long a booking transaction may hold seat locks.
	BookingTxTimeout time.Duration `env:"BOOKING_TX_TIMEOUT" env-default:"5s"`

	JWTSecret    string `env:"JWT_SECRET" env-required:"true"`        // secret used to sign JWTs
	AccessTTLMin int    `env:"ACCESS_TOKEN_TTL_MIN" env-default:"60"` // access token time-to-live in minutes
	BcryptCost   int    `env:"BCRYPT_COST" env-default:"10"`          // bcrypt cost for password hashing

	// AllowAdminSignup lets POST /v1/auth/register create ADMIN accounts.
	// Meant for local setups only.
	AllowAdminSignup bool `env:"AUTH_ALLOW_ADMIN_SIGNUP" env-default:"false"`

	SeatCacheTTL time.Duration `env:"SEAT_CACHE_TTL" env-default:"30s"` // lifetime of cached seat maps

	RateLimit RateLimitConfig
	Queue     QueueConfig
}

// Load reads a .env file when present and then the process environment.
// Missing required variables are reported as an error so main can exit
// with a clear message.
func Load() (Config, error) {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.RateLimit.normalize()
	return cfg, nil
}

// DSN builds the go-sql-driver/mysql data source name.
// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
func (c Config) DSN() string {
	auth := c.DBUser
	if c.DBPass != "" {
		auth = fmt.Sprintf("%s:%s", c.DBUser, c.DBPass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.DBHost, c.DBPort, c.DBName)
}
