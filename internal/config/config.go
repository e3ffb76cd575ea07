// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables win over it.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/academy/middlewares"
	"github.com/dmitrymomot/academy/pkg/db"
	"github.com/dmitrymomot/academy/pkg/logger"
	"github.com/dmitrymomot/academy/pkg/mailer/resend"
	"github.com/dmitrymomot/academy/pkg/redis"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver     = errors.New("config: unknown STORAGE_DRIVER")
	ErrShortCookieSecret = errors.New("config: COOKIE_SECRET must be 32+ bytes")
	ErrMissingRedisURL   = errors.New("config: REDIS_URL is required for the redis driver")
	ErrMissingDatabase   = errors.New("config: DATABASE_CONN_URL is required for the postgres driver")
	ErrTouchInterval     = errors.New("config: VISITOR_TOUCH_INTERVAL must be shorter than VISITOR_TTL")
)

// Config is the full server configuration.
type Config struct {
	Address         string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	EventsHeartbeat time.Duration `env:"EVENTS_HEARTBEAT" envDefault:"25s"`

	CookieSecret string `env:"COOKIE_SECRET,required"`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieDomain string `env:"COOKIE_DOMAIN"`

	StorageDriver        string        `env:"STORAGE_DRIVER" envDefault:"memory"`
	StoragePrefix        string        `env:"STORAGE_PREFIX" envDefault:"academy"`
	VisitorTTL           time.Duration `env:"VISITOR_TTL" envDefault:"720h"`
	VisitorTouchInterval time.Duration `env:"VISITOR_TOUCH_INTERVAL" envDefault:"1h"`
	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"10"`

	PendingOrderTTL       time.Duration `env:"PENDING_ORDER_TTL" envDefault:"72h"`
	CancelPendingSchedule string        `env:"CANCEL_PENDING_SCHEDULE" envDefault:"*/15 * * * *"`
	PurgeVisitorsSchedule string        `env:"PURGE_VISITORS_SCHEDULE" envDefault:"30 3 * * *"`
	JobTimeout            time.Duration `env:"JOB_TIMEOUT" envDefault:"1m"`
	Timezone              string        `env:"TIMEZONE" envDefault:"Asia/Tashkent"`

	Logger logger.Config
	Sentry logger.SentryConfig
	DB     db.Config
	Redis  redis.Config
	Resend resend.Config
	CORS   middlewares.CORSConfig
}

// Load reads .env if it exists, parses the environment and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(errors.New("config: read .env"), err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(errors.New("config: parse environment"), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if len(c.CookieSecret) < 32 {
		errs = append(errs, ErrShortCookieSecret)
	}
	if c.VisitorTTL > 0 && c.VisitorTouchInterval >= c.VisitorTTL {
		errs = append(errs, ErrTouchInterval)
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.URL == "" {
			errs = append(errs, ErrMissingRedisURL)
		}
	case DriverPostgres:
		if c.DB.ConnectionString == "" {
			errs = append(errs, ErrMissingDatabase)
		}
	default:
		errs = append(errs, ErrUnknownDriver)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
