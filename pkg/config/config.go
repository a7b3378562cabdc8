package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes all environment variables consumed by the service.
	EnvPrefix = "FOODBRIDGE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Nearby       NearbyConfig
	Geocoder     GeocoderConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODBRIDGE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FOODBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODBRIDGE_DB_DSN"`
	Driver string `envconfig:"FOODBRIDGE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FOODBRIDGE_DB_HOST"`
	Port     int    `envconfig:"FOODBRIDGE_DB_PORT" default:"5432"`
	User     string `envconfig:"FOODBRIDGE_DB_USER"`
	Password string `envconfig:"FOODBRIDGE_DB_PASSWORD"`
	Name     string `envconfig:"FOODBRIDGE_DB_NAME"`
	SSLMode  string `envconfig:"FOODBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODBRIDGE_REDIS_URL"`
	Address      string        `envconfig:"FOODBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"FOODBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// NearbyConfig bounds the collector matching view.
type NearbyConfig struct {
	RadiusKM float64 `envconfig:"FOODBRIDGE_NEARBY_RADIUS_KM" default:"10"`
}

type GeocoderConfig struct {
	BaseURL       string        `envconfig:"FOODBRIDGE_GEOCODER_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	CountrySuffix string        `envconfig:"FOODBRIDGE_GEOCODER_COUNTRY_SUFFIX" default:"India"`
	Timeout       time.Duration `envconfig:"FOODBRIDGE_GEOCODER_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"FOODBRIDGE_GEOCODER_USER_AGENT" default:"foodbridge-backend"`
}

// RateLimitConfig throttles registration and lifecycle mutations. A zero
// window or limit disables the corresponding limiter.
type RateLimitConfig struct {
	RegisterWindow  time.Duration `envconfig:"FOODBRIDGE_RATE_LIMIT_REGISTER_WINDOW" default:"1m"`
	RegisterIPLimit int           `envconfig:"FOODBRIDGE_RATE_LIMIT_REGISTER_IP_LIMIT" default:"10"`
	MutationWindow  time.Duration `envconfig:"FOODBRIDGE_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationLimit   int           `envconfig:"FOODBRIDGE_RATE_LIMIT_MUTATION_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FOODBRIDGE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FOODBRIDGE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := []struct {
		env   string
		value string
	}{
		{"FOODBRIDGE_DB_HOST", db.Host},
		{"FOODBRIDGE_DB_USER", db.User},
		{"FOODBRIDGE_DB_NAME", db.Name},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either FOODBRIDGE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
