// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Favorites storage backends.
const (
	FavoritesBackendMemory   = "memory"
	FavoritesBackendRedis    = "redis"
	FavoritesBackendPostgres = "postgres"
)

// Device position providers.
const (
	DeviceProviderIPGeo  = "ipgeo"
	DeviceProviderStatic = "static"
	DeviceProviderNone   = "none"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// Timezone is the IANA zone used to decide which calendar day "today" is.
	// "Local" uses the host zone.
	Timezone string `mapstructure:"TIMEZONE" yaml:"timezone"`
}

// Location resolves Timezone, falling back to time.Local.
func (s ServerConfig) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DatabaseConfig holds PostgreSQL connection details. Only used by the
// postgres favorites backend.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
}

// URL returns a postgres:// connection URL suitable for pgx and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// TicketmasterConfig configures the Discovery API event source.
type TicketmasterConfig struct {
	APIKey         string `mapstructure:"API_KEY" yaml:"api_key"`
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	RadiusKm       int    `mapstructure:"RADIUS_KM" yaml:"radius_km"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// GeocodingConfig configures the Nominatim place search.
type GeocodingConfig struct {
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	UserAgent      string `mapstructure:"USER_AGENT" yaml:"user_agent"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// DeviceConfig selects where the "device" position fix comes from.
type DeviceConfig struct {
	Provider         string  `mapstructure:"PROVIDER" yaml:"provider"`
	IPGeoURL         string  `mapstructure:"IPGEO_URL" yaml:"ipgeo_url"`
	Latitude         float64 `mapstructure:"LATITUDE" yaml:"latitude"`
	Longitude        float64 `mapstructure:"LONGITUDE" yaml:"longitude"`
	AcquireOnStartup bool    `mapstructure:"ACQUIRE_ON_STARTUP" yaml:"acquire_on_startup"`
	TimeoutSeconds   int     `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// FavoritesConfig selects the key-value backend holding the favorites slot.
type FavoritesConfig struct {
	Backend string `mapstructure:"BACKEND" yaml:"backend"`
	Key     string `mapstructure:"KEY" yaml:"key"`
}

// NotificationConfig holds configuration for the external notification facade API.
type NotificationConfig struct {
	// Enabled makes the channel available at all.
	Enabled bool   `mapstructure:"ENABLED" yaml:"enabled"`
	APIUrl  string `mapstructure:"API_URL" yaml:"api_url"`
	APIKey  string `mapstructure:"API_KEY" yaml:"api_key"`
	// UserID is the recipient registered with the facade.
	UserID         string `mapstructure:"USER_ID" yaml:"user_id"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	// PermissionGranted is the initial permission state; it can be changed at
	// runtime through the permission endpoint.
	PermissionGranted bool `mapstructure:"PERMISSION_GRANTED" yaml:"permission_granted"`
}

// WorkerPoolConfig holds configuration for the notification worker pool.
type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	QueueSize              int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// RefreshConfig schedules periodic refetches for the current location.
// An empty Cron disables the scheduler.
type RefreshConfig struct {
	Cron string `mapstructure:"CRON" yaml:"cron"`
}

// RateLimitConfig limits place searches per client, Nominatim allows about
// one request per second.
type RateLimitConfig struct {
	SearchRequestsPerMinute int `mapstructure:"SEARCH_REQUESTS_PER_MINUTE" yaml:"search_requests_per_minute"`
	WindowSeconds           int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server       ServerConfig       `mapstructure:"SERVER" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"DATABASE" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"REDIS" yaml:"redis"`
	Ticketmaster TicketmasterConfig `mapstructure:"TICKETMASTER" yaml:"ticketmaster"`
	Geocoding    GeocodingConfig    `mapstructure:"GEOCODING" yaml:"geocoding"`
	Device       DeviceConfig       `mapstructure:"DEVICE" yaml:"device"`
	Favorites    FavoritesConfig    `mapstructure:"FAVORITES" yaml:"favorites"`
	Notification NotificationConfig `mapstructure:"NOTIFICATION" yaml:"notification"`
	WorkerPool   WorkerPoolConfig   `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Refresh      RefreshConfig      `mapstructure:"REFRESH" yaml:"refresh"`
	RateLimit    RateLimitConfig    `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TIMEZONE", "Local")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "neoevents")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 4)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("TICKETMASTER.API_KEY", "")
	v.SetDefault("TICKETMASTER.BASE_URL", "https://app.ticketmaster.com/discovery/v2")
	v.SetDefault("TICKETMASTER.RADIUS_KM", 50)
	v.SetDefault("TICKETMASTER.TIMEOUT_SECONDS", 10)
	v.SetDefault("GEOCODING.BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODING.USER_AGENT", "NeoEvents Backend (https://github.com/NomadCrew/neoevents)")
	v.SetDefault("GEOCODING.TIMEOUT_SECONDS", 10)
	v.SetDefault("DEVICE.PROVIDER", DeviceProviderIPGeo)
	v.SetDefault("DEVICE.IPGEO_URL", "http://ip-api.com/json")
	v.SetDefault("DEVICE.LATITUDE", 43.3)
	v.SetDefault("DEVICE.LONGITUDE", -3.0)
	v.SetDefault("DEVICE.ACQUIRE_ON_STARTUP", true)
	v.SetDefault("DEVICE.TIMEOUT_SECONDS", 5)
	v.SetDefault("FAVORITES.BACKEND", FavoritesBackendRedis)
	v.SetDefault("FAVORITES.KEY", "neo_favs")
	v.SetDefault("NOTIFICATION.ENABLED", false)
	v.SetDefault("NOTIFICATION.API_URL", "")
	v.SetDefault("NOTIFICATION.API_KEY", "")
	v.SetDefault("NOTIFICATION.USER_ID", "")
	v.SetDefault("NOTIFICATION.TIMEOUT_SECONDS", 10)
	v.SetDefault("NOTIFICATION.PERMISSION_GRANTED", false)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 2)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("REFRESH.CRON", "")
	v.SetDefault("RATE_LIMIT.SEARCH_REQUESTS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
}

var envBindings = [][2]string{
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	{"SERVER.TIMEZONE", "TIMEZONE"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"TICKETMASTER.API_KEY", "TICKETMASTER_API_KEY"},
	{"TICKETMASTER.BASE_URL", "TICKETMASTER_BASE_URL"},
	{"TICKETMASTER.RADIUS_KM", "TICKETMASTER_RADIUS_KM"},
	{"GEOCODING.BASE_URL", "GEOCODING_BASE_URL"},
	{"GEOCODING.USER_AGENT", "GEOCODING_USER_AGENT"},
	{"DEVICE.PROVIDER", "DEVICE_PROVIDER"},
	{"DEVICE.IPGEO_URL", "DEVICE_IPGEO_URL"},
	{"DEVICE.LATITUDE", "DEVICE_LATITUDE"},
	{"DEVICE.LONGITUDE", "DEVICE_LONGITUDE"},
	{"DEVICE.ACQUIRE_ON_STARTUP", "DEVICE_ACQUIRE_ON_STARTUP"},
	{"FAVORITES.BACKEND", "FAVORITES_BACKEND"},
	{"FAVORITES.KEY", "FAVORITES_KEY"},
	{"NOTIFICATION.ENABLED", "NOTIFICATION_ENABLED"},
	{"NOTIFICATION.API_URL", "NOTIFICATION_API_URL"},
	{"NOTIFICATION.API_KEY", "NOTIFICATION_API_KEY"},
	{"NOTIFICATION.USER_ID", "NOTIFICATION_USER_ID"},
	{"NOTIFICATION.TIMEOUT_SECONDS", "NOTIFICATION_TIMEOUT_SECONDS"},
	{"NOTIFICATION.PERMISSION_GRANTED", "NOTIFICATION_PERMISSION_GRANTED"},
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
	{"REFRESH.CRON", "REFRESH_CRON"},
	{"RATE_LIMIT.SEARCH_REQUESTS_PER_MINUTE", "RATE_LIMIT_SEARCH_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it. When CONFIG_FILE is set the
// YAML file is read first and environment variables override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if err := v.BindEnv("CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"timezone", cfg.Server.Timezone,
		"favorites_backend", cfg.Favorites.Backend,
		"device_provider", cfg.Device.Provider,
		"ticketmaster_key", logger.MaskAPIKey(cfg.Ticketmaster.APIKey),
		"notifications_enabled", cfg.Notification.Enabled,
		"refresh_cron", cfg.Refresh.Cron,
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if cfg.Server.Timezone != "" && cfg.Server.Timezone != "Local" {
		if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", cfg.Server.Timezone, err)
		}
	}

	if cfg.Ticketmaster.APIKey == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("ticketmaster API key is required")
		}
		log.Warn("Ticketmaster API key is not set; event fetches will fail")
	}
	if _, err := url.ParseRequestURI(cfg.Ticketmaster.BaseURL); err != nil {
		return fmt.Errorf("invalid ticketmaster base URL: %w", err)
	}
	if cfg.Ticketmaster.RadiusKm <= 0 {
		return fmt.Errorf("ticketmaster radius must be positive")
	}
	if _, err := url.ParseRequestURI(cfg.Geocoding.BaseURL); err != nil {
		return fmt.Errorf("invalid geocoding base URL: %w", err)
	}

	switch cfg.Device.Provider {
	case DeviceProviderIPGeo, DeviceProviderStatic, DeviceProviderNone:
	default:
		return fmt.Errorf("unknown device provider '%s'", cfg.Device.Provider)
	}

	switch cfg.Favorites.Backend {
	case FavoritesBackendMemory:
		log.Warn("Favorites are kept in memory and will not survive a restart")
	case FavoritesBackendRedis:
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis favorites backend")
		}
	case FavoritesBackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database host and name are required for the postgres favorites backend")
		}
	default:
		return fmt.Errorf("unknown favorites backend '%s'", cfg.Favorites.Backend)
	}
	if cfg.Favorites.Key == "" {
		return fmt.Errorf("favorites key is required")
	}

	if err := validateNotificationConfig(&cfg.Notification, log); err != nil {
		return err
	}

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	if cfg.RateLimit.SearchRequestsPerMinute <= 0 {
		return fmt.Errorf("search rate limit must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

// validateNotificationConfig validates the notification facade configuration.
// If enabled but missing API key or recipient, it auto-disables the channel with a warning.
func validateNotificationConfig(cfg *NotificationConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.APIUrl); err != nil {
		return fmt.Errorf("invalid notification API URL: %w", err)
	}

	if cfg.APIKey == "" || cfg.UserID == "" {
		log.Warn("Notification API key or user id not set, auto-disabling notifications")
		cfg.Enabled = false
		return nil
	}

	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("notification timeout must be positive")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
