package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Service  ServiceConfig
	Store    StoreConfig
	Activity ActivityConfig
	Cache    CacheConfig
	Presence PresenceConfig
	Logging  LoggingConfig
}

// ServiceConfig holds service-level configuration
type ServiceConfig struct {
	Name string
	Port int
	// TrackTalkgroupVisitors extends presence tracking to the
	// talkgroups endpoint. Off by default: the legacy behavior counts
	// visitors on the units endpoint only.
	TrackTalkgroupVisitors bool
}

// StoreConfig holds event-store configuration
type StoreConfig struct {
	Path string
}

// ActivityConfig holds aggregation configuration
type ActivityConfig struct {
	Window string
}

// CacheConfig holds snapshot-cache configuration
type CacheConfig struct {
	TTL         string
	MaxCost     int64 // Ristretto: maximum memory cost in bytes
	NumCounters int64 // Ristretto: number of counters for TinyLFU
	BufferItems int64 // Ristretto: buffer size for async operations
	Metrics     bool  // Ristretto: enable cache metrics
}

// PresenceConfig holds visitor-tracking configuration
type PresenceConfig struct {
	Timeout string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Service: ServiceConfig{
			Name:                   getEnvOrDefault("SERVICE_NAME", "activity-service"),
			Port:                   getEnvIntOrDefault("SERVICE_PORT", 5001),
			TrackTalkgroupVisitors: getEnvBoolOrDefault("TRACK_TALKGROUP_VISITORS", false),
		},
		Store: StoreConfig{
			Path: getEnvOrDefault("DB_PATH", "rdio-scanner.db"),
		},
		Activity: ActivityConfig{
			Window: getEnvOrDefault("ACTIVITY_WINDOW", "1h"),
		},
		Cache: CacheConfig{
			TTL:         getEnvOrDefault("CACHE_TTL", "5s"),
			MaxCost:     getEnvInt64OrDefault("CACHE_MAX_COST", 4*1024*1024), // 4MB
			NumCounters: getEnvInt64OrDefault("CACHE_NUM_COUNTERS", 1000),
			BufferItems: getEnvInt64OrDefault("CACHE_BUFFER_ITEMS", 64),
			Metrics:     getEnvBoolOrDefault("CACHE_METRICS", true),
		},
		Presence: PresenceConfig{
			Timeout: getEnvOrDefault("PRESENCE_TIMEOUT", "300s"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	// Validate required fields
	if config.Store.Path == "" {
		return nil, fmt.Errorf("DB_PATH environment variable must not be empty")
	}
	if _, err := config.Activity.GetWindow(); err != nil {
		return nil, fmt.Errorf("invalid ACTIVITY_WINDOW: %w", err)
	}
	if _, err := config.Cache.GetTTL(); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if _, err := config.Presence.GetTimeout(); err != nil {
		return nil, fmt.Errorf("invalid PRESENCE_TIMEOUT: %w", err)
	}

	return config, nil
}

// GetWindow returns the activity window as a duration
func (c *ActivityConfig) GetWindow() (time.Duration, error) {
	return time.ParseDuration(c.Window)
}

// GetTTL returns the cache TTL as a duration
func (c *CacheConfig) GetTTL() (time.Duration, error) {
	return time.ParseDuration(c.TTL)
}

// GetTimeout returns the presence timeout as a duration
func (c *PresenceConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
