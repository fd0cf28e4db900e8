package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	AutoMigrate  bool
}

type RedisConfig struct {
	Addr     string
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	EventCreated      string
	EventDeleted      string
	AttendanceChecked string
}

type AuthConfig struct {
	OIDCIssuer string
	// DevUnverified accepts bearer tokens without signature verification.
	// Only intended for local development without an identity provider.
	DevUnverified bool
}

type EventsConfig struct {
	// RecentLimit bounds how many events a group listing returns.
	RecentLimit int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			AutoMigrate:  getEnvBool("AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			CacheTTL: time.Duration(getEnvInt("EVENT_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				EventCreated:      getEnv("KAFKA_TOPIC_EVENT_CREATED", "attendly.event.created"),
				EventDeleted:      getEnv("KAFKA_TOPIC_EVENT_DELETED", "attendly.event.deleted"),
				AttendanceChecked: getEnv("KAFKA_TOPIC_CHECKED_IN", "attendly.attendance.checked_in"),
			},
		},
		Auth: AuthConfig{
			OIDCIssuer:    getEnv("OIDC_ISSUER", ""),
			DevUnverified: getEnvBool("AUTH_DEV_UNVERIFIED", false),
		},
		Events: EventsConfig{
			RecentLimit: getEnvInt("EVENTS_RECENT_LIMIT", 30),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
