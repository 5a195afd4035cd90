package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Ingest    IngestConfig
	Worker    WorkerConfig
	Logging   LoggingConfig
	EventBus  EventBusConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	CORSOrigin      string
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the storage backend: an empty URL runs on the
// in-memory store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the reference lookup cache when URL is set.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type IngestConfig struct {
	MaxUploadBytes    int64
	MaxRows           int
	LookupConcurrency int
	LookupRPS         float64
	LookupRetries     int
	LookupRetryDelay  time.Duration
	PipelineTimeout   time.Duration
}

type WorkerConfig struct {
	PoolSize   int
	MaxRetries int
}

type LoggingConfig struct {
	Level string
}

type EventBusConfig struct {
	ChannelBufferSize int
}

type SchedulerConfig struct {
	OfferExpirySpec string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "5000"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:3000"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getDurationEnv("LOOKUP_CACHE_TTL", 10*time.Minute),
		},
		Ingest: DefaultIngestConfig(),
		Worker: WorkerConfig{
			PoolSize:   getIntEnv("WORKER_POOL_SIZE", 4),
			MaxRetries: getIntEnv("MAX_RETRIES", 5),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		EventBus: EventBusConfig{
			ChannelBufferSize: getIntEnv("EVENT_CHANNEL_BUFFER_SIZE", 1000),
		},
		Scheduler: SchedulerConfig{
			OfferExpirySpec: getEnv("OFFER_EXPIRY_SPEC", "@every 1h"),
		},
	}
}

// DefaultIngestConfig reads the ingestion limits from the environment,
// falling back to defaults. The CLI uses it without the rest of Load.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		MaxUploadBytes:    getInt64Env("MAX_UPLOAD_BYTES", 10<<20),
		MaxRows:           getIntEnv("MAX_ROWS", 5000),
		LookupConcurrency: getIntEnv("LOOKUP_CONCURRENCY", 8),
		LookupRPS:         getFloatEnv("LOOKUP_RPS", 50),
		LookupRetries:     getIntEnv("LOOKUP_RETRIES", 2),
		LookupRetryDelay:  getDurationEnv("LOOKUP_RETRY_DELAY", 100*time.Millisecond),
		PipelineTimeout:   getDurationEnv("PIPELINE_TIMEOUT", 60*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getInt64Env(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getFloatEnv(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %g", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}
