package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage driver names accepted for STORAGE_DRIVER.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config aggregates runtime configuration for the service. It is built
// once at process start and passed by reference; nothing mutates it
// afterwards.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Admin    AdminConfig
	Payment  PaymentConfig
	Uploads  UploadConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	StatsSnapshotMinutes  int
}

// StorageConfig selects and locates the record store backend.
type StorageConfig struct {
	Driver   string
	DataDir  string
	AuditLog string
}

// PostgresConfig holds DB connection values for the postgres backend.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	EnsureSchema   bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior. Format is "json" or
// "console"; anything else falls back to json.
type LoggerConfig struct {
	Level  string
	Format string
}

// AdminConfig defines the administrator capability parameters. Secret is
// compared in constant time; when SecretHash is set it takes precedence
// and the bcrypt comparison is used instead.
type AdminConfig struct {
	Secret          string
	SecretHash      string
	JWTSecret       string
	TokenTTLMinutes int
}

// PaymentConfig carries the mobile-money destination. ReceivingPhone is
// snapshotted onto each payment record at creation time.
type PaymentConfig struct {
	ReceivingPhone string
	DefaultMethod  string
}

// UploadConfig governs image ingestion.
type UploadConfig struct {
	Dir          string
	MaxFileBytes int64
	MaxFiles     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := getEnv("STORAGE_DRIVER", DriverFile)
	switch driver {
	case DriverFile, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "marketplace-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			StatsSnapshotMinutes:  getEnvAsInt("STATS_SNAPSHOT_MINUTES", 0),
		},
		Storage: StorageConfig{
			Driver:   driver,
			DataDir:  getEnv("STORAGE_DATA_DIR", "data"),
			AuditLog: getEnv("STORAGE_AUDIT_LOG", "data/audit.log"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			EnsureSchema:   getEnvAsBool("POSTGRES_ENSURE_SCHEMA", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Admin: AdminConfig{
			Secret:          os.Getenv("ADMIN_SECRET"),
			SecretHash:      os.Getenv("ADMIN_SECRET_HASH"),
			JWTSecret:       getEnv("ADMIN_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("ADMIN_TOKEN_TTL_MINUTES", 60),
		},
		Payment: PaymentConfig{
			ReceivingPhone: getEnv("PAYMENT_RECEIVING_PHONE", ""),
			DefaultMethod:  getEnv("PAYMENT_DEFAULT_METHOD", "mobile_money"),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxFileBytes: int64(getEnvAsInt("UPLOAD_MAX_FILE_BYTES", 5*1024*1024)),
			MaxFiles:     getEnvAsInt("UPLOAD_MAX_FILES", 5),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StatsSnapshotInterval returns how often the stats worker logs a
// snapshot, zero disables it.
func (a AppConfig) StatsSnapshotInterval() time.Duration {
	if a.StatsSnapshotMinutes <= 0 {
		return 0
	}
	return time.Duration(a.StatsSnapshotMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
