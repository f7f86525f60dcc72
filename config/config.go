package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	Saga     SagaConfig
	Log      LogConfig
}

type ServerConfig struct {
	HTTPPort        int
	ShutdownTimeout time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers              []string
	ProducerRetryMax     int
	ProducerRequiredAcks int
	BookingGroupID       string
	PaymentGroupID       string
	CallbackGroupID      string
	BookingWorkers       int
	PaymentWorkers       int
	CallbackWorkers      int
}

type PaymentConfig struct {
	MixxBaseURL      string
	MixxAPIKey       string
	MixxAPISecret    string
	MixxPayeeMSISDN  string
	MixxTimeout      time.Duration
	BmslgOwnerID     string
	BmslgUsernameEnc string
	BmslgPasswordEnc string
	CipherKey        string
	CallbackBaseURL  string
}

type SagaConfig struct {
	SweepInterval   time.Duration
	StaleThreshold  time.Duration
	SweepBatchSize  int
	ShutdownTimeout time.Duration
	AuditTTL        time.Duration
}

type LogConfig struct {
	Level    string
	Mode     string
	Encoding string
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			HTTPPort:        getEnvAsInt("HTTP_PORT", 8080),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             getEnv("POSTGRES_DSN", "host=localhost user=busbook password=busbook dbname=busbook port=5432 sslmode=disable"),
			MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Kafka: KafkaConfig{
			Brokers:              getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ProducerRetryMax:     getEnvAsInt("KAFKA_PRODUCER_RETRY_MAX", 3),
			ProducerRequiredAcks: getEnvAsInt("KAFKA_PRODUCER_REQUIRED_ACKS", -1),
			BookingGroupID:       getEnv("KAFKA_BOOKING_GROUP_ID", "busbook-booking-workers"),
			PaymentGroupID:       getEnv("KAFKA_PAYMENT_GROUP_ID", "busbook-payment-workers"),
			CallbackGroupID:      getEnv("KAFKA_CALLBACK_GROUP_ID", "busbook-callback-workers"),
			BookingWorkers:       getEnvAsInt("KAFKA_BOOKING_WORKERS", 3),
			PaymentWorkers:       getEnvAsInt("KAFKA_PAYMENT_WORKERS", 3),
			CallbackWorkers:      getEnvAsInt("KAFKA_CALLBACK_WORKERS", 3),
		},
		Payment: PaymentConfig{
			MixxBaseURL:      getEnv("MIXX_BASE_URL", "https://openapi.mixx.co.tz"),
			MixxAPIKey:       getEnv("MIXX_API_KEY", ""),
			MixxAPISecret:    getEnv("MIXX_API_SECRET", ""),
			MixxPayeeMSISDN:  getEnv("MIXX_PAYEE_MSISDN", ""),
			MixxTimeout:      getEnvAsDuration("MIXX_TIMEOUT", 15*time.Second),
			BmslgOwnerID:     getEnv("BMSLG_OWNER_ID", ""),
			BmslgUsernameEnc: getEnv("BMSLG_USERNAME_ENC", ""),
			BmslgPasswordEnc: getEnv("BMSLG_PASSWORD_ENC", ""),
			CipherKey:        getEnv("CREDENTIAL_CIPHER_KEY", ""),
			CallbackBaseURL:  getEnv("PAYMENT_CALLBACK_BASE_URL", "http://localhost:8080/api/v1/payments/callback"),
		},
		Saga: SagaConfig{
			SweepInterval:   getEnvAsDuration("SAGA_SWEEP_INTERVAL", 5*time.Minute),
			StaleThreshold:  getEnvAsDuration("SAGA_STALE_THRESHOLD", 15*time.Minute),
			SweepBatchSize:  getEnvAsInt("SAGA_SWEEP_BATCH_SIZE", 50),
			ShutdownTimeout: getEnvAsDuration("SAGA_SHUTDOWN_TIMEOUT", 30*time.Second),
			AuditTTL:        getEnvAsDuration("SAGA_AUDIT_TTL", 72*time.Hour),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Mode:     getEnv("LOG_MODE", "development"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("http port must be in (0, 65535]")
	}

	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}

	if c.Kafka.BookingWorkers <= 0 || c.Kafka.PaymentWorkers <= 0 || c.Kafka.CallbackWorkers <= 0 {
		return fmt.Errorf("consumer worker counts must be positive")
	}

	if c.Env == "production" {
		if c.Payment.MixxAPIKey == "" || c.Payment.MixxAPISecret == "" {
			return fmt.Errorf("MIXX credentials must be set in production")
		}
		if c.Payment.CipherKey == "" {
			return fmt.Errorf("credential cipher key must be set in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Split by comma
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
