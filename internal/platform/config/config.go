package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, loaded from the environment.
type Config struct {
	Server     Server
	Log        Log
	Auth       Auth
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Enrollment Enrollment
	RateLimit  RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"REGISTRAR_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Auth configures token issuance. The default signing key is for local
// development only and Validate rejects it in production mode.
type Auth struct {
	JWTSigningKey  string        `env:"JWT_SECRET" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"registrar"`
	JWTAudience    string        `env:"JWT_AUDIENCE" envDefault:"registrar-api"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"10m"`
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
}

// PostgresConfig selects the persistent store. An empty DSN keeps every
// store in memory.
type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	MigrateOnStart  bool          `env:"DB_MIGRATE_ON_START" envDefault:"true"`
}

// RedisConfig backs the token revocation list. Empty URL means in-memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig backs the audit sink. No brokers means an in-memory sink.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"registrar.audit"`
	Partitions int32    `env:"KAFKA_AUDIT_PARTITIONS" envDefault:"3"`
}

type Enrollment struct {
	OperationTimeout time.Duration `env:"ENROLLMENT_OP_TIMEOUT" envDefault:"5s"`
	LockShards       int           `env:"ENROLLMENT_LOCK_SHARDS" envDefault:"128"`
	AuditBuffer      int           `env:"AUDIT_BUFFER" envDefault:"1024"`
}

// RateLimit throttles login attempts per client IP and email.
type RateLimit struct {
	AuthAttempts int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	AuthWindow   time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`
	Disabled     bool          `env:"RATE_LIMIT_DISABLED" envDefault:"false"`
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.Auth.Production && c.Auth.JWTSigningKey == devSigningKey {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.Enrollment.OperationTimeout <= 0 {
		errs = append(errs, errors.New("ENROLLMENT_OP_TIMEOUT must be positive"))
	}
	if c.RateLimit.AuthAttempts <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}
