package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Storage     string   `env:"STORAGE_DRIVER, default=mongo"`
	CORSOrigins []string `env:"CORS_ORIGINS,   default=*"`

	JWT      JWTConfig
	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Notifier NotifierConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=taskflow-identity"`
}

type AuthConfig struct {
	BcryptCost     int `env:"BCRYPT_COST,          default=10"`
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT_RPM, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskflow"`
}

// RedisConfig configures the notification publisher. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type NotifierConfig struct {
	Channel string `env:"NOTIFY_CHANNEL, default=taskflow.task-events"`
	Workers int    `env:"NOTIFY_WORKERS, default=4"`
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWithLookuper(ctx, envconfig.OsLookuper())
}

// LoadWithLookuper resolves configuration from an arbitrary source.
func LoadWithLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Storage {
	case StorageMongo, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.Storage)
	}
	return &cfg, nil
}
