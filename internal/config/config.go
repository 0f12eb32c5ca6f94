package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the service reads from the environment.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" default:"host=localhost user=user password=password dbname=safecircledb port=5432 sslmode=disable"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		ModeratorID int64  `envconfig:"TG_MODERATOR_CHAT_ID"`
	}

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads the config from the environment.
func Load() Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
