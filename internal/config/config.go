package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port         int `envconfig:"PORT" default:"5000"`
	FallbackPort int `envconfig:"FALLBACK_PORT" default:"5001"`
	GRPCPort     int `envconfig:"GRPC_PORT" default:"0"`

	AdminPassword  string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	AdminToken     string `envconfig:"ADMIN_TOKEN"`
	ConsoleEnabled bool   `envconfig:"CONSOLE_ENABLED" default:"true"`

	HistoryLimit  int           `envconfig:"HISTORY_LIMIT" default:"50"`
	SendBuffer    int           `envconfig:"SEND_BUFFER" default:"256"`
	MaxFrameBytes int64         `envconfig:"MAX_FRAME_BYTES" default:"65536"`
	WriteTimeout  time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"10"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"messenger.events"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"messenger"`
	Environment  string `envconfig:"ENVIRONMENT" default:"dev"`
	DebugRoutes  bool   `envconfig:"DEBUG_ROUTES" default:"false"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.FallbackPort < 0 || c.FallbackPort > 65535 {
		return fmt.Errorf("invalid FALLBACK_PORT %d", c.FallbackPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("SEND_BUFFER must be positive")
	}
	if c.MaxFrameBytes <= 0 {
		return fmt.Errorf("MAX_FRAME_BYTES must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}
