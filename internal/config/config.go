// Package config loads the application configuration.
//
// Values are layered (low to high precedence): built-in defaults, an
// optional YAML file named by APITOUR_CONFIG, and APITOUR_* environment
// variables (a `.env` file is loaded into the environment first). Nested
// keys use a double underscore in the environment:
//
//	APITOUR_SERVER__PORT=8080          -> server.port
//	APITOUR_STORE__DRIVER=redis        -> store.driver
//	APITOUR_OBSERVABILITY__LOGGING__LEVEL=debug
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	envPrefix  = "APITOUR_"
	fileEnvVar = "APITOUR_CONFIG"

	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Jobs          JobsConfig           `koanf:"jobs"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

type ServerConfig struct {
	Port               string          `koanf:"port" validate:"required"`
	ReadTimeout        int             `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int             `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int             `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string        `koanf:"cors_allowed_origins" validate:"required,min=1"`
	RateLimit          RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig throttles requests per client IP. Rate is requests per
// second.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	Rate    float64 `koanf:"rate" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `koanf:"burst" validate:"gte=0"`
}

// StoreConfig selects the fixture store backend.
type StoreConfig struct {
	Driver    string `koanf:"driver" validate:"required,oneof=memory redis"`
	KeyPrefix string `koanf:"key_prefix" validate:"required"`
}

type RedisConfig struct {
	Address string `koanf:"address" validate:"required_if=Enabled true"`
	Enabled bool   `koanf:"enabled"`
}

// JobsConfig enables the asynq worker; it needs Redis.
type JobsConfig struct {
	Enabled     bool `koanf:"enabled"`
	Concurrency int  `koanf:"concurrency" validate:"min=1"`
}

type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from" validate:"required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Rate:  20,
				Burst: 40,
			},
		},
		Store: StoreConfig{
			Driver:    StoreDriverMemory,
			KeyPrefix: "apitour",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Jobs: JobsConfig{
			Concurrency: 10,
		},
		Integration: IntegrationConfig{
			EmailFrom: "API Tour <onboarding@resend.dev>",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig builds the Config from defaults, file and environment and
// validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(fileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not load config file %s", path)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		if s == fileEnvVar {
			return ""
		}
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load env variables")
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal config")
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Finalize fills derived values and validates the config.
func (c *Config) Finalize() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.Environment = c.Primary.Env

	if c.Store.Driver == StoreDriverRedis || c.Jobs.Enabled {
		c.Redis.Enabled = true
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}

	if err := c.Observability.Validate(); err != nil {
		return errors.Wrap(err, "invalid observability config")
	}

	return nil
}
