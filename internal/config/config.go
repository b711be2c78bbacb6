package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/cropdoctor/diagnosis-api/internal/repository/postgres"
	"github.com/cropdoctor/diagnosis-api/internal/triage"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database postgres.Config `mapstructure:"database"`
	Gateway  GatewayConfig   `mapstructure:"gateway"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Triage   triage.Config   `mapstructure:"triage"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// EnvOverrides are deployment-specific settings taken from the environment,
// overriding whatever the config file says.
type EnvOverrides struct {
	GatewayBaseURL string `envconfig:"GATEWAY_BASE_URL"`
	RedisURL       string `envconfig:"REDIS_URL"`
	DatabaseHost   string `envconfig:"DATABASE_HOST"`
	DatabasePass   string `envconfig:"DATABASE_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env EnvOverrides
	if err := envconfig.Process("cropdoctor", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.GatewayBaseURL != "" {
		config.Gateway.BaseURL = env.GatewayBaseURL
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
	if env.DatabaseHost != "" {
		config.Database.Host = env.DatabaseHost
	}
	if env.DatabasePass != "" {
		config.Database.Password = env.DatabasePass
	}

	return &config, nil
}
