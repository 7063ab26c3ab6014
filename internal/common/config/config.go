package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP struct {
		Addr string `json:"addr"`
	} `json:"http"`
	Database struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		Name     string `json:"name"`
	} `json:"database"`
	RabbitMQ struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		Exchange string `json:"exchange"`
	} `json:"rabbitmq"`
	Ranking struct {
		URL            string `json:"url"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"ranking"`
	Gateway struct {
		BaseURL        string `json:"base_url"`
		KeyID          string `json:"key_id"`
		KeySecret      string `json:"key_secret"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"gateway"`
	Auth struct {
		JWTSecret string `json:"jwt_secret"`
	} `json:"auth"`
	Log struct {
		Level string `json:"level"`
	} `json:"log"`
}

func defaults() Config {
	var cfg Config
	cfg.HTTP.Addr = ":3000"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "fixroute_user"
	cfg.Database.Password = "fixroute_pass"
	cfg.Database.Name = "fixroute_db"
	cfg.RabbitMQ.Host = "localhost"
	cfg.RabbitMQ.Port = 5672
	cfg.RabbitMQ.User = "guest"
	cfg.RabbitMQ.Password = "guest"
	cfg.RabbitMQ.Exchange = "booking_events"
	cfg.Ranking.URL = "http://127.0.0.1:9000/predict"
	cfg.Ranking.TimeoutSeconds = 5
	cfg.Gateway.BaseURL = "https://api.razorpay.com"
	cfg.Gateway.TimeoutSeconds = 10
	cfg.Log.Level = "info"
	return cfg
}

// Load reads configuration from an optional YAML file at path and merges
// FIXROUTE_ prefixed environment variables on top, e.g.
// FIXROUTE_DATABASE__HOST overrides database.host. An empty path loads
// defaults plus environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("FIXROUTE_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fixroute_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	return &cfg, nil
}

// RankingTimeout returns the bound applied to Ranking Service calls.
func (c *Config) RankingTimeout() time.Duration {
	return time.Duration(c.Ranking.TimeoutSeconds) * time.Second
}

// GatewayTimeout returns the bound applied to Payment Gateway calls.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}
