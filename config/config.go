package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logger   LoggerConfig   `yaml:"logger"`
}

type ServerConfig struct {
	Address  string `yaml:"address"`
	BasePath string `yaml:"base_path"`
}

type DatabaseConfig struct {
	Driver           string `yaml:"driver"`
	ConnectionString string `yaml:"connection_string"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	Issuer          string `yaml:"issuer"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// AccessTTL время жизни access токена
func (jwtConfig JWTConfig) AccessTTL() (time.Duration, error) {
	return parsePositiveDuration("access_token_ttl", jwtConfig.AccessTokenTTL)
}

// RefreshTTL время жизни refresh токена
func (jwtConfig JWTConfig) RefreshTTL() (time.Duration, error) {
	return parsePositiveDuration("refresh_token_ttl", jwtConfig.RefreshTokenTTL)
}

func (webhookConfig WebhookConfig) TimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("webhook.timeout", webhookConfig.Timeout)
}

func parsePositiveDuration(name string, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("некорректное значение %s: %w", name, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("значение %s должно быть положительным: %s", name, value)
	}
	return duration, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:  ":8080",
			BasePath: "/api-auth",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		JWT: JWTConfig{
			Issuer:          "AuthService",
			AccessTokenTTL:  "30s",
			RefreshTokenTTL: "4380h",
		},
		Webhook: WebhookConfig{
			Timeout: "3s",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

func (cfg *Config) validate() error {
	if cfg.JWT.SecretKey == "" {
		return fmt.Errorf("не задан секретный ключ jwt")
	}
	if _, err := cfg.JWT.AccessTTL(); err != nil {
		return err
	}
	if _, err := cfg.JWT.RefreshTTL(); err != nil {
		return err
	}
	if _, err := cfg.Webhook.TimeoutDuration(); err != nil {
		return err
	}
	switch cfg.Database.Driver {
	case "memory":
	case "postgres":
		if cfg.Database.ConnectionString == "" {
			return fmt.Errorf("не задана строка подключения к БД")
		}
	default:
		return fmt.Errorf("неподдерживаемый драйвер БД: %s", cfg.Database.Driver)
	}
	return nil
}
