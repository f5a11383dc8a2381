package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"io/fs"
	"os"
)

// LoadConfig читает yaml файл (если путь задан), затем .env и переменные окружения.
// Переменные окружения имеют приоритет над файлом.
func LoadConfig(filePath string, envPath string) (*Config, error) {
	cfg := defaultConfig()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга .yaml файла: %w", err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ошибка чтения .env файла %s: %w", envPath, err)
		}
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"SERVER_ADDRESS":          &cfg.Server.Address,
		"DATABASE_DRIVER":         &cfg.Database.Driver,
		"DATABASE_CONNECTION_URL": &cfg.Database.ConnectionString,
		"JWT_SECRET_KEY":          &cfg.JWT.SecretKey,
		"JWT_ACCESS_TOKEN_TTL":    &cfg.JWT.AccessTokenTTL,
		"JWT_REFRESH_TOKEN_TTL":   &cfg.JWT.RefreshTokenTTL,
		"WEBHOOK_URL":             &cfg.Webhook.URL,
		"LOG_LEVEL":               &cfg.Logger.Level,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok {
			*target = value
		}
	}
	if os.Getenv("LOG_DEV") == "1" {
		cfg.Logger.Dev = true
	}
}
