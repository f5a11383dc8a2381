package server

import (
	"AuthService/config"
	"AuthService/internal"
	"AuthService/internal/ports"
	"AuthService/internal/repository"
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"net/http"
)

// Storage хранилища токенов и пользователей для выбранного драйвера.
// Database равен nil для драйвера memory.
type Storage struct {
	Database               *internal.Database
	RefreshTokenRepository ports.RefreshTokenRepositoryInterface
	UserRepository         ports.UserRepositoryInterface
}

func (storage *Storage) Close() error {
	if storage.Database == nil {
		return nil
	}
	return storage.Database.Close()
}

// SetupStorage подключается к БД и применяет миграции либо создает хранилища в памяти
func SetupStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	if cfg.Driver == "memory" {
		logger.Warn("используется хранилище в памяти, данные не сохраняются между запусками")
		return &Storage{
			RefreshTokenRepository: repository.NewMemoryRefreshTokenRepository(),
			UserRepository:         repository.NewMemoryUserRepository(),
		}, nil
	}

	database, err := SetupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return &Storage{
		Database:               database,
		RefreshTokenRepository: repository.NewRefreshTokenRepository(database),
		UserRepository:         repository.NewUserRepository(database),
	}, nil
}

func SetupDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(cfg.Driver, cfg.ConnectionString, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения: %w", err)
	}
	return database, nil
}

func SetupServer(cfg config.ServerConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	return server, router
}
