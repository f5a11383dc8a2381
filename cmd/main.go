package main

import (
	"AuthService/config"
	"AuthService/config/server"
	"AuthService/internal/handler"
	"AuthService/internal/logger"
	"AuthService/internal/notifier"
	"AuthService/internal/security"
	"AuthService/internal/service"
	"context"
	"errors"
	"flag"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "", "путь к yaml файлу конфигурации")
	envPath := flag.String("env", ".env", "путь к .env файлу")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, *envPath)
	if err != nil {
		log.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("ошибка создания логгера: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// значения уже проверены в LoadConfig
	accessTokenTTL, _ := cfg.JWT.AccessTTL()
	refreshTokenTTL, _ := cfg.JWT.RefreshTTL()
	webhookTimeout, _ := cfg.Webhook.TimeoutDuration()

	storage, err := server.SetupStorage(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("не удалось подготовить хранилище", zap.Error(err))
	}
	defer storage.Close()

	httpServer, router := server.SetupServer(cfg.Server)

	jwtService := security.NewJWTService([]byte(cfg.JWT.SecretKey), cfg.JWT.Issuer)
	webhookNotifier := notifier.NewWebhookNotifier(cfg.Webhook.URL, webhookTimeout, appLogger)
	authenticationService := service.NewAuthenticationService(
		storage.RefreshTokenRepository,
		storage.UserRepository,
		jwtService,
		webhookNotifier,
		accessTokenTTL,
		refreshTokenTTL,
		appLogger,
	)
	authenticationHandler := handler.NewAuthenticationHandler(authenticationService, appLogger)

	router.Route(cfg.Server.BasePath, authenticationHandler.Routes(security.JWTMiddleware(jwtService, appLogger)))

	runServer(ctx, httpServer, appLogger)
}

func runServer(ctx context.Context, server *http.Server, appLogger *zap.Logger) {
	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("сервер запущен", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("ошибка работы сервера", zap.Error(err))
			return
		}
	case sig := <-signalChannel:
		appLogger.Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		appLogger.Error("ошибка при остановке сервера", zap.Error(err))
	} else {
		appLogger.Info("сервер успешно остановлен")
	}
}
