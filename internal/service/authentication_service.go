package service

import (
	"AuthService/internal/model"
	"AuthService/internal/ports"
	"AuthService/internal/repository"
	"AuthService/internal/security"
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"reflect"
	"strings"
	"time"
)

type AuthenticationService struct {
	RefreshTokenRepository ports.RefreshTokenRepositoryInterface
	UserRepository         ports.UserRepositoryInterface
	JWTService             ports.JWTServiceInterface
	Notifier               ports.NotifierInterface
	Logger                 *zap.Logger

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Now подменяется в тестах
	Now func() time.Time
}

var validate = newValidator()

func NewAuthenticationService(
	refreshTokenRepository ports.RefreshTokenRepositoryInterface,
	userRepository ports.UserRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	notifier ports.NotifierInterface,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	logger *zap.Logger,
) *AuthenticationService {
	return &AuthenticationService{
		RefreshTokenRepository: refreshTokenRepository,
		UserRepository:         userRepository,
		JWTService:             jwtService,
		Notifier:               notifier,
		Logger:                 logger,
		AccessTokenTTL:         accessTokenTTL,
		RefreshTokenTTL:        refreshTokenTTL,
		Now:                    time.Now,
	}
}

type registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,bcrypt_len"`
}

// bcrypt принимает не больше 72 байт, а max считает руны
const maxPasswordBytes = 72

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// IssueForUser выпускает access токен и связанный с ним refresh токен.
// Запись refresh токена сохраняется одной вставкой, частичного состояния не бывает.
func (service *AuthenticationService) IssueForUser(ctx context.Context, user *model.User) (*model.TokensPair, error) {
	tokensPair, refreshToken, err := service.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := service.RefreshTokenRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("не удалось сохранить рефреш токен: %w", err)
	}

	return tokensPair, nil
}

func (service *AuthenticationService) AuthenticateCredentials(user *model.User, password string) bool {
	return service.UserRepository.VerifyPassword(user, password)
}

// Rotate обменивает истекший access токен и парный ему неиспользованный refresh токен на новую пару.
// Проверки идут строго по порядку, возвращается первая сработавшая причина.
func (service *AuthenticationService) Rotate(ctx context.Context, refreshToken string, accessToken string) (*model.TokensPair, error) {
	claims, err := service.JWTService.ValidateJWT(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: нет claim exp", ErrInvalidAccessToken)
	}

	now := service.now()
	if now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenNotYetExpired
	}

	storedRefreshToken, err := service.RefreshTokenRepository.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownRefreshToken
		}
		return nil, fmt.Errorf("не удалось найти рефреш токен: %w", err)
	}

	if storedRefreshToken.Used {
		service.reportReuse(ctx, storedRefreshToken)
		return nil, ErrAlreadyUsedToken
	}
	if storedRefreshToken.Reworked {
		return nil, ErrRevokedToken
	}
	if storedRefreshToken.IsExpired(now) {
		return nil, ErrExpiredRefreshToken
	}
	if storedRefreshToken.JwtID != claims.ID {
		return nil, ErrTokenBindingMismatch
	}

	user, err := service.UserRepository.FindByID(ctx, storedRefreshToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("не удалось найти владельца токена: %w", err)
	}

	tokensPair, newRefreshToken, err := service.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// сжигание старого токена и сохранение нового в одной транзакции
	err = service.RefreshTokenRepository.RotateRefreshToken(ctx, storedRefreshToken.Token, newRefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotRedeemable) {
			service.reportReuse(ctx, storedRefreshToken)
			return nil, ErrAlreadyUsedToken
		}
		if errors.Is(err, repository.ErrTokenRevoked) {
			return nil, ErrRevokedToken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownRefreshToken
		}
		return nil, fmt.Errorf("не удалось использовать токен: %w", err)
	}

	service.Logger.Debug("токены обновлены", zap.String("user_id", user.ID), zap.String("jti", newRefreshToken.JwtID))
	return tokensPair, nil
}

func (service *AuthenticationService) Register(ctx context.Context, name string, email string, password string) (*model.TokensPair, error) {
	if err := ValidateRequest(registration{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}

	user, err := service.UserRepository.CreateUser(ctx, &model.User{Username: name, Email: email}, password)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, &ValidationError{Errors: []string{repository.ErrUserAlreadyExists.Error()}}
		}
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &ValidationError{Errors: []string{passwordTooLongMessage("password")}}
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	service.Logger.Info("зарегистрирован пользователь", zap.String("user_id", user.ID))
	return service.IssueForUser(ctx, user)
}

func (service *AuthenticationService) Login(ctx context.Context, email string, password string) (*model.TokensPair, error) {
	if err := ValidateRequest(credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	user, err := service.UserRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			service.Logger.Debug("вход: пользователь не найден")
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if !service.AuthenticateCredentials(user, password) {
		service.Logger.Debug("вход: неверный пароль", zap.String("user_id", user.ID))
		return nil, ErrAuthenticationFailed
	}

	return service.IssueForUser(ctx, user)
}

func (service *AuthenticationService) RefreshToken(ctx context.Context, refreshToken string, accessToken string) (*model.TokensPair, error) {
	return service.Rotate(ctx, refreshToken, accessToken)
}

// RevokeRefreshToken помечает refresh токен отозванным. Отозвать можно только свой токен.
func (service *AuthenticationService) RevokeRefreshToken(ctx context.Context, userID string, refreshToken string) error {
	storedRefreshToken, err := service.RefreshTokenRepository.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownRefreshToken
		}
		return fmt.Errorf("не удалось найти рефреш токен: %w", err)
	}
	if storedRefreshToken.UserID != userID {
		return ErrUnknownRefreshToken
	}

	if err := service.RefreshTokenRepository.MarkRefreshTokenReworked(ctx, refreshToken); err != nil {
		return fmt.Errorf("не удалось отозвать рефреш токен: %w", err)
	}

	service.Logger.Info("refresh токен отозван", zap.String("user_id", userID), zap.String("jti", storedRefreshToken.JwtID))
	return nil
}

func (service *AuthenticationService) generateTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error) {
	accessToken, claims, err := service.JWTService.GenerateAccessToken(user, service.AccessTokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	refreshTokenStr, err := security.GenerateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	now := service.now().UTC()
	refreshToken := &model.RefreshToken{
		Token:     refreshTokenStr,
		JwtID:     claims.ID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpireAt:  now.Add(service.RefreshTokenTTL),
	}

	return &model.TokensPair{AccessToken: accessToken, RefreshToken: refreshTokenStr}, refreshToken, nil
}

// reportReuse вызывается, когда уже использованный refresh токен предъявлен повторно
func (service *AuthenticationService) reportReuse(ctx context.Context, storedRefreshToken *model.RefreshToken) {
	service.Logger.Warn("повторное использование refresh токена",
		zap.String("user_id", storedRefreshToken.UserID),
		zap.String("jti", storedRefreshToken.JwtID),
	)
	if service.Notifier == nil {
		return
	}
	if err := service.Notifier.NotifyRefreshTokenReuse(ctx, storedRefreshToken.UserID, storedRefreshToken.JwtID); err != nil {
		service.Logger.Error("ошибка отправки webhook", zap.Error(err))
	}
}

func (service *AuthenticationService) now() time.Time {
	if service.Now == nil {
		return time.Now()
	}
	return service.Now()
}

// ValidateRequest проверяет структуру по тегам validate и возвращает *ValidationError
func ValidateRequest(request any) error {
	if err := validate.Struct(request); err != nil {
		return newValidationError(err)
	}
	return nil
}

func newValidator() *validator.Validate {
	instance := validator.New(validator.WithRequiredStructEnabled())
	instance.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	instance.RegisterValidation("bcrypt_len", func(fieldLevel validator.FieldLevel) bool {
		return len(fieldLevel.Field().String()) <= maxPasswordBytes
	})
	return instance
}
