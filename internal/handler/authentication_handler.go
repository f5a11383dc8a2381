package handler

import (
	"AuthService/internal/ports"
	"AuthService/internal/security"
	"AuthService/internal/service"
	"context"
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	requestTimeout     = 3 * time.Second
	maxRequestBodySize = 1 << 20
)

type AuthenticationHandler struct {
	AuthenticationService ports.AuthenticationServiceInterface
	Logger                *zap.Logger
}

// RegisterRequest данные для регистрации
// swagger:model
type RegisterRequest struct {
	// example: alice
	Name string `json:"name"`
	// example: alice@example.com
	Email string `json:"email"`
	// example: password123
	Password string `json:"password"`
}

// LoginRequest email и пароль пользователя
// swagger:model
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest содержит пару токенов для обновления.
// Access токен можно передать в заголовке Authorization вместо тела.
// swagger:model
type RefreshTokenRequest struct {
	// example: Q7ZK0M2XH4C9RTA1L8WE5PNB3YD6GFU0JSO1b0f3c9e2-6d1a-4d8e-9a57-2f7c1e4b8a90
	RefreshToken string `json:"refreshToken" validate:"required"`
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken" validate:"required"`
}

// LogoutRequest refresh токен, который нужно отозвать
// swagger:model
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CurrentUserResponse данные пользователя из access токена
// swagger:model
type CurrentUserResponse struct {
	UserID string `json:"userId" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name   string `json:"name" example:"alice"`
	Email  string `json:"email" example:"alice@example.com"`
}

// LogoutResponse содержит строку с сообщением
// swagger:model
type LogoutResponse struct {
	// example: выполнен выход из аккаунта
	Message string `json:"message"`
}

// ValidationErrorResponse список ошибок валидации
// swagger:model
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationServiceInterface, logger *zap.Logger) *AuthenticationHandler {
	return &AuthenticationHandler{AuthenticationService: authenticationService, Logger: logger}
}

// Routes регистрирует маршруты. authMiddleware защищает /me и /logout.
func (handler *AuthenticationHandler) Routes(authMiddleware func(http.Handler) http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
			r.Post("/refresh-token", handler.RefreshToken)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", handler.GetCurrentUser)
			r.Post("/logout", handler.Logout)
		})
	}
}

// Register регистрирует пользователя и выдает первую пару токенов
// @Summary Регистрация
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "данные пользователя"
// @Success 200 {object} model.TokensPair "успешная регистрация"
// @Failure 400 {object} ValidationErrorResponse "ошибки валидации"
// @Failure 500 {string} string "внутренняя ошибка сервера"
// @Router /register [post]
func (handler *AuthenticationHandler) Register(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), requestTimeout)
	defer cancel()

	var registerRequest RegisterRequest
	if !handler.decode(writer, request, &registerRequest) {
		return
	}

	tokensPair, err := handler.AuthenticationService.Register(ctx, registerRequest.Name, registerRequest.Email, registerRequest.Password)
	if err != nil {
		handler.writeError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// Login выдает пару токенов по email и паролю
// @Summary Вход
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "email и пароль"
// @Success 200 {object} model.TokensPair "успешный вход"
// @Failure 400 {object} ValidationErrorResponse "ошибки валидации"
// @Failure 401 {string} string "неверный email или пароль"
// @Router /login [post]
func (handler *AuthenticationHandler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), requestTimeout)
	defer cancel()

	var loginRequest LoginRequest
	if !handler.decode(writer, request, &loginRequest) {
		return
	}

	tokensPair, err := handler.AuthenticationService.Login(ctx, loginRequest.Email, loginRequest.Password)
	if err != nil {
		handler.writeError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// RefreshToken обменивает истекший access токен и парный refresh токен на новую пару
// @Summary Обновление токенов
// @Description Refresh токен одноразовый. Access токен должен быть истекшим и выпущенным вместе с refresh токеном.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "пара токенов"
// @Success 200 {object} model.TokensPair "успешное обновление токенов"
// @Failure 400 {string} string "срок действия access токена еще не истек"
// @Failure 401 {string} string "причина отказа в обновлении"
// @Router /refresh-token [post]
func (handler *AuthenticationHandler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), requestTimeout)
	defer cancel()

	var refreshTokenRequest RefreshTokenRequest
	if !handler.decode(writer, request, &refreshTokenRequest) {
		return
	}
	if refreshTokenRequest.AccessToken == "" {
		refreshTokenRequest.AccessToken, _ = security.BearerToken(request)
	}
	if err := service.ValidateRequest(refreshTokenRequest); err != nil {
		handler.writeError(writer, err)
		return
	}

	tokensPair, err := handler.AuthenticationService.RefreshToken(ctx, refreshTokenRequest.RefreshToken, refreshTokenRequest.AccessToken)
	if err != nil {
		handler.writeError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, tokensPair)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} CurrentUserResponse
// @Failure 401 {string} string "не авторизован"
// @Security ApiKeyAuth
// @Router /me [get]
func (handler *AuthenticationHandler) GetCurrentUser(writer http.ResponseWriter, request *http.Request) {
	claims, ok := security.ClaimsFromContext(request.Context())
	if !ok {
		http.Error(writer, "не авторизован", http.StatusUnauthorized)
		return
	}

	writeJSON(writer, http.StatusOK, &CurrentUserResponse{UserID: claims.Subject, Name: claims.Name, Email: claims.Email})
}

// Logout отзывает refresh токен текущего пользователя
// @Summary Выход из аккаунта
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param request body LogoutRequest true "refresh токен"
// @Success 200 {object} LogoutResponse "выполнен выход из аккаунта"
// @Failure 400 {string} string "refresh токен не существует"
// @Failure 401 {string} string "не авторизован"
// @Security ApiKeyAuth
// @Router /logout [post]
func (handler *AuthenticationHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), requestTimeout)
	defer cancel()

	claims, ok := security.ClaimsFromContext(ctx)
	if !ok {
		http.Error(writer, "не авторизован", http.StatusUnauthorized)
		return
	}

	var logoutRequest LogoutRequest
	if !handler.decode(writer, request, &logoutRequest) {
		return
	}
	if err := service.ValidateRequest(logoutRequest); err != nil {
		handler.writeError(writer, err)
		return
	}

	err := handler.AuthenticationService.RevokeRefreshToken(ctx, claims.Subject, logoutRequest.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUnknownRefreshToken) {
			http.Error(writer, err.Error(), http.StatusBadRequest)
			return
		}
		handler.writeError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, &LogoutResponse{Message: "выполнен выход из аккаунта"})
}

func (handler *AuthenticationHandler) decode(writer http.ResponseWriter, request *http.Request, target any) bool {
	body := http.MaxBytesReader(writer, request.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			http.Error(writer, "слишком большое тело запроса", http.StatusRequestEntityTooLarge)
			return false
		}
		handler.Logger.Debug("неверный json", zap.Error(err))
		http.Error(writer, "неверный json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError переводит ошибку сервиса в HTTP ответ.
// Причины отказа в ротации отдаются клиенту как есть, остальное скрывается за 500.
func (handler *AuthenticationHandler) writeError(writer http.ResponseWriter, err error) {
	var validationError *service.ValidationError
	if errors.As(err, &validationError) {
		writeJSON(writer, http.StatusBadRequest, &ValidationErrorResponse{Errors: validationError.Errors})
		return
	}

	if errors.Is(err, service.ErrAuthenticationFailed) {
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	}

	if reason := service.RotationReason(err); reason != nil {
		handler.Logger.Info("отказ в обновлении токенов", zap.Error(err))
		http.Error(writer, reason.Error(), rotationStatus(reason))
		return
	}

	handler.Logger.Error("внутренняя ошибка", zap.Error(err))
	http.Error(writer, "внутренняя ошибка сервера", http.StatusInternalServerError)
}

func rotationStatus(reason error) int {
	if errors.Is(reason, service.ErrTokenNotYetExpired) {
		return http.StatusBadRequest
	}
	return http.StatusUnauthorized
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(body)
}
