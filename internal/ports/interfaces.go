package ports

import (
	"AuthService/internal/model"
	"AuthService/internal/security"
	"context"
	"time"
)

type RefreshTokenRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, usedToken string, replacement *model.RefreshToken) error
	MarkRefreshTokenReworked(ctx context.Context, token string) error
}

// UserRepositoryInterface внешнее хранилище пользователей
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	VerifyPassword(user *model.User, password string) bool
}

type JWTServiceInterface interface {
	GenerateAccessToken(user *model.User, ttl time.Duration) (string, *security.Claims, error)
	ValidateJWT(tokenString string) (*security.Claims, error)
}

type NotifierInterface interface {
	NotifyRefreshTokenReuse(ctx context.Context, userID string, jwtID string) error
}

type AuthenticationServiceInterface interface {
	Register(ctx context.Context, name string, email string, password string) (*model.TokensPair, error)
	Login(ctx context.Context, email string, password string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, refreshToken string, accessToken string) (*model.TokensPair, error)
	RevokeRefreshToken(ctx context.Context, userID string, refreshToken string) error
}
