package security

import (
	"context"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"time"
)

type contextKey struct{}

var claimsContextKey = contextKey{}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// BearerToken достает токен из заголовка Authorization
func BearerToken(request *http.Request) (string, bool) {
	authorizationHeader := request.Header.Get("Authorization")
	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authorizationHeader, "Bearer ")
	return token, token != ""
}

// JWTMiddleware пропускает только запросы с действующим access токеном.
func JWTMiddleware(jwtService *JWTService, logger *zap.Logger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, logger, next))
	}
}

func handleAuthentication(jwtService *JWTService, logger *zap.Logger, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		jwtTokenStr, ok := BearerToken(request)
		if !ok {
			http.Error(writer, "не авторизован", http.StatusUnauthorized)
			return
		}

		claims, err := jwtService.ValidateJWT(jwtTokenStr)
		if err != nil {
			logger.Debug("невалидный токен", zap.Error(err))
			http.Error(writer, "невалидный токен", http.StatusUnauthorized)
			return
		}
		if !time.Now().Before(claims.ExpiresAt.Time) {
			http.Error(writer, "срок действия токена истек", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(writer, request.WithContext(ContextWithClaims(request.Context(), claims)))
	}
}
