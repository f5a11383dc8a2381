package security

import (
	"AuthService/internal/model"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

var (
	ErrMalformedToken = errors.New("токен имеет неверный формат")
	ErrBadSignature   = errors.New("неверная подпись токена")
	ErrWrongAlgorithm = errors.New("неверный алгоритм подписи токена")
)

var signingMethod = jwt.SigningMethodHS256

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет access токены.
// Ключ передается при создании, глобального состояния нет.
type JWTService struct {
	secretKey []byte
	issuer    string
}

func NewJWTService(secretKey []byte, issuer string) *JWTService {
	return &JWTService{secretKey: secretKey, issuer: issuer}
}

func (jwtService *JWTService) GenerateAccessToken(user *model.User, ttl time.Duration) (string, *Claims, error) {
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("ошибка генерации jti: %w", err)
	}

	now := time.Now()
	claims := &Claims{
		Name:  user.Username,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        jti.String(),
			Issuer:    jwtService.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	accessToken, err := jwt.NewWithClaims(signingMethod, claims).SignedString(jwtService.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return accessToken, claims, nil
}

// ValidateJWT проверяет формат, алгоритм и подпись токена.
// Срок действия не проверяется: истекший токен с верной подписью возвращается вместе с claims.
func (jwtService *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != signingMethod.Alg() {
			return nil, fmt.Errorf("%w: %v", ErrWrongAlgorithm, token.Header["alg"])
		}
		return jwtService.secretKey, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: отсутствуют обязательные claims", ErrMalformedToken)
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrWrongAlgorithm):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// alg не указан или неизвестен библиотеке
		return fmt.Errorf("%w: %v", ErrWrongAlgorithm, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
