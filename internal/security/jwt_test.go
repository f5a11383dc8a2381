package security

import (
	"AuthService/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func testUser() *model.User {
	return &model.User{ID: "user-id", Username: "alice", Email: "alice@example.com"}
}

func TestGenerateAccessToken_ValidateRoundTrip(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")

	accessToken, issued, err := jwtService.GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(accessToken, ".")))

	claims, err := jwtService.ValidateJWT(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-id", claims.Subject)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "tests", claims.Issuer)
	assert.Equal(t, issued.ID, claims.ID)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")

	_, first, err := jwtService.GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)
	_, second, err := jwtService.GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestValidateJWT_ExpiredTokenStillReturnsClaims(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")

	accessToken, _, err := jwtService.GenerateAccessToken(testUser(), -time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateJWT(accessToken)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestValidateJWT_BadSignature(t *testing.T) {
	accessToken, _, err := NewJWTService([]byte("right-secret"), "tests").GenerateAccessToken(testUser(), time.Minute)
	require.NoError(t, err)

	_, err = NewJWTService([]byte("wrong-secret"), "tests").ValidateJWT(accessToken)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestValidateJWT_Malformed(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.!!!.sig"} {
		_, err := jwtService.ValidateJWT(tokenString)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tokenString)
	}
}

func TestValidateJWT_WrongAlgorithm(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-id",
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = jwtService.ValidateJWT(hs512)
	assert.ErrorIs(t, err, ErrWrongAlgorithm)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = jwtService.ValidateJWT(none)
	assert.ErrorIs(t, err, ErrWrongAlgorithm)
}

func TestValidateJWT_MissingRequiredClaims(t *testing.T) {
	jwtService := NewJWTService(testSecret, "tests")

	withoutJTI, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = jwtService.ValidateJWT(withoutJTI)
	assert.ErrorIs(t, err, ErrMalformedToken)

	withoutExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-id", ID: "jti"},
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = jwtService.ValidateJWT(withoutExp)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestGenerateRefreshToken(t *testing.T) {
	first, err := GenerateRefreshToken()
	require.NoError(t, err)
	second, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// 35 символов + uuid (36)
	assert.Len(t, first, refreshTokenRandomLength+36)
	for _, symbol := range first[:refreshTokenRandomLength] {
		assert.True(t, strings.ContainsRune(refreshTokenAlphabet, symbol), "символ %q", symbol)
	}
}
