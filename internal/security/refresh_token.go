package security

import (
	"crypto/rand"
	"fmt"
	"github.com/google/uuid"
	"math/big"
)

const (
	refreshTokenAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refreshTokenRandomLength = 35
)

// GenerateRefreshToken возвращает непрозрачную строку: 35 случайных символов [A-Z0-9] и uuid.
func GenerateRefreshToken() (string, error) {
	alphabetSize := big.NewInt(int64(len(refreshTokenAlphabet)))

	buffer := make([]byte, refreshTokenRandomLength)
	for i := range buffer {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("ошибка генерации: %w", err)
		}
		buffer[i] = refreshTokenAlphabet[index.Int64()]
	}

	suffix, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("ошибка генерации uuid: %w", err)
	}

	return string(buffer) + suffix.String(), nil
}
