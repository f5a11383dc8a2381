package service

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"strings"
)

// Ошибки ротации. Каждая причина отдельная, чтобы клиент мог отличить
// "повторите позже" от "нужна повторная аутентификация".
var (
	ErrInvalidAccessToken   = errors.New("невалидный access токен")
	ErrTokenNotYetExpired   = errors.New("срок действия access токена еще не истек")
	ErrUnknownRefreshToken  = errors.New("refresh токен не существует")
	ErrAlreadyUsedToken     = errors.New("refresh токен уже был использован")
	ErrRevokedToken         = errors.New("refresh токен отозван")
	ErrExpiredRefreshToken  = errors.New("срок действия refresh токена истек")
	ErrTokenBindingMismatch = errors.New("refresh токен не соответствует access токену")
)

var rotationErrors = []error{
	ErrInvalidAccessToken,
	ErrTokenNotYetExpired,
	ErrUnknownRefreshToken,
	ErrAlreadyUsedToken,
	ErrRevokedToken,
	ErrExpiredRefreshToken,
	ErrTokenBindingMismatch,
}

// RotationReason возвращает именованную причину отказа в ротации из цепочки err или nil
func RotationReason(err error) error {
	for _, reason := range rotationErrors {
		if errors.Is(err, reason) {
			return reason
		}
	}
	return nil
}

// ErrAuthenticationFailed не различает "нет пользователя" и "неверный пароль"
var ErrAuthenticationFailed = errors.New("неверный email или пароль")

type ValidationError struct {
	Errors []string
}

func (validationError *ValidationError) Error() string {
	return "ошибка валидации: " + strings.Join(validationError.Errors, "; ")
}

func newValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &ValidationError{Errors: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fieldMessage(fieldError))
	}
	return &ValidationError{Errors: messages}
}

func fieldMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", fieldError.Field())
	case "email":
		return fmt.Sprintf("поле %s должно содержать корректный email", fieldError.Field())
	case "min":
		return fmt.Sprintf("поле %s должно быть не короче %s символов", fieldError.Field(), fieldError.Param())
	case "max":
		return fmt.Sprintf("поле %s должно быть не длиннее %s символов", fieldError.Field(), fieldError.Param())
	case "bcrypt_len":
		return passwordTooLongMessage(fieldError.Field())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", fieldError.Field(), fieldError.Tag())
	}
}

func passwordTooLongMessage(field string) string {
	return fmt.Sprintf("поле %s должно занимать не больше %d байт", field, maxPasswordBytes)
}
