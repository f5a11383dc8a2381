package repository

import "errors"

var (
	ErrNotFound           = errors.New("запись не найдена")
	ErrTokenNotRedeemable = errors.New("refresh токен уже использован")
	ErrTokenRevoked       = errors.New("refresh токен отозван")
	ErrUserAlreadyExists  = errors.New("пользователь с таким email уже существует")
)
