package model

import "time"

// RefreshToken хранимая запись refresh токена.
// JwtID связывает запись с access токеном, выпущенным вместе с ней, и не меняется.
type RefreshToken struct {
	Token     string    `db:"token"`
	JwtID     string    `db:"jwt_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpireAt  time.Time `db:"expire_at"`
	Used      bool      `db:"used"`
	Reworked  bool      `db:"reworked"`
}

func (token *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(token.ExpireAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	// example: Q7ZK0M2XH4C9RTA1L8WE5PNB3YD6GFU0JSO1b0f3c9e2-6d1a-4d8e-9a57-2f7c1e4b8a90
	RefreshToken string `json:"refreshToken"`
}
