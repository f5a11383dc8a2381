package repository

import (
	"AuthService/internal"
	"AuthService/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type RefreshTokenRepository struct {
	*internal.Database
}

func NewRefreshTokenRepository(database *internal.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

const insertRefreshTokenQuery = `INSERT INTO refresh_tokens (token, jwt_id, user_id, created_at, expire_at, used, reworked)
	VALUES (:token, :jwt_id, :user_id, :created_at, :expire_at, :used, :reworked)`

func (repository *RefreshTokenRepository) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	if _, err := repository.DB.NamedExecContext(ctx, insertRefreshTokenQuery, token); err != nil {
		return fmt.Errorf("ошибка вставки данных в БД: %w", err)
	}

	return nil
}

func (repository *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT token, jwt_id, user_id, created_at, expire_at, used, reworked FROM refresh_tokens WHERE token = $1`

	var refreshToken model.RefreshToken
	if err := repository.DB.GetContext(ctx, &refreshToken, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return &refreshToken, nil
}

// RotateRefreshToken в одной транзакции помечает usedToken использованным и сохраняет replacement.
// UPDATE с условием used = FALSE работает как compare-and-swap: из параллельных запросов
// строку получает только один, остальные получают ErrTokenNotRedeemable.
// Если токен успели отозвать, возвращается ErrTokenRevoked.
func (repository *RefreshTokenRepository) RotateRefreshToken(ctx context.Context, usedToken string, replacement *model.RefreshToken) (err error) {
	tx, err := repository.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `UPDATE refresh_tokens SET used = TRUE WHERE token = $1 AND used = FALSE AND reworked = FALSE`
	result, err := tx.ExecContext(ctx, query, usedToken)
	if err != nil {
		return fmt.Errorf("не удалось обновить рефреш токен: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("не удалось проверить, обновлен ли токен: %w", err)
	}
	if rowsAffected == 0 {
		return notRedeemableReason(ctx, tx, usedToken)
	}

	if _, err = tx.NamedExecContext(ctx, insertRefreshTokenQuery, replacement); err != nil {
		return fmt.Errorf("ошибка вставки данных в БД: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	return nil
}

// notRedeemableReason читает флаги строки внутри той же транзакции, чтобы отличить
// повторное использование от отзыва
func notRedeemableReason(ctx context.Context, tx *sqlx.Tx, token string) error {
	var state struct {
		Used     bool `db:"used"`
		Reworked bool `db:"reworked"`
	}
	query := `SELECT used, reworked FROM refresh_tokens WHERE token = $1`
	if err := tx.GetContext(ctx, &state, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if !state.Used && state.Reworked {
		return ErrTokenRevoked
	}
	return ErrTokenNotRedeemable
}

func (repository *RefreshTokenRepository) MarkRefreshTokenReworked(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET reworked = TRUE WHERE token = $1`

	result, err := repository.DB.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("не удалось отозвать рефреш токен: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("не удалось проверить, отозван ли токен: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
