package repository

import (
	"AuthService/internal"
	"AuthService/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"time"
)

const uniqueViolationCode = "23505"

type UserRepository struct {
	*internal.Database
}

func NewUserRepository(database *internal.Database) *UserRepository {
	return &UserRepository{database}
}

func (repository *UserRepository) CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error) {
	created, err := newUserRecord(user, password)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO users (id, username, email, password_hash, created_at)
			  VALUES (:id, :username, :email, :password_hash, :created_at)`

	if _, err := repository.DB.NamedExecContext(ctx, query, created); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("ошибка вставки пользователя: %w", err)
	}

	return created, nil
}

func (repository *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return repository.findOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (repository *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return repository.findOne(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (repository *UserRepository) VerifyPassword(user *model.User, password string) bool {
	return verifyPassword(user, password)
}

func (repository *UserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	if err := repository.DB.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return &user, nil
}

func newUserRecord(user *model.User, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хэширования: %w", err)
	}

	return &model.User{
		ID:           uuid.New().String(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func verifyPassword(user *model.User, password string) bool {
	if user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
