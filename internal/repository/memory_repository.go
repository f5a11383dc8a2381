package repository

import (
	"AuthService/internal/model"
	"context"
	"sync"
)

// MemoryRefreshTokenRepository хранит refresh токены в памяти процесса.
// Используется с драйвером "memory" и в тестах.
type MemoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{tokens: make(map[string]model.RefreshToken)}
}

func (repository *MemoryRefreshTokenRepository) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.tokens[token.Token] = *token
	return nil
}

func (repository *MemoryRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &stored, nil
}

func (repository *MemoryRefreshTokenRepository) RotateRefreshToken(ctx context.Context, usedToken string, replacement *model.RefreshToken) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.tokens[usedToken]
	switch {
	case !ok:
		return ErrNotFound
	case stored.Used:
		return ErrTokenNotRedeemable
	case stored.Reworked:
		return ErrTokenRevoked
	}

	stored.Used = true
	repository.tokens[usedToken] = stored
	repository.tokens[replacement.Token] = *replacement
	return nil
}

func (repository *MemoryRefreshTokenRepository) MarkRefreshTokenReworked(ctx context.Context, token string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.tokens[token]
	if !ok {
		return ErrNotFound
	}

	stored.Reworked = true
	repository.tokens[token] = stored
	return nil
}

type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (repository *MemoryUserRepository) CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error) {
	created, err := newUserRecord(user, password)
	if err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.byEmail[created.Email]; exists {
		return nil, ErrUserAlreadyExists
	}
	repository.byID[created.ID] = created
	repository.byEmail[created.Email] = created

	copied := *created
	return &copied, nil
}

func (repository *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	return copyUser(repository.byEmail[email])
}

func (repository *MemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	return copyUser(repository.byID[id])
}

func (repository *MemoryUserRepository) VerifyPassword(user *model.User, password string) bool {
	return verifyPassword(user, password)
}

func copyUser(user *model.User) (*model.User, error) {
	if user == nil {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}
