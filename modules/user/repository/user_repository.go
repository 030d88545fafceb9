package repository

import (
	"context"

	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/modules/user/entity"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, roles, is_public, sacem_number, address, phone,
	sacem_public, address_public, phone_public, two_factor_code, two_factor_expires_at, created_at, updated_at`

// UserRepositoryInterface defines the user lookups other modules depend on.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context) (int, error)
}

type UserRepository struct {
	DB database.IDatabase
}

func NewUserRepository(db database.IDatabase) *UserRepository {
	return &UserRepository{DB: db}
}

// GetByID returns nil, nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID:Error:", err)
		return nil, err
	}
	return &user, nil
}

// GetByEmail matches the address exactly.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("UserRepository:GetByEmail:Error:", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		logger.Error("UserRepository:Count:Error:", err)
		return 0, err
	}
	return count, nil
}
