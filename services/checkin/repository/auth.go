package repository

import (
	"context"
	"errors"
	"fmt"
	"kidcheck/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type authRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) domain.AuthRepo {
	return &authRepository{
		db: db,
	}
}

func (ar *authRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ar.db.WithContext(ctx).Create(user).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, user.Email)
		}
		return fmt.Errorf("could not create user, error: %v", err)
	}
	return nil
}

func (ar *authRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := ar.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, email)
		}
		return nil, fmt.Errorf("could not find user, error: %v", err)
	}
	return &user, nil
}
