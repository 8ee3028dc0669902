package repository

import (
	"context"

	"go-shift-coverage/internal/domain/entity"

	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, db *gorm.DB, account *entity.Account) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*entity.Account, error)
}
