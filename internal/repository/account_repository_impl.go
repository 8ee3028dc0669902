package repository

import (
	"context"
	"errors"

	"go-shift-coverage/internal/domain/entity"
	domainRepo "go-shift-coverage/internal/domain/repository"

	"gorm.io/gorm"
)

type accountRepository struct{}

func NewAccountRepository() domainRepo.AccountRepository {
	return &accountRepository{}
}

func (r *accountRepository) Create(ctx context.Context, db *gorm.DB, account *entity.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Account, error) {
	var account entity.Account
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByID(ctx context.Context, db *gorm.DB, id string) (*entity.Account, error) {
	var account entity.Account
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
