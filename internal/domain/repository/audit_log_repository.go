package repository

import (
	"context"

	"go-shift-coverage/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) ([]entity.AuditLog, error)
}
