package usecase

import (
	"context"

	"go-shift-coverage/internal/converter"
	"go-shift-coverage/internal/delivery/dto"
	"go-shift-coverage/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditLogUsecase interface {
	// GetActivity lists the audit trail of one profile, newest first.
	GetActivity(ctx context.Context, userID string) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetActivity(ctx context.Context, userID string) (*dto.AuditLogListResponse, error) {
	logs, err := u.auditLogRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find audit logs for user: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
