package service

import (
	"context"

	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogEvent(ctx context.Context, userID string, action string) error
	LogCreate(ctx context.Context, userID string, action string, entityName string, newValue interface{}) error
	LogUpdate(ctx context.Context, userID string, action string, entityName string, oldValue, newValue interface{}) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogEvent records an action that carries no entity payload (login, logout).
func (s *auditService) LogEvent(ctx context.Context, userID string, action string) error {
	return s.write(ctx, userID, action, nil)
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, userID string, action string, entityName string, newValue interface{}) error {
	return s.write(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": userID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, userID string, action string, entityName string, oldValue, newValue interface{}) error {
	return s.write(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": userID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

func (s *auditService) write(ctx context.Context, userID string, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		Action:   action,
		Metadata: metadata,
	}
	if userID != "" {
		auditLog.UserID = &userID
	}

	if err := s.auditRepo.Create(ctx, s.db, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
