package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-shift-coverage/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockAuditLogRepo struct {
	mock.Mock
}

func (m *mockAuditLogRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return m.Called(ctx, db, log).Error(0)
}

func (m *mockAuditLogRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) ([]entity.AuditLog, error) {
	args := m.Called(ctx, db, userID)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Error(1)
}

func TestAuditLogUsecase_GetActivity(t *testing.T) {
	repo := new(mockAuditLogRepo)
	uc := NewAuditLogUsecase(nil, quietLogger(), repo)

	now := time.Now()
	repo.On("FindByUserID", mock.Anything, mock.Anything, "uid-1").Return([]entity.AuditLog{
		{ID: 2, Action: entity.AuditActionProfileUpdate, CreatedAt: now},
		{ID: 1, Action: entity.AuditActionUserLogin, CreatedAt: now.Add(-time.Minute)},
	}, nil)

	activity, err := uc.GetActivity(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 2, activity.Total)
	assert.Equal(t, entity.AuditActionProfileUpdate, activity.Logs[0].Action)
	assert.Equal(t, int64(1), activity.Logs[1].ID)
}

func TestAuditLogUsecase_GetActivityRepoError(t *testing.T) {
	repo := new(mockAuditLogRepo)
	uc := NewAuditLogUsecase(nil, quietLogger(), repo)

	repo.On("FindByUserID", mock.Anything, mock.Anything, "uid-1").Return(nil, errors.New("connection reset"))

	_, err := uc.GetActivity(context.Background(), "uid-1")
	assert.Error(t, err)
}
