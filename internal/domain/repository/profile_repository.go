package repository

import (
	"context"

	"go-shift-coverage/internal/domain/entity"

	"gorm.io/gorm"
)

// ProfileRepository is the durable profile store, keyed by identity id.
type ProfileRepository interface {
	// FindByID returns nil, nil when no profile is stored for id.
	FindByID(ctx context.Context, db *gorm.DB, id string) (*entity.Profile, error)
	// Save writes the whole record, creating or overwriting it.
	Save(ctx context.Context, db *gorm.DB, profile *entity.Profile) error
}
