package repository

import (
	"context"
	"errors"

	"go-shift-coverage/internal/domain/entity"
	domainRepo "go-shift-coverage/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) FindByID(ctx context.Context, db *gorm.DB, id string) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Save upserts the full record. No existence check is made: the key is an identity id
// minted by the identity provider.
func (r *profileRepository) Save(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "role", "cpso_number", "specialty", "location", "updated_at"}),
		}).
		Create(profile).Error
}
