package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the credential record kept by the built-in identity provider.
type Account struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	DisplayName  string    `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Account) Identity() *Identity {
	return &Identity{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}
