package entity

import "time"

// Profile is the application-owned extension of an Identity, keyed by the identity id.
type Profile struct {
	ID         string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role       Role      `gorm:"type:varchar(32);not null" json:"role"`
	CPSONumber string    `gorm:"column:cpso_number;type:varchar(32)" json:"cpso_number,omitempty"`
	Specialty  string    `gorm:"type:varchar(128)" json:"specialty,omitempty"`
	Location   string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfilePatch carries the editable fields of a profile. Nil fields are left untouched.
// ID and Role are not part of the patch: neither may change after creation.
type ProfilePatch struct {
	Email      *string
	FullName   *string
	CPSONumber *string
	Specialty  *string
	Location   *string
}

// Apply returns a copy of p with every non-nil patch field written over it.
func (p Profile) Apply(patch ProfilePatch) Profile {
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.CPSONumber != nil {
		p.CPSONumber = *patch.CPSONumber
	}
	if patch.Specialty != nil {
		p.Specialty = *patch.Specialty
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	return p
}

// FallbackProfile synthesizes a profile for an identity that has no stored record.
func FallbackProfile(identity *Identity) *Profile {
	return &Profile{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.DisplayName,
		Role:     DefaultRole,
	}
}

// Specialties is the catalogue offered by the profile editor. Profiles may hold any value.
var Specialties = []string{
	"Family Medicine",
	"Internal Medicine",
	"Emergency Medicine",
	"Pediatrics",
	"Surgery",
	"Cardiology",
	"Dermatology",
	"Psychiatry",
	"Radiology",
	"Anesthesiology",
}
