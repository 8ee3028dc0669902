package dto

// UpdateProfileRequest holds the fields a user may edit. Omitted fields keep their value.
type UpdateProfileRequest struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   *string `json:"full_name" validate:"omitempty,min=1"`
	CPSONumber *string `json:"cpso_number" validate:"omitempty,max=32"`
	Specialty  *string `json:"specialty" validate:"omitempty,max=128"`
	Location   *string `json:"location" validate:"omitempty,max=255"`
}

type ProfileResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	CPSONumber string `json:"cpso_number,omitempty"`
	Specialty  string `json:"specialty,omitempty"`
	Location   string `json:"location,omitempty"`
}

type SessionResponse struct {
	Resolving bool             `json:"resolving"`
	Profile   *ProfileResponse `json:"profile"`
}
