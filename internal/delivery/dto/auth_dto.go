package dto

// Request DTOs

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest is validated by the HTTP layer only. The session manager accepts it as given.
type SignUpRequest struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
	CPSONumber      string `json:"cpso_number" validate:"cpso"`
}
