package dto

import (
	"testing"

	"go-shift-coverage/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.CustomValidator {
	t.Helper()
	cv := validator.NewValidator()
	require.NoError(t, RegisterValidations(cv))
	return cv
}

func validSignUp(role string, cpso string) *SignUpRequest {
	return &SignUpRequest{
		FullName:        "Jordan Lee",
		Email:           "jordan@clinic.ca",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            role,
		CPSONumber:      cpso,
	}
}

func TestSignUpRequest_CPSORequirementFollowsRole(t *testing.T) {
	cv := newValidator(t)

	tests := []struct {
		name    string
		role    string
		cpso    string
		wantErr bool
	}{
		{"nurse without cpso", "Nurse", "", false},
		{"physician assistant without cpso", "Physician Assistant", "", false},
		{"physician without cpso", "Physician", "", true},
		{"surgeon without cpso", "Surgeon", "", true},
		{"physician with cpso", "Physician", "98765", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cv.Validate(validSignUp(tt.role, tt.cpso))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			msgs := cv.FormatValidationErrors(err)
			assert.Equal(t, "CPSONumber is required for Physician and Surgeon roles", msgs["CPSONumber"])
		})
	}
}

func TestSignUpRequest_RejectsUnknownRoleAndMismatchedPasswords(t *testing.T) {
	cv := newValidator(t)

	req := validSignUp("Dentist", "")
	req.ConfirmPassword = "different"
	req.Password = "short"

	err := cv.Validate(req)
	require.Error(t, err)

	msgs := cv.FormatValidationErrors(err)
	assert.Contains(t, msgs, "Role")
	assert.Contains(t, msgs, "ConfirmPassword")
	assert.Equal(t, "Password must be at least 6 characters", msgs["Password"])
}

func TestUpdateProfileRequest_OmittedFieldsAreValid(t *testing.T) {
	cv := newValidator(t)
	specialty := "Cardiology"

	assert.NoError(t, cv.Validate(&UpdateProfileRequest{Specialty: &specialty}))

	bad := "nope"
	assert.Error(t, cv.Validate(&UpdateProfileRequest{Email: &bad}))
}
