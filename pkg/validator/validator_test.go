package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Shift           string `validate:"required,shift"`
}

func TestCustomValidator_FormatsBuiltinAndCustomTags(t *testing.T) {
	cv := NewValidator()
	require.NoError(t, cv.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "night")
	}, "must be a night shift"))

	err := cv.Validate(&signupForm{
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "abd",
		Shift:           "day",
	})
	require.Error(t, err)

	msgs := cv.FormatValidationErrors(err)
	assert.Equal(t, "Email must be a valid email address", msgs["Email"])
	assert.Equal(t, "Password must be at least 6 characters", msgs["Password"])
	assert.Equal(t, "ConfirmPassword must match Password", msgs["ConfirmPassword"])
	assert.Equal(t, "Shift must be a night shift", msgs["Shift"])
}

func TestCustomValidator_Valid(t *testing.T) {
	cv := NewValidator()
	require.NoError(t, cv.RegisterValidation("shift", func(fl validator.FieldLevel) bool { return true }, ""))

	err := cv.Validate(&signupForm{
		Email:           "rn@clinic.ca",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Shift:           "night",
	})
	assert.NoError(t, err)
}
