package dto

import (
	"reflect"

	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/pkg/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations installs the role-aware tags used by the request DTOs.
func RegisterValidations(cv *validator.CustomValidator) error {
	if err := cv.RegisterValidation("role", validateRole, "must be one of Physician, Surgeon, Physician Assistant, Nurse"); err != nil {
		return err
	}
	return cv.RegisterValidation("cpso", validateCPSO, "is required for Physician and Surgeon roles")
}

func validateRole(fl playground.FieldLevel) bool {
	return entity.Role(fl.Field().String()).IsValid()
}

// validateCPSO reads the sibling Role field; the number may be empty for any other role.
func validateCPSO(fl playground.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	roleField := parent.FieldByName("Role")
	if !roleField.IsValid() || roleField.Kind() != reflect.String {
		return true
	}
	if !entity.Role(roleField.String()).RequiresCPSO() {
		return true
	}
	return fl.Field().String() != ""
}
