package validator

import (
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
	messages  map[string]string
}

func NewValidator() *CustomValidator {
	return &CustomValidator{
		validator: validator.New(validator.WithRequiredStructEnabled()),
		messages:  make(map[string]string),
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RegisterValidation adds a custom tag. message is appended to the field name when the
// tag fails, e.g. "Role" + " must be a supported role".
func (cv *CustomValidator) RegisterValidation(tag string, fn validator.Func, message string) error {
	if err := cv.validator.RegisterValidation(tag, fn, true); err != nil {
		return err
	}
	cv.messages[tag] = message
	return nil
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			if message, ok := cv.messages[e.Tag()]; ok {
				errors[field] = field + " " + message
				continue
			}
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "eqfield":
				errors[field] = field + " must match " + e.Param()
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
