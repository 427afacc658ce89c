package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"bizhub/internal/shared/errors"
)

var validate *validator.Validate

var (
	subdomainRegex    = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	databaseNameRegex = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return IsValidSubdomain(fl.Field().String())
	})
	_ = validate.RegisterValidation("dbname", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || IsValidDatabaseName(v)
	})
}

// IsValidSubdomain reports whether s is a lower-case RFC 1123 DNS label.
func IsValidSubdomain(s string) bool {
	return subdomainRegex.MatchString(s)
}

// IsValidDatabaseName reports whether s is safe to interpolate as a database
// identifier.
func IsValidDatabaseName(s string) bool {
	return databaseNameRegex.MatchString(s)
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "subdomain":
		return fmt.Sprintf("%s must be a lower-case DNS label", field)
	case "dbname":
		return fmt.Sprintf("%s may only contain lower-case letters, digits and underscores", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
