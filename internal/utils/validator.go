// internal/utils/validator.go
package utils

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the ISO date format used by every period field.
const DateLayout = "2006-01-02"

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("date_gte", validateDateGTE)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// ParseDate accepts "2006-01-02" and full timestamps, keeping only the date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	return time.Parse(DateLayout, value)
}

// validateDateGTE checks that the field date is on or after the date in
// the referenced sibling field. Missing or malformed siblings are left to
// their own rules.
func validateDateGTE(fl validator.FieldLevel) bool {
	other, kind, _, found := fl.GetStructFieldOKAdvanced2(fl.Parent(), fl.Param())
	if !found || kind != reflect.String {
		return true
	}

	start, err := ParseDate(other.String())
	if err != nil {
		return true
	}
	end, err := ParseDate(fl.Field().String())
	if err != nil {
		return true
	}
	return !end.Before(start)
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " é obrigatório"
	case "email":
		return "E-mail inválido"
	case "gt":
		return e.Field() + " deve ser maior que " + e.Param()
	case "max":
		return e.Field() + " deve ter no máximo " + e.Param() + " caracteres"
	case "datetime":
		return e.Field() + " deve ser uma data no formato AAAA-MM-DD"
	case "date_gte":
		return e.Field() + " deve ser igual ou posterior a " + lowerFirst(e.Param())
	case "isdefault":
		return e.Field() + " não pode ser alterado"
	case "oneof":
		return e.Field() + " deve ser um de: " + e.Param()
	default:
		return e.Field() + " é inválido"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
