package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation rule constants
var (
	// PasswordMinLength applies to account passwords
	PasswordMinLength = 8

	// DateLayout is the wire and form format of calendar dates
	DateLayout = "2006-01-02"
)

// RequiredFieldsMessage is the summary shown when a record fails validation
const RequiredFieldsMessage = "Please fill in all required fields"

// Validator wraps go-playground/validator and reports errors keyed by the
// field's json name.
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the shared validator
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New creates a validator that names fields after their json tag
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	UseJSONNames(v)
	return &Validator{validate: v}
}

// UseJSONNames makes v report fields by their json name. It is also applied
// to gin's binding validator so API errors name the same fields.
func UseJSONNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates s and returns a message per failing field, or nil.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = FormatFieldError(fe)
		}
	}
	return out
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "datetime":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "uuid", "uuid4":
		return e.Field() + " must be a valid identifier"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
