package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)

	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidPhone reports whether phone is an 11-digit mainland mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidVerificationCode reports whether code is exactly six digits.
func ValidVerificationCode(code string) bool {
	return codePattern.MatchString(code)
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ValidPassword requires 8 to 72 characters drawn from letters, digits
// and @$!%*#?&, with at least one letter and one digit.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > MaxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '@', r == '$', r == '!', r == '%', r == '*', r == '#', r == '?', r == '&':
		default:
			return false
		}
	}
	return letter && digit
}

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("cnphone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("vcode", func(fl validator.FieldLevel) bool {
			return ValidVerificationCode(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidPassword(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs the shared validator and flattens failures.
func ValidateStruct(s interface{}) []ValidationError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ValidationError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Message: validationMessage(fe)}
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "cnphone":
		return "invalid phone number format"
	case "vcode":
		return "verification code must be 6 digits"
	case "password":
		return "password must be 8 to 72 characters and contain letters and digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
