// Package validation wraps go-playground/validator with the record rules
// shared by every module.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "domaindesk/pkg/domain-errors"
)

var (
	domainNamePattern = regexp.MustCompile(`(?i)^[a-z0-9]+([\-.][a-z0-9]+)*\.[a-z]{2,5}$`)
	slugPattern       = regexp.MustCompile(`^[a-z0-9-]+$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("domainname", func(fl validator.FieldLevel) bool {
			return domainNamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Struct validates s and returns a CodeValidation error naming the first
// failing field.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return dErrors.Wrap(err, dErrors.CodeInternal, "validation failed")
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "domainname":
		return "Please enter a valid domain name (e.g., example.com)"
	case "slug":
		return "Slug can only contain lowercase letters, numbers, and hyphens"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
