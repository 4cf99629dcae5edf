package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	mosaerrors "github.com/XiaoConstantine/mosa-go/pkg/errors"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field string
	Tag   string
	Value interface{}
}

func (e *ValidationError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s is below the minimum", e.Field)
	case "max":
		return fmt.Sprintf("%s is above the maximum", e.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for i := range e {
		messages = append(messages, e[i].Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var validate = validator.New()

// Validate checks a Config against its struct tags and returns a
// ValidationFailed error wrapping the per-field failures.
func Validate(cfg *Config) error {
	if cfg == nil {
		return mosaerrors.New(mosaerrors.InvalidInput, "config is nil")
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return mosaerrors.Wrap(err, mosaerrors.ValidationFailed, "config validation failed")
	}

	var verrs ValidationErrors
	for _, fe := range fieldErrors {
		verrs = append(verrs, ValidationError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return mosaerrors.Wrap(verrs, mosaerrors.ValidationFailed, "invalid configuration")
}
