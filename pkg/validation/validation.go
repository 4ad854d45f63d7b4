// Package validation checks request commands against their `validate` struct
// tags and renders failures as client-facing messages keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid matches every *Error.
var ErrInvalid = errors.New("invalid request")

// Error lists the fields that failed validation.
type Error struct {
	Missing []string
	Fields  []FieldError
}

// FieldError is a non-required rule failure on a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if len(e.Missing) > 0 {
		return "Missing required fields: " + strings.Join(e.Missing, ", ")
	}

	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v. It returns nil, an *Error for rule failures, or the
// underlying validator error when v is not a struct.
func Struct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	result := &Error{}
	for _, fe := range verrs {
		name := fieldPath(fe)
		if fe.Tag() == "required" {
			result.Missing = append(result.Missing, name)
			continue
		}
		result.Fields = append(result.Fields, FieldError{Field: name, Message: message(fe)})
	}
	return result
}

// Var validates a single value against tag, naming it field in the result.
func Var(field string, value any, tag string) error {
	err := engine().Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	result := &Error{}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			result.Missing = append(result.Missing, field)
			continue
		}
		result.Fields = append(result.Fields, FieldError{Field: field, Message: message(fe)})
	}
	return result
}

// fieldPath drops the root struct name from the namespace: CreateCommand.tags[1].color -> tags[1].color.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "url", "http_url":
		return "must be a valid URL"
	case "json":
		return "must be valid JSON"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}
