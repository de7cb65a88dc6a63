// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

// Package validation provides struct validation using go-playground/validator v10.
// It holds a thread-safe singleton validator with the custom rules used by
// share definitions:
//
//   - slug: lowercase letters, digits and dashes, at most 32 characters
//   - passcode=<Field>: passcode format dictated by the auth kind in <Field>
//
// Example:
//
//	type Share struct {
//	    Slug     string `validate:"required,slug"`
//	    AuthKind string `validate:"oneof=pin4 pin6 alphanumeric"`
//	    Passcode string `validate:"passcode=AuthKind"`
//	}
//
//	if err := validation.ValidateStruct(&s); err != nil {
//	    return fmt.Errorf("share %q: %w", s.Slug, err)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxSlugLength is the longest accepted share slug.
const MaxSlugLength = 32

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	pin4Pattern = regexp.MustCompile(`^\d{4}$`)
	pin6Pattern = regexp.MustCompile(`^\d{6}$`)
)

// MinAlphanumericPasscode is the shortest accepted alphanumeric passcode.
const MinAlphanumericPasscode = 4

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation error.
type ValidationError struct {
	tag     string
	message string
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// StructValidationError is the collection of field errors for one struct.
type StructValidationError struct {
	errors []ValidationError
}

// Error implements the error interface, returning a combined error message.
func (ve *StructValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for i := range ve.errors {
		messages = append(messages, ve.errors[i].Error())
	}
	return strings.Join(messages, "; ")
}

func (ve *StructValidationError) hasTag(tag string) bool {
	for i := range ve.errors {
		if ve.errors[i].tag == tag {
			return true
		}
	}
	return false
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("slug", validateSlug)
		_ = validate.RegisterValidation("passcode", validatePasscode)
	})

	return validate
}

// isSlug reports whether s is a well-formed share slug.
func isSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// isPasscode reports whether passcode is acceptable for the auth kind.
// Unknown kinds accept nothing.
func isPasscode(kind, passcode string) bool {
	switch kind {
	case "pin4":
		return pin4Pattern.MatchString(passcode)
	case "pin6":
		return pin6Pattern.MatchString(passcode)
	case "alphanumeric":
		return len(passcode) >= MinAlphanumericPasscode
	default:
		return false
	}
}

func validateSlug(fl validator.FieldLevel) bool {
	return isSlug(fl.Field().String())
}

// validatePasscode reads the auth kind from the sibling field named by the
// tag parameter.
func validatePasscode(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	kind := parent.FieldByName(fl.Param())
	if !kind.IsValid() || kind.Kind() != reflect.String {
		return false
	}
	return isPasscode(kind.String(), fl.Field().String())
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *StructValidationError if it fails.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructValidationError{
			errors: []ValidationError{{tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			tag:     fieldErr.Tag(),
			message: translateError(fieldErr),
		}
	}

	return &StructValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"slug":     "%s must contain only lowercase letters, digits and dashes (max 32 characters)",
	"unique":   "%s must not contain duplicates",
	"url":      "%s must be a valid URL",
	"http_url": "%s must be a valid http or https URL",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"passcode": "%s does not match the format required by %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must have at least %s entries", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must have at most %s entries", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
