// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation validates request parameters with go-playground/validator.
//
// A single validator instance is shared (it caches struct metadata). Field
// names in messages come from the `query` or `json` tag, so errors read the
// way the client spelled the parameter:
//
//	page must be at most 500
//
// Custom tags:
//   - sortkey: "<field>.asc" or "<field>.desc"
//   - genre_ids: comma or pipe separated positive integers
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

const codeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once

	sortKeyPattern  = regexp.MustCompile(`^[a-z_]+\.(asc|desc)$`)
	genreIDsPattern = regexp.MustCompile(`^[1-9][0-9]*([,|][1-9][0-9]*)*$`)
)

// FieldError is one rejected parameter.
type FieldError struct {
	Field   string
	Tag     string
	Value   any
	Message string
}

// RequestValidationError collects every rejected parameter of one request.
type RequestValidationError struct {
	fields []FieldError
}

// Errors returns the rejected parameters in declaration order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.fields
}

func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError mirrors models.APIError without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError shapes the errors for the VALIDATION_ERROR envelope. A single
// error reports its field directly; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.fields) {
	case 0:
		return &APIError{Code: codeValidation, Message: "Validation failed"}
	case 1:
		f := ve.fields[0]
		return &APIError{
			Code:    codeValidation,
			Message: f.Message,
			Details: map[string]any{"field": f.Field, "tag": f.Tag, "value": f.Value},
		}
	}

	fields := make([]map[string]any, len(ve.fields))
	msgs := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		fields[i] = map[string]any{"field": f.Field, "tag": f.Tag, "message": f.Message}
		msgs[i] = f.Field + ": " + f.Message
	}
	return &APIError{
		Code:    codeValidation,
		Message: strings.Join(msgs, "; "),
		Details: map[string]any{"fields": fields},
	}
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		mustRegisterPattern("sortkey", sortKeyPattern)
		mustRegisterPattern("genre_ids", genreIDsPattern)
	})
	return validate
}

func mustRegisterPattern(tag string, re *regexp.Regexp) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// fieldName prefers the query tag, then the json tag, then the Go name.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// ValidateStruct returns nil or a *RequestValidationError.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return &RequestValidationError{fields: out}
}

// messages maps a tag to its wording; %[1]s is the field, %[2]s the tag parameter.
var messages = map[string]string{
	"required":  "%[1]s is required",
	"sortkey":   "%[1]s must look like field.asc or field.desc",
	"genre_ids": "%[1]s must be a comma-separated list of genre ids",
	"url":       "%[1]s must be a valid URL",
	"oneof":     "%[1]s must be one of: %[2]s",
	"gte":       "%[1]s must be greater than or equal to %[2]s",
	"lte":       "%[1]s must be less than or equal to %[2]s",
	"gt":        "%[1]s must be greater than %[2]s",
	"lt":        "%[1]s must be less than %[2]s",
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
