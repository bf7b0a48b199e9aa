// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

// Package validation provides struct validation using
// go-playground/validator v10 behind a thread-safe singleton, plus the
// custom validators the portal payloads need (ISO calendar dates,
// department-ID lists).
package validation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the shared validator, building it on first use. The
// validator caches struct metadata, so sharing one instance matters.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// isodate: a bare YYYY-MM-DD calendar date.
		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Error is a flattened, caller-readable validation failure.
type Error struct {
	fields []string
}

// Error lists the failed fields in one line.
func (e *Error) Error() string {
	return "invalid request: " + strings.Join(e.fields, "; ")
}

// ValidateStruct validates s against its `validate` tags. Returns a
// *Error with per-field messages, or nil when valid.
func ValidateStruct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, describe(fe))
	}
	return &Error{fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
