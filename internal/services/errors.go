package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-printshop/validation"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not perform the operation.
	// The underlying gate error stays reachable with errors.Is.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries field violations. Nothing was persisted.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	field, code := e.Violations.First()
	return fmt.Sprintf("validation failed: %s %s", field, code)
}

// Code returns the message code of the first violation.
func (e *ValidationError) Code() string {
	_, code := e.Violations.First()
	return code
}

func invalid(field, code string) error {
	v := validation.Violations{}
	v.Add(field, code)
	return &ValidationError{Violations: v}
}

func check(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// notFound maps gorm's missing-row error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
