package apperr

import (
	"errors"
	"strings"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrGateway     = errors.New("payment gateway error")
	ErrSignature   = errors.New("invalid webhook signature")
	ErrPersistence = errors.New("persistence error")
)

// FieldError is a validation failure naming the offending fields.
type FieldError struct {
	Fields []string
	Reason string
}

func (e *FieldError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = "missing or invalid fields"
	}
	if len(e.Fields) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(e.Fields, ", ")
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a FieldError; nil when no fields are given and reason is empty.
func Invalid(reason string, fields ...string) error {
	if reason == "" && len(fields) == 0 {
		return nil
	}
	return &FieldError{Fields: fields, Reason: reason}
}

// Fields collects missing/invalid field names and turns them into one error.
type Fields []string

func (f *Fields) Add(cond bool, name string) {
	if cond {
		*f = append(*f, name)
	}
}

func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &FieldError{Fields: f}
}
