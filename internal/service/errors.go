package service

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to the HTTP taxonomy at the handler boundary.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
)

// ValidationError reports every failing field, not just the first.
type ValidationError struct {
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.FieldErrors))
}

func (e *ValidationError) add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = map[string][]string{}
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], message)
}

// merge folds other's field errors into e.
func (e *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.FieldErrors {
		for _, m := range msgs {
			e.add(field, m)
		}
	}
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	return e
}
