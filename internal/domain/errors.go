package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned when a lifecycle method is called from a status that does not allow it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field found in one pass.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when there are no errors, so callers can `return errs.Err()`.
func (ve ValidationErrors) Err() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func (ve *ValidationErrors) add(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}
