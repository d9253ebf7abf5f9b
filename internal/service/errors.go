package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
)

// ValidationErrors collects business-rule violations keyed by field path
// (e.g. "items.0.quantity"). It is returned before any mutation happens;
// a non-empty map always means nothing was written.
type ValidationErrors map[string][]string

// Add appends a message for a field path
func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether any error was recorded
func (e ValidationErrors) Any() bool {
	return len(e) > 0
}

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationErrors unwraps err into ValidationErrors if it is one
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
