package intake

import (
	"sort"
	"strings"
)

// ValidationError lists input problems per field, plus form level problems
// that belong to no single field.
type ValidationError struct {
	Message     string              `json:"message"`
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, FormErrors: []string{}, FieldErrors: map[string][]string{}}
}

func (e *ValidationError) addField(field, msg string) {
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

func (e *ValidationError) addForm(msg string) {
	e.FormErrors = append(e.FormErrors, msg)
}

func (e *ValidationError) empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

func (e *ValidationError) Error() string {
	var parts []string
	parts = append(parts, e.FormErrors...)
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], ", "))
	}
	if len(parts) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}
