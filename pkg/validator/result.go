package validator

import (
	"fmt"
	"strings"
)

// Result is the immutable outcome of one validation pass.
type Result struct {
	Valid bool
	// Required is the required flag reported by the last rule that had an
	// opinion, nil when none did.
	Required *bool
	// Errors are the failure messages in rule declaration order.
	Errors []string
	// FailedRules maps a failed rule to its message.
	FailedRules map[string]string
	// RegenerateMap maps a failed rule to a function rendering its message
	// again, e.g. after the dictionary locale changed. It never re-runs rules.
	RegenerateMap map[string]func() string

	field string
	order []string
}

// IsRequired reports whether the field was found to be required.
func (r *Result) IsRequired() bool {
	return r.Required != nil && *r.Required
}

// Field returns the display name the field was validated under.
func (r *Result) Field() string {
	return r.field
}

// Rules returns the failed rule names in declaration order.
func (r *Result) Rules() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Regenerate returns a copy whose messages are rendered again through
// RegenerateMap.
func (r *Result) Regenerate() *Result {
	out := &Result{
		Valid:         r.Valid,
		Required:      r.Required,
		Errors:        make([]string, 0, len(r.order)),
		FailedRules:   make(map[string]string, len(r.order)),
		RegenerateMap: r.RegenerateMap,
		field:         r.field,
		order:         r.order,
	}
	for _, rule := range r.order {
		msg := r.RegenerateMap[rule]()
		out.Errors = append(out.Errors, msg)
		out.FailedRules[rule] = msg
	}
	return out
}

// Err converts a failed result into ValidationErrors. It returns nil for a
// valid result.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	errs := make(ValidationErrors, 0, len(r.order))
	for _, rule := range r.order {
		errs = append(errs, ValidationError{Field: r.field, Rule: rule, Message: r.FailedRules[rule]})
	}
	return errs
}

// ValidationError is a single failed rule of a field.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

// ValidationErrors collects failures of one or several fields and
// implements the error interface.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one failure.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages of field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

// Fields returns the failed fields in first-failure order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}
