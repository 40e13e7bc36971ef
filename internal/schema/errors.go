package schema

import "strings"

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every field of a request that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "invalid clinical record: " + strings.Join(parts, "; ")
}
