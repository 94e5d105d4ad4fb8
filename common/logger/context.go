package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
type LogFields struct {
	ProjectID *string // stored project credential ID
	DraftID   *string // client-supplied draft key for a generation
	Operation *string // e.g. "generate", "submit", "test_connection"
	Component string  // e.g. "issuehelper.service.submission"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ProjectID != nil {
		result.ProjectID = new.ProjectID
	}
	if new.DraftID != nil {
		result.DraftID = new.DraftID
	}
	if new.Operation != nil {
		result.Operation = new.Operation
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate cuts s to maxLen runes, appending "..." if anything was dropped.
// Drafts are often Chinese, so cutting on bytes would split characters.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
