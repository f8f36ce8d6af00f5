package services

import "context"

type contextKey string

const (
	returnIDKey  contextKey = "return_id"
	stageKey     contextKey = "stage"
	subjectKey   contextKey = "subject"
	requestIDKey contextKey = "request_id"
)

// WithReturnID annotates context with the parent return identifier.
func WithReturnID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, returnIDKey, id)
}

// ReturnIDFromContext extracts the parent return identifier if present.
func ReturnIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(returnIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithStage annotates context with the inspection stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSubject annotates context with the acting subject whose capabilities
// gate every engine operation.
func WithSubject(ctx context.Context, subject string) context.Context {
	if subject == "" {
		return ctx
	}
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the acting subject if present.
func SubjectFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(subjectKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
