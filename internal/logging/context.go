package logging

import (
	"context"
	"log/slog"

	"fieldinspect/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldReturnID is the standardized structured logging key for parent return identifiers.
	FieldReturnID = "return_id"
	// FieldStage is the standardized structured logging key for inspection stage names.
	FieldStage = "stage"
	// FieldSubject is the standardized structured logging key for the acting subject.
	FieldSubject = "subject"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is the standardized structured logging key for event classification.
	FieldEventType = "event_type"
	// FieldDecision is the standardized structured logging key for stage decisions.
	FieldDecision = "decision"
	// FieldRecommendation is the standardized structured logging key for derived recommendations.
	FieldRecommendation = "recommendation"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ReturnIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldReturnID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if subject, ok := services.SubjectFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSubject, subject))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
