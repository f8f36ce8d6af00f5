package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"fieldinspect/internal/inspection"
	"fieldinspect/internal/logging"
	"fieldinspect/internal/metrics"
	"fieldinspect/internal/services"
	"fieldinspect/internal/store"
)

const component = "workflow"

// Engine coordinates checklist initialization, stage submission, and
// checklist reads for planting returns.
type Engine struct {
	store     *store.Store
	returns   inspection.ReturnSource
	templates inspection.TemplateSource
	auth      inspection.Authorizer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validate  *validator.Validate
	now       func() time.Time
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithReturnSource overrides where return snapshots are read from. The
// store's own returns table is used by default.
func WithReturnSource(src inspection.ReturnSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.returns = src
		}
	}
}

// WithTemplateSource overrides where crop stage templates are read from.
func WithTemplateSource(src inspection.TemplateSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.templates = src
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the time source used for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an engine backed by st and guarded by auth.
func NewEngine(st *store.Store, auth inspection.Authorizer, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		returns:   st,
		templates: st,
		auth:      auth,
		logger:    logging.NewNop(),
		validate:  newValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, component)
	return e
}

// authorize checks the acting subject carried by ctx.
func (e *Engine) authorize(ctx context.Context, capability, operation string) error {
	subject, _ := services.SubjectFromContext(ctx)
	if e.auth != nil && subject != "" && e.auth.HasCapability(ctx, subject, capability) {
		return nil
	}
	if subject == "" {
		subject = "anonymous"
	}
	return services.Wrap(services.ErrPermissionDenied, component, operation,
		"subject "+subject+" lacks capability \""+capability+"\"", nil)
}

// storageErr classifies an error that escaped a store call. Errors already
// carrying a marker pass through unchanged.
func storageErr(operation string, err error) error {
	if err == nil || services.FailureKind(err) != services.KindInternal {
		return err
	}
	return services.Wrap(services.ErrStorage, component, operation, "", err)
}

func (e *Engine) finish(ctx context.Context, operation string, started time.Time, err error) {
	if err == nil {
		return
	}
	kind := services.FailureKind(err)
	e.metrics.RecordFailure(operation, kind)
	logger := logging.WithContext(ctx, e.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, operation+"_failed"),
		logging.String("error_kind", kind),
		logging.Duration("duration", e.now().Sub(started)),
		logging.Error(err),
	}
	switch kind {
	case services.KindStorage, services.KindInternal:
		logger.Error("inspection operation failed", logging.Args(attrs...)...)
	default:
		logger.Warn("inspection operation rejected", logging.Args(attrs...)...)
	}
}

// templatesFor returns the crop's current templates, or templates rebuilt
// from stage metadata when the return or its crop configuration is gone.
func (e *Engine) templatesFor(ctx context.Context, ret *inspection.ReturnCore, stages []inspection.Stage) ([]inspection.StageTemplate, error) {
	if ret != nil {
		templates, err := e.templates.StageTemplates(ctx, ret.CropID)
		if err != nil {
			return nil, err
		}
		if len(templates) > 0 {
			return templates, nil
		}
	}
	return inspection.TemplatesFromStages(stages), nil
}
