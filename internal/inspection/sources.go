package inspection

import "context"

// Capability names checked before every engine operation.
const (
	CapabilityInitialise = "initialise inspections"
	CapabilityView       = "view field inspections"
	CapabilityEdit       = "edit field inspections"
)

// Authorizer answers capability checks for an acting subject.
type Authorizer interface {
	HasCapability(ctx context.Context, subject, capability string) bool
}

// ReturnSource loads the parent return snapshot. A missing return is reported
// as (nil, nil).
type ReturnSource interface {
	ReturnCore(ctx context.Context, id int64) (*ReturnCore, error)
}

// TemplateSource loads a crop's stage templates ordered by stage order.
// An empty slice is a valid answer.
type TemplateSource interface {
	StageTemplates(ctx context.Context, cropID int64) ([]StageTemplate, error)
}
