package inspection

import (
	"fmt"
	"math"

	"fieldinspect/internal/services"
)

// Unbounded is returned by FirstActionableOrder when every stage is resolved.
const Unbounded = math.MaxInt

var (
	intermediateDecisions = []Decision{DecisionProvisional, DecisionSkipped, DecisionRejected}
	finalDecisions        = []Decision{DecisionAccepted, DecisionRejected}
)

// DecisionsFor returns the decision set offered for a stage. The last stage
// closes the inspection with a binary outcome.
func DecisionsFor(last bool) []Decision {
	src := intermediateDecisions
	if last {
		src = finalDecisions
	}
	cp := make([]Decision, len(src))
	copy(cp, src)
	return cp
}

// FirstActionableOrder walks the templates in order and returns the order of
// the first one whose stage is missing, pending, or provisional. It returns
// Unbounded when the checklist is fully resolved.
func FirstActionableOrder(templates []StageTemplate, stages []Stage) int {
	byType := indexByType(stages)
	for _, tpl := range SortTemplates(templates) {
		st, ok := byType[tpl.ID]
		if !ok || st.Status().Actionable() {
			return tpl.Order
		}
	}
	return Unbounded
}

// StageProgress is the gating view of one template slot.
type StageProgress struct {
	Template         StageTemplate
	Stage            *Stage
	Status           Status
	Last             bool
	Editable         bool
	AllowedDecisions []Decision
}

// Progress is the derived gating state of a whole checklist. It is rebuilt
// from persisted rows on every call.
type Progress struct {
	Initialized     bool
	FirstActionable int
	Stages          []StageProgress
}

// Resolved reports whether no stage remains actionable.
func (p Progress) Resolved() bool {
	return p.FirstActionable == Unbounded
}

// Lookup returns the progress slot for an inspection type.
func (p Progress) Lookup(inspectionTypeID int64) (StageProgress, bool) {
	for _, sp := range p.Stages {
		if sp.Template.ID == inspectionTypeID {
			return sp, true
		}
	}
	return StageProgress{}, false
}

// Evaluate computes first-actionable order, per-stage editability, and the
// decision set for every template slot.
func Evaluate(templates []StageTemplate, stages []Stage) Progress {
	ordered := SortTemplates(templates)
	byType := indexByType(stages)
	progress := Progress{
		Initialized:     len(stages) > 0,
		FirstActionable: FirstActionableOrder(ordered, stages),
		Stages:          make([]StageProgress, 0, len(ordered)),
	}
	for i, tpl := range ordered {
		sp := StageProgress{
			Template: tpl,
			Status:   StatusPending,
			Last:     i == len(ordered)-1,
		}
		if st, ok := byType[tpl.ID]; ok {
			stage := st
			sp.Stage = &stage
			sp.Status = st.Status()
		}
		sp.AllowedDecisions = DecisionsFor(sp.Last)
		sp.Editable = progress.Initialized &&
			tpl.Order <= progress.FirstActionable &&
			sp.Status.Actionable()
		progress.Stages = append(progress.Stages, sp)
	}
	return progress
}

// GuardResult is the outcome of a write authorization check.
type GuardResult struct {
	Allowed bool
	Reason  string
	Marker  error
}

// Err converts a denied result to a classified error.
func (r GuardResult) Err() error {
	if r.Allowed {
		return nil
	}
	return services.Wrap(r.Marker, "gating", "authorize", r.Reason, nil)
}

// Authorize decides whether a decision may be written to the stage of the
// given inspection type. An uninitialized checklist is not gated.
func (p Progress) Authorize(inspectionTypeID int64, decision Decision) GuardResult {
	if !p.Initialized {
		return GuardResult{Allowed: true}
	}
	sp, ok := p.Lookup(inspectionTypeID)
	if !ok {
		return GuardResult{
			Reason: fmt.Sprintf("inspection type %d is not part of this checklist", inspectionTypeID),
			Marker: services.ErrValidation,
		}
	}
	if !sp.Editable {
		return GuardResult{
			Reason: fmt.Sprintf("stage %q (order %d) is not editable while status is %s and first actionable stage is %s",
				sp.Template.StageName, sp.Template.Order, sp.Status, formatOrder(p.FirstActionable)),
			Marker: services.ErrConflict,
		}
	}
	for _, allowed := range sp.AllowedDecisions {
		if allowed == decision {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Reason: fmt.Sprintf("decision %q is not offered for stage %q; expected one of %v",
			decision, sp.Template.StageName, sp.AllowedDecisions),
		Marker: services.ErrValidation,
	}
}

// indexByType keeps the first stage per inspection type in stage order, which
// mirrors how submissions resolve their target.
func indexByType(stages []Stage) map[int64]Stage {
	out := make(map[int64]Stage, len(stages))
	for _, st := range SortStages(stages) {
		if _, seen := out[st.InspectionTypeID]; seen {
			continue
		}
		out[st.InspectionTypeID] = st
	}
	return out
}

func formatOrder(order int) string {
	if order == Unbounded {
		return "none"
	}
	return fmt.Sprintf("%d", order)
}
