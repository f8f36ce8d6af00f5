package inspection

import (
	"sort"
	"time"
)

// StageTemplate is the crop-level configuration of one inspection checkpoint.
type StageTemplate struct {
	ID                      int64
	CropID                  int64
	StageName               string
	Order                   int
	Required                bool
	PeriodAfterPlantingDays *int
}

// Meta returns the stage metadata copied onto instances materialized from the template.
func (t StageTemplate) Meta() StageMeta {
	return StageMeta{StageName: t.StageName, Order: t.Order, Required: t.Required}
}

// ReturnCore is the read-only snapshot of the parent planting return.
// InspectorID is zero when no inspector has been assigned.
type ReturnCore struct {
	ID          int64
	CropID      int64
	InspectorID int64
	DateSown    *time.Time
}

// StageMeta is the fixed envelope inherited from the originating template at
// creation time. It is never rewritten afterwards.
type StageMeta struct {
	StageName string
	Order     int
	Required  bool
}

// Inputs carries the free-form field data captured during the physical
// inspection (GPS, seed class, yield estimate, ...).
type Inputs map[string]any

// Clone returns a shallow copy; nil stays nil so "not supplied" survives.
func (in Inputs) Clone() Inputs {
	if in == nil {
		return nil
	}
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Stage is the per-return materialization of a stage template.
// Meta is nil for instances created on the fly by a submission that could not
// be matched to any configured template.
type Stage struct {
	ID               int64
	ParentReturnID   int64
	InspectionTypeID int64
	InspectorID      int64
	Meta             *StageMeta
	DueDate          *time.Time
	State            State
	Comment          *string
	Inputs           Inputs
	Recommendation   Recommendation
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Status returns the externally visible status derived from the stage state.
func (s Stage) Status() Status {
	return s.State.Status()
}

// Order returns the inherited template order when the stage carries metadata.
func (s Stage) Order() (int, bool) {
	if s.Meta == nil {
		return 0, false
	}
	return s.Meta.Order, true
}

// StageName returns the inherited stage name or an empty string.
func (s Stage) StageName() string {
	if s.Meta == nil {
		return ""
	}
	return s.Meta.StageName
}

// Submission is one decision write against a stage.
// TaskID is zero when the caller does not know the stage instance id.
// A nil Comment or Inputs leaves the stored value untouched.
type Submission struct {
	TaskID           int64
	InspectionTypeID int64
	Decision         Decision
	Comment          *string
	Inputs           Inputs
}

// Apply merges a submission into the stage: the decision is always
// overwritten, comment and inputs only when supplied.
func (s *Stage) Apply(sub Submission, at time.Time) {
	s.State = Submitted(sub.Decision, at)
	if sub.Comment != nil {
		comment := *sub.Comment
		s.Comment = &comment
	}
	if sub.Inputs != nil {
		s.Inputs = sub.Inputs.Clone()
	}
	s.Recommendation = RecommendationFor(sub.Decision)
}

// Materialize builds the full checklist for a return, one pending stage per
// template in template order, with due dates computed from the sowing date.
func Materialize(ret ReturnCore, templates []StageTemplate) []Stage {
	ordered := SortTemplates(templates)
	stages := make([]Stage, 0, len(ordered))
	for _, tpl := range ordered {
		meta := tpl.Meta()
		stages = append(stages, Stage{
			ParentReturnID:   ret.ID,
			InspectionTypeID: tpl.ID,
			InspectorID:      ret.InspectorID,
			Meta:             &meta,
			DueDate:          DueDate(ret.DateSown, tpl.PeriodAfterPlantingDays),
			State:            Pending(),
			Recommendation:   RecommendationNone,
		})
	}
	return stages
}

// SortTemplates returns a copy ordered by Order. Equal orders keep their
// input sequence, which for stored templates is insertion order.
func SortTemplates(templates []StageTemplate) []StageTemplate {
	out := make([]StageTemplate, len(templates))
	copy(out, templates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// SortStages returns a copy ordered by inherited order, then id. Stages
// without metadata sort last.
func SortStages(stages []Stage) []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := out[i].Order()
		oj, jok := out[j].Order()
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// TemplatesFromStages reconstructs a template list from stage metadata. It is
// used when the crop's current configuration cannot be resolved.
func TemplatesFromStages(stages []Stage) []StageTemplate {
	out := make([]StageTemplate, 0, len(stages))
	for _, st := range SortStages(stages) {
		if st.Meta == nil {
			continue
		}
		out = append(out, StageTemplate{
			ID:        st.InspectionTypeID,
			StageName: st.Meta.StageName,
			Order:     st.Meta.Order,
			Required:  st.Meta.Required,
		})
	}
	return out
}
