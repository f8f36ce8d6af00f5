package inspection

import (
	"strings"
	"time"
)

// Decision is the outcome recorded for one stage.
type Decision string

const (
	DecisionAccepted    Decision = "accepted"
	DecisionRejected    Decision = "rejected"
	DecisionProvisional Decision = "provisional"
	DecisionSkipped     Decision = "skipped"
)

var allDecisions = []Decision{
	DecisionAccepted,
	DecisionRejected,
	DecisionProvisional,
	DecisionSkipped,
}

// AllDecisions returns every known decision.
func AllDecisions() []Decision {
	cp := make([]Decision, len(allDecisions))
	copy(cp, allDecisions)
	return cp
}

// ParseDecision converts a string into a known Decision.
func ParseDecision(value string) (Decision, bool) {
	normalized := Decision(strings.ToLower(strings.TrimSpace(value)))
	for _, d := range allDecisions {
		if d == normalized {
			return d, true
		}
	}
	return "", false
}

// Recommendation is the signal the parent approval workflow reads.
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationReject  Recommendation = "reject"
	RecommendationNone    Recommendation = "none"
)

// RecommendationFor maps a stage decision to its recommendation.
func RecommendationFor(decision Decision) Recommendation {
	switch decision {
	case DecisionAccepted:
		return RecommendationApprove
	case DecisionRejected:
		return RecommendationReject
	default:
		return RecommendationNone
	}
}

// Status is the externally visible stage status: the decision, or pending.
type Status string

const (
	StatusPending     Status = "pending"
	StatusAccepted    Status = Status(DecisionAccepted)
	StatusRejected    Status = Status(DecisionRejected)
	StatusProvisional Status = Status(DecisionProvisional)
	StatusSkipped     Status = Status(DecisionSkipped)
)

// Actionable reports whether a stage in this status still awaits work.
func (s Status) Actionable() bool {
	return s == StatusPending || s == StatusProvisional
}

// WriteState is the coarse record state: nothing written yet, or submitted.
type WriteState string

const (
	WriteStateDraft     WriteState = "draft"
	WriteStateSubmitted WriteState = "submitted"
)

// State is either pending or submitted with a decision and a submission time.
// The zero value is pending.
type State struct {
	decision    Decision
	submittedAt time.Time
}

// Pending returns the state of a stage with no decision.
func Pending() State {
	return State{}
}

// Submitted returns the state of a stage carrying a decision. An empty
// decision yields Pending.
func Submitted(decision Decision, at time.Time) State {
	if decision == "" {
		return State{}
	}
	return State{decision: decision, submittedAt: at.UTC()}
}

// IsPending reports whether no decision has been recorded.
func (s State) IsPending() bool {
	return s.decision == ""
}

// Decision returns the recorded decision.
func (s State) Decision() (Decision, bool) {
	return s.decision, s.decision != ""
}

// SubmittedAt returns when the decision was recorded.
func (s State) SubmittedAt() (time.Time, bool) {
	if s.decision == "" {
		return time.Time{}, false
	}
	return s.submittedAt, true
}

// Status returns the decision as a status, or pending.
func (s State) Status() Status {
	if s.decision == "" {
		return StatusPending
	}
	return Status(s.decision)
}

// WriteState returns draft until a decision has been written.
func (s State) WriteState() WriteState {
	if s.decision == "" {
		return WriteStateDraft
	}
	return WriteStateSubmitted
}
