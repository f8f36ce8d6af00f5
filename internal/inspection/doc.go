// Package inspection holds the pure model of the multi-stage field inspection
// attached to a planting return.
//
// It owns the stage template and stage instance types, the tagged stage state
// (pending or submitted with a decision), the due-date calculator, the
// decision to recommendation table, and the gating calculator that decides
// which stage is currently actionable. Nothing in this package touches
// storage; the workflow engine and the API view builder both call the same
// functions so write authorization and read-side progress never disagree.
//
// External collaborators (capability checks, the parent return record, the
// crop's stage configuration) are expressed as small interfaces here and
// implemented elsewhere.
package inspection
