// Package workflow drives the field-inspection checklist of a planting return.
//
// The Engine materializes a return's stage checklist exactly once, records
// stage decisions with field-level merge semantics, and derives the
// recommendation the parent approval workflow reads. Every operation checks
// the acting subject's capability first, runs its writes inside one store
// transaction, and re-derives gating from persisted rows; nothing is cached
// between calls.
//
// Write authorization and read-side progress share inspection.Evaluate, so a
// stage the checklist view reports as editable is exactly a stage a
// submission may write.
package workflow
