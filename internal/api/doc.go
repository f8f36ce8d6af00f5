// Package api defines wire-format types and the service facade shared by the
// HTTP daemon and the CLI. It translates workflow read models into
// transport-friendly DTOs without leaking internal types.
//
// DTOs use camelCase JSON tags. Dates are YYYY-MM-DD; timestamps are RFC3339
// with milliseconds. An infinite first-actionable order is encoded as null.
// StageView editability and decision sets come from the same gating
// evaluation the write path uses.
package api
