// Package aggregates implements the write boundaries of the estimate domain.
//
// Each aggregate composes table repos from internal/data/repos and owns one
// database transaction per write, so a baseline replacement, an offer rerun
// or an alert resolution is either fully visible or not at all.
package aggregates
