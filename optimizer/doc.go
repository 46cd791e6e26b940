// Package optimizer is the single decision surface for a collective
// call: given a Descriptor and the process group's Model, it picks an
// algorithm from collective, dispatches it, and records the elapsed
// time. Every call goes through the same four stages — DECIDE, DISPATCH,
// EXECUTE, REPORT — as a straight-line function, not a literal state
// machine type: an error at any stage returns immediately, and nothing
// partially completed is retried (spec.md §4.D, §7).
package optimizer
