// Package report persists one CSV row per optimized collective call.
//
// Writer wraps encoding/csv with the fixed column set spec.md §6 names:
// timestamp, op, root, bytes, participants, algorithm_chosen, elapsed_us.
// Rows are written in call order (chronological) and numeric fields are
// formatted as plain decimal, locale-independent. A Writer is injected
// into optimizer.Optimizer through the RowWriter interface, never held
// as a package-level handle.
package report
