package optimizer

import "errors"

// ErrSizeMismatch indicates count*datatype_size overflowed, or a buffer
// was smaller than count implies (spec.md §7 kind 2) — rejected at
// optimizer entry, before any message is sent.
var ErrSizeMismatch = errors.New("optimizer: buffer size does not match count")

// ErrInvalidRoot indicates a root rank outside [0, N).
var ErrInvalidRoot = errors.New("optimizer: root out of range")

// ErrCountOverflow indicates count*datatype_size would overflow before any
// message is sent (spec.md §7 kind 2).
var ErrCountOverflow = errors.New("optimizer: count overflows byte size")
