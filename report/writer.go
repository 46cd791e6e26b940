package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

var header = []string{
	"timestamp", "op", "root", "bytes", "participants", "algorithm_chosen", "elapsed_us",
}

// Writer formats Rows as CSV onto an injected io.Writer, flushing after
// every row so a crash mid-run loses at most the in-flight record. One
// Writer serializes access with a mutex since the optimizer may be
// invoked concurrently across disjoint communicators in one process
// (spec.md §5).
type Writer struct {
	mu     sync.Mutex
	csv    *csv.Writer
	header bool
}

// NewWriter wraps w, writing the column header on the first WriteRow call.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteRow appends one record, formatting timestamps as RFC3339Nano and
// floats with strconv.FormatFloat's 'f' verb (no locale, no exponent).
func (w *Writer) WriteRow(r Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.header {
		if err := w.csv.Write(header); err != nil {
			return fmt.Errorf("report: write header: %w", err)
		}
		w.header = true
	}

	record := []string{
		r.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
		r.Op,
		strconv.Itoa(r.Root),
		strconv.FormatInt(r.Bytes, 10),
		strconv.Itoa(r.Participants),
		r.AlgorithmChosen,
		strconv.FormatFloat(r.ElapsedUs, 'f', -1, 64),
	}
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("report: write row: %w", err)
	}
	w.csv.Flush()
	return w.csv.Error()
}
