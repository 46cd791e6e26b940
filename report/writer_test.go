package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/report"
)

func TestWriterEmitsHeaderOnceAndRowsInOrder(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, w.WriteRow(report.Row{
		Timestamp: ts, Op: "broadcast", Root: 0, Bytes: 1048576,
		Participants: 8, AlgorithmChosen: "scatter_allgather", ElapsedUs: 123.456,
	}))
	require.NoError(t, w.WriteRow(report.Row{
		Timestamp: ts.Add(time.Second), Op: "allreduce", Root: -1, Bytes: 16,
		Participants: 4, AlgorithmChosen: "recursive_doubling", ElapsedUs: 7,
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,op,root,bytes,participants,algorithm_chosen,elapsed_us", lines[0])
	assert.Contains(t, lines[1], "broadcast,0,1048576,8,scatter_allgather,123.456")
	assert.Contains(t, lines[2], "allreduce,-1,16,4,recursive_doubling,7")
}

func TestWriterConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(&buf)
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			done <- w.WriteRow(report.Row{Op: "broadcast", Bytes: int64(i)})
		}(i)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 21)
}
