package collective_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpatel-hpc/topoflow/collective"
)

func TestReduceOpIsSubstrateOpAlias(t *testing.T) {
	assert.True(t, collective.Sum.Commutative())
	assert.Equal(t, "SUM", collective.Sum.String())
	assert.Equal(t, "MAX", collective.Max.String())
	assert.Equal(t, "MIN", collective.Min.String())
	assert.Equal(t, "PROD", collective.Prod.String())
}

func TestDescriptorFieldsRoundTrip(t *testing.T) {
	d := collective.Descriptor{
		Kind:  collective.KindAllreduce,
		Root:  0,
		Count: 128,
		Op:    collective.Sum,
		Ranks: 8,
	}
	assert.Equal(t, collective.KindAllreduce, d.Kind)
	assert.Equal(t, 128, d.Count)
	assert.Equal(t, 8, d.Ranks)
}
