package topology_test

import (
	"fmt"

	"github.com/mpatel-hpc/topoflow/topology"
)

// Example demonstrates building a fat-tree model and reading back a
// derived distance.
func Example() {
	m, err := topology.Build(topology.FatTree, topology.Shape{K: 4, N: 16})
	if err != nil {
		panic(err)
	}
	d, err := m.Distance(0, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(d)
	// Output: 2
}
