// ABOUTME: Tests for DOT rendering of topology graphs.
package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HPENetworking/topology-sub000/szn"
)

func TestDOT(t *testing.T) {
	topo, err := szn.Parse(`
[type=switch] sw1
[type=host] hs1
[rate=fast] sw1:1 -- hs1:1
`)
	require.NoError(t, err)

	g, err := FromTopology(topo)
	require.NoError(t, err)

	want := `graph ring {
  sw1 [type="switch"]
  hs1 [type="host"]

  sw1 -- hs1 [taillabel="1", headlabel="1", rate="fast"]
}
`
	assert.Equal(t, want, g.DOT("ring"))
}

func TestDOTQuoting(t *testing.T) {
	g := New()
	g.CreateNode("sw-1", nil)

	out := g.DOT("my graph")
	assert.Contains(t, out, `graph "my graph" {`)
	assert.Contains(t, out, `  "sw-1"`)
}
