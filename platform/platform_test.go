// ABOUTME: Tests for the platform registry and the debug engine.
package platform

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HPENetworking/topology-sub000/graph"
	"github.com/HPENetworking/topology-sub000/szn"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("debug", NewDebug))
	require.Error(t, r.Register("debug", NewDebug), "duplicate names are rejected")

	factory, err := r.Get("debug")
	require.NoError(t, err)
	require.NotNil(t, factory)

	_, err = r.Get("kvm")
	assert.Error(t, err)

	require.NoError(t, r.Register("alpha", NewDebug))
	assert.Equal(t, []string{"alpha", "debug"}, r.Names())
}

func TestDefaultRegistryHasDebug(t *testing.T) {
	r := DefaultRegistry()
	factory, err := r.Get(DefaultName)
	require.NoError(t, err)

	p, err := factory(quietLogger(), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestDebugRecordsCalls(t *testing.T) {
	topo, err := szn.Parse("sw1:1 -- hs1:1")
	require.NoError(t, err)
	g, err := graph.FromTopology(topo)
	require.NoError(t, err)

	p, err := NewDebug(quietLogger(), nil)
	require.NoError(t, err)
	d := p.(*Debug)
	assert.NotEmpty(t, d.Session())

	ctx := context.Background()
	require.NoError(t, p.PreBuild(ctx, g))
	for _, n := range g.Nodes() {
		require.NoError(t, p.AddNode(ctx, n))
	}
	for _, port := range g.Ports() {
		require.NoError(t, p.AddPort(ctx, port))
	}
	for _, l := range g.Links() {
		require.NoError(t, p.AddLink(ctx, l))
	}
	require.NoError(t, p.PostBuild(ctx))
	require.NoError(t, p.Destroy(ctx))

	assert.Equal(t, []string{
		"pre_build",
		"add_node sw1",
		"add_node hs1",
		"add_port sw1:1",
		"add_port hs1:1",
		"add_link hs1:1 -- sw1:1",
		"post_build",
		"destroy",
	}, d.Calls())
}

func TestDebugForcedFailure(t *testing.T) {
	p, err := NewDebug(quietLogger(), Options{"fail_at": "post_build"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.AddNode(ctx, &graph.Node{ID: "sw1"}))
	assert.Error(t, p.PostBuild(ctx))
}

func TestDebugBadFailAtOption(t *testing.T) {
	_, err := NewDebug(quietLogger(), Options{"fail_at": 3})
	assert.Error(t, err)
}
