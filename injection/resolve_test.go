// ABOUTME: End-to-end tests for injection resolution: file expansion, selector matching, overlay merging.
package injection

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HPENetworking/topology-sub000/szn"
)

const pingTopology = `
# Nodes
[type=switch] sw1 sw2
[type=host] hs1 hs2

# Links
sw1:1 -- hs1:1
[rate=fast] sw1:4 -- hs2:a
`

const pingSuite = `
from pytest import mark

TOPOLOGY = """
# Nodes
[type=switch] sw1 sw2
[type=host] hs1 hs2

# Links
sw1:1 -- hs1:1
[rate=fast] sw1:4 -- hs2:a
"""


def test_ping(topology):
    sw1 = topology.get('sw1')
    assert sw1 is not None
`

func quietResolver(searchPaths ...string) *Resolver {
	return &Resolver{
		SearchPaths: searchPaths,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveAgainstPythonSuite(t *testing.T) {
	root := t.TempDir()
	suite := filepath.Join(root, "test_ping.py")
	writeFile(t, suite, pingSuite)
	// Files that should never be considered.
	writeFile(t, filepath.Join(root, "helpers.py"), "TOPOLOGY = 'ignored'\n")
	writeFile(t, filepath.Join(root, ".cache", "test_hidden.py"), pingSuite)

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["test_*.py"],
			"environment": {"virtual": true},
			"modifiers": [
				{
					"nodes": ["type=switch"],
					"attributes": {"image": "switch_image"}
				},
				{
					"ports": ["sw1:*"],
					"attributes": {"speed": 1000}
				},
				{
					"links": ["sw1:4 -- hs2:a"],
					"attributes": {"rate": "slow"}
				}
			]
		}
	]`)

	result, err := quietResolver(root).Resolve(spec)
	require.NoError(t, err)
	require.Equal(t, []string{suite}, result.Files())

	fi := result.File(suite)
	require.NotNil(t, fi)

	virtual, ok := fi.Environment.Get("virtual")
	require.True(t, ok)
	assert.Equal(t, true, virtual)

	// Matches follow the topology's declaration order.
	assert.Equal(t, []string{"sw1", "sw2", "sw1:1", "sw1:4", "sw1:4 -- hs2:a"}, fi.Elements())

	image, ok := fi.Attributes("sw1").Get("image")
	require.True(t, ok)
	assert.Equal(t, "switch_image", image)

	speed, ok := fi.Attributes("sw1:1").Get("speed")
	require.True(t, ok)
	assert.Equal(t, 1000, toInt(t, speed))

	rate, ok := fi.Attributes("sw1:4 -- hs2:a").Get("rate")
	require.True(t, ok)
	assert.Equal(t, "slow", rate)
}

// toInt normalizes JSON-decoded numbers, which arrive as float64.
func toInt(t *testing.T, v any) int {
	t.Helper()
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		t.Fatalf("not a number: %#v", v)
		return 0
	}
}

func TestResolveStandaloneSZN(t *testing.T) {
	root := t.TempDir()
	topo := filepath.Join(root, "ring.szn")
	writeFile(t, topo, pingTopology)

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["*.szn"],
			"modifiers": [
				{"nodes": ["hs*"], "attributes": {"shell": "bash"}}
			]
		}
	]`)

	result, err := quietResolver(root).Resolve(spec)
	require.NoError(t, err)
	require.Equal(t, []string{topo}, result.Files())
	assert.Equal(t, []string{"hs1", "hs2"}, result.File(topo).Elements())
}

func TestResolveLaterRulesOverlay(t *testing.T) {
	root := t.TempDir()
	suite := filepath.Join(root, "test_ping.py")
	writeFile(t, suite, pingSuite)

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["test_*.py"],
			"modifiers": [
				{"nodes": ["sw1"], "attributes": {"image": "generic", "managed": true}}
			]
		},
		{
			"files": ["test_ping.py"],
			"modifiers": [
				{"nodes": ["sw1"], "attributes": {"image": "pinned"}}
			]
		}
	]`)

	result, err := quietResolver(root).Resolve(spec)
	require.NoError(t, err)

	attrs := result.File(suite).Attributes("sw1")
	require.NotNil(t, attrs)

	image, _ := attrs.Get("image")
	assert.Equal(t, "pinned", image, "later rules win for the same attribute")
	managed, ok := attrs.Get("managed")
	require.True(t, ok, "earlier attributes survive the overlay")
	assert.Equal(t, true, managed)
}

func TestResolveSkipsUnparseableFiles(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "test_good.py")
	writeFile(t, good, pingSuite)
	writeFile(t, filepath.Join(root, "test_broken.py"), "TOPOLOGY = \"\"\"\nsw1:1 -- \n\"\"\"\n")
	writeFile(t, filepath.Join(root, "test_empty.py"), "def test_nothing():\n    pass\n")

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["test_*.py"],
			"modifiers": [
				{"nodes": ["sw1"], "attributes": {"image": "img"}}
			]
		}
	]`)

	result, err := quietResolver(root).Resolve(spec)
	require.NoError(t, err, "unusable files are skipped, not fatal")
	assert.Equal(t, []string{good}, result.Files())
}

func TestResolveSearchesSubdirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "suites", "l2", "test_ping.py")
	writeFile(t, nested, pingSuite)

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["test_*.py"],
			"modifiers": [
				{"nodes": ["sw1"], "attributes": {"image": "img"}}
			]
		}
	]`)

	result, err := quietResolver(root).Resolve(spec)
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, result.Files())
}

func TestExpandSelectors(t *testing.T) {
	topo, err := szn.Parse(`
[type=switch] sw1 sw2
[type=host] hs1 hs2
`)
	require.NoError(t, err)

	tests := []struct {
		selectors []string
		want      []string
	}{
		{[]string{"type=switch"}, []string{"sw1", "sw2"}},
		{[]string{"sw*"}, []string{"sw1", "sw2"}},
		{[]string{"hs1"}, []string{"hs1"}},
		// The union keeps declaration order per selector, no duplicates.
		{[]string{"hs2", "type=switch", "sw1"}, []string{"hs2", "sw1", "sw2"}},
		{[]string{"missing"}, nil},
	}

	for _, tc := range tests {
		got, err := expandSelectors(topo, Target{Kind: KindNodes, Selectors: tc.selectors})
		require.NoError(t, err, "selectors %v", tc.selectors)
		assert.Equal(t, tc.want, got, "selectors %v", tc.selectors)
	}
}

func TestResolveUnknownKindIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "test_ping.py"), pingSuite)

	spec := writeSpec(t, "attrs.json", `[
		{
			"files": ["test_*.py"],
			"modifiers": [
				{"gadgets": ["g1"], "attributes": {"a": 1}}
			]
		}
	]`)

	_, err := quietResolver(root).Resolve(spec)
	var semErr *szn.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestApply(t *testing.T) {
	topo, err := szn.Parse(pingTopology)
	require.NoError(t, err)

	fi := NewFileInjection("test_ping.py")
	fi.MergeEnvironment(map[string]any{"virtual": true})
	fi.Merge("sw1", map[string]any{"image": "img", "type": "router"})
	fi.Merge("sw1:1", map[string]any{"speed": 1000})
	fi.Merge("hs2:a -- sw1:4", map[string]any{"rate": "slow"})
	fi.Merge("ghost", map[string]any{"x": 1})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ApplyWith(logger, topo, fi)

	virtual, ok := topo.Environment.Get("virtual")
	require.True(t, ok)
	assert.Equal(t, true, virtual)

	sw1 := topo.Node("sw1")
	require.NotNil(t, sw1)
	image, _ := sw1.Attributes.Get("image")
	assert.Equal(t, "img", image)
	typ, _ := sw1.Attributes.Get("type")
	assert.Equal(t, "router", typ, "injected attributes replace parsed ones")

	port := topo.Port("sw1", "1")
	require.NotNil(t, port)
	speed, _ := port.Attributes.Get("speed")
	assert.Equal(t, 1000, speed)

	// Link keys match regardless of endpoint order.
	var link *szn.Link
	for _, l := range topo.Links {
		if l.String() == "sw1:4 -- hs2:a" {
			link = l
		}
	}
	require.NotNil(t, link)
	rate, _ := link.Attributes.Get("rate")
	assert.Equal(t, "slow", rate)

	assert.Nil(t, topo.Node("ghost"), "unknown keys are skipped")
}
