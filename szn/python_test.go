// ABOUTME: Tests for static TOPOLOGY extraction from Python source files.
// ABOUTME: Covers triple-quoted and single-line literals, missing constants, and non-literal assignments.
package szn

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTopologyTripleQuoted(t *testing.T) {
	src := `# -*- coding: utf-8 -*-
from topology import something

TOPOLOGY = """
[type=switch] sw1
sw1:1 -- sw2:1
"""


def test_case(topology):
    pass
`
	got, err := ExtractTopology(src)
	require.NoError(t, err)
	assert.Contains(t, got, "[type=switch] sw1")
	assert.Contains(t, got, "sw1:1 -- sw2:1")
}

func TestExtractTopologySingleQuotes(t *testing.T) {
	got, err := ExtractTopology("TOPOLOGY = 'sw1 sw2'\n")
	require.NoError(t, err)
	assert.Equal(t, "sw1 sw2", got)
}

func TestExtractTopologyTripleSingleQuoted(t *testing.T) {
	got, err := ExtractTopology("TOPOLOGY = '''\nsw1\n'''\n")
	require.NoError(t, err)
	assert.Equal(t, "\nsw1\n", got)
}

func TestExtractTopologyEscapes(t *testing.T) {
	got, err := ExtractTopology(`TOPOLOGY = "sw1\nsw2"`)
	require.NoError(t, err)
	assert.Equal(t, "sw1\nsw2", got)
}

func TestExtractTopologyRawString(t *testing.T) {
	got, err := ExtractTopology(`TOPOLOGY = r"sw1\nsw2"`)
	require.NoError(t, err)
	assert.Equal(t, `sw1\nsw2`, got)
}

func TestExtractTopologyMissing(t *testing.T) {
	_, err := ExtractTopology("OTHER = \"x\"\n")
	assert.ErrorIs(t, err, ErrNoTopology)
}

func TestExtractTopologyIgnoresSimilarNames(t *testing.T) {
	_, err := ExtractTopology("TOPOLOGY_EXTRA = \"x\"\n")
	assert.ErrorIs(t, err, ErrNoTopology)
}

func TestExtractTopologyIgnoresIndentedAssignment(t *testing.T) {
	src := "def f():\n    TOPOLOGY = \"nope\"\n"
	_, err := ExtractTopology(src)
	assert.ErrorIs(t, err, ErrNoTopology)
}

func TestExtractTopologyNonStringValue(t *testing.T) {
	_, err := ExtractTopology("TOPOLOGY = 42\n")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTopology)
}

func TestFindTopologyInPython(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_sample.py")
	src := "TOPOLOGY = \"\"\"\n[type=host] hs1\n\"\"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	got, err := FindTopologyInPython(path)
	require.NoError(t, err)
	assert.Contains(t, got, "[type=host] hs1")

	_, err = FindTopologyInPython(filepath.Join(dir, "missing.py"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
