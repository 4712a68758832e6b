// ABOUTME: Tests for the topology assembler: dedup-merge, implicit creation, and environment constraints.
// ABOUTME: Includes the full end-to-end parse scenario exercised by downstream consumers.
package szn

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssembleImplicitNodeAndPortFromPort(t *testing.T) {
	topo, err := Parse("sw1:port1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(topo.Nodes) != 1 || topo.Nodes[0].Name != "sw1" {
		t.Fatalf("nodes = %v, want [sw1]", topo.Nodes)
	}
	if topo.Nodes[0].Attributes.Len() != 0 {
		t.Errorf("implicit node should have empty attributes")
	}
	if len(topo.Ports) != 1 || topo.Ports[0].String() != "sw1:port1" {
		t.Fatalf("ports = %v, want [sw1:port1]", topo.Ports)
	}
	if topo.Ports[0].Attributes.Len() != 0 {
		t.Errorf("implicit port should have empty attributes")
	}
	if len(topo.Links) != 0 {
		t.Errorf("links = %d, want 0", len(topo.Links))
	}
}

func TestAssembleImplicitElementsFromLink(t *testing.T) {
	topo, err := Parse("[attr=1] sw1:1 -- hs1:1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(topo.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(topo.Nodes))
	}
	if len(topo.Ports) != 2 {
		t.Fatalf("got %d ports, want 2", len(topo.Ports))
	}
	// Link attributes stay on the link; endpoints get empty attribute sets.
	for _, n := range topo.Nodes {
		if n.Attributes.Len() != 0 {
			t.Errorf("node %s attributes = %v, want empty", n.Name, n.Attributes)
		}
	}
	for _, p := range topo.Ports {
		if p.Attributes.Len() != 0 {
			t.Errorf("port %s attributes = %v, want empty", p, p.Attributes)
		}
	}
	if got, _ := topo.Links[0].Attributes.Get("attr"); got != 1 {
		t.Errorf("link attr = %v, want 1", got)
	}
}

func TestAssembleDedupMerge(t *testing.T) {
	topo, err := Parse(`
[a=1 b=2] sw1
[b=3 c=4] sw1
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(topo.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(topo.Nodes))
	}
	// Later value wins, insertion order of untouched keys preserved,
	// updated key keeps its original position.
	want := []kv{{"a", 1}, {"b", 3}, {"c", 4}}
	if diff := cmp.Diff(want, pairs(topo.Nodes[0].Attributes)); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblePortDedupMerge(t *testing.T) {
	topo, err := Parse(`
[state=down] sw1:1
[state=up speed=1000] sw1:1
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(topo.Ports) != 1 {
		t.Fatalf("got %d ports, want 1", len(topo.Ports))
	}
	want := []kv{{"state", "up"}, {"speed", 1000}}
	if diff := cmp.Diff(want, pairs(topo.Ports[0].Attributes)); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleLinksAreNotDeduplicated(t *testing.T) {
	topo, err := Parse("sw1:1 -- sw2:1\nsw1:1 -- sw2:1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(topo.Links) != 2 {
		t.Errorf("got %d links, want 2 (no dedup)", len(topo.Links))
	}
}

func TestLinkCanonicalID(t *testing.T) {
	a := &Link{A: Endpoint{"sw2", "1"}, B: Endpoint{"sw1", "1"}}
	b := &Link{A: Endpoint{"sw1", "1"}, B: Endpoint{"sw2", "1"}}
	if a.ID() != b.ID() {
		t.Errorf("swapped endpoints should share an ID: %q vs %q", a.ID(), b.ID())
	}
	if a.ID() != "sw1:1 -- sw2:1" {
		t.Errorf("ID = %q, want %q", a.ID(), "sw1:1 -- sw2:1")
	}
	if a.String() != "sw2:1 -- sw1:1" {
		t.Errorf("String = %q, want declaration order preserved", a.String())
	}
}

func TestAssembleSingleEnvironmentConstraint(t *testing.T) {
	_, err := Parse("[a=1]\n[b=2]\n")
	if err == nil {
		t.Fatal("expected error for duplicate environment block")
	}
	var serr *SemanticError
	if !errors.As(err, &serr) {
		t.Fatalf("error is %T, want *SemanticError", err)
	}

	topo, err := Parse("[a=1]\nsw1\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got, _ := topo.Environment.Get("a"); got != 1 {
		t.Errorf("environment a = %v, want 1", got)
	}
	// Environment attributes are independent of element attributes.
	if topo.Nodes[0].Attributes.Len() != 0 {
		t.Errorf("node attributes = %v, want empty", topo.Nodes[0].Attributes)
	}
}

func TestAssembleEndToEnd(t *testing.T) {
	topo, err := Parse(`
[shell=vtysh] sw1 sw2
[type=host] hs1
hs2
sw1:1 -- hs1:1
[attr1=1] sw1:4 -- hs2:a
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var nodeNames []string
	for _, n := range topo.Nodes {
		nodeNames = append(nodeNames, n.Name)
	}
	if diff := cmp.Diff([]string{"sw1", "sw2", "hs1", "hs2"}, nodeNames); diff != "" {
		t.Fatalf("node order mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"sw1", "sw2"} {
		if got, _ := topo.Node(name).Attributes.Get("shell"); got != "vtysh" {
			t.Errorf("%s shell = %v, want vtysh", name, got)
		}
	}
	if got, _ := topo.Node("hs1").Attributes.Get("type"); got != "host" {
		t.Errorf("hs1 type = %v, want host", got)
	}
	if topo.Node("hs2").Attributes.Len() != 0 {
		t.Errorf("hs2 attributes = %v, want empty", topo.Node("hs2").Attributes)
	}

	var portNames []string
	for _, p := range topo.Ports {
		portNames = append(portNames, p.String())
		if p.Attributes.Len() != 0 {
			t.Errorf("port %s attributes = %v, want empty", p, p.Attributes)
		}
	}
	if diff := cmp.Diff([]string{"sw1:1", "hs1:1", "sw1:4", "hs2:a"}, portNames); diff != "" {
		t.Fatalf("port order mismatch (-want +got):\n%s", diff)
	}

	if len(topo.Links) != 2 {
		t.Fatalf("got %d links, want 2", len(topo.Links))
	}
	if topo.Links[0].Attributes.Len() != 0 {
		t.Errorf("first link attributes = %v, want empty", topo.Links[0].Attributes)
	}
	if got, _ := topo.Links[1].Attributes.Get("attr1"); got != 1 {
		t.Errorf("second link attr1 = %v, want 1", got)
	}
}

func TestAssembleFullDocument(t *testing.T) {
	// The reference document from the format documentation.
	topo, err := Parse(`
# Environment
[virtual=none awesomeness=medium]

# Nodes
[shell=vtysh] sw1 sw2
[type=host] hs1
hs2

# Links
sw1:1 -- hs1:1
[attr1=2.1e2 attr2=-2.7e-1] sw1:a -- hs1:a
[attr1=1 attr2="lorem ipsum" attr3=(1, 3.0, "B")] sw1:4 -- hs2:a
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	wantEnv := []kv{{"virtual", "none"}, {"awesomeness", "medium"}}
	if diff := cmp.Diff(wantEnv, pairs(topo.Environment)); diff != "" {
		t.Errorf("environment mismatch (-want +got):\n%s", diff)
	}

	if len(topo.Links) != 3 {
		t.Fatalf("got %d links, want 3", len(topo.Links))
	}
	wantAttrs := []kv{{"attr1", 210.0}, {"attr2", -0.27}}
	if diff := cmp.Diff(wantAttrs, pairs(topo.Links[1].Attributes)); diff != "" {
		t.Errorf("link 1 attributes mismatch (-want +got):\n%s", diff)
	}
	wantAttrs = []kv{{"attr1", 1}, {"attr2", "lorem ipsum"}, {"attr3", []any{1, 3.0, "B"}}}
	if diff := cmp.Diff(wantAttrs, pairs(topo.Links[2].Attributes)); diff != "" {
		t.Errorf("link 2 attributes mismatch (-want +got):\n%s", diff)
	}
}
