// ABOUTME: Object graph built from a parsed topology: nodes own ports, links join port pairs.
// ABOUTME: Elements are idempotent by identifier and iterate in creation order.
package graph

import (
	"encoding/json"
	"fmt"

	"github.com/HPENetworking/topology-sub000/szn"
)

// NotFoundError is returned by graph lookups for unknown identifiers.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in graph", e.Kind, e.ID)
}

// Node is a graph node. Metadata holds the node's merged attributes; ports
// lists the identifiers of ports created on it, in creation order.
type Node struct {
	ID       string
	Metadata *szn.AttributeSet

	ports []string
}

// Ports returns the identifiers of the node's ports in creation order.
func (n *Node) Ports() []string {
	out := make([]string, len(n.ports))
	copy(out, n.ports)
	return out
}

// Port is a port owned by a node. Its identifier is "node:label".
type Port struct {
	ID       string
	Node     string
	Label    string
	Metadata *szn.AttributeSet
}

// Link joins two ports. Its identifier is order independent: the two
// port identifiers joined lexicographically with " -- ".
type Link struct {
	ID       string
	A        szn.Endpoint
	B        szn.Endpoint
	Metadata *szn.AttributeSet
}

// CalcLinkID computes the canonical identifier for a link between two
// endpoints, independent of the order they were declared in.
func CalcLinkID(a, b szn.Endpoint) string {
	as, bs := a.String(), b.String()
	if as <= bs {
		return as + " -- " + bs
	}
	return bs + " -- " + as
}

// TopologyGraph holds nodes, ports, and links with object identity. Create
// operations are idempotent: repeating one for an existing identifier merges
// metadata into the existing element instead of replacing it.
type TopologyGraph struct {
	nodeOrder []string
	nodes     map[string]*Node

	portOrder []string
	ports     map[string]*Port

	linkOrder []string
	links     map[string]*Link
}

// New returns an empty topology graph.
func New() *TopologyGraph {
	return &TopologyGraph{
		nodes: make(map[string]*Node),
		ports: make(map[string]*Port),
		links: make(map[string]*Link),
	}
}

// CreateNode adds a node, or merges metadata into the existing node with
// the same identifier.
func (g *TopologyGraph) CreateNode(id string, metadata *szn.AttributeSet) *Node {
	if n, ok := g.nodes[id]; ok {
		if metadata != nil {
			n.Metadata.Update(metadata)
		}
		return n
	}
	n := &Node{ID: id, Metadata: copyOrEmpty(metadata)}
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	return n
}

// CreatePort adds a port on an existing node, or merges metadata into the
// existing port with the same (node, label) identity.
func (g *TopologyGraph) CreatePort(node, label string, metadata *szn.AttributeSet) (*Port, error) {
	owner, ok := g.nodes[node]
	if !ok {
		return nil, &NotFoundError{Kind: "node", ID: node}
	}

	id := node + ":" + label
	if p, ok := g.ports[id]; ok {
		if metadata != nil {
			p.Metadata.Update(metadata)
		}
		return p, nil
	}

	p := &Port{ID: id, Node: node, Label: label, Metadata: copyOrEmpty(metadata)}
	g.ports[id] = p
	g.portOrder = append(g.portOrder, id)
	owner.ports = append(owner.ports, id)
	return p, nil
}

// CreateLink adds a link between two existing ports, or merges metadata into
// the existing link with the same canonical identifier.
func (g *TopologyGraph) CreateLink(a, b szn.Endpoint, metadata *szn.AttributeSet) (*Link, error) {
	for _, ep := range []szn.Endpoint{a, b} {
		if _, ok := g.ports[ep.String()]; !ok {
			return nil, &NotFoundError{Kind: "port", ID: ep.String()}
		}
	}

	id := CalcLinkID(a, b)
	if l, ok := g.links[id]; ok {
		if metadata != nil {
			l.Metadata.Update(metadata)
		}
		return l, nil
	}

	l := &Link{ID: id, A: a, B: b, Metadata: copyOrEmpty(metadata)}
	g.links[id] = l
	g.linkOrder = append(g.linkOrder, id)
	return l, nil
}

// GetNode returns the node with the given identifier.
func (g *TopologyGraph) GetNode(id string) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &NotFoundError{Kind: "node", ID: id}
	}
	return n, nil
}

// GetPort returns the port with the given "node:label" identifier.
func (g *TopologyGraph) GetPort(id string) (*Port, error) {
	p, ok := g.ports[id]
	if !ok {
		return nil, &NotFoundError{Kind: "port", ID: id}
	}
	return p, nil
}

// GetLink returns the link between two endpoints, regardless of the order
// the endpoints are given in.
func (g *TopologyGraph) GetLink(a, b szn.Endpoint) (*Link, error) {
	id := CalcLinkID(a, b)
	l, ok := g.links[id]
	if !ok {
		return nil, &NotFoundError{Kind: "link", ID: id}
	}
	return l, nil
}

// Nodes returns the graph's nodes in creation order.
func (g *TopologyGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Ports returns the graph's ports in creation order.
func (g *TopologyGraph) Ports() []*Port {
	out := make([]*Port, 0, len(g.portOrder))
	for _, id := range g.portOrder {
		out = append(out, g.ports[id])
	}
	return out
}

// Links returns the graph's links in creation order.
func (g *TopologyGraph) Links() []*Link {
	out := make([]*Link, 0, len(g.linkOrder))
	for _, id := range g.linkOrder {
		out = append(out, g.links[id])
	}
	return out
}

// FromTopology builds a graph from a parsed topology. Nodes, ports, and
// links are created in declaration order; link endpoints that only appear in
// link statements get their implicitly declared ports.
func FromTopology(t *szn.Topology) (*TopologyGraph, error) {
	g := New()
	for _, n := range t.Nodes {
		g.CreateNode(n.Name, n.Attributes)
	}
	for _, p := range t.Ports {
		if _, err := g.CreatePort(p.Node, p.Label, p.Attributes); err != nil {
			return nil, err
		}
	}
	for _, l := range t.Links {
		if _, err := g.CreateLink(l.A, l.B, l.Attributes); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MarshalJSON serializes the graph keyed by element identifier, preserving
// creation order within each collection.
func (g *TopologyGraph) MarshalJSON() ([]byte, error) {
	nodes := make([]map[string]any, 0, len(g.nodeOrder))
	for _, n := range g.Nodes() {
		nodes = append(nodes, map[string]any{
			"id":       n.ID,
			"ports":    n.Ports(),
			"metadata": n.Metadata,
		})
	}
	ports := make([]map[string]any, 0, len(g.portOrder))
	for _, p := range g.Ports() {
		ports = append(ports, map[string]any{
			"id":       p.ID,
			"node":     p.Node,
			"label":    p.Label,
			"metadata": p.Metadata,
		})
	}
	links := make([]map[string]any, 0, len(g.linkOrder))
	for _, l := range g.Links() {
		links = append(links, map[string]any{
			"id":       l.ID,
			"a":        l.A.String(),
			"b":        l.B.String(),
			"metadata": l.Metadata,
		})
	}
	return json.Marshal(map[string]any{
		"nodes": nodes,
		"ports": ports,
		"links": links,
	})
}

// copyOrEmpty returns an independent copy of metadata, or a fresh empty set.
func copyOrEmpty(metadata *szn.AttributeSet) *szn.AttributeSet {
	if metadata == nil {
		return szn.NewAttributeSet()
	}
	return metadata.Copy()
}
