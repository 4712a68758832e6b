// ABOUTME: Data model for parsed SZN topologies: typed attribute sets, nodes, ports, and links.
// ABOUTME: Collections preserve declaration order and deduplicate nodes/ports by identity with attribute merge.
package szn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AttributeSet is an insertion-ordered mapping from attribute name to a typed
// value (int, float64, bool, string, or []any). Setting an existing key
// overwrites its value in place without changing its position.
type AttributeSet struct {
	keys   []string
	values map[string]any
}

// NewAttributeSet returns an empty attribute set.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{
		keys:   make([]string, 0),
		values: make(map[string]any),
	}
}

// Set inserts or updates the value for key.
func (a *AttributeSet) Set(key string, value any) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key and whether it is present.
func (a *AttributeSet) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present.
func (a *AttributeSet) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Keys returns the attribute names in insertion order.
func (a *AttributeSet) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of attributes.
func (a *AttributeSet) Len() int {
	return len(a.keys)
}

// Update merges other into a, overwriting values for existing keys and
// appending new keys in other's order.
func (a *AttributeSet) Update(other *AttributeSet) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		a.Set(key, other.values[key])
	}
}

// Copy returns a deep-enough copy of the set. List values are copied; scalar
// values are immutable and shared.
func (a *AttributeSet) Copy() *AttributeSet {
	out := NewAttributeSet()
	for _, key := range a.keys {
		v := a.values[key]
		if list, ok := v.([]any); ok {
			dup := make([]any, len(list))
			copy(dup, list)
			v = dup
		}
		out.Set(key, v)
	}
	return out
}

// Map returns the attributes as a plain map. Ordering is lost; use Keys for
// deterministic iteration.
func (a *AttributeSet) Map() map[string]any {
	out := make(map[string]any, len(a.keys))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// MarshalJSON serializes the set as a JSON object preserving insertion order.
func (a *AttributeSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the set in SZN attribute-block form, mostly for logs.
func (a *AttributeSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s=%s", key, FormatValue(a.values[key]))
	}
	buf.WriteByte(']')
	return buf.String()
}

// FormatValue renders an attribute value in its SZN literal form. Strings are
// quoted, booleans are lowercase, lists are parenthesized.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('(')
		for i, item := range val {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(FormatValue(item))
		}
		buf.WriteByte(')')
		return buf.String()
	default:
		return fmt.Sprint(val)
	}
}

// Endpoint identifies one side of a link: a node and a port label on it.
type Endpoint struct {
	Node string
	Port string
}

// String returns the canonical "node:port" form of the endpoint.
func (e Endpoint) String() string {
	return e.Node + ":" + e.Port
}

// Node is a topology node identified by a unique name.
type Node struct {
	Name       string
	Attributes *AttributeSet
}

// String returns the node's display string (its name).
func (n *Node) String() string {
	return n.Name
}

// Port is a port on a node, identified by the (node, label) pair.
type Port struct {
	Node       string
	Label      string
	Attributes *AttributeSet
}

// String returns the port's display string, "node:label".
func (p *Port) String() string {
	return p.Node + ":" + p.Label
}

// Link connects two endpoints. Links carry their own attributes and are not
// deduplicated by the parser: the same endpoint pair may appear repeatedly.
type Link struct {
	A          Endpoint
	B          Endpoint
	Attributes *AttributeSet
}

// String returns the link's display string in declaration order,
// "nodea:porta -- nodeb:portb".
func (l *Link) String() string {
	return l.A.String() + " -- " + l.B.String()
}

// ID returns a canonical link identifier that is independent of endpoint
// order: the two "node:port" strings joined lexicographically.
func (l *Link) ID() string {
	a, b := l.A.String(), l.B.String()
	if a <= b {
		return a + " -- " + b
	}
	return b + " -- " + a
}

// Topology is the result of parsing an SZN document: a single environment
// attribute set plus nodes, ports, and links in declaration order.
type Topology struct {
	Environment *AttributeSet
	Nodes       []*Node
	Ports       []*Port
	Links       []*Link
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{
		Environment: NewAttributeSet(),
		Nodes:       make([]*Node, 0),
		Ports:       make([]*Port, 0),
		Links:       make([]*Link, 0),
	}
}

// Node returns the node with the given name, or nil if not declared.
func (t *Topology) Node(name string) *Node {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Port returns the port with the given node name and label, or nil.
func (t *Topology) Port(node, label string) *Port {
	for _, p := range t.Ports {
		if p.Node == node && p.Label == label {
			return p
		}
	}
	return nil
}

// MarshalJSON serializes the topology with its element collections keyed by
// display string, preserving declaration order.
func (t *Topology) MarshalJSON() ([]byte, error) {
	nodes := make([]map[string]any, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		nodes = append(nodes, map[string]any{"name": n.Name, "attributes": n.Attributes})
	}
	ports := make([]map[string]any, 0, len(t.Ports))
	for _, p := range t.Ports {
		ports = append(ports, map[string]any{"node": p.Node, "label": p.Label, "attributes": p.Attributes})
	}
	links := make([]map[string]any, 0, len(t.Links))
	for _, l := range t.Links {
		links = append(links, map[string]any{
			"endpoints":  [2]string{l.A.String(), l.B.String()},
			"attributes": l.Attributes,
		})
	}
	return json.Marshal(map[string]any{
		"environment": t.Environment,
		"nodes":       nodes,
		"ports":       ports,
		"links":       links,
	})
}
