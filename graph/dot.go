// ABOUTME: Serializer that renders a topology graph as a DOT-formatted undirected graph.
// ABOUTME: Output is deterministic: elements in creation order, attributes in set order.
package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/HPENetworking/topology-sub000/szn"
)

// DOT renders the graph as an undirected DOT graph. Nodes become DOT nodes
// labeled with their metadata, links become edges with the port labels on
// the tail and head ends.
func (g *TopologyGraph) DOT(name string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "graph %s {\n", quoteIfNeeded(name))

	for _, n := range g.Nodes() {
		attrs := metadataAttrs(n.Metadata)
		if len(attrs) > 0 {
			fmt.Fprintf(&b, "  %s [%s]\n", quoteIfNeeded(n.ID), strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&b, "  %s\n", quoteIfNeeded(n.ID))
		}
	}

	if len(g.Links()) > 0 {
		b.WriteString("\n")
	}
	for _, l := range g.Links() {
		attrs := []string{
			fmt.Sprintf("taillabel=%s", quoteValue(l.A.Port)),
			fmt.Sprintf("headlabel=%s", quoteValue(l.B.Port)),
		}
		attrs = append(attrs, metadataAttrs(l.Metadata)...)
		fmt.Fprintf(&b, "  %s -- %s [%s]\n",
			quoteIfNeeded(l.A.Node), quoteIfNeeded(l.B.Node), strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}

// metadataAttrs renders an attribute set as key=value DOT attributes in the
// set's own order.
func metadataAttrs(metadata *szn.AttributeSet) []string {
	if metadata == nil {
		return nil
	}
	attrs := make([]string, 0, metadata.Len())
	for _, key := range metadata.Keys() {
		value, _ := metadata.Get(key)
		attrs = append(attrs, fmt.Sprintf("%s=%s", key, quoteValue(fmt.Sprint(value))))
	}
	return attrs
}

// quoteIfNeeded quotes an identifier unless it is a plain DOT ID.
func quoteIfNeeded(s string) string {
	if !needsQuoting(s) {
		return s
	}
	return quoteValue(s)
}

// needsQuoting reports whether s is not a bare DOT identifier: empty,
// starting with a digit, or containing anything but letters, digits, and
// underscores.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if unicode.IsDigit(rune(s[0])) {
		return true
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// quoteValue wraps s in double quotes, escaping embedded quotes and
// backslashes.
func quoteValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
