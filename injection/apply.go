// ABOUTME: Applies a resolved file injection onto a parsed topology in place.
// ABOUTME: Element keys are classified as link, port, or node by their display shape.
package injection

import (
	"log/slog"
	"strings"

	"github.com/HPENetworking/topology-sub000/szn"
)

// Apply overlays a resolved file injection onto a topology: environment
// attributes first, then each injected element's attributes. Keys that do
// not name an element of the topology are logged and skipped.
func Apply(topo *szn.Topology, fi *FileInjection) {
	ApplyWith(slog.Default(), topo, fi)
}

// ApplyWith is Apply with an explicit logger for skip diagnostics.
func ApplyWith(logger *slog.Logger, topo *szn.Topology, fi *FileInjection) {
	if fi == nil {
		return
	}
	if fi.Environment != nil {
		topo.Environment.Update(fi.Environment)
	}
	for _, key := range fi.Elements() {
		attrs := fi.Attributes(key)
		if !applyElement(topo, key, attrs) {
			logger.Warn("injected attributes target no topology element",
				"element", key)
		}
	}
}

// applyElement merges attrs into the topology element named by key.
// Keys containing " -- " address links (either endpoint order), keys
// containing ":" address ports, anything else addresses a node by name.
func applyElement(topo *szn.Topology, key string, attrs *szn.AttributeSet) bool {
	switch {
	case strings.Contains(key, " -- "):
		found := false
		for _, l := range topo.Links {
			if l.String() == key || l.ID() == canonicalLinkKey(key) {
				l.Attributes.Update(attrs)
				found = true
			}
		}
		return found
	case strings.Contains(key, ":"):
		node, label, _ := strings.Cut(key, ":")
		p := topo.Port(node, label)
		if p == nil {
			return false
		}
		p.Attributes.Update(attrs)
		return true
	default:
		n := topo.Node(key)
		if n == nil {
			return false
		}
		n.Attributes.Update(attrs)
		return true
	}
}

// canonicalLinkKey normalizes a "a:1 -- b:2" key to the endpoint-order
// independent form used by Link.ID.
func canonicalLinkKey(key string) string {
	a, b, ok := strings.Cut(key, " -- ")
	if !ok {
		return key
	}
	if a <= b {
		return a + " -- " + b
	}
	return b + " -- " + a
}
