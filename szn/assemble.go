// ABOUTME: Topology assembler: turns an ordered statement list into the canonical Topology model.
// ABOUTME: Deduplicates nodes and ports with attribute merge and implicitly creates referenced elements.
package szn

// assembler accumulates elements keyed by identity while preserving first-seen
// declaration order.
type assembler struct {
	topology  *Topology
	nodeIndex map[string]*Node
	portIndex map[string]*Port
	envSeen   bool
}

// Assemble walks the statements in file order and produces the canonical
// Topology: nodes and ports deduplicated by identity with merged attributes,
// links appended as declared. Every node or port referenced by a port or link
// statement exists in the result even when never declared explicitly.
func Assemble(statements []Statement) (*Topology, error) {
	a := &assembler{
		topology:  NewTopology(),
		nodeIndex: make(map[string]*Node),
		portIndex: make(map[string]*Port),
	}

	for _, stmt := range statements {
		switch s := stmt.(type) {
		case *EnvironmentStatement:
			if a.envSeen {
				return nil, &SemanticError{Msg: "multiple declaration of environment attributes"}
			}
			a.envSeen = true
			a.topology.Environment.Update(s.Attributes)

		case *NodesStatement:
			for _, name := range s.Nodes {
				a.upsertNode(name, s.Attributes)
			}

		case *PortsStatement:
			for _, ep := range s.Ports {
				a.upsertNode(ep.Node, nil)
				a.upsertPort(ep, s.Attributes)
			}

		case *LinksStatement:
			for _, pair := range s.Links {
				// A link implies its endpoints exist but carries no
				// node or port level attributes itself.
				for _, ep := range pair {
					a.upsertNode(ep.Node, nil)
					a.upsertPort(ep, nil)
				}
				a.topology.Links = append(a.topology.Links, &Link{
					A:          pair[0],
					B:          pair[1],
					Attributes: s.Attributes.Copy(),
				})
			}
		}
	}

	return a.topology, nil
}

// upsertNode creates the node on first reference and merges attributes on
// redeclaration. New values win on key collision; key order is preserved.
func (a *assembler) upsertNode(name string, attrs *AttributeSet) {
	node, ok := a.nodeIndex[name]
	if !ok {
		node = &Node{Name: name, Attributes: NewAttributeSet()}
		a.nodeIndex[name] = node
		a.topology.Nodes = append(a.topology.Nodes, node)
	}
	node.Attributes.Update(attrs)
}

// upsertPort creates the port on first reference and merges attributes on
// redeclaration, keyed by the (node, label) pair.
func (a *assembler) upsertPort(ep Endpoint, attrs *AttributeSet) {
	key := ep.String()
	port, ok := a.portIndex[key]
	if !ok {
		port = &Port{Node: ep.Node, Label: ep.Port, Attributes: NewAttributeSet()}
		a.portIndex[key] = port
		a.topology.Ports = append(a.topology.Ports, port)
	}
	port.Attributes.Update(attrs)
}
