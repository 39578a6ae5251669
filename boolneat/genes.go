package boolneat

import "fmt"

// Innovation is a historical marker issued by a genome's allocator. Within
// one genome a single counter numbers both nodes and connections, starting at
// zero and strictly increasing, so an Innovation value doubles as a stable
// identity across mutations. Ids are never reused, even when the mutation
// that reserved them fails.
type Innovation int

// --------------------------- Node Types ---------------------------

// NodeType is the closed set of node kinds: four boolean gates plus the two
// terminal kinds.
type NodeType int

const (
	AND NodeType = iota
	OR
	NAND
	NOR
	// INPUT terminals sit at layer 0.0 and never have inbound connections.
	INPUT
	// OUTPUT terminals sit at layer 1.0, never have outbound connections,
	// and carry at most one enabled inbound connection.
	OUTPUT
)

// nodeTypeNames holds the canonical names, indexed by NodeType value.
var nodeTypeNames = [...]string{"AND", "OR", "NAND", "NOR", "INPUT", "OUTPUT"}

// gateKinds lists the node types the add-node mutation samples from.
var gateKinds = [...]NodeType{AND, OR, NAND, NOR}

// String returns the canonical name of the node type.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// ParseNodeType converts a canonical name back into a NodeType.
func ParseNodeType(name string) (NodeType, error) {
	for i, n := range nodeTypeNames {
		if n == name {
			return NodeType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown node type %q", ErrInvalidArgument, name)
}

// IsGate reports whether the node type is one of the four boolean gates.
func (t NodeType) IsGate() bool {
	switch t {
	case AND, OR, NAND, NOR:
		return true
	}
	return false
}

// --------------------------- Node Gene ---------------------------

// Node is a typed vertex of the circuit. Layer is a position in a
// floating-point partial order, not a rendering depth: every connection runs
// from a strictly lower layer to a strictly higher one, which is what keeps
// the graph feed-forward without any cycle checking.
type Node struct {
	ID    Innovation
	Kind  NodeType
	Layer float64
}

// String returns a string representation of the Node.
func (n Node) String() string {
	return fmt.Sprintf("Node(ID: %d, Kind: %s, Layer: %g)", n.ID, n.Kind, n.Layer)
}

// --------------------------- Connection Gene ---------------------------

// Connection is a directed wire between two node ids, carrying its own
// innovation id. After creation a connection is immutable except for the
// disable transition; a disabled connection stays in the genome permanently
// as a historical marker and still blocks re-wiring of its (From, To) pair.
type Connection struct {
	ID      Innovation
	From    Innovation
	To      Innovation
	Enabled bool
}

// String returns a string representation of the Connection.
func (c Connection) String() string {
	return fmt.Sprintf("Conn(ID: %d, %d -> %d, Enabled: %t)", c.ID, c.From, c.To, c.Enabled)
}

// disable marks the connection disabled. There is no enable counterpart; the
// transition is one-way and Genome.AddNode is its only call site.
func (c *Connection) disable() {
	c.Enabled = false
}
