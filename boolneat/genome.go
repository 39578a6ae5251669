package boolneat

import (
	"fmt"
	"math/rand"
)

// maxAddConnectionAttempts bounds the rejection-sampling loop in AddConnection.
const maxAddConnectionAttempts = 20

// connPair identifies a directed (from, to) wire for duplicate detection.
// Disabled connections keep their pair registered.
type connPair struct {
	From Innovation
	To   Innovation
}

// Genome represents a single feed-forward boolean circuit: an append-only
// sequence of nodes and connections plus the innovation counter that numbers
// both. Genes are stored in creation order, which is also ascending id order.
//
// A Genome is not safe for concurrent use. Random choices are drawn from the
// *rand.Rand passed to each operation, never from a stored source, so runs
// are reproducible from a seed.
type Genome struct {
	nodes []Node
	conns []Connection

	nextInnovation Innovation

	inputIDs  []Innovation
	outputIDs []Innovation

	// Derived indices, maintained incrementally by the mutation operators.
	nodeIdx  map[Innovation]int   // node id -> index into nodes
	pairIdx  map[connPair]int     // (from, to) -> index into conns, any state
	inbound  map[Innovation][]int // node id -> enabled inbound conn indices, creation order
	outbound map[Innovation][]int // node id -> enabled outbound conn indices, creation order
}

// NewGenome creates a genome with the given number of INPUT and OUTPUT
// terminals and a random maximal matching between them: min(inputCount,
// outputCount) enabled connections, each input and each output used at most
// once. Surplus terminals on the larger side start unwired. Input ids are
// issued before output ids, so inputs are 0..inputCount-1 and outputs follow.
//
// Counts may be zero. Negative counts or a nil random source return
// ErrInvalidArgument.
func NewGenome(inputCount, outputCount int, rng *rand.Rand) (*Genome, error) {
	if inputCount < 0 || outputCount < 0 {
		return nil, fmt.Errorf("%w: node counts must be non-negative (inputs: %d, outputs: %d)",
			ErrInvalidArgument, inputCount, outputCount)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	g := &Genome{
		nodeIdx:  make(map[Innovation]int),
		pairIdx:  make(map[connPair]int),
		inbound:  make(map[Innovation][]int),
		outbound: make(map[Innovation][]int),
	}

	for i := 0; i < inputCount; i++ {
		g.appendNode(Node{ID: g.nextID(), Kind: INPUT, Layer: 0.0})
	}
	for i := 0; i < outputCount; i++ {
		g.appendNode(Node{ID: g.nextID(), Kind: OUTPUT, Layer: 1.0})
	}

	from := append([]Innovation(nil), g.inputIDs...)
	to := append([]Innovation(nil), g.outputIDs...)
	rng.Shuffle(len(from), func(i, j int) { from[i], from[j] = from[j], from[i] })
	rng.Shuffle(len(to), func(i, j int) { to[i], to[j] = to[j], to[i] })
	pairs := len(from)
	if len(to) < pairs {
		pairs = len(to)
	}
	for i := 0; i < pairs; i++ {
		g.appendConnection(from[i], to[i])
	}

	return g, nil
}

// nextID issues the next innovation id.
func (g *Genome) nextID() Innovation {
	id := g.nextInnovation
	g.nextInnovation++
	return id
}

// appendNode stores the node and indexes it.
func (g *Genome) appendNode(n Node) {
	g.nodeIdx[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	switch n.Kind {
	case INPUT:
		g.inputIDs = append(g.inputIDs, n.ID)
	case OUTPUT:
		g.outputIDs = append(g.outputIDs, n.ID)
	}
}

// appendConnection creates an enabled connection with a fresh innovation id
// and registers it in the adjacency indices.
func (g *Genome) appendConnection(from, to Innovation) {
	idx := len(g.conns)
	g.conns = append(g.conns, Connection{ID: g.nextID(), From: from, To: to, Enabled: true})
	g.pairIdx[connPair{from, to}] = idx
	g.outbound[from] = append(g.outbound[from], idx)
	g.inbound[to] = append(g.inbound[to], idx)
}

// disableConnection disables the connection at the given index and drops it
// from the enabled adjacency lists. Its (from, to) pair stays registered so
// duplicate detection keeps rejecting it.
func (g *Genome) disableConnection(idx int) {
	c := &g.conns[idx]
	if !c.Enabled {
		return
	}
	c.disable()
	g.outbound[c.From] = removeIndex(g.outbound[c.From], idx)
	g.inbound[c.To] = removeIndex(g.inbound[c.To], idx)
}

// removeIndex deletes the first occurrence of v from s, preserving order.
func removeIndex(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// --------------------------- Mutations ---------------------------

// AddConnection adds a new enabled connection between two existing nodes:
// sample two distinct non-OUTPUT nodes, reject pairs on equal layers or pairs
// already wired in either state, and orient the wire from the lower layer to
// the higher. An OUTPUT node carries exactly one inbound wire and none
// outbound, so it is never a candidate.
//
// The sampling loop is bounded. If no valid pair turns up within the attempt
// budget, or fewer than two candidate nodes exist, the genome is left
// unchanged and ErrNoAvailableConnection is returned. Innovation ids are only
// consumed on success.
func (g *Genome) AddConnection(rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	candidates := make([]int, 0, len(g.nodes))
	for i, n := range g.nodes {
		if n.Kind != OUTPUT {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < 2 {
		return fmt.Errorf("%w: need at least two non-output nodes, have %d",
			ErrNoAvailableConnection, len(candidates))
	}

	for attempt := 0; attempt < maxAddConnectionAttempts; attempt++ {
		i := rng.Intn(len(candidates))
		j := rng.Intn(len(candidates) - 1)
		if j >= i {
			j++
		}
		a, b := g.nodes[candidates[i]], g.nodes[candidates[j]]

		// Equal layers cannot be ordered.
		if a.Layer == b.Layer {
			continue
		}
		if a.Layer > b.Layer {
			a, b = b, a
		}
		if _, wired := g.pairIdx[connPair{a.ID, b.ID}]; wired {
			continue
		}

		g.appendConnection(a.ID, b.ID)
		return nil
	}

	return fmt.Errorf("%w: no valid node pair found in %d attempts",
		ErrNoAvailableConnection, maxAddConnectionAttempts)
}

// AddNode splices a new gate into a randomly chosen enabled connection. The
// spliced connection is disabled, a gate of uniformly random kind appears at
// the midpoint of the endpoint layers, and two wires re-create the old path
// through it. Because a gate needs at least two inputs, a third wire is added
// from a random node strictly below the new layer, excluding the spliced
// connection's source which already feeds the gate.
//
// Genes are created in a fixed order: node, source wire, target wire, third
// wire. All validation happens before the genome is touched, so on
// ErrNoEnabledConnection or ErrNoLowerLayerNode the genome is unchanged and
// no innovation ids are consumed.
func (g *Genome) AddNode(rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	enabled := make([]int, 0, len(g.conns))
	for i, c := range g.conns {
		if c.Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return fmt.Errorf("%w: genome has no connection to split", ErrNoEnabledConnection)
	}

	connIdx := enabled[rng.Intn(len(enabled))]
	conn := g.conns[connIdx]

	fromLayer := g.nodes[g.nodeIdx[conn.From]].Layer
	toLayer := g.nodes[g.nodeIdx[conn.To]].Layer
	newLayer := (fromLayer + toLayer) / 2.0

	lower := make([]Innovation, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Layer < newLayer && n.ID != conn.From {
			lower = append(lower, n.ID)
		}
	}
	if len(lower) == 0 {
		return fmt.Errorf("%w: no third-input source below layer %g when splitting connection %d",
			ErrNoLowerLayerNode, newLayer, conn.ID)
	}
	third := lower[rng.Intn(len(lower))]
	kind := gateKinds[rng.Intn(len(gateKinds))]

	g.disableConnection(connIdx)
	newNode := Node{ID: g.nextID(), Kind: kind, Layer: newLayer}
	g.appendNode(newNode)
	g.appendConnection(conn.From, newNode.ID)
	g.appendConnection(newNode.ID, conn.To)
	g.appendConnection(third, newNode.ID)

	return nil
}

// --------------------------- Introspection ---------------------------

// Nodes returns a copy of the node genes in creation order.
func (g *Genome) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Connections returns a copy of the connection genes in creation order,
// disabled ones included.
func (g *Genome) Connections() []Connection {
	return append([]Connection(nil), g.conns...)
}

// NodeByID looks up a node gene by its innovation id.
func (g *Genome) NodeByID(id Innovation) (Node, bool) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// InputIDs returns the INPUT node ids in creation order.
func (g *Genome) InputIDs() []Innovation {
	return append([]Innovation(nil), g.inputIDs...)
}

// OutputIDs returns the OUTPUT node ids in creation order.
func (g *Genome) OutputIDs() []Innovation {
	return append([]Innovation(nil), g.outputIDs...)
}

// EnabledInbound returns the enabled connections targeting the node, in
// creation order.
func (g *Genome) EnabledInbound(id Innovation) []Connection {
	return g.connsAt(g.inbound[id])
}

// EnabledOutbound returns the enabled connections leaving the node, in
// creation order.
func (g *Genome) EnabledOutbound(id Innovation) []Connection {
	return g.connsAt(g.outbound[id])
}

func (g *Genome) connsAt(indices []int) []Connection {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Connection, len(indices))
	for i, idx := range indices {
		out[i] = g.conns[idx]
	}
	return out
}

// NodeCount returns the number of node genes.
func (g *Genome) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connection genes, disabled included.
func (g *Genome) ConnectionCount() int { return len(g.conns) }

// EnabledConnectionCount returns the number of enabled connections.
func (g *Genome) EnabledConnectionCount() int {
	count := 0
	for _, c := range g.conns {
		if c.Enabled {
			count++
		}
	}
	return count
}

// NextInnovation returns the id the allocator will issue next.
func (g *Genome) NextInnovation() Innovation {
	return g.nextInnovation
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	return fmt.Sprintf("Genome(Nodes: %d, Connections: %d, Enabled: %d)",
		len(g.nodes), len(g.conns), g.EnabledConnectionCount())
}

// Clone creates a deep copy of the genome.
func (g *Genome) Clone() *Genome {
	clone := &Genome{
		nodes:          append([]Node(nil), g.nodes...),
		conns:          append([]Connection(nil), g.conns...),
		nextInnovation: g.nextInnovation,
		inputIDs:       append([]Innovation(nil), g.inputIDs...),
		outputIDs:      append([]Innovation(nil), g.outputIDs...),
		nodeIdx:        make(map[Innovation]int, len(g.nodeIdx)),
		pairIdx:        make(map[connPair]int, len(g.pairIdx)),
		inbound:        make(map[Innovation][]int, len(g.inbound)),
		outbound:       make(map[Innovation][]int, len(g.outbound)),
	}
	for k, v := range g.nodeIdx {
		clone.nodeIdx[k] = v
	}
	for k, v := range g.pairIdx {
		clone.pairIdx[k] = v
	}
	for k, v := range g.inbound {
		clone.inbound[k] = append([]int(nil), v...)
	}
	for k, v := range g.outbound {
		clone.outbound[k] = append([]int(nil), v...)
	}
	return clone
}

// --------------------------- Integrity ---------------------------

// rebuildIndexes reconstructs the derived indices from the gene lists,
// rejecting structurally broken data. It is used when a genome arrives from a
// serialized form instead of the constructor.
func (g *Genome) rebuildIndexes() error {
	g.nodeIdx = make(map[Innovation]int, len(g.nodes))
	g.pairIdx = make(map[connPair]int, len(g.conns))
	g.inbound = make(map[Innovation][]int)
	g.outbound = make(map[Innovation][]int)
	g.inputIDs = nil
	g.outputIDs = nil

	seen := make(map[Innovation]bool, len(g.nodes)+len(g.conns))
	for i, n := range g.nodes {
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate innovation id %d", ErrMalformedGenome, n.ID)
		}
		seen[n.ID] = true
		g.nodeIdx[n.ID] = i
		switch n.Kind {
		case INPUT:
			g.inputIDs = append(g.inputIDs, n.ID)
		case OUTPUT:
			g.outputIDs = append(g.outputIDs, n.ID)
		case AND, OR, NAND, NOR:
		default:
			return fmt.Errorf("%w: node %d has unknown kind %d", ErrMalformedGenome, n.ID, int(n.Kind))
		}
	}

	for i, c := range g.conns {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate innovation id %d", ErrMalformedGenome, c.ID)
		}
		seen[c.ID] = true
		if _, ok := g.nodeIdx[c.From]; !ok {
			return fmt.Errorf("%w: connection %d references unknown source node %d",
				ErrMalformedGenome, c.ID, c.From)
		}
		if _, ok := g.nodeIdx[c.To]; !ok {
			return fmt.Errorf("%w: connection %d references unknown target node %d",
				ErrMalformedGenome, c.ID, c.To)
		}
		pair := connPair{c.From, c.To}
		if _, dup := g.pairIdx[pair]; dup {
			return fmt.Errorf("%w: duplicate connection %d -> %d", ErrMalformedGenome, c.From, c.To)
		}
		g.pairIdx[pair] = i
		if c.Enabled {
			g.outbound[c.From] = append(g.outbound[c.From], i)
			g.inbound[c.To] = append(g.inbound[c.To], i)
		}
	}
	return nil
}

// Validate checks the genome's structural invariants: terminal layers and
// degree rules, strict layer increase along every connection (disabled ones
// included, which by itself makes the graph acyclic), and an innovation
// counter beyond every issued id. Gate fan-in is an evaluation precondition
// checked at expression build time, not here, so partially wired genomes
// remain valid for further mutation.
func (g *Genome) Validate() error {
	maxID := Innovation(-1)
	for _, n := range g.nodes {
		if n.ID > maxID {
			maxID = n.ID
		}
		switch n.Kind {
		case INPUT:
			if n.Layer != 0.0 {
				return fmt.Errorf("%w: input node %d has layer %g, want 0", ErrMalformedGenome, n.ID, n.Layer)
			}
		case OUTPUT:
			if n.Layer != 1.0 {
				return fmt.Errorf("%w: output node %d has layer %g, want 1", ErrMalformedGenome, n.ID, n.Layer)
			}
			if len(g.inbound[n.ID]) > 1 {
				return fmt.Errorf("%w: output node %d has %d enabled inbound connections",
					ErrMalformedGenome, n.ID, len(g.inbound[n.ID]))
			}
		}
	}

	for _, c := range g.conns {
		if c.ID > maxID {
			maxID = c.ID
		}
		from, ok := g.NodeByID(c.From)
		if !ok {
			return fmt.Errorf("%w: connection %d references unknown source node %d",
				ErrMalformedGenome, c.ID, c.From)
		}
		to, ok := g.NodeByID(c.To)
		if !ok {
			return fmt.Errorf("%w: connection %d references unknown target node %d",
				ErrMalformedGenome, c.ID, c.To)
		}
		if from.Kind == OUTPUT {
			return fmt.Errorf("%w: connection %d leaves output node %d", ErrMalformedGenome, c.ID, from.ID)
		}
		if to.Kind == INPUT {
			return fmt.Errorf("%w: connection %d targets input node %d", ErrMalformedGenome, c.ID, to.ID)
		}
		if from.Layer >= to.Layer {
			return fmt.Errorf("%w: connection %d does not increase layer (%g -> %g)",
				ErrMalformedGenome, c.ID, from.Layer, to.Layer)
		}
	}

	if g.nextInnovation <= maxID {
		return fmt.Errorf("%w: innovation counter %d not beyond max issued id %d",
			ErrMalformedGenome, g.nextInnovation, maxID)
	}
	return nil
}
