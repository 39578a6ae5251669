package boolneat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion identifies the genome wire format. Decoding rejects data
// written under any other version.
const SchemaVersion = 1

// ErrVersionMismatch reports serialized data whose schema version differs
// from SchemaVersion.
var ErrVersionMismatch = errors.New("schema version mismatch")

type genomeJSON struct {
	SchemaVersion  int        `json:"schema_version"`
	Nodes          []nodeJSON `json:"nodes"`
	Connections    []connJSON `json:"connections"`
	NextInnovation Innovation `json:"next_innovation"`
}

type nodeJSON struct {
	ID    Innovation `json:"id"`
	Kind  string     `json:"kind"`
	Layer float64    `json:"layer"`
}

type connJSON struct {
	ID      Innovation `json:"id"`
	From    Innovation `json:"from"`
	To      Innovation `json:"to"`
	Enabled bool       `json:"enabled"`
}

// MarshalJSON encodes the genome as versioned JSON: flat node and connection
// lists in creation order plus the innovation counter. Node kinds are written
// as their canonical names so the format stays readable and stable across
// enum reordering.
func (g *Genome) MarshalJSON() ([]byte, error) {
	wire := genomeJSON{
		SchemaVersion:  SchemaVersion,
		Nodes:          make([]nodeJSON, len(g.nodes)),
		Connections:    make([]connJSON, len(g.conns)),
		NextInnovation: g.nextInnovation,
	}
	for i, n := range g.nodes {
		wire.Nodes[i] = nodeJSON{ID: n.ID, Kind: n.Kind.String(), Layer: n.Layer}
	}
	for i, c := range g.conns {
		wire.Connections[i] = connJSON{ID: c.ID, From: c.From, To: c.To, Enabled: c.Enabled}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a genome from the wire format, rebuilds the derived
// indices, and validates the structural invariants. A decoded genome is fully
// usable, including for further mutation.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var wire genomeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode genome: %w", err)
	}
	if wire.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, wire.SchemaVersion, SchemaVersion)
	}

	g.nodes = make([]Node, len(wire.Nodes))
	for i, n := range wire.Nodes {
		kind, err := ParseNodeType(n.Kind)
		if err != nil {
			return fmt.Errorf("%w: node %d has unknown kind %q", ErrMalformedGenome, n.ID, n.Kind)
		}
		g.nodes[i] = Node{ID: n.ID, Kind: kind, Layer: n.Layer}
	}
	g.conns = make([]Connection, len(wire.Connections))
	for i, c := range wire.Connections {
		g.conns[i] = Connection{ID: c.ID, From: c.From, To: c.To, Enabled: c.Enabled}
	}
	g.nextInnovation = wire.NextInnovation

	if err := g.rebuildIndexes(); err != nil {
		return err
	}
	return g.Validate()
}

// GobEncode lets genomes ride inside gob streams, reusing the JSON wire
// format so there is a single serialization path to version.
func (g *Genome) GobEncode() ([]byte, error) {
	return g.MarshalJSON()
}

// GobDecode implements the gob counterpart of GobEncode.
func (g *Genome) GobDecode(data []byte) error {
	return g.UnmarshalJSON(data)
}
