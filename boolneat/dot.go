package boolneat

import (
	"fmt"
	"io"
	"strings"
)

// nodeShapes maps node kinds to Graphviz shapes. Terminals render as
// triangles pointing through the circuit, gates as distinct polygons.
var nodeShapes = map[NodeType]string{
	INPUT:  "invtriangle",
	OUTPUT: "triangle",
	AND:    "diamond",
	OR:     "house",
	NAND:   "trapezium",
	NOR:    "box",
}

// WriteDOT writes the genome as a Graphviz digraph, nodes first in creation
// order, then edges. Disabled connections are drawn dotted so a rendering
// shows the mutation history alongside the live circuit.
func (g *Genome) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph {"); err != nil {
		return err
	}
	for _, n := range g.nodes {
		if _, err := fmt.Fprintf(w, "  %d [shape=%s]\n", n.ID, nodeShapes[n.Kind]); err != nil {
			return err
		}
	}
	for _, c := range g.conns {
		suffix := ""
		if !c.Enabled {
			suffix = " [style=dotted]"
		}
		if _, err := fmt.Fprintf(w, "  %d -> %d%s\n", c.From, c.To, suffix); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// DOT renders the genome as a Graphviz digraph string.
func (g *Genome) DOT() string {
	var sb strings.Builder
	_ = g.WriteDOT(&sb) // strings.Builder never fails
	return sb.String()
}
