// Package boolneat provides a Go implementation of NEAT-style genomes for evolving
// feed-forward boolean circuits.
//
// Instead of weighted neurons, nodes are boolean gates (AND, OR, NAND, NOR) or
// input/output terminals, and connections are plain wires that are either present
// and enabled or not. Structural mutation (adding gates, adding wires) grows the
// circuit while a floating-point layer order keeps the enabled graph acyclic and
// feed-forward, so every genome can be translated into an evaluable boolean
// expression per output.
//
// Basic usage:
//
//	// Create a seeded random source and a genome with 2 inputs and 1 output
//	rng := rand.New(rand.NewSource(42))
//	g, err := boolneat.NewGenome(2, 1, rng)
//	if err != nil {
//		log.Fatalf("Error creating genome: %v", err)
//	}
//
//	// Grow the circuit
//	if err := g.AddNode(rng); err != nil {
//		log.Printf("add node skipped: %v", err)
//	}
//	if err := g.AddConnection(rng); err != nil {
//		log.Printf("add connection skipped: %v", err)
//	}
//
//	// Translate each output into a boolean expression and evaluate it
//	exprs, err := expr.BuildAll(g)
//	if err != nil {
//		log.Fatalf("Error building expressions: %v", err)
//	}
//	for _, e := range exprs {
//		fmt.Println(e)
//	}
package boolneat
