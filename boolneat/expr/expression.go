// Package expr translates circuit genomes into boolean expression trees and
// evaluates them against input assignments.
//
// The enabled connections of a genome form a DAG ordered by node layer; Build
// walks it backward from a node to the INPUT leaves. The resulting trees are
// plain immutable values and stay valid however the genome mutates afterward.
package expr

import (
	"fmt"
	"strings"

	"github.com/baldhumanity/boolneat-go/boolneat"
)

// Expression is a boolean expression tree over a genome's inputs. It has
// exactly three forms: Input leaves, N-ary Gate applications, and NamedOutput
// wrappers naming the wire an output carries.
type Expression interface {
	// Eval computes the expression's value under an assignment keyed by
	// INPUT node id. A missing assignment is an error.
	Eval(inputs map[boolneat.Innovation]bool) (bool, error)

	// String renders the expression in in_N / out_N notation, for example
	// "out_2 = (in_0 AND in_1)".
	String() string

	isExpression()
}

// Input is a leaf referencing an INPUT node by id.
type Input struct {
	ID boolneat.Innovation
}

// Gate applies a boolean operator to two or more child expressions.
type Gate struct {
	Kind     boolneat.NodeType
	Children []Expression
}

// NamedOutput wraps the expression feeding an OUTPUT node.
type NamedOutput struct {
	ID    boolneat.Innovation
	Inner Expression
}

func (Input) isExpression()       {}
func (Gate) isExpression()        {}
func (NamedOutput) isExpression() {}

// Eval returns the value assigned to the input.
func (e Input) Eval(inputs map[boolneat.Innovation]bool) (bool, error) {
	v, ok := inputs[e.ID]
	if !ok {
		return false, fmt.Errorf("no value assigned for input %d", e.ID)
	}
	return v, nil
}

// String returns the input's in_N name.
func (e Input) String() string {
	return fmt.Sprintf("in_%d", e.ID)
}

// Eval folds the gate's operator over its children's values.
func (e Gate) Eval(inputs map[boolneat.Innovation]bool) (bool, error) {
	fn, err := boolneat.GetGate(e.Kind)
	if err != nil {
		return false, err
	}
	values := make([]bool, len(e.Children))
	for i, child := range e.Children {
		v, err := child.Eval(inputs)
		if err != nil {
			return false, err
		}
		values[i] = v
	}
	return fn(values), nil
}

// String renders the gate as an infix join of its children, for example
// "(in_0 NAND in_1 NAND in_3)".
func (e Gate) String() string {
	parts := make([]string, len(e.Children))
	for i, child := range e.Children {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, " "+e.Kind.String()+" ") + ")"
}

// Eval evaluates the wrapped expression.
func (e NamedOutput) Eval(inputs map[boolneat.Innovation]bool) (bool, error) {
	return e.Inner.Eval(inputs)
}

// String renders the output assignment, for example "out_2 = (in_0 AND in_1)".
func (e NamedOutput) String() string {
	return fmt.Sprintf("out_%d = %s", e.ID, e.Inner)
}

// --------------------------- Building ---------------------------

// Build translates the subgraph feeding the given node into an Expression.
// OUTPUT nodes become a NamedOutput over their single enabled inbound wire,
// gates recurse into every enabled inbound source in wire creation order, and
// INPUT nodes become leaves. An unknown id is boolneat.ErrInvalidArgument; an
// OUTPUT without exactly one enabled inbound wire, or a gate with fewer than
// two, is boolneat.ErrMalformedGenome.
//
// Recursion terminates because every connection strictly decreases the layer
// when followed backward. A node reachable along several paths is expanded
// once per path.
func Build(g *boolneat.Genome, id boolneat.Innovation) (Expression, error) {
	node, ok := g.NodeByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: unknown node %d", boolneat.ErrInvalidArgument, id)
	}

	switch node.Kind {
	case boolneat.INPUT:
		return Input{ID: node.ID}, nil

	case boolneat.OUTPUT:
		in := g.EnabledInbound(node.ID)
		if len(in) != 1 {
			return nil, fmt.Errorf("%w: output node %d has %d enabled inbound connections, want exactly 1",
				boolneat.ErrMalformedGenome, node.ID, len(in))
		}
		inner, err := Build(g, in[0].From)
		if err != nil {
			return nil, err
		}
		return NamedOutput{ID: node.ID, Inner: inner}, nil

	case boolneat.AND, boolneat.OR, boolneat.NAND, boolneat.NOR:
		in := g.EnabledInbound(node.ID)
		if len(in) < 2 {
			return nil, fmt.Errorf("%w: gate node %d has %d enabled inbound connections, want at least 2",
				boolneat.ErrMalformedGenome, node.ID, len(in))
		}
		children := make([]Expression, len(in))
		for i, c := range in {
			child, err := Build(g, c.From)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return Gate{Kind: node.Kind, Children: children}, nil

	default:
		return nil, fmt.Errorf("%w: node %d has unhandled kind %s",
			boolneat.ErrMalformedGenome, node.ID, node.Kind)
	}
}

// BuildAll builds one expression per OUTPUT node, in output creation order.
// It fails on the first output that cannot be built.
func BuildAll(g *boolneat.Genome) ([]Expression, error) {
	outputs := g.OutputIDs()
	exprs := make([]Expression, len(outputs))
	for i, id := range outputs {
		e, err := Build(g, id)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}
