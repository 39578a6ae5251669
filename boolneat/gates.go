package boolneat

import "fmt"

// GateFunc is an N-ary boolean gate: it folds any number of input values into
// a single output value. Every gate accepts two or more inputs; the N-ary
// forms reduce to the usual binary truth tables when given exactly two.
type GateFunc func(inputs []bool) bool

// GateFunctions maps gate node types to their implementations.
var GateFunctions = map[NodeType]GateFunc{
	AND:  GateAnd,
	OR:   GateOr,
	NAND: GateNand,
	NOR:  GateNor,
}

// GetGate retrieves the gate function for a node type. Terminal types carry
// no gate semantics and return an error.
func GetGate(kind NodeType) (GateFunc, error) {
	if fn, ok := GateFunctions[kind]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: node type %s is not a gate", ErrInvalidArgument, kind)
}

// --- Gate Implementations ---

// GateAnd returns true when every input is true.
func GateAnd(inputs []bool) bool {
	for _, v := range inputs {
		if !v {
			return false
		}
	}
	return true
}

// GateOr returns true when at least one input is true.
func GateOr(inputs []bool) bool {
	for _, v := range inputs {
		if v {
			return true
		}
	}
	return false
}

// GateNand returns the negated conjunction of the inputs.
func GateNand(inputs []bool) bool {
	return !GateAnd(inputs)
}

// GateNor returns the negated disjunction of the inputs.
func GateNor(inputs []bool) bool {
	return !GateOr(inputs)
}
