package boolneat

import "errors"

// Sentinel errors for genome construction, mutation, and expression building.
// Returned errors are wrapped with context, so callers should match them with
// errors.Is rather than direct comparison.
var (
	// ErrInvalidArgument reports bad parameters, such as negative node counts
	// or a nil random source.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoEnabledConnection reports an add-node mutation on a genome with no
	// enabled connection to split.
	ErrNoEnabledConnection = errors.New("no enabled connection")

	// ErrNoLowerLayerNode reports an add-node mutation that found no valid
	// third-input source strictly below the new gate's layer. The genome is
	// left unchanged.
	ErrNoLowerLayerNode = errors.New("no lower layer node")

	// ErrNoAvailableConnection reports an add-connection mutation that
	// exhausted its attempt budget without finding a valid unwired pair.
	ErrNoAvailableConnection = errors.New("no available connection")

	// ErrMalformedGenome reports a genome violating a structural invariant,
	// such as an output node without exactly one enabled inbound wire.
	ErrMalformedGenome = errors.New("malformed genome")
)
