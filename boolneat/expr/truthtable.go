package expr

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/boolneat-go/boolneat"
)

// maxScoredInputs bounds exhaustive truth-table enumeration. 2^16 rows is
// already far beyond the circuit sizes this library targets.
const maxScoredInputs = 16

// TruthFunc defines a target behavior for scoring. It receives one row of
// input values ordered by INPUT node id and returns the expected output
// values ordered by OUTPUT node id.
type TruthFunc func(inputs []bool) []bool

// Xor is the classic two-input benchmark target.
func Xor(inputs []bool) []bool {
	return []bool{inputs[0] != inputs[1]}
}

// Parity returns true when an odd number of inputs is true.
func Parity(inputs []bool) []bool {
	odd := false
	for _, v := range inputs {
		if v {
			odd = !odd
		}
	}
	return []bool{odd}
}

// Majority returns true when more than half of the inputs are true.
func Majority(inputs []bool) []bool {
	count := 0
	for _, v := range inputs {
		if v {
			count++
		}
	}
	return []bool{count*2 > len(inputs)}
}

// Score evaluates the genome against the target over every possible input
// assignment and returns the fraction of matching output cells in [0, 1].
// A genome whose expressions cannot be built (isolated outputs, starved
// gates) fails with the underlying build error; evolution drivers usually map
// that to a zero score.
func Score(g *boolneat.Genome, truth TruthFunc) (float64, error) {
	if truth == nil {
		return 0, fmt.Errorf("%w: nil truth function", boolneat.ErrInvalidArgument)
	}
	inputIDs := g.InputIDs()
	if len(inputIDs) > maxScoredInputs {
		return 0, fmt.Errorf("%w: %d inputs exceed the exhaustive scoring limit of %d",
			boolneat.ErrInvalidArgument, len(inputIDs), maxScoredInputs)
	}

	exprs, err := BuildAll(g)
	if err != nil {
		return 0, err
	}
	if len(exprs) == 0 {
		return 0, fmt.Errorf("%w: genome has no outputs to score", boolneat.ErrInvalidArgument)
	}

	rows := 1 << len(inputIDs)
	assignment := make(map[boolneat.Innovation]bool, len(inputIDs))
	values := make([]bool, len(inputIDs))

	correct := 0
	total := rows * len(exprs)
	for mask := 0; mask < rows; mask++ {
		for i, id := range inputIDs {
			v := mask&(1<<i) != 0
			values[i] = v
			assignment[id] = v
		}
		want := truth(values)
		if len(want) != len(exprs) {
			return 0, fmt.Errorf("%w: truth function returned %d values, genome has %d outputs",
				boolneat.ErrInvalidArgument, len(want), len(exprs))
		}
		for i, e := range exprs {
			got, err := e.Eval(assignment)
			if err != nil {
				return 0, err
			}
			if got == want[i] {
				correct++
			}
		}
	}

	return float64(correct) / float64(total), nil
}

// Fitness wraps a target into a boolneat.FitnessFunc that maps unbuildable
// circuits to a zero score instead of an error, so evolution can keep running
// while the population still contains partially wired genomes. Other errors
// still abort the run.
func Fitness(truth TruthFunc) boolneat.FitnessFunc {
	return func(g *boolneat.Genome) (float64, error) {
		score, err := Score(g, truth)
		if errors.Is(err, boolneat.ErrMalformedGenome) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return score, nil
	}
}
