package boolneat

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *Config {
	c := DefaultConfig()
	c.Evolution.PopSize = 12
	c.Evolution.MaxGenerations = 10
	c.Evolution.Elitism = 2
	return c
}

// wiringFitness rewards enabled connections, saturating at 1.0. Structural
// mutations can only raise it, which makes multi-generation progress
// deterministic enough to assert on.
func wiringFitness(g *Genome) (float64, error) {
	f := float64(g.EnabledConnectionCount()) / 4.0
	if f > 1.0 {
		f = 1.0
	}
	return f, nil
}

func TestNewPopulation(t *testing.T) {
	t.Run("creates pop_size fresh genomes", func(t *testing.T) {
		c := testConfig()
		p, err := NewPopulation(c, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.Len(t, p.Members, c.Evolution.PopSize)
		assert.Len(t, p.Fitnesses, c.Evolution.PopSize)
		assert.Equal(t, 0, p.Generation)
		assert.Nil(t, p.BestGenome)
		assert.True(t, math.IsInf(p.BestFitness, -1))

		for _, g := range p.Members {
			require.NoError(t, g.Validate())
			assert.Equal(t, 3, g.NodeCount())
			assert.Equal(t, 1, g.ConnectionCount())
		}
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewPopulation(nil, rand.New(rand.NewSource(1)), nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("nil random source", func(t *testing.T) {
		_, err := NewPopulation(testConfig(), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("invalid config", func(t *testing.T) {
		c := testConfig()
		c.Evolution.PopSize = -5
		_, err := NewPopulation(c, rand.New(rand.NewSource(1)), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config error")
	})
}

func TestPopulation_RunGeneration(t *testing.T) {
	t.Run("returns the winner once the threshold is met", func(t *testing.T) {
		p, err := NewPopulation(testConfig(), rand.New(rand.NewSource(2)), nil)
		require.NoError(t, err)

		winner, err := p.RunGeneration(func(g *Genome) (float64, error) { return 1.0, nil })
		require.NoError(t, err)
		require.NotNil(t, winner)

		assert.Equal(t, 1, p.Generation)
		assert.Equal(t, 1.0, p.BestFitness)
		require.NoError(t, winner.Validate())

		// The winner is a detached clone, not a live member.
		for _, g := range p.Members {
			assert.NotSame(t, winner, g)
		}
	})

	t.Run("reproduces when the threshold is not met", func(t *testing.T) {
		p, err := NewPopulation(testConfig(), rand.New(rand.NewSource(3)), nil)
		require.NoError(t, err)

		winner, err := p.RunGeneration(func(g *Genome) (float64, error) { return 0.0, nil })
		require.NoError(t, err)
		assert.Nil(t, winner)

		assert.Len(t, p.Members, p.Config.Evolution.PopSize)
		for _, g := range p.Members {
			require.NoError(t, g.Validate())
			assertAcyclic(t, g)
		}
	})

	t.Run("elites carry over untouched", func(t *testing.T) {
		c := testConfig()
		c.Evolution.FitnessThreshold = 2.0 // unreachable, force reproduction
		p, err := NewPopulation(c, rand.New(rand.NewSource(4)), nil)
		require.NoError(t, err)

		ranked := make(map[*Genome]float64, len(p.Members))
		for i, g := range p.Members {
			ranked[g] = float64(len(p.Members) - i)
		}
		first, second := p.Members[0], p.Members[1]
		previous := make(map[*Genome]bool, len(p.Members))
		for _, g := range p.Members {
			previous[g] = true
		}

		winner, err := p.RunGeneration(func(g *Genome) (float64, error) { return ranked[g], nil })
		require.NoError(t, err)
		require.Nil(t, winner)

		assert.Same(t, first, p.Members[0])
		assert.Same(t, second, p.Members[1])
		for _, g := range p.Members[2:] {
			assert.False(t, previous[g], "child slots should hold fresh clones")
		}
	})

	t.Run("fitness error aborts the generation", func(t *testing.T) {
		p, err := NewPopulation(testConfig(), rand.New(rand.NewSource(5)), nil)
		require.NoError(t, err)

		boom := fmt.Errorf("scorer exploded")
		winner, err := p.RunGeneration(func(g *Genome) (float64, error) { return 0, boom })
		require.Error(t, err)
		assert.Nil(t, winner)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "fitness evaluation failed in generation 1")
	})

	t.Run("best fitness never regresses", func(t *testing.T) {
		c := testConfig()
		c.Evolution.FitnessThreshold = 2.0
		p, err := NewPopulation(c, rand.New(rand.NewSource(6)), zaptest.NewLogger(t))
		require.NoError(t, err)

		prevBest := math.Inf(-1)
		for i := 0; i < 5; i++ {
			_, err := p.RunGeneration(wiringFitness)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, p.BestFitness, prevBest)
			prevBest = p.BestFitness
		}
		require.NotNil(t, p.BestGenome)
		require.NoError(t, p.BestGenome.Validate())
	})
}

func TestPopulation_Run(t *testing.T) {
	t.Run("stops at the fitness threshold", func(t *testing.T) {
		c := testConfig()
		c.Evolution.PopSize = 20
		c.Evolution.MaxGenerations = 40
		p, err := NewPopulation(c, rand.New(rand.NewSource(7)), nil)
		require.NoError(t, err)

		winner, err := p.Run(wiringFitness)
		require.NoError(t, err)
		require.NotNil(t, winner)

		assert.GreaterOrEqual(t, winner.EnabledConnectionCount(), 4)
		assert.GreaterOrEqual(t, p.BestFitness, c.Evolution.FitnessThreshold)
		assert.GreaterOrEqual(t, p.Generation, 2, "fresh genomes cannot win in one generation")
		assert.Less(t, p.Generation, c.Evolution.MaxGenerations)
		require.NoError(t, winner.Validate())
	})

	t.Run("stops after max generations", func(t *testing.T) {
		c := testConfig()
		c.Evolution.MaxGenerations = 3
		p, err := NewPopulation(c, rand.New(rand.NewSource(8)), nil)
		require.NoError(t, err)

		best, err := p.Run(func(g *Genome) (float64, error) { return 0.1, nil })
		require.NoError(t, err)
		require.NotNil(t, best)

		assert.Equal(t, 3, p.Generation)
		assert.Equal(t, 0.1, p.BestFitness)
	})

	t.Run("resumed run counts from the saved generation", func(t *testing.T) {
		c := testConfig()
		c.Evolution.MaxGenerations = 5
		p, err := NewPopulation(c, rand.New(rand.NewSource(9)), nil)
		require.NoError(t, err)
		p.Generation = 4

		_, err = p.Run(func(g *Genome) (float64, error) { return 0.0, nil })
		require.NoError(t, err)
		assert.Equal(t, 5, p.Generation)
	})
}
