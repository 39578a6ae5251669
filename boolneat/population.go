package boolneat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
)

// FitnessFunc is the function provided by the user to score a genome. Higher
// is better. An error aborts the whole run; recoverable build failures on
// broken circuits should be mapped to a low score instead.
type FitnessFunc func(genome *Genome) (float64, error)

// Population holds the state of the mutation-only evolutionary process:
// evaluate every member, carry the elites over, and refill the remaining
// slots with mutated clones of the surviving fraction. There is no crossover,
// so members never need genome-to-genome gene alignment.
type Population struct {
	Config      *Config
	Members     []*Genome
	Fitnesses   []float64 // parallel to Members, scores of the last evaluation
	Generation  int
	BestGenome  *Genome // best genome found so far, detached clone
	BestFitness float64

	rng *rand.Rand
	log *zap.Logger
}

// NewPopulation creates a new Population instance with PopSize fresh genomes.
// The random source drives both genome construction and reproduction; a nil
// logger disables logging.
func NewPopulation(config *Config, rng *rand.Rand, log *zap.Logger) (*Population, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidArgument)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}
	if log == nil {
		log = zap.NewNop()
	}

	members := make([]*Genome, config.Evolution.PopSize)
	for i := range members {
		g, err := NewGenome(config.Circuit.NumInputs, config.Circuit.NumOutputs, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create initial population: %w", err)
		}
		members[i] = g
	}

	return &Population{
		Config:      config,
		Members:     members,
		Fitnesses:   make([]float64, len(members)),
		Generation:  0,
		BestGenome:  nil,
		BestFitness: math.Inf(-1),
		rng:         rng,
		log:         log,
	}, nil
}

// RunGeneration executes a single generation: evaluate fitness, track the
// best genome, and reproduce. Returns the winning genome if the fitness
// threshold is met this generation, otherwise nil.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, error) {
	p.Generation++
	genStart := time.Now()

	// 1. Evaluate Fitness
	for i, g := range p.Members {
		fitness, err := fitnessFunc(g)
		if err != nil {
			return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
		}
		p.Fitnesses[i] = fitness
	}

	// 2. Track Best Genome
	bestIdx := 0
	for i, f := range p.Fitnesses {
		if f > p.Fitnesses[bestIdx] {
			bestIdx = i
		}
	}
	if p.BestGenome == nil || p.Fitnesses[bestIdx] > p.BestFitness {
		p.BestGenome = p.Members[bestIdx].Clone()
		p.BestFitness = p.Fitnesses[bestIdx]
		p.log.Info("new best genome",
			zap.Int("generation", p.Generation),
			zap.Float64("fitness", p.BestFitness),
			zap.Int("nodes", p.BestGenome.NodeCount()),
			zap.Int("connections", p.BestGenome.ConnectionCount()),
		)
	}

	p.log.Info("generation complete",
		zap.Int("generation", p.Generation),
		zap.Float64("best", MaxFloat(p.Fitnesses)),
		zap.Float64("worst", MinFloat(p.Fitnesses)),
		zap.Float64("mean", Mean(p.Fitnesses)),
		zap.Float64("median", Median(p.Fitnesses)),
		zap.Float64("stdev", Stdev(p.Fitnesses)),
		zap.Duration("elapsed", time.Since(genStart)),
	)

	// 3. Check fitness threshold termination
	if p.BestFitness >= p.Config.Evolution.FitnessThreshold {
		return p.BestGenome, nil
	}

	// 4. Reproduce
	p.reproduce()

	return nil, nil
}

// Run executes generations until the fitness threshold is met or
// max_generations have passed, returning the best genome found. A restored
// population resumes counting from its saved generation.
func (p *Population) Run(fitnessFunc FitnessFunc) (*Genome, error) {
	for p.Generation < p.Config.Evolution.MaxGenerations {
		winner, err := p.RunGeneration(fitnessFunc)
		if err != nil {
			return p.BestGenome, err
		}
		if winner != nil {
			return winner, nil
		}
	}
	return p.BestGenome, nil
}

// reproduce builds the next generation in place. Members are ranked by
// fitness; the top Elitism members carry over untouched and every remaining
// slot is filled with a mutated clone of a random member from the surviving
// fraction.
func (p *Population) reproduce() {
	order := make([]int, len(p.Members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Fitnesses[order[a]] > p.Fitnesses[order[b]]
	})

	survivors := int(math.Ceil(float64(len(order)) * p.Config.Evolution.SurvivalThreshold))
	if survivors < 1 {
		survivors = 1
	}

	next := make([]*Genome, 0, len(p.Members))
	for i := 0; i < p.Config.Evolution.Elitism && i < len(order); i++ {
		next = append(next, p.Members[order[i]])
	}
	for len(next) < len(p.Members) {
		parent := p.Members[order[p.rng.Intn(survivors)]]
		child := parent.Clone()
		p.mutateChild(child)
		next = append(next, child)
	}
	p.Members = next
}

// mutateChild applies the configured structural mutations to a child genome.
// Mutations fail for recoverable reasons on small or saturated circuits; a
// failure skips that mutation rather than discarding the child.
func (p *Population) mutateChild(g *Genome) {
	if p.rng.Float64() < p.Config.Mutation.NodeAddProb {
		if err := g.AddNode(p.rng); err != nil {
			p.log.Debug("add node skipped",
				zap.Int("generation", p.Generation), zap.Error(err))
		}
	}
	if p.rng.Float64() < p.Config.Mutation.ConnAddProb {
		if err := g.AddConnection(p.rng); err != nil {
			p.log.Debug("add connection skipped",
				zap.Int("generation", p.Generation), zap.Error(err))
		}
	}
}
