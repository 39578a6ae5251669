package boolneat

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Config stores the parameters for evolving circuit populations.
type Config struct {
	Circuit   CircuitConfig
	Mutation  MutationConfig
	Evolution EvolutionConfig
}

// CircuitConfig fixes the terminal interface shared by every genome in a
// population.
type CircuitConfig struct {
	NumInputs  int `ini:"num_inputs"`
	NumOutputs int `ini:"num_outputs"`
}

// MutationConfig holds the per-child structural mutation rates.
type MutationConfig struct {
	NodeAddProb float64 `ini:"node_add_prob"`
	ConnAddProb float64 `ini:"conn_add_prob"`
}

// EvolutionConfig holds the population-level parameters.
type EvolutionConfig struct {
	PopSize           int     `ini:"pop_size"`
	MaxGenerations    int     `ini:"max_generations"`
	FitnessThreshold  float64 `ini:"fitness_threshold"`
	Elitism           int     `ini:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
	Seed              int64   `ini:"seed"` // 0 leaves seeding to the caller
}

// DefaultConfig returns parameters suitable for small truth-table tasks.
func DefaultConfig() *Config {
	return &Config{
		Circuit: CircuitConfig{
			NumInputs:  2,
			NumOutputs: 1,
		},
		Mutation: MutationConfig{
			NodeAddProb: 0.4,
			ConnAddProb: 0.4,
		},
		Evolution: EvolutionConfig{
			PopSize:           150,
			MaxGenerations:    100,
			FitnessThreshold:  1.0,
			Elitism:           2,
			SurvivalThreshold: 0.5,
			Seed:              0,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys missing
// from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true, // Allow comments starting with # or ;
		UnescapeValueCommentSymbols: true, // If # or ; appear in value, treat as value
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()

	// Map sections to structs
	if err := cfg.Section("Circuit").MapTo(&config.Circuit); err != nil {
		return nil, fmt.Errorf("failed to map [Circuit] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Evolution").MapTo(&config.Evolution); err != nil {
		return nil, fmt.Errorf("failed to map [Evolution] section: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks the parameter ranges. NewPopulation runs the same checks so
// hand-built configs go through them too.
func (c *Config) validate() error {
	if c.Circuit.NumInputs < 0 {
		return fmt.Errorf("config error: num_inputs cannot be negative")
	}
	if c.Circuit.NumOutputs < 0 {
		return fmt.Errorf("config error: num_outputs cannot be negative")
	}
	if c.Mutation.NodeAddProb < 0 || c.Mutation.NodeAddProb > 1 {
		return fmt.Errorf("config error: node_add_prob must be between 0 and 1")
	}
	if c.Mutation.ConnAddProb < 0 || c.Mutation.ConnAddProb > 1 {
		return fmt.Errorf("config error: conn_add_prob must be between 0 and 1")
	}
	if c.Evolution.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Evolution.MaxGenerations <= 0 {
		return fmt.Errorf("config error: max_generations must be positive")
	}
	if c.Evolution.Elitism < 0 || c.Evolution.Elitism > c.Evolution.PopSize {
		return fmt.Errorf("config error: elitism must be between 0 and pop_size")
	}
	if c.Evolution.SurvivalThreshold <= 0 || c.Evolution.SurvivalThreshold > 1 {
		return fmt.Errorf("config error: survival_threshold must be in (0, 1]")
	}
	return nil
}
