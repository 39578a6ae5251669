package boolneat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"

	"go.uber.org/zap"
)

// populationSaveData holds only the parts of Population worth persisting.
// The Config is not saved, it is re-supplied on load; the random source and
// logger are likewise the caller's to provide.
type populationSaveData struct {
	Members     []*Genome
	Fitnesses   []float64
	Generation  int
	BestGenome  *Genome // nil before the first evaluation; gob omits it
	BestFitness float64
}

// SaveCheckpoint saves the current state of the Population to a file.
// Uses gzip compression for smaller file size.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)

	saveData := populationSaveData{
		Members:     p.Members,
		Fitnesses:   p.Fitnesses,
		Generation:  p.Generation,
		BestGenome:  p.BestGenome,
		BestFitness: p.BestFitness,
	}

	encoder := gob.NewEncoder(gzWriter)
	if err := encoder.Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish checkpoint '%s': %w", filePath, err)
	}

	p.log.Info("checkpoint saved",
		zap.String("path", filePath), zap.Int("generation", p.Generation))
	return nil
}

// LoadCheckpoint loads a Population state from a checkpoint file. The config,
// random source, and logger are not part of the checkpoint and must be
// supplied by the caller; genomes are validated as they decode.
func LoadCheckpoint(checkpointPath string, config *Config, rng *rand.Rand, log *zap.Logger) (*Population, error) {
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

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := populationSaveData{}
	decoder := gob.NewDecoder(gzReader)
	if err := decoder.Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	if len(saveData.Members) == 0 {
		return nil, fmt.Errorf("checkpoint '%s' holds no genomes", checkpointPath)
	}
	if len(saveData.Fitnesses) != len(saveData.Members) {
		saveData.Fitnesses = make([]float64, len(saveData.Members))
	}

	p := &Population{
		Config:      config,
		Members:     saveData.Members,
		Fitnesses:   saveData.Fitnesses,
		Generation:  saveData.Generation,
		BestGenome:  saveData.BestGenome,
		BestFitness: saveData.BestFitness,
		rng:         rng,
		log:         log,
	}
	if p.BestGenome == nil {
		p.BestFitness = math.Inf(-1)
	}

	log.Info("checkpoint loaded",
		zap.String("path", checkpointPath), zap.Int("generation", p.Generation))
	return p, nil
}
