package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/baldhumanity/boolneat-go/boolneat"
	"github.com/baldhumanity/boolneat-go/boolneat/expr"
	"github.com/baldhumanity/boolneat-go/boolneat/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "new":
		return runNew(args[1:])
	case "mutate":
		return runMutate(args[1:])
	case "expr":
		return runExpr(args[1:])
	case "eval":
		return runEval(args[1:])
	case "dot":
		return runDot(args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	inputs := fs.Int("inputs", 2, "number of INPUT terminals")
	outputs := fs.Int("outputs", 1, "number of OUTPUT terminals")
	seed := fs.Int64("seed", 0, "rng seed (0 seeds from the clock)")
	out := fs.String("o", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := boolneat.NewGenome(*inputs, *outputs, newRand(*seed))
	if err != nil {
		return err
	}
	return writeGenome(g, *out)
}

func runMutate(args []string) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	in := fs.String("in", "-", "genome JSON path (default stdin)")
	out := fs.String("o", "", "output path (default stdout)")
	addNodes := fs.Int("add-nodes", 0, "add-node mutations to apply")
	addConns := fs.Int("add-conns", 0, "add-connection mutations to apply")
	seed := fs.Int64("seed", 0, "rng seed (0 seeds from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := readGenome(*in)
	if err != nil {
		return err
	}
	rng := newRand(*seed)
	for i := 0; i < *addNodes; i++ {
		if err := g.AddNode(rng); err != nil {
			return fmt.Errorf("add-node %d of %d: %w", i+1, *addNodes, err)
		}
	}
	for i := 0; i < *addConns; i++ {
		if err := g.AddConnection(rng); err != nil {
			return fmt.Errorf("add-connection %d of %d: %w", i+1, *addConns, err)
		}
	}
	return writeGenome(g, *out)
}

func runExpr(args []string) error {
	fs := flag.NewFlagSet("expr", flag.ContinueOnError)
	in := fs.String("in", "-", "genome JSON path (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := readGenome(*in)
	if err != nil {
		return err
	}
	exprs, err := expr.BuildAll(g)
	if err != nil {
		return err
	}
	for _, e := range exprs {
		fmt.Println(e)
	}
	return nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	in := fs.String("in", "-", "genome JSON path (default stdin)")
	assign := fs.String("assign", "", "comma-separated input values ordered by input id, e.g. 1,0 or true,false")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := readGenome(*in)
	if err != nil {
		return err
	}
	values, err := parseAssignment(*assign)
	if err != nil {
		return err
	}
	ids := g.InputIDs()
	if len(values) != len(ids) {
		return fmt.Errorf("genome has %d inputs, assignment has %d values", len(ids), len(values))
	}
	inputs := make(map[boolneat.Innovation]bool, len(ids))
	for i, id := range ids {
		inputs[id] = values[i]
	}

	exprs, err := expr.BuildAll(g)
	if err != nil {
		return err
	}
	for _, e := range exprs {
		v, err := e.Eval(inputs)
		if err != nil {
			return err
		}
		if named, ok := e.(expr.NamedOutput); ok {
			fmt.Printf("out_%d = %t\n", named.ID, v)
		} else {
			fmt.Printf("%s = %t\n", e, v)
		}
	}
	return nil
}

func runDot(args []string) error {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	in := fs.String("in", "-", "genome JSON path (default stdin)")
	out := fs.String("o", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := readGenome(*in)
	if err != nil {
		return err
	}
	if *out == "" || *out == "-" {
		return g.WriteDOT(os.Stdout)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := g.WriteDOT(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	configPath := fs.String("config", "", "INI config path (defaults apply when omitted)")
	target := fs.String("target", "xor", "target behavior: xor|and|or|parity|majority")
	numInputs := fs.Int("inputs", 0, "input count override (0 keeps the target default)")
	seed := fs.Int64("seed", 0, "rng seed override (0 falls back to config, then the clock)")
	resume := fs.String("resume", "", "resume from a checkpoint file")
	checkpoint := fs.String("checkpoint", "", "write the final population checkpoint to this path")
	out := fs.String("o", "", "write the winner genome JSON to this path")
	dbPath := fs.String("db", "", "archive the winner into this sqlite database")
	label := fs.String("label", "", "label for the archived record (default target name)")
	quiet := fs.Bool("quiet", false, "disable progress logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	config := boolneat.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = boolneat.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}

	truth, defaultInputs, err := targetFromName(*target)
	if err != nil {
		return err
	}
	config.Circuit.NumInputs = defaultInputs
	if *numInputs > 0 {
		config.Circuit.NumInputs = *numInputs
	}
	config.Circuit.NumOutputs = 1

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = config.Evolution.Seed
	}
	rng := newRand(rngSeed)

	logger := zap.NewNop()
	if !*quiet {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	var pop *boolneat.Population
	if *resume != "" {
		pop, err = boolneat.LoadCheckpoint(*resume, config, rng, logger)
	} else {
		pop, err = boolneat.NewPopulation(config, rng, logger)
	}
	if err != nil {
		return err
	}

	winner, err := pop.Run(expr.Fitness(truth))
	if err != nil {
		return err
	}
	if *checkpoint != "" {
		if err := pop.SaveCheckpoint(*checkpoint); err != nil {
			return err
		}
	}
	if winner == nil {
		return fmt.Errorf("no genome evaluated after %d generations", pop.Generation)
	}

	fmt.Printf("generations: %d\n", pop.Generation)
	fmt.Printf("fitness: %.4f\n", pop.BestFitness)
	if exprs, err := expr.BuildAll(winner); err == nil {
		for _, e := range exprs {
			fmt.Println(e)
		}
	}

	if *out != "" {
		if err := writeGenome(winner, *out); err != nil {
			return err
		}
	}
	if *dbPath != "" {
		db, err := store.NewSQLiteStore(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		rec := &store.Record{
			Label:      *label,
			Generation: pop.Generation,
			Fitness:    pop.BestFitness,
			Genome:     winner,
		}
		if rec.Label == "" {
			rec.Label = *target
		}
		if err := db.Put(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("archived: %s\n", rec.ID)
	}
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	dbPath := fs.String("db", "boolneat.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no records")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %-12s  gen=%-4d  fitness=%.4f  nodes=%-3d  conns=%-3d  %s\n",
			rec.ID, rec.Label, rec.Generation, rec.Fitness,
			rec.Genome.NodeCount(), rec.Genome.ConnectionCount(),
			rec.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	dbPath := fs.String("db", "boolneat.db", "sqlite database path")
	id := fs.String("id", "", "record id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("show requires -id")
	}

	db, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.Get(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("id: %s\nlabel: %s\ngeneration: %d\nfitness: %.4f\ncreated: %s\n",
		rec.ID, rec.Label, rec.Generation, rec.Fitness, rec.CreatedAt.Format(time.RFC3339))
	if exprs, err := expr.BuildAll(rec.Genome); err == nil {
		for _, e := range exprs {
			fmt.Println(e)
		}
	}
	return writeGenome(rec.Genome, "")
}

// --------------------------- helpers ---------------------------

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: boolneatctl <new|mutate|expr|eval|dot|evolve|list|show> [flags]", msg)
}

// newRand builds the random source for one command invocation. Seed 0 means
// non-reproducible: it falls back to the clock.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func readGenome(path string) (*boolneat.Genome, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read genome: %w", err)
	}

	g := new(boolneat.Genome)
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

func writeGenome(g *boolneat.Genome, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func parseAssignment(s string) ([]bool, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty input assignment, pass -assign")
	}
	parts := strings.Split(s, ",")
	values := make([]bool, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseBool(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad input value %q: %w", p, err)
		}
		values[i] = v
	}
	return values, nil
}

func targetFromName(name string) (expr.TruthFunc, int, error) {
	switch name {
	case "xor":
		return expr.Xor, 2, nil
	case "and":
		return func(in []bool) []bool { return []bool{boolneat.GateAnd(in)} }, 2, nil
	case "or":
		return func(in []bool) []bool { return []bool{boolneat.GateOr(in)} }, 2, nil
	case "parity":
		return expr.Parity, 3, nil
	case "majority":
		return expr.Majority, 3, nil
	default:
		return nil, 0, fmt.Errorf("unknown target: %s (want xor|and|or|parity|majority)", name)
	}
}
