// Command takmcts-demo is an ambient CLI that wires the search core
// against the internal/fixture placement game and prints the resulting
// root move distribution. It is not a protocol server — it is
// scaffolding for manually exercising the engine with a quick smoke
// test from the command line.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/takmcts/engine/internal/fixture"
	"github.com/takmcts/engine/pkg/linear"
	"github.com/takmcts/engine/pkg/mcts"
	"github.com/takmcts/engine/pkg/treedump"
)

func main() {
	size := flag.Int("size", 5, "board size")
	road := flag.Int("road", 4, "stones in a row needed to win")
	nodes := flag.Uint("nodes", 1000, "fixed node budget")
	seed := flag.Uint64("seed", 1, "rng seed")
	dot := flag.String("dot", "", "optional path to write a DOT dump of the finished tree")
	flag.Parse()

	logger := log.New(os.Stdout, "takmcts-demo: ", log.LstdFlags)

	game := fixture.New(*size, *road, int64(*seed))
	settings := mcts.DefaultSettings()

	valueModel := linear.ValueModel{Weights: []float32{0.2, 0.05, 0}}
	policyModel := linear.PolicyModel{Weights: []float32{0.1, 0}}

	start := time.Now()
	tree, err := mcts.New[fixture.Move](game, settings, valueModel, policyModel, nil, *seed)
	if err != nil {
		logger.Fatalf("building search tree: %v", err)
	}

	reason := tree.Run(game, mcts.FixedNodes(uint32(*nodes)))
	logger.Printf("stopped: reason=%v elapsed=%s root_visits=%d", reason, time.Since(start), tree.RootVisits())

	for _, mv := range tree.RootDistribution() {
		logger.Printf("move=%v visits=%d fraction=%.4f", mv.Move, mv.Visits, mv.Fraction)
	}

	if *dot != "" {
		f, err := os.Create(*dot)
		if err != nil {
			logger.Fatalf("creating dot file: %v", err)
		}
		defer f.Close()
		if err := dumpTree(tree, f); err != nil {
			logger.Fatalf("writing dot file: %v", err)
		}
	}
}

func dumpTree(tree *mcts.Tree[fixture.Move], w io.Writer) error {
	return treedump.WriteDOT[fixture.Move](w, tree, 3)
}
