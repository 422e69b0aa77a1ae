package mcts

import (
	"time"

	distrand "golang.org/x/exp/rand"

	"github.com/takmcts/engine/pkg/linear"
	"github.com/takmcts/engine/pkg/position"
	"github.com/takmcts/engine/pkg/tt"
)

// Score is a value estimate in [0, 1] from the searched position's side
// to move.
type Score float32

// PlayMoveTime runs a one-shot blocking search bounded by maxTime and
// returns the best move and its estimated value.
func PlayMoveTime[M position.Move](pos position.Position[M], maxTime time.Duration, settings Settings, valueModel linear.ValueModel, policyModel linear.PolicyModel, table *tt.Table, seed uint64) (M, Score, error) {
	var zero M
	tree, err := New(pos, settings, valueModel, policyModel, table, seed)
	if err != nil {
		return zero, 0, err
	}

	tree.Run(pos, Time(maxTime, 0))

	root := tree.getNode(tree.root)
	dist := tree.RootDistribution()
	if len(dist) == 0 {
		return zero, Score(root.meanActionValue), nil
	}
	best := dist[0]
	for _, d := range dist[1:] {
		if d.Visits > best.Visits {
			best = d
		}
	}

	return best.Move, Score(root.meanActionValue), nil
}

// MCTSTraining runs a search under tc and returns the full root visit
// distribution for learning.
func MCTSTraining[M position.Move](pos position.Position[M], tc TimeControl, settings Settings, valueModel linear.ValueModel, policyModel linear.PolicyModel, table *tt.Table, seed uint64) ([]MoveVisits[M], error) {
	tree, err := New(pos, settings, valueModel, policyModel, table, seed)
	if err != nil {
		return nil, err
	}
	tree.Run(pos, tc)
	return tree.RootDistribution(), nil
}

// BestMove samples a move from dist at temperature tau using rng.
// Training callers typically pick tau around 0.2 in the opening and
// 0.1 past the first ten plies.
func BestMove[M position.Move](rng *distrand.Rand, tau float32, dist []MoveVisits[M]) (M, bool) {
	return sampleMove(rng, dist, tau)
}
